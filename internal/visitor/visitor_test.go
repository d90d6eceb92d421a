package visitor

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]Region

func (m mapResolver) Lookup(ip string) (Region, bool) {
	r, ok := m[ip]
	return r, ok
}

type memStore struct {
	days map[string]int64
	prov map[string]int64
}

func (m *memStore) RecordVisit(ctx context.Context, day time.Time, province string) error {
	m.days[day.Format("2006-01-02")]++
	if province != "" {
		m.prov[province]++
	}
	return nil
}

func (m *memStore) VisitSummary(ctx context.Context, day time.Time) (Summary, error) {
	var s Summary
	for _, n := range m.days {
		s.Total += n
	}
	s.Today = m.days[day.Format("2006-01-02")]
	for name, n := range m.prov {
		s.Provinces = append(s.Provinces, ProvinceCount{Name: name, Count: n})
	}
	return s, nil
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/stats/visit?ip=1.2.3.4", nil)
	r.Header.Set("X-Forwarded-For", "5.6.7.8")
	assert.Equal(t, "5.6.7.8", ClientIP(r))

	r = httptest.NewRequest("POST", "/api/stats/visit?ip=1.2.3.4", nil)
	r.RemoteAddr = "192.0.2.7:4000"
	assert.Equal(t, "192.0.2.7", ClientIP(r))

	r = httptest.NewRequest("GET", "/api/stats/visit", nil)
	r.Header.Set("X-Forwarded-For", "5.6.7.8, 10.0.0.1")
	r.Header.Set("X-Real-IP", "9.9.9.9")
	assert.Equal(t, "5.6.7.8", ClientIP(r))

	r = httptest.NewRequest("GET", "/api/stats/visit", nil)
	r.Header.Set("X-Real-IP", "9.9.9.9")
	assert.Equal(t, "9.9.9.9", ClientIP(r))

	r = httptest.NewRequest("GET", "/api/stats/visit", nil)
	r.Header.Set("Forwarded", `for="[2001:db8::1]";proto=https`)
	assert.Equal(t, "2001:db8::1", ClientIP(r))

	r = httptest.NewRequest("GET", "/api/stats/visit", nil)
	r.RemoteAddr = "[::1]:5555"
	assert.Equal(t, "::1", ClientIP(r))
}

func TestParseRegion(t *testing.T) {
	assert.Equal(t, Region{Country: "中国", Province: "广西", City: "南宁"}, parseRegion("中国|0|广西|南宁|电信"))
	assert.Equal(t, Region{City: "内网IP"}, parseRegion("0|0|0|内网IP|内网IP"))
	assert.Equal(t, Region{Country: "中国"}, parseRegion("中国|0|Unknown"))
}

func TestChain(t *testing.T) {
	var nilIP2R *IP2Region
	var nilGeo *GeoIP
	c := Chain{nilIP2R, nil, mapResolver{"1.1.1.1": {Country: "中国", Province: "四川"}}, nilGeo}
	reg, ok := c.Lookup("1.1.1.1")
	require.True(t, ok)
	assert.Equal(t, "四川", reg.Province)
	_, ok = c.Lookup("2.2.2.2")
	assert.False(t, ok)
}

func TestRecorder(t *testing.T) {
	res := mapResolver{
		"1.1.1.1": {Country: "中国", Province: "广西"},
		"2.2.2.2": {Country: "中国", Province: "广东省"},
		"3.3.3.3": {Country: "美国", Province: "加利福尼亚州"},
		"4.4.4.4": {Country: "HK", Province: "Central and Western"},
	}
	st := &memStore{days: map[string]int64{}, prov: map[string]int64{}}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := NewRecorder(res, st).WithClock(func() time.Time { return now })
	ctx := context.Background()

	p, err := rec.Record(ctx, "1.1.1.1")
	require.NoError(t, err)
	assert.Equal(t, "广西壮族自治区", p)
	p, _ = rec.Record(ctx, "2.2.2.2")
	assert.Equal(t, "广东省", p)
	p, _ = rec.Record(ctx, "3.3.3.3")
	assert.Equal(t, "", p)
	p, _ = rec.Record(ctx, "4.4.4.4")
	assert.Equal(t, "香港特别行政区", p)
	p, _ = rec.Record(ctx, "not-an-ip")
	assert.Equal(t, "", p)

	sum, err := rec.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum.Total)
	assert.Equal(t, int64(5), sum.Today)
	assert.Len(t, sum.Provinces, 3)

	assert.Equal(t, "", NewRecorder(nil, st).Province("1.1.1.1"))
}

func TestDedup(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDedup(rc)
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	first, err := d.First(ctx, day, "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, first)
	first, err = d.First(ctx, day, "1.1.1.1")
	require.NoError(t, err)
	assert.False(t, first)
	first, err = d.First(ctx, day.AddDate(0, 0, 1), "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, mr.Exists("visit:bloom:20250601"))

	var nilDedup *Dedup
	first, err = nilDedup.First(ctx, day, "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestRecorder_DedupCountsOncePerDay(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := &memStore{days: map[string]int64{}, prov: map[string]int64{}}
	rec := NewRecorder(mapResolver{"1.1.1.1": {Country: "中国", Province: "四川"}}, st).WithDedup(NewDedup(rc))

	for i := 0; i < 3; i++ {
		p, err := rec.Record(context.Background(), "1.1.1.1")
		require.NoError(t, err)
		assert.Equal(t, "四川省", p)
	}
	assert.Equal(t, int64(1), st.prov["四川省"])
}
