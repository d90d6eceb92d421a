package visitor

import (
	"context"
	"log/slog"
	"time"

	"marathon-api/internal/geo"
	"marathon-api/internal/logger"
	"marathon-api/internal/metrics"
)

// ProvinceCount：地图数据源，Name 为完整省份名称
type ProvinceCount struct {
	Name  string `json:"name"`
	Count int64  `json:"value"`
}

type Summary struct {
	Total     int64           `json:"total"`
	Today     int64           `json:"today"`
	Provinces []ProvinceCount `json:"provinces"`
}

// Store：访问计数持久化；province 为空表示无法归属
type Store interface {
	RecordVisit(ctx context.Context, day time.Time, province string) error
	VisitSummary(ctx context.Context, day time.Time) (Summary, error)
}

// 港澳台在 GeoLite2 中作为国家出现，按省级行政区计入
var regionAsProvince = map[string]string{
	"香港": "香港", "HK": "香港",
	"澳门": "澳门", "MO": "澳门",
	"台湾": "台湾", "TW": "台湾",
}

type Recorder struct {
	res   Resolver
	store Store
	dedup *Dedup
	now   func() time.Time
	log   *slog.Logger
}

// NewRecorder：res 可为 nil，此时所有访问计入总数但不归属省份
func NewRecorder(res Resolver, store Store) *Recorder {
	return &Recorder{res: res, store: store, now: time.Now, log: logger.With("visitor")}
}

// WithDedup：启用按 IP 每日去重
func (r *Recorder) WithDedup(d *Dedup) *Recorder {
	r.dedup = d
	return r
}

func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Province：IP -> 完整省份名称；境外或无法解析返回空串
func (r *Recorder) Province(ip string) string {
	if r.res == nil || ip == "" {
		return ""
	}
	reg, ok := r.res.Lookup(ip)
	if !ok {
		return ""
	}
	if p, ok := regionAsProvince[reg.Country]; ok {
		return geo.NormalizeProvince(p)
	}
	switch reg.Country {
	case "中国", "CN", "China":
		return geo.NormalizeProvince(reg.Province)
	}
	return ""
}

// Record：返回归属省份；当天已计过的 IP 不再累加
func (r *Recorder) Record(ctx context.Context, ip string) (string, error) {
	province := r.Province(ip)
	day := r.today()
	first, err := r.dedup.First(ctx, day, ip)
	if err != nil {
		r.log.Debug("visit_dedup_failed", "err", err)
	}
	if !first {
		return province, nil
	}
	if err := r.store.RecordVisit(ctx, day, province); err != nil {
		return "", err
	}
	resolved := "false"
	if province != "" {
		resolved = "true"
	}
	metrics.VisitsTotal.WithLabelValues(resolved).Inc()
	r.log.Debug("visit_recorded", "ip", ip, "province", province)
	return province, nil
}

func (r *Recorder) Summary(ctx context.Context) (Summary, error) {
	return r.store.VisitSummary(ctx, r.today())
}

func (r *Recorder) today() time.Time {
	n := r.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
