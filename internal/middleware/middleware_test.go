package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func TestTokenBucket(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tb := NewTokenBucket(2)
	tb.now = func() time.Time { return now }
	tb.lastSec = now.Unix()
	h := tb.Limit(okHandler)

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	now = now.Add(time.Second)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitFromEnv_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	h := RateLimitFromEnv(okHandler)
	for i := 0; i < 500; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestOriginGuard(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := NewOriginGuard(l, []string{"1.2.3.4"}, []string{"10.0.0.0/8", "bad"}, true, "X-Forwarded-For")
	h := g.Guard(okHandler)

	cases := []struct {
		remote, xff string
		want        int
	}{
		{"1.2.3.4:80", "", 200},
		{"10.1.2.3:80", "", 200},
		{"127.0.0.1:80", "", 200},
		{"8.8.8.8:80", "", 403},
		{"8.8.8.8:80", "10.9.9.9, 8.8.8.8", 200},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = c.remote
		if c.xff != "" {
			r.Header.Set("X-Forwarded-For", c.xff)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, c.want, rec.Code, c.remote)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173/"})(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/api/marathon/", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	r = httptest.NewRequest(http.MethodOptions, "/api/marathon/", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
