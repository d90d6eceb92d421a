package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
)

// 文档注释：来源 IP 白名单
// 背景：部署在 CDN 或反向代理之后时，仅允许回源网段与指定调试 IP 直接访问；其他请求返回 403。
// 约束：支持 IPv4/IPv6 CIDR；来源 IP 默认取 RemoteAddr，配置 ORIGIN_REAL_IP_HEADER 时取该头的首个有效 IP。
type OriginGuard struct {
	l            *slog.Logger
	allowIPs     map[string]struct{}
	allowCIDRs   []*net.IPNet
	realIPHeader string
}

// 环境变量：
// ORIGIN_ALLOW_IPS=1.2.3.4,5.6.7.8    允许的单 IP 列表
// ORIGIN_ALLOW_CIDRS=10.0.0.0/8,...   允许的 CIDR 列表
// ORIGIN_ALLOW_LOCAL=true              允许 127.0.0.1/::1
// ORIGIN_REAL_IP_HEADER=X-Forwarded-For
func NewOriginGuardFromEnv(l *slog.Logger) *OriginGuard {
	return NewOriginGuard(l,
		splitList(os.Getenv("ORIGIN_ALLOW_IPS")),
		splitList(os.Getenv("ORIGIN_ALLOW_CIDRS")),
		os.Getenv("ORIGIN_ALLOW_LOCAL") == "true",
		strings.TrimSpace(os.Getenv("ORIGIN_REAL_IP_HEADER")),
	)
}

func NewOriginGuard(l *slog.Logger, ips, cidrs []string, allowLocal bool, realIPHeader string) *OriginGuard {
	g := &OriginGuard{l: l, allowIPs: map[string]struct{}{}, realIPHeader: realIPHeader}
	for _, p := range ips {
		if ip := net.ParseIP(p); ip != nil {
			g.allowIPs[ip.String()] = struct{}{}
		}
	}
	for _, c := range cidrs {
		if _, n, err := net.ParseCIDR(c); err == nil {
			g.allowCIDRs = append(g.allowCIDRs, n)
		} else {
			l.Warn("origin_cidr_invalid", "cidr", c)
		}
	}
	if allowLocal {
		g.allowIPs["127.0.0.1"] = struct{}{}
		g.allowIPs["::1"] = struct{}{}
	}
	return g
}

// Wrap：ORIGIN_DEFENSE_ENABLE=true 时生效
func (g *OriginGuard) Wrap(next http.Handler) http.Handler {
	if os.Getenv("ORIGIN_DEFENSE_ENABLE") != "true" {
		return next
	}
	return g.Guard(next)
}

func (g *OriginGuard) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := g.extractIP(r)
		if ip == nil || !g.allowed(ip) {
			g.l.Debug("origin_defense_block", "remote", r.RemoteAddr)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *OriginGuard) allowed(ip net.IP) bool {
	if _, ok := g.allowIPs[ip.String()]; ok {
		return true
	}
	for _, n := range g.allowCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (g *OriginGuard) extractIP(r *http.Request) net.IP {
	if g.realIPHeader != "" {
		if raw := r.Header.Get(g.realIPHeader); raw != "" {
			if ip := net.ParseIP(strings.TrimSpace(strings.Split(raw, ",")[0])); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
