// 包 visitor：访客 IP 归属省份解析与访问统计
package visitor

import (
	"net"
	"net/http"
	"strings"
)

// 文档注释：获取访客 IP
// 背景：部署在反向代理之后，优先常见代理头，最后回退远端地址。
// 约束：不读取查询参数中的 ip；代理头可被伪造，统计结果仅用于展示。
func ClientIP(r *http.Request) string {
	h := r.Header
	if x := h.Get("X-Forwarded-For"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	if x := h.Get("CF-Connecting-IP"); x != "" {
		return strings.TrimSpace(x)
	}
	if x := h.Get("X-Real-IP"); x != "" {
		return strings.TrimSpace(x)
	}
	if x := h.Get("Forwarded"); x != "" {
		if i := strings.Index(strings.ToLower(x), "for="); i >= 0 {
			y := strings.Trim(x[i+4:], "\" ")
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			return strings.Trim(y, "\"[]")
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
