package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"marathon-api/internal/logger"
)

// Principal：请求方身份，目前只区分是否为管理员
type Principal struct {
	Admin bool
}

type Policy int

const (
	// ReadOnlyOrAdmin：安全方法（GET/HEAD/OPTIONS）放行，其余需要管理员会话
	ReadOnlyOrAdmin Policy = iota
	// RequireAdmin：任何方法都需要管理员会话
	RequireAdmin
)

type Decision struct {
	Allow  bool
	Reason string
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// Authorize：纯函数，便于单独测试授权规则
func Authorize(method string, p Principal, pol Policy) Decision {
	if p.Admin {
		return Decision{Allow: true, Reason: "admin"}
	}
	if pol == ReadOnlyOrAdmin && safeMethod(method) {
		return Decision{Allow: true, Reason: "read_only"}
	}
	return Decision{Allow: false, Reason: "admin session required"}
}

// Authorizer：从请求的会话 cookie 解析身份并按策略判定
type Authorizer struct {
	sessions SessionStore
}

func NewAuthorizer(sessions SessionStore) *Authorizer {
	return &Authorizer{sessions: sessions}
}

// Principal：会话存储故障时按非管理员处理（写操作拒绝，读操作不受影响）
func (a *Authorizer) Principal(ctx context.Context, r *http.Request) Principal {
	tok := SessionToken(r)
	if tok == "" {
		return Principal{}
	}
	ok, err := a.sessions.Valid(ctx, tok)
	if err != nil {
		logger.L().Warn("session_lookup_failed", "err", err)
		return Principal{}
	}
	return Principal{Admin: ok}
}

func (a *Authorizer) Decide(ctx context.Context, r *http.Request, pol Policy) Decision {
	if pol == ReadOnlyOrAdmin && safeMethod(r.Method) {
		return Authorize(r.Method, Principal{}, pol)
	}
	return Authorize(r.Method, a.Principal(ctx, r), pol)
}

// Middleware：未通过时返回 401 {"error": ...}
func (a *Authorizer) Middleware(pol Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := a.Decide(r.Context(), r, pol)
			if !d.Allow {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": d.Reason})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
