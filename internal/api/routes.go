// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"net/http"

	"marathon-api/internal/admin"
	"marathon-api/internal/georef"
	"marathon-api/internal/marathon"
	"marathon-api/internal/moments"
	"marathon-api/internal/visitor"
)

const defaultMaxUpload = 64 << 20

// Deps：路由依赖的服务；Visits 为 nil 时不注册访问统计接口
type Deps struct {
	Geo       *georef.Service
	Marathon  *marathon.Service
	Moments   *moments.Service
	Admin     *admin.Service
	Auth      *admin.Authorizer
	Visits    *visitor.Recorder
	MaxUpload int64
	// SecureCookie：会话 cookie 是否带 Secure
	SecureCookie bool
}

type handlers struct {
	Deps
}

// BuildRoutes：独立 ServeMux，由主入口挂载到 API_BASE 前缀下
// 约束：读接口公开；写接口需要管理员会话；设置接口任何方法都需要管理员会话。
func BuildRoutes(d Deps) *http.ServeMux {
	if d.MaxUpload <= 0 {
		d.MaxUpload = defaultMaxUpload
	}
	h := &handlers{Deps: d}
	mux := http.NewServeMux()
	guard := func(fn http.HandlerFunc) http.Handler {
		return d.Auth.Middleware(admin.ReadOnlyOrAdmin)(fn)
	}
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return d.Auth.Middleware(admin.RequireAdmin)(fn)
	}

	mux.HandleFunc("GET /marathon/province", h.provinces)
	mux.HandleFunc("GET /marathon/city", h.cities)
	mux.HandleFunc("GET /marathon/district", h.districts)

	mux.HandleFunc("GET /marathon/{$}", h.listEvents)
	mux.Handle("POST /marathon/{$}", guard(h.createEvent))
	mux.HandleFunc("GET /marathon/{id}/{$}", h.getEvent)
	mux.Handle("PUT /marathon/{id}/{$}", guard(h.updateEvent))
	mux.Handle("DELETE /marathon/{id}/{$}", guard(h.deleteEvent))
	mux.Handle("POST /marathon/{id}/upload-certificate/{$}", guard(h.uploadCertificate))

	mux.HandleFunc("GET /marathon/registration/{$}", h.listRegistrations)
	mux.Handle("POST /marathon/registration/{$}", guard(h.createRegistration))
	mux.HandleFunc("GET /marathon/registration/{id}/{$}", h.getRegistration)
	mux.Handle("PUT /marathon/registration/{id}/{$}", guard(h.updateRegistration))
	mux.Handle("DELETE /marathon/registration/{id}/{$}", guard(h.deleteRegistration))

	mux.HandleFunc("GET /moments/posts/{$}", h.listPosts)
	mux.Handle("POST /moments/posts/{$}", guard(h.createPost))
	mux.HandleFunc("GET /moments/posts/stats/{$}", h.postStats)
	mux.HandleFunc("GET /moments/posts/{id}/{$}", h.getPost)
	mux.Handle("PUT /moments/posts/{id}/{$}", guard(h.updatePost))
	mux.Handle("PATCH /moments/posts/{id}/{$}", guard(h.updatePost))
	mux.Handle("DELETE /moments/posts/{id}/{$}", guard(h.deletePost))
	mux.HandleFunc("GET /moments/media/{$}", h.listMedia)
	mux.HandleFunc("GET /moments/media/{id}/{$}", h.getMedia)
	mux.Handle("DELETE /moments/media/{id}/{$}", guard(h.deleteMedia))

	mux.HandleFunc("POST /admin/login/{$}", h.login)
	mux.HandleFunc("POST /admin/logout/{$}", h.logout)
	mux.Handle("GET /admin/settings/{$}", adminOnly(h.settings))
	mux.Handle("PUT /admin/settings/{$}", adminOnly(h.updateSettings))

	if d.Visits != nil {
		mux.HandleFunc("POST /stats/visit", h.recordVisit)
		mux.HandleFunc("GET /stats/visits", h.visitSummary)
	}
	return mux
}
