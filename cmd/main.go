// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"marathon-api/internal/admin"
	"marathon-api/internal/api"
	"marathon-api/internal/filestore"
	"marathon-api/internal/georef"
	"marathon-api/internal/logger"
	"marathon-api/internal/marathon"
	"marathon-api/internal/metrics"
	"marathon-api/internal/middleware"
	"marathon-api/internal/migrate"
	"marathon-api/internal/moments"
	"marathon-api/internal/store"
	"marathon-api/internal/utils"
	"marathon-api/internal/visitor"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := strings.TrimSuffix(utils.EnvOr("API_BASE", "/api"), "/")
	l.Debug("config_api_base", "base", apiBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
	} else {
		l.Info("db_ping_ok")
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	if utils.EnvBool("SEED_PROVINCES", true) {
		if n, err := migrate.SeedProvinces(ctx, db); err != nil {
			l.Error("seed_provinces_error", "err", err)
		} else {
			l.Info("seed_provinces_ok", "inserted", n)
		}
	}
	st := store.AttachDB(db)

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	mux := http.NewServeMux()
	files, err := openFileStore(ctx, l, mux)
	if err != nil {
		l.Error("filestore_error", "err", err)
		os.Exit(1)
	}

	geoSvc := georef.New(st, rc, utils.EnvDuration("GEO_CACHE_TTL", 24*time.Hour))
	var sessions admin.SessionStore = admin.NewMemorySessions()
	if rc != nil {
		sessions = admin.NewRedisSessions(rc)
	}
	adminSvc := admin.NewService(st.AdminSettings(), sessions, admin.NewHasher(utils.EnvInt("BCRYPT_COST", 0)), admin.Config{
		DefaultPassword: os.Getenv("ADMIN_DEFAULT_PASSWORD"),
		SessionTTL:      utils.EnvDuration("SESSION_TTL", 24*time.Hour),
	})

	res, closeRes := openResolvers(l)
	defer closeRes()
	rec := visitor.NewRecorder(res, st).WithDedup(visitor.NewDedup(rc))

	apiMux := api.BuildRoutes(api.Deps{
		Geo:          geoSvc,
		Marathon:     marathon.NewService(st, geoSvc, files),
		Moments:      moments.NewService(st, files),
		Admin:        adminSvc,
		Auth:         admin.NewAuthorizer(sessions),
		Visits:       rec,
		MaxUpload:    int64(utils.EnvInt("MAX_UPLOAD_MB", 64)) << 20,
		SecureCookie: utils.EnvBool("COOKIE_SECURE", false),
	})
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		c, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(c); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	handler := middleware.RateLimitFromEnv(mux)
	handler = middleware.CORSFromEnv()(handler)
	handler = middleware.NewOriginGuardFromEnv(l).Wrap(handler)
	handler = logger.AccessMiddleware(l)(handler)

	addr := utils.EnvOr("ADDR", ":8000")
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if utils.EnvBool("TLS_ENABLE", false) {
			certPath := utils.EnvOr("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt"))
			keyPath := utils.EnvOr("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key"))
			if err := utils.EnsureSelfSignedCert(certPath, keyPath, "marathon.local"); err != nil {
				l.Error("tls_cert_error", "err", err)
			}
			l.Info("listening_tls", "addr", addr, "cert", certPath)
			errCh <- s.ListenAndServeTLS(certPath, keyPath)
			return
		}
		l.Info("listening", "addr", addr)
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		l.Info("shutdown_begin")
		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(c); err != nil {
			l.Error("shutdown_error", "err", err)
		}
		l.Info("shutdown_done")
	}
}

// openFileStore：FILE_STORE=s3 使用对象存储，否则写本地磁盘并挂载 /media/
func openFileStore(ctx context.Context, l *slog.Logger, mux *http.ServeMux) (filestore.Store, error) {
	if strings.EqualFold(os.Getenv("FILE_STORE"), "s3") {
		s, err := filestore.NewS3(ctx, filestore.S3Config{
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			Region:        utils.EnvOr("S3_REGION", "us-east-1"),
			AccessKeyID:   os.Getenv("S3_ACCESS_KEY_ID"),
			SecretKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
			Bucket:        os.Getenv("S3_BUCKET"),
			Prefix:        os.Getenv("S3_PREFIX"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
			UsePathStyle:  utils.EnvBool("S3_USE_PATH_STYLE", false),
		})
		if err != nil {
			return nil, err
		}
		l.Info("filestore_s3", "bucket", os.Getenv("S3_BUCKET"))
		return s, nil
	}
	mediaURL := utils.EnvOr("MEDIA_URL", "/media/")
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}
	loc, err := filestore.NewLocal(utils.EnvOr("MEDIA_ROOT", filepath.Join("data", "media")), mediaURL)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(mediaURL, "/") {
		mux.Handle(mediaURL, loc.Handler())
	}
	l.Info("filestore_local", "url", mediaURL)
	return loc, nil
}

// openResolvers：按 ip2region -> GeoLite2 顺序组装解析链，缺失的数据文件跳过
func openResolvers(l *slog.Logger) (visitor.Resolver, func()) {
	var chain visitor.Chain
	var closers []func()
	ip2, err := visitor.NewIP2Region(os.Getenv("IP2REGION_V4_PATH"), os.Getenv("IP2REGION_V6_PATH"))
	if err != nil {
		l.Error("ip2region_open_error", "err", err)
	} else if ip2 != nil {
		chain = append(chain, ip2)
		closers = append(closers, ip2.Close)
	}
	if p := os.Getenv("GEOIP_CITY_PATH"); p != "" {
		g, err := visitor.NewGeoIP(p)
		if err != nil {
			l.Error("geoip_open_error", "err", err)
		} else {
			chain = append(chain, g)
			closers = append(closers, func() { _ = g.Close() })
		}
	}
	l.Info("visitor_resolvers", "count", len(chain))
	return chain, func() {
		for _, c := range closers {
			c()
		}
	}
}
