// geo-import：把省/市/区县 JSON（pca-code 格式）导入参照表并清空地区缓存
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"marathon-api/internal/georef"
	"marathon-api/internal/logger"
	"marathon-api/internal/migrate"
	"marathon-api/internal/store"
	"marathon-api/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	ctx := context.Background()

	inPath := utils.EnvOr("GEO_IMPORT_FILE", filepath.Join("data", "geo", "pca-code.json"))
	f, err := os.Open(inPath)
	if err != nil {
		l.Error("geo_import_open_error", "path", inPath, "err", err)
		os.Exit(1)
	}
	defer f.Close()
	nodes, err := georef.DecodeNodes(f)
	if err != nil {
		l.Error("geo_import_decode_error", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	st := store.AttachDB(db)

	stats, err := georef.Import(ctx, st, nodes)
	if err != nil {
		l.Error("geo_import_error", "err", err, "provinces", stats.Provinces, "cities", stats.Cities)
		os.Exit(1)
	}
	l.Info("geo_import_ok", "provinces", stats.Provinces, "cities", stats.Cities, "districts", stats.Districts)

	rc := utils.OpenRedisFromEnv()
	if rc != nil {
		defer rc.Close()
		if err := georef.New(st, rc, 0).Invalidate(ctx); err != nil {
			l.Warn("geo_cache_invalidate_error", "err", err)
		}
	}
}
