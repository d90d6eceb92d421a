// location-normalize：对存量赛事与报名记录重新标准化省/市/区县名称
// LOCATION_BACKFILL=true 时按 location 字段补齐缺失的省市；DRY_RUN=true 只输出将要修改的记录。
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"marathon-api/internal/georef"
	"marathon-api/internal/logger"
	"marathon-api/internal/marathon"
	"marathon-api/internal/store"
	"marathon-api/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	opt := marathon.FixOptions{
		Backfill: utils.EnvBool("LOCATION_BACKFILL", false),
		DryRun:   utils.EnvBool("DRY_RUN", false),
	}
	st := store.AttachDB(db)
	svc := marathon.NewService(st, georef.New(st, nil, 0), nil)
	stats, err := svc.NormalizeLocations(context.Background(), st, opt)
	if err != nil {
		l.Error("location_normalize_error", "err", err, "updated", stats.Updated)
		os.Exit(1)
	}
	l.Info("location_normalize_done", "scanned", stats.Scanned, "updated", stats.Updated, "skipped", stats.Skipped, "dry_run", opt.DryRun)
}
