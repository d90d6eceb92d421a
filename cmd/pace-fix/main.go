// pace-fix：把历史配速（如 "5:30/km"）改写为 "05:30"
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

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

	dryRun := utils.EnvBool("DRY_RUN", false)
	st, err := marathon.FixPaces(context.Background(), store.AttachDB(db), dryRun)
	if err != nil {
		l.Error("pace_fix_error", "err", err, "updated", st.Updated)
		os.Exit(1)
	}
	l.Info("pace_fix_done", "scanned", st.Scanned, "updated", st.Updated, "skipped", st.Skipped, "dry_run", dryRun)
}
