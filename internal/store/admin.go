package store

import (
	"context"
	"database/sql"
	"time"

	"marathon-api/internal/admin"
)

// AdminSettings：admin.SettingsRepo 的实现，管理员设置为单例行 id=1
type AdminSettings struct {
	db *sql.DB
}

func (s *Store) AdminSettings() *AdminSettings { return &AdminSettings{db: s.db} }

func (s *AdminSettings) Get(ctx context.Context) (*admin.Settings, error) {
	var st admin.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT admin_password, created_at, updated_at FROM admin_settings WHERE id=1`).
		Scan(&st.PasswordHash, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func (s *AdminSettings) Create(ctx context.Context, hash string, at time.Time) (*admin.Settings, error) {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO admin_settings(id, admin_password, created_at, updated_at)
        VALUES(1, $1, $2, $2) ON CONFLICT (id) DO NOTHING`, hash, at); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *AdminSettings) UpdatePassword(ctx context.Context, hash string, at time.Time) error {
	return mustAffect(s.db.ExecContext(ctx,
		`UPDATE admin_settings SET admin_password=$1, updated_at=$2 WHERE id=1`, hash, at))
}
