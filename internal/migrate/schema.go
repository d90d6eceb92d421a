package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"marathon-api/internal/geo"
	"marathon-api/internal/logger"
)

// 背景：首次运行自动创建所需表与索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；可重复执行
var schema = []string{
	`CREATE TABLE IF NOT EXISTS geo_provinces (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL UNIQUE,
        code TEXT NOT NULL UNIQUE
    )`,
	`CREATE TABLE IF NOT EXISTS geo_cities (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        code TEXT NOT NULL UNIQUE,
        province_id BIGINT NOT NULL REFERENCES geo_provinces(id) ON DELETE CASCADE
    )`,
	`CREATE INDEX IF NOT EXISTS idx_geo_cities_province ON geo_cities(province_id, id)`,
	`CREATE TABLE IF NOT EXISTS geo_districts (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        code TEXT NOT NULL UNIQUE,
        city_id BIGINT NOT NULL REFERENCES geo_cities(id) ON DELETE CASCADE
    )`,
	`CREATE INDEX IF NOT EXISTS idx_geo_districts_city ON geo_districts(city_id, id)`,
	`CREATE TABLE IF NOT EXISTS marathons (
        id BIGSERIAL PRIMARY KEY,
        event_name VARCHAR(200) NOT NULL,
        event_date DATE NOT NULL,
        location VARCHAR(200) NOT NULL,
        province VARCHAR(50) NOT NULL DEFAULT '',
        city VARCHAR(50) NOT NULL DEFAULT '',
        district VARCHAR(50) NOT NULL DEFAULT '',
        province_ref BIGINT REFERENCES geo_provinces(id) ON DELETE SET NULL,
        city_ref BIGINT REFERENCES geo_cities(id) ON DELETE SET NULL,
        district_ref BIGINT REFERENCES geo_districts(id) ON DELETE SET NULL,
        event_type VARCHAR(10) NOT NULL DEFAULT 'full',
        finish_time VARCHAR(20) NOT NULL DEFAULT '',
        pace VARCHAR(20) NOT NULL DEFAULT '',
        certificate TEXT NOT NULL DEFAULT '',
        description TEXT NOT NULL DEFAULT '',
        event_log TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_marathons_date ON marathons(event_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_marathons_province ON marathons(province)`,
	`CREATE TABLE IF NOT EXISTS marathon_registrations (
        id BIGSERIAL PRIMARY KEY,
        event_name VARCHAR(200) NOT NULL,
        event_date DATE NOT NULL,
        location VARCHAR(200) NOT NULL,
        province VARCHAR(50) NOT NULL DEFAULT '',
        city VARCHAR(50) NOT NULL DEFAULT '',
        district VARCHAR(50) NOT NULL DEFAULT '',
        event_type VARCHAR(10) NOT NULL DEFAULT 'full',
        registration_status VARCHAR(20) NOT NULL DEFAULT 'preparing',
        registration_date DATE,
        registration_fee NUMERIC(10,2),
        draw_date DATE,
        transport VARCHAR(20),
        accommodation VARCHAR(20),
        notes TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_date ON marathon_registrations(event_date)`,
	`CREATE TABLE IF NOT EXISTS moments_posts (
        id BIGSERIAL PRIMARY KEY,
        content VARCHAR(200) NOT NULL DEFAULT '',
        is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
        tags VARCHAR(200) NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_posts_order ON moments_posts(is_pinned DESC, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS moments_media (
        id BIGSERIAL PRIMARY KEY,
        post_id BIGINT NOT NULL REFERENCES moments_posts(id) ON DELETE CASCADE,
        media_type VARCHAR(10) NOT NULL,
        file TEXT NOT NULL,
        sort_order INT NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_media_post ON moments_media(post_id, sort_order)`,
	`CREATE TABLE IF NOT EXISTS admin_settings (
        id INT PRIMARY KEY,
        admin_password TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS stats_total (
        id INT PRIMARY KEY,
        total_visits BIGINT NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS stats_daily (
        day DATE PRIMARY KEY,
        visits BIGINT NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS stats_province (
        province TEXT PRIMARY KEY,
        visits BIGINT NOT NULL DEFAULT 0
    )`,
	`INSERT INTO stats_total(id, total_visits) VALUES(1, 0) ON CONFLICT (id) DO NOTHING`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range schema {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema stmt %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}

// SeedProvinces：写入 34 个省级行政区（完整名称），已存在的不覆盖
// 背景：按行政区划代码顺序插入，新库中省份 id 与列表顺序一致。
func SeedProvinces(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	n := 0
	for _, p := range geo.Provinces() {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO geo_provinces(name, code) VALUES($1, $2) ON CONFLICT DO NOTHING`, p.Name, p.Code)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", p.Name, err)
		}
		if k, err := res.RowsAffected(); err == nil {
			n += int(k)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Info("provinces_seeded", "inserted", n)
	return n, nil
}
