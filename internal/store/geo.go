package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marathon-api/internal/georef"
)

func (s *Store) listOptions(ctx context.Context, q string, args ...any) ([]georef.Option, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []georef.Option{}
	for rows.Next() {
		var o georef.Option
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) ListProvinces(ctx context.Context) ([]georef.Option, error) {
	return s.listOptions(ctx, `SELECT id, name FROM geo_provinces ORDER BY id`)
}

func (s *Store) ListCities(ctx context.Context, provinceID int64) ([]georef.Option, error) {
	return s.listOptions(ctx, `SELECT id, name FROM geo_cities WHERE province_id=$1 ORDER BY id`, provinceID)
}

func (s *Store) ListDistricts(ctx context.Context, cityID int64) ([]georef.Option, error) {
	return s.listOptions(ctx, `SELECT id, name FROM geo_districts WHERE city_id=$1 ORDER BY id`, cityID)
}

func (s *Store) getEntity(ctx context.Context, q string, id int64) (*georef.Entity, error) {
	var e georef.Entity
	err := s.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Name, &e.Code, &e.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) GetProvince(ctx context.Context, id int64) (*georef.Entity, error) {
	return s.getEntity(ctx, `SELECT id, name, code, 0 FROM geo_provinces WHERE id=$1`, id)
}

func (s *Store) GetCity(ctx context.Context, id int64) (*georef.Entity, error) {
	return s.getEntity(ctx, `SELECT id, name, code, province_id FROM geo_cities WHERE id=$1`, id)
}

func (s *Store) GetDistrict(ctx context.Context, id int64) (*georef.Entity, error) {
	return s.getEntity(ctx, `SELECT id, name, code, city_id FROM geo_districts WHERE id=$1`, id)
}

// UpsertProvince：省份按名称匹配，已有记录（含种子数据）保留原代码
func (s *Store) UpsertProvince(ctx context.Context, name, code string) (int64, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO geo_provinces(name, code) VALUES($1, $2) ON CONFLICT DO NOTHING`, name, code); err != nil {
		return 0, err
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM geo_provinces WHERE name=$1 OR code=$2 ORDER BY (name=$1) DESC LIMIT 1`, name, code).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("province %s: %w", name, err)
	}
	return id, nil
}

func (s *Store) UpsertCity(ctx context.Context, provinceID int64, name, code string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO geo_cities(name, code, province_id) VALUES($1, $2, $3)
        ON CONFLICT (code) DO UPDATE SET name=EXCLUDED.name, province_id=EXCLUDED.province_id
        RETURNING id`, name, code, provinceID).Scan(&id)
	return id, err
}

func (s *Store) UpsertDistrict(ctx context.Context, cityID int64, name, code string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO geo_districts(name, code, city_id) VALUES($1, $2, $3)
        ON CONFLICT (code) DO UPDATE SET name=EXCLUDED.name, city_id=EXCLUDED.city_id
        RETURNING id`, name, code, cityID).Scan(&id)
	return id, err
}
