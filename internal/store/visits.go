package store

import (
	"context"
	"time"

	"marathon-api/internal/visitor"
)

// RecordVisit：累计、当日与省份计数在同一事务内递增
func (s *Store) RecordVisit(ctx context.Context, day time.Time, province string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `UPDATE stats_total SET total_visits=total_visits+1 WHERE id=1`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO stats_daily(day, visits) VALUES($1, 1)
        ON CONFLICT (day) DO UPDATE SET visits=stats_daily.visits+1`, day); err != nil {
		return err
	}
	if province != "" {
		if _, err := tx.ExecContext(ctx, `INSERT INTO stats_province(province, visits) VALUES($1, 1)
            ON CONFLICT (province) DO UPDATE SET visits=stats_province.visits+1`, province); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// VisitSummary：省份按访问量倒序
func (s *Store) VisitSummary(ctx context.Context, day time.Time) (visitor.Summary, error) {
	sum := visitor.Summary{Provinces: []visitor.ProvinceCount{}}
	if err := s.db.QueryRowContext(ctx, `SELECT
            COALESCE((SELECT total_visits FROM stats_total WHERE id=1), 0),
            COALESCE((SELECT visits FROM stats_daily WHERE day=$1), 0)`, day).Scan(&sum.Total, &sum.Today); err != nil {
		return sum, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT province, visits FROM stats_province ORDER BY visits DESC, province`)
	if err != nil {
		return sum, err
	}
	defer rows.Close()
	for rows.Next() {
		var pc visitor.ProvinceCount
		if err := rows.Scan(&pc.Name, &pc.Count); err != nil {
			return sum, err
		}
		sum.Provinces = append(sum.Provinces, pc)
	}
	return sum, rows.Err()
}
