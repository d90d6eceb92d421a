package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"marathon-api/internal/geo"
	"marathon-api/internal/marathon"
)

const eventColumns = `id, event_name, event_date, location, province, city, district,
        province_ref, city_ref, district_ref, event_type, finish_time, pace, certificate,
        description, event_log, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (marathon.Event, error) {
	var e marathon.Event
	var pref, cref, dref sql.NullInt64
	var typ string
	err := sc.Scan(&e.ID, &e.EventName, &e.EventDate, &e.Location, &e.Province, &e.City, &e.District,
		&pref, &cref, &dref, &typ, &e.FinishTime, &e.Pace, &e.Certificate,
		&e.Description, &e.EventLog, &e.CreatedAt, &e.UpdatedAt)
	e.ProvinceRef, e.CityRef, e.DistrictRef = intPtr(pref), intPtr(cref), intPtr(dref)
	e.EventType = marathon.EventType(typ)
	return e, err
}

// ListEvents：按赛事日期倒序
func (s *Store) ListEvents(ctx context.Context, f marathon.EventFilter) ([]marathon.Event, error) {
	var where []string
	var args []any
	if f.Province != "" {
		args = append(args, f.Province)
		where = append(where, fmt.Sprintf("province=$%d", len(args)))
	}
	if f.EventType != "" {
		args = append(args, string(f.EventType))
		where = append(where, fmt.Sprintf("event_type=$%d", len(args)))
	}
	if f.Year > 0 {
		args = append(args, f.Year)
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM event_date)=$%d", len(args)))
	}
	q := `SELECT ` + eventColumns + ` FROM marathons`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY event_date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []marathon.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEvent(ctx context.Context, id int64) (*marathon.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM marathons WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *marathon.Event) error {
	return s.db.QueryRowContext(ctx, `INSERT INTO marathons(event_name, event_date, location, province, city, district,
            province_ref, city_ref, district_ref, event_type, finish_time, pace, certificate,
            description, event_log, created_at, updated_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING id`,
		e.EventName, e.EventDate, e.Location, e.Province, e.City, e.District,
		nullInt(e.ProvinceRef), nullInt(e.CityRef), nullInt(e.DistrictRef), string(e.EventType),
		e.FinishTime, e.Pace, e.Certificate, e.Description, e.EventLog, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

// UpdateEvent：证书字段单独维护，不在此更新
func (s *Store) UpdateEvent(ctx context.Context, e *marathon.Event) error {
	return mustAffect(s.db.ExecContext(ctx, `UPDATE marathons SET event_name=$2, event_date=$3, location=$4,
            province=$5, city=$6, district=$7, province_ref=$8, city_ref=$9, district_ref=$10,
            event_type=$11, finish_time=$12, pace=$13, description=$14, event_log=$15, updated_at=$16
        WHERE id=$1`,
		e.ID, e.EventName, e.EventDate, e.Location, e.Province, e.City, e.District,
		nullInt(e.ProvinceRef), nullInt(e.CityRef), nullInt(e.DistrictRef), string(e.EventType),
		e.FinishTime, e.Pace, e.Description, e.EventLog, e.UpdatedAt,
	))
}

func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM marathons WHERE id=$1`, id))
}

func (s *Store) SetCertificate(ctx context.Context, id int64, path string, updatedAt time.Time) error {
	return mustAffect(s.db.ExecContext(ctx,
		`UPDATE marathons SET certificate=$2, updated_at=$3 WHERE id=$1`, id, path, updatedAt))
}

// UpdateEventLocation：批处理命令回写地名，不修改 updated_at
func (s *Store) UpdateEventLocation(ctx context.Context, id int64, loc geo.Location) error {
	return mustAffect(s.db.ExecContext(ctx,
		`UPDATE marathons SET province=$2, city=$3, district=$4 WHERE id=$1`, id, loc.Province, loc.City, loc.District))
}

func (s *Store) UpdateEventPace(ctx context.Context, id int64, pace string) error {
	return mustAffect(s.db.ExecContext(ctx, `UPDATE marathons SET pace=$2 WHERE id=$1`, id, pace))
}
