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

const registrationColumns = `id, event_name, event_date, location, province, city, district,
        event_type, registration_status, registration_date, registration_fee, draw_date,
        transport, accommodation, notes, created_at, updated_at`

func scanRegistration(sc scanner) (marathon.Registration, error) {
	var r marathon.Registration
	var typ, status string
	var regDate, drawDate sql.NullTime
	var fee sql.NullFloat64
	var transport, accommodation sql.NullString
	err := sc.Scan(&r.ID, &r.EventName, &r.EventDate, &r.Location, &r.Province, &r.City, &r.District,
		&typ, &status, &regDate, &fee, &drawDate, &transport, &accommodation, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	r.EventType = marathon.EventType(typ)
	r.RegistrationStatus = marathon.RegistrationStatus(status)
	r.RegistrationDate = timePtr(regDate)
	r.DrawDate = timePtr(drawDate)
	if fee.Valid {
		v := fee.Float64
		r.RegistrationFee = &v
	}
	r.Transport = bookingPtr(transport)
	r.Accommodation = bookingPtr(accommodation)
	return r, err
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func bookingPtr(s sql.NullString) *marathon.Booking {
	if !s.Valid || s.String == "" {
		return nil
	}
	b := marathon.Booking(s.String)
	return &b
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullBooking(b *marathon.Booking) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*b), Valid: true}
}

// ListRegistrations：按赛事日期升序（最近的在前）
func (s *Store) ListRegistrations(ctx context.Context, f marathon.RegistrationFilter) ([]marathon.Registration, error) {
	var where []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("registration_status=$%d", len(args)))
	}
	if f.EventType != "" {
		args = append(args, string(f.EventType))
		where = append(where, fmt.Sprintf("event_type=$%d", len(args)))
	}
	q := `SELECT ` + registrationColumns + ` FROM marathon_registrations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY event_date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []marathon.Registration{}
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetRegistration(ctx context.Context, id int64) (*marathon.Registration, error) {
	r, err := scanRegistration(s.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM marathon_registrations WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) CreateRegistration(ctx context.Context, r *marathon.Registration) error {
	return s.db.QueryRowContext(ctx, `INSERT INTO marathon_registrations(event_name, event_date, location,
            province, city, district, event_type, registration_status, registration_date, registration_fee,
            draw_date, transport, accommodation, notes, created_at, updated_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id`,
		r.EventName, r.EventDate, r.Location, r.Province, r.City, r.District,
		string(r.EventType), string(r.RegistrationStatus), nullTime(r.RegistrationDate), nullFloat(r.RegistrationFee),
		nullTime(r.DrawDate), nullBooking(r.Transport), nullBooking(r.Accommodation), r.Notes, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
}

func (s *Store) UpdateRegistration(ctx context.Context, r *marathon.Registration) error {
	return mustAffect(s.db.ExecContext(ctx, `UPDATE marathon_registrations SET event_name=$2, event_date=$3,
            location=$4, province=$5, city=$6, district=$7, event_type=$8, registration_status=$9,
            registration_date=$10, registration_fee=$11, draw_date=$12, transport=$13, accommodation=$14,
            notes=$15, updated_at=$16
        WHERE id=$1`,
		r.ID, r.EventName, r.EventDate, r.Location, r.Province, r.City, r.District,
		string(r.EventType), string(r.RegistrationStatus), nullTime(r.RegistrationDate), nullFloat(r.RegistrationFee),
		nullTime(r.DrawDate), nullBooking(r.Transport), nullBooking(r.Accommodation), r.Notes, r.UpdatedAt,
	))
}

func (s *Store) DeleteRegistration(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM marathon_registrations WHERE id=$1`, id))
}

func (s *Store) UpdateRegistrationLocation(ctx context.Context, id int64, loc geo.Location) error {
	return mustAffect(s.db.ExecContext(ctx,
		`UPDATE marathon_registrations SET province=$2, city=$3, district=$4 WHERE id=$1`,
		id, loc.Province, loc.City, loc.District))
}
