package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marathon-api/internal/apperr"
	"marathon-api/internal/georef"
	"marathon-api/internal/marathon"
	"marathon-api/internal/moments"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return AttachDB(db), mock
}

func TestListCities(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM geo_cities WHERE province_id=$1 ORDER BY id")).
		WithArgs(int64(23)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "成都市").AddRow(2, "自贡市"))

	got, err := s.ListCities(context.Background(), 23)
	require.NoError(t, err)
	assert.Equal(t, []georef.Option{{ID: 1, Name: "成都市"}, {ID: 2, Name: "自贡市"}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDistricts_EmptyIsNonNil(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM geo_districts").WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	got, err := s.ListDistricts(context.Background(), 999)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetProvince_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM geo_provinces WHERE id").WithArgs(int64(77)).WillReturnError(sql.ErrNoRows)

	got, err := s.GetProvince(context.Background(), 77)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertProvince_KeepsSeededRow(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO geo_provinces(name, code)")).
		WithArgs("四川省", "51").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM geo_provinces").WithArgs("四川省", "51").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(23))

	id, err := s.UpsertProvince(context.Background(), "四川省", "51")
	require.NoError(t, err)
	assert.Equal(t, int64(23), id)
}

func eventRow(id int64, province string, ref any) *sqlmock.Rows {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "event_name", "event_date", "location", "province", "city", "district",
		"province_ref", "city_ref", "district_ref", "event_type", "finish_time", "pace", "certificate",
		"description", "event_log", "created_at", "updated_at"}).
		AddRow(id, "南宁马拉松", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), "南宁", province, "", "",
			ref, nil, nil, "half", "1:45:00", "05:00", "", "", "", now, now)
}

func TestListEvents_Filter(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE province=$1 AND event_type=$2 AND EXTRACT(YEAR FROM event_date)=$3 ORDER BY event_date DESC")).
		WithArgs("广西壮族自治区", "half", 2024).
		WillReturnRows(eventRow(5, "广西壮族自治区", int64(20)))

	got, err := s.ListEvents(context.Background(), marathon.EventFilter{Province: "广西壮族自治区", EventType: marathon.TypeHalf, Year: 2024})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, marathon.TypeHalf, got[0].EventType)
	require.NotNil(t, got[0].ProvinceRef)
	assert.Equal(t, int64(20), *got[0].ProvinceRef)
	assert.Nil(t, got[0].CityRef)
}

func TestGetEvent_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM marathons WHERE id").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)
	_, err := s.GetEvent(context.Background(), 9)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateEvent(t *testing.T) {
	s, mock := newMock(t)
	ref := int64(20)
	e := &marathon.Event{EventName: "南宁马拉松", Province: "广西壮族自治区", ProvinceRef: &ref, EventType: marathon.TypeFull}
	mock.ExpectQuery("INSERT INTO marathons").
		WithArgs(e.EventName, sqlmock.AnyArg(), "", "广西壮族自治区", "", "",
			sql.NullInt64{Int64: 20, Valid: true}, sql.NullInt64{}, sql.NullInt64{}, "full",
			"", "", "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	require.NoError(t, s.CreateEvent(context.Background(), e))
	assert.Equal(t, int64(42), e.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEvent_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("DELETE FROM marathons").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.DeleteEvent(context.Background(), 3), apperr.ErrNotFound)
}

func TestGetRegistration_Nullables(t *testing.T) {
	s, mock := newMock(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM marathon_registrations WHERE id").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_name", "event_date", "location", "province", "city",
			"district", "event_type", "registration_status", "registration_date", "registration_fee", "draw_date",
			"transport", "accommodation", "notes", "created_at", "updated_at"}).
			AddRow(1, "北京马拉松", now, "北京", "北京市", "", "", "full", "won", nil, []byte("150.50"), now,
				"booked", nil, "", now, now))

	r, err := s.GetRegistration(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, marathon.StatusWon, r.RegistrationStatus)
	assert.Nil(t, r.RegistrationDate)
	require.NotNil(t, r.DrawDate)
	require.NotNil(t, r.RegistrationFee)
	assert.InDelta(t, 150.5, *r.RegistrationFee, 1e-9)
	require.NotNil(t, r.Transport)
	assert.Equal(t, marathon.BookingBooked, *r.Transport)
	assert.Nil(t, r.Accommodation)
}

func TestCreatePost_Transaction(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()
	p := &moments.Post{Content: "hi", Tags: "a", CreatedAt: now, UpdatedAt: now, Media: []moments.Media{
		{MediaType: moments.MediaImage, File: "posts/a.png", Order: 0, CreatedAt: now},
		{MediaType: moments.MediaVideo, File: "posts/b.mp4", Order: 1, CreatedAt: now},
	}}
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO moments_posts").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("INSERT INTO moments_media").WithArgs(int64(7), "image", "posts/a.png", 0, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(70))
	mock.ExpectQuery("INSERT INTO moments_media").WithArgs(int64(7), "video", "posts/b.mp4", 1, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(71))
	mock.ExpectCommit()

	require.NoError(t, s.CreatePost(context.Background(), p))
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, int64(71), p.Media[1].ID)
	assert.Equal(t, int64(7), p.Media[1].PostID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePost_RollbackOnMediaError(t *testing.T) {
	s, mock := newMock(t)
	p := &moments.Post{Media: []moments.Media{{MediaType: moments.MediaImage, File: "x.png"}}}
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO moments_posts").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectQuery("INSERT INTO moments_media").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.CreatePost(context.Background(), p)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPosts_SearchAndPaging(t *testing.T) {
	s, mock := newMock(t)
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
	f := moments.Filter{Search: "50%", StartDate: &start, EndDate: &end, Page: 2, PageSize: 10}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM moments_posts WHERE (content ILIKE $1 OR tags ILIKE $1) AND created_at >= $2 AND created_at < $3")).
		WithArgs(`%50\%%`, start, end.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $4 OFFSET $5")).
		WithArgs(`%50\%%`, start, end.AddDate(0, 0, 1), 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "is_pinned", "tags", "created_at", "updated_at"}).
			AddRow(3, "跑了50%", false, "", start, start))
	mock.ExpectQuery("FROM moments_media").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "media_type", "file", "sort_order", "created_at"}).
			AddRow(30, 3, "image", "posts/x.png", 0, start))

	posts, total, err := s.ListPosts(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, posts, 1)
	require.Len(t, posts[0].Media, 1)
	assert.Equal(t, moments.MediaImage, posts[0].Media[0].MediaType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminSettings_CreateKeepsExisting(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()
	mock.ExpectExec("INSERT INTO admin_settings").WithArgs("hash", now).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT admin_password").
		WillReturnRows(sqlmock.NewRows([]string{"admin_password", "created_at", "updated_at"}).AddRow("old", now, now))

	st, err := s.AdminSettings().Create(context.Background(), "hash", now)
	require.NoError(t, err)
	assert.Equal(t, "old", st.PasswordHash)

	mock.ExpectQuery("SELECT admin_password").WillReturnError(sql.ErrNoRows)
	_, err = s.AdminSettings().Get(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecordVisit(t *testing.T) {
	s, mock := newMock(t)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE stats_total").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO stats_daily").WithArgs(day).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO stats_province").WithArgs("四川省").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, s.RecordVisit(context.Background(), day, "四川省"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE stats_total").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO stats_daily").WithArgs(day).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, s.RecordVisit(context.Background(), day, ""))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitSummary(t *testing.T) {
	s, mock := newMock(t)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT total_visits").WithArgs(day).
		WillReturnRows(sqlmock.NewRows([]string{"total", "today"}).AddRow(10, 3))
	mock.ExpectQuery("FROM stats_province").
		WillReturnRows(sqlmock.NewRows([]string{"province", "visits"}).AddRow("四川省", 6).AddRow("广东省", 2))

	sum, err := s.VisitSummary(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum.Total)
	assert.Equal(t, int64(3), sum.Today)
	require.Len(t, sum.Provinces, 2)
	assert.Equal(t, "四川省", sum.Provinces[0].Name)
}
