package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"marathon-api/internal/apperr"
)

type memSettings struct {
	st *Settings
}

func (m *memSettings) Get(ctx context.Context) (*Settings, error) {
	if m.st == nil {
		return nil, ErrNotFound
	}
	cp := *m.st
	return &cp, nil
}

func (m *memSettings) Create(ctx context.Context, hash string, at time.Time) (*Settings, error) {
	if m.st == nil {
		m.st = &Settings{PasswordHash: hash, CreatedAt: at, UpdatedAt: at}
	}
	cp := *m.st
	return &cp, nil
}

func (m *memSettings) UpdatePassword(ctx context.Context, hash string, at time.Time) error {
	m.st.PasswordHash, m.st.UpdatedAt = hash, at
	return nil
}

func newTestService() (*Service, *memSettings, *MemorySessions) {
	repo := &memSettings{}
	sess := NewMemorySessions()
	return NewService(repo, sess, NewHasher(bcrypt.MinCost), Config{}), repo, sess
}

func TestAuthorize(t *testing.T) {
	assert.True(t, Authorize(http.MethodGet, Principal{}, ReadOnlyOrAdmin).Allow)
	assert.True(t, Authorize(http.MethodHead, Principal{}, ReadOnlyOrAdmin).Allow)
	assert.False(t, Authorize(http.MethodPost, Principal{}, ReadOnlyOrAdmin).Allow)
	assert.False(t, Authorize(http.MethodDelete, Principal{}, ReadOnlyOrAdmin).Allow)
	assert.True(t, Authorize(http.MethodPost, Principal{Admin: true}, ReadOnlyOrAdmin).Allow)

	assert.False(t, Authorize(http.MethodGet, Principal{}, RequireAdmin).Allow)
	assert.True(t, Authorize(http.MethodPut, Principal{Admin: true}, RequireAdmin).Allow)
}

func TestLogin_DefaultPasswordThenChange(t *testing.T) {
	svc, repo, sess := newTestService()
	ctx := context.Background()

	_, err := svc.Login(ctx, "")
	_, ok := apperr.AsFields(err)
	assert.True(t, ok)

	_, err = svc.Login(ctx, "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	require.NotNil(t, repo.st)
	assert.NotEqual(t, "admin123", repo.st.PasswordHash)

	tok, err := svc.Login(ctx, "admin123")
	require.NoError(t, err)
	valid, err := sess.Valid(ctx, tok)
	require.NoError(t, err)
	assert.True(t, valid)

	_, err = svc.UpdatePassword(ctx, "123")
	_, ok = apperr.AsFields(err)
	assert.True(t, ok)

	_, err = svc.UpdatePassword(ctx, "new-secret")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "admin123")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Login(ctx, "new-secret")
	require.NoError(t, err)

	_, err = svc.UpdatePassword(ctx, " secret1 ")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "secret1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Login(ctx, " secret1 ")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tok))
	valid, err = sess.Valid(ctx, tok)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestMemorySessions_Expiry(t *testing.T) {
	s := NewMemorySessions()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	tok, err := s.Create(context.Background(), time.Minute)
	require.NoError(t, err)

	ok, _ := s.Valid(context.Background(), tok)
	assert.True(t, ok)
	now = now.Add(2 * time.Minute)
	ok, _ = s.Valid(context.Background(), tok)
	assert.False(t, ok)
	ok, _ = s.Valid(context.Background(), "")
	assert.False(t, ok)
}

func TestRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisSessions(rc)
	ctx := context.Background()

	tok, err := s.Create(ctx, time.Hour)
	require.NoError(t, err)
	assert.True(t, mr.Exists("sess:"+tok))
	ok, err := s.Valid(ctx, tok)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Hour)
	ok, err = s.Valid(ctx, tok)
	require.NoError(t, err)
	assert.False(t, ok)

	tok, err = s.Create(ctx, time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, tok))
	ok, err = s.Valid(ctx, tok)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	sess := NewMemorySessions()
	authz := NewAuthorizer(sess)
	h := authz.Middleware(ReadOnlyOrAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/marathon/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/marathon/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")

	tok, err := sess.Create(context.Background(), time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/marathon/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "abc", time.Hour, true)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}
