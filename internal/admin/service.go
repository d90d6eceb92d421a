package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marathon-api/internal/apperr"
	"marathon-api/internal/logger"
	"marathon-api/internal/metrics"
)

var ErrNotFound = apperr.ErrNotFound

// Settings：单例管理员设置（id=1）
type Settings struct {
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SettingsRepo：Get 无记录返回 ErrNotFound；Create 已存在时不覆盖并返回现有记录
type SettingsRepo interface {
	Get(ctx context.Context) (*Settings, error)
	Create(ctx context.Context, hash string, at time.Time) (*Settings, error)
	UpdatePassword(ctx context.Context, hash string, at time.Time) error
}

type Config struct {
	DefaultPassword string
	SessionTTL      time.Duration
	MinPasswordLen  int
}

type Service struct {
	repo     SettingsRepo
	sessions SessionStore
	hasher   *Hasher
	cfg      Config
	now      func() time.Time
	log      *slog.Logger
}

func NewService(repo SettingsRepo, sessions SessionStore, hasher *Hasher, cfg Config) *Service {
	if cfg.DefaultPassword == "" {
		cfg.DefaultPassword = "admin123"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.MinPasswordLen <= 0 {
		cfg.MinPasswordLen = 6
	}
	return &Service{repo: repo, sessions: sessions, hasher: hasher, cfg: cfg, now: time.Now, log: logger.With("admin")}
}

func (s *Service) SessionTTL() time.Duration { return s.cfg.SessionTTL }

// Login：校验密码并创建会话，返回会话 token
// 背景：首次登录时若尚无设置记录，以默认密码创建。
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", apperr.Field("password", "password is required")
	}
	st, err := s.settings(ctx)
	if err != nil {
		return "", err
	}
	if !s.hasher.Match(st.PasswordHash, password) {
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		s.log.Info("admin_login_denied")
		return "", apperr.ErrUnauthorized
	}
	tok, err := s.sessions.Create(ctx, s.cfg.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.log.Info("admin_login")
	return tok, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Settings：只返回时间戳，密码哈希不出服务层
func (s *Service) Settings(ctx context.Context) (time.Time, time.Time, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return st.CreatedAt, st.UpdatedAt, nil
}

func (s *Service) UpdatePassword(ctx context.Context, password string) (time.Time, error) {
	if len([]rune(password)) < s.cfg.MinPasswordLen {
		return time.Time{}, apperr.Field("admin_password", fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordLen))
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return time.Time{}, err
	}
	if _, err := s.settings(ctx); err != nil {
		return time.Time{}, err
	}
	now := s.now()
	if err := s.repo.UpdatePassword(ctx, hash, now); err != nil {
		return time.Time{}, err
	}
	s.log.Info("admin_password_changed")
	return now, nil
}

func (s *Service) settings(ctx context.Context) (*Settings, error) {
	st, err := s.repo.Get(ctx)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := s.hasher.Hash(s.cfg.DefaultPassword)
	if err != nil {
		return nil, err
	}
	s.log.Warn("admin_default_password_created")
	return s.repo.Create(ctx, hash, s.now())
}
