package admin

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore：管理员会话
// 约束：token 为不透明随机串；Valid 对空串、过期或不存在的 token 返回 false。
type SessionStore interface {
	Create(ctx context.Context, ttl time.Duration) (string, error)
	Valid(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

const tokenBytes = 32

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RedisSessions：sess:<token> -> "admin"，带 TTL
type RedisSessions struct {
	rc     *redis.Client
	prefix string
}

func NewRedisSessions(rc *redis.Client) *RedisSessions {
	return &RedisSessions{rc: rc, prefix: "sess:"}
}

func (s *RedisSessions) Create(ctx context.Context, ttl time.Duration) (string, error) {
	tok, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.rc.Set(ctx, s.prefix+tok, "admin", ttl).Err(); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *RedisSessions) Valid(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	v, err := s.rc.Get(ctx, s.prefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "admin", nil
}

func (s *RedisSessions) Delete(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.rc.Del(ctx, s.prefix+token).Err()
}

// MemorySessions：未配置 Redis 时使用，进程重启后会话失效
type MemorySessions struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{expires: map[string]time.Time{}, now: time.Now}
}

func (s *MemorySessions) Create(ctx context.Context, ttl time.Duration) (string, error) {
	tok, err := newToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, k)
		}
	}
	s.expires[tok] = now.Add(ttl)
	return tok, nil
}

func (s *MemorySessions) Valid(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.expires, token)
		return false, nil
	}
	return true, nil
}

func (s *MemorySessions) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.expires, token)
	s.mu.Unlock()
	return nil
}
