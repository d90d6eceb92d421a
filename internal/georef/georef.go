// 包 georef：省/市/区县三级参照表，提供级联选择所需的查询
package georef

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"marathon-api/internal/logger"
	"marathon-api/internal/metrics"
)

// Option：级联下拉选项
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Entity：参照表中的一行；ParentID 对省份为 0
type Entity struct {
	ID       int64
	Name     string
	Code     string
	ParentID int64
}

// Source：参照表数据源
// 约束：列表按 id 升序；父级不存在时返回空切片而非错误；Get* 未命中返回 (nil, nil)。
type Source interface {
	ListProvinces(ctx context.Context) ([]Option, error)
	ListCities(ctx context.Context, provinceID int64) ([]Option, error)
	ListDistricts(ctx context.Context, cityID int64) ([]Option, error)
	GetProvince(ctx context.Context, id int64) (*Entity, error)
	GetCity(ctx context.Context, id int64) (*Entity, error)
	GetDistrict(ctx context.Context, id int64) (*Entity, error)
}

const keyPrefix = "geo:"

// Service：参照表查询入口，列表结果可选缓存到 Redis
// 背景：参照表几乎只读，管理后台每次级联选择都会查询，缓存可避免重复访问数据库。
// 约束：rc 为 nil 时不缓存；缓存读写失败只记录日志，回退到数据源。
type Service struct {
	src Source
	rc  *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func New(src Source, rc *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{src: src, rc: rc, ttl: ttl, log: logger.With("georef")}
}

// ListProvinces：全部省份，按 id 升序
func (s *Service) ListProvinces(ctx context.Context) ([]Option, error) {
	return s.cached(ctx, keyPrefix+"provinces", func() ([]Option, error) {
		return s.src.ListProvinces(ctx)
	})
}

// ListCities：指定省份下的城市；省份不存在或非法 id 时返回空列表
func (s *Service) ListCities(ctx context.Context, provinceID int64) ([]Option, error) {
	if provinceID <= 0 {
		return []Option{}, nil
	}
	return s.cached(ctx, fmt.Sprintf("%scities:%d", keyPrefix, provinceID), func() ([]Option, error) {
		return s.src.ListCities(ctx, provinceID)
	})
}

// ListDistricts：指定城市下的区县；城市不存在或非法 id 时返回空列表
func (s *Service) ListDistricts(ctx context.Context, cityID int64) ([]Option, error) {
	if cityID <= 0 {
		return []Option{}, nil
	}
	return s.cached(ctx, fmt.Sprintf("%sdistricts:%d", keyPrefix, cityID), func() ([]Option, error) {
		return s.src.ListDistricts(ctx, cityID)
	})
}

func (s *Service) Province(ctx context.Context, id int64) (Entity, bool, error) {
	return get(ctx, id, s.src.GetProvince)
}

func (s *Service) City(ctx context.Context, id int64) (Entity, bool, error) {
	return get(ctx, id, s.src.GetCity)
}

func (s *Service) District(ctx context.Context, id int64) (Entity, bool, error) {
	return get(ctx, id, s.src.GetDistrict)
}

func get(ctx context.Context, id int64, fn func(context.Context, int64) (*Entity, error)) (Entity, bool, error) {
	if id <= 0 {
		return Entity{}, false, nil
	}
	e, err := fn(ctx, id)
	if err != nil || e == nil {
		return Entity{}, false, err
	}
	return *e, true, nil
}

// Invalidate：清空参照表缓存，导入新数据后调用
func (s *Service) Invalidate(ctx context.Context) error {
	if s.rc == nil {
		return nil
	}
	var keys []string
	iter := s.rc.Scan(ctx, 0, keyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	s.log.Info("geo_cache_invalidate", "keys", len(keys))
	return s.rc.Del(ctx, keys...).Err()
}

func (s *Service) cached(ctx context.Context, key string, load func() ([]Option, error)) ([]Option, error) {
	if s.rc != nil {
		b, err := s.rc.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var out []Option
			if jerr := json.Unmarshal(b, &out); jerr == nil {
				metrics.GeoCacheHitsTotal.Inc()
				return nonNil(out), nil
			}
		case !errors.Is(err, redis.Nil):
			s.log.Debug("geo_cache_get_error", "key", key, "err", err)
		}
		metrics.GeoCacheMissesTotal.Inc()
	}
	out, err := load()
	if err != nil {
		return nil, err
	}
	out = nonNil(out)
	if s.rc != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := s.rc.Set(ctx, key, b, s.ttl).Err(); err != nil {
				s.log.Debug("geo_cache_set_error", "key", key, "err", err)
			}
		}
	}
	return out, nil
}

func nonNil(in []Option) []Option {
	if in == nil {
		return []Option{}
	}
	return in
}
