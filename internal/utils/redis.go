package utils

import (
	"os"

	"github.com/redis/go-redis/v9"

	"marathon-api/internal/logger"
)

// OpenRedisFromEnv：从环境变量打开 Redis 客户端
// 背景：Redis 只承担地区缓存与管理员会话，缺省时服务退化为无缓存 + 进程内会话。
// 约束：REDIS_ENABLED=false 或未配置 REDIS_HOST 时返回 nil；REDIS_DB 解析失败回退到 0。
func OpenRedisFromEnv() *redis.Client {
	if os.Getenv("REDIS_ENABLED") == "false" {
		return nil
	}
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	addr := host + ":" + EnvOr("REDIS_PORT", "6379")
	db := EnvInt("REDIS_DB", 0)
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
