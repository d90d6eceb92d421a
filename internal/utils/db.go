// 包 utils：数据库、Redis 与证书等基础设施的环境变量装配
package utils

import (
	"database/sql"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// EnvOr：读取环境变量，空值时返回默认值
func EnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// EnvDuration：接受 time.ParseDuration 格式（如 24h、90m）
func EnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func EnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// BuildPostgresDSNFromEnv：由 PG_* 环境变量拼装连接串；PG_DSN 非空时直接使用
func BuildPostgresDSNFromEnv() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	dsn := "postgres://" + EnvOr("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + EnvOr("PG_HOST", "localhost") + ":" + EnvOr("PG_PORT", "5432") +
		"/" + EnvOr("PG_DB", "marathon") + "?sslmode=" + EnvOr("PG_SSLMODE", "disable")
	return dsn
}

// OpenPostgresFromEnv：打开连接池
// 约束：sql.Open 不建立连接，调用方需自行 Ping；连接数默认 20/10，个人站点足够。
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(EnvInt("PG_MAX_OPEN_CONNS", 20))
	db.SetMaxIdleConns(EnvInt("PG_MAX_IDLE_CONNS", 10))
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
