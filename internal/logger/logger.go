// 包 logger：进程级日志器，按环境变量决定级别与格式，各模块通过 L() 复用同一实例
package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Setup：初始化默认日志器
// 背景：LOG_LEVEL 取 debug/info/warn/error，LOG_FORMAT=json 时输出 JSON，否则文本；
// 所有记录附带 service 字段，便于与前端日志、反向代理日志混合检索。
// 约束：输出固定为标准错误，不管理文件句柄。
func Setup() *slog.Logger {
	h := newHandler(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	defaultLogger = slog.New(h).With("service", "marathon-api")
	return defaultLogger
}

func newHandler(level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L：获取默认日志器；未初始化时按当前环境变量初始化
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}

// With：按组件名派生子日志器
func With(component string) *slog.Logger {
	return L().With("component", component)
}
