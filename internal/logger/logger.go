package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L 全局日志实例；InitLogger 之前为 slog 默认实例
var L = slog.Default()

// ParseLevel 解析日志级别，未知值返回 info 与 false
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// InitLogger 初始化全局日志；format 为 "json" 或 "text"（默认）
// 启动时加载配置后调用一次
func InitLogger(level, format string) {
	InitLoggerWithWriter(level, format, os.Stdout)
}

// InitLoggerWithWriter 同 InitLogger，输出到指定 writer
func InitLoggerWithWriter(level, format string, w io.Writer) {
	lvl, ok := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	L = slog.New(handler)
	slog.SetDefault(L)

	if !ok {
		L.Warn("invalid log level, defaulting to info", "configuredLevel", level)
	}
	L.Debug("logger initialized", "level", lvl.String(), "format", format)
}
