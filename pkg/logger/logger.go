// Package logger 基于log/slog构建全局日志
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options 日志选项
type Options struct {
	Level  string // debug | info | warn | error
	Format string // text | json
	Output string // stdout | stderr | 文件路径
}

// New 创建Logger，返回的closer用于关闭日志文件
func New(opts Options) (*slog.Logger, func() error, error) {
	w, closer, err := openOutput(opts.Output)
	if err != nil {
		return nil, nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel 未知级别按info处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch output {
	case "", "stdout":
		return os.Stdout, noop, nil
	case "stderr":
		return os.Stderr, noop, nil
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f, f.Close, nil
}
