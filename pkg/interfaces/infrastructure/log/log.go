// Package log 定义日志记录接口
//
// 所有模块通过该接口记录日志，实现由 internal/core/infrastructure/log 基于 zap 提供。
package log

import "go.uber.org/zap"

// Logger 定义日志记录器接口
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})

	Info(msg string)
	Infof(format string, args ...interface{})

	Warn(msg string)
	Warnf(format string, args ...interface{})

	Error(msg string)
	Errorf(format string, args ...interface{})

	// Fatal 记录日志后退出进程
	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With 返回带有额外键值字段的Logger，参数按 key1, value1, key2, value2 给出
	With(args ...interface{}) Logger

	// Sync 同步日志缓冲区到输出
	Sync() error

	// GetZapLogger 获取原始的zap日志记录器
	GetZapLogger() *zap.Logger
}
