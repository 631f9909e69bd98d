package testutil

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
)

// NewTestLogger 返回不输出任何内容的日志器
func NewTestLogger() log.Logger {
	return &MockLogger{}
}

// MockLogger 空实现日志器
type MockLogger struct{}

func (m *MockLogger) Debug(msg string)                          {}
func (m *MockLogger) Debugf(format string, args ...interface{}) {}
func (m *MockLogger) Info(msg string)                           {}
func (m *MockLogger) Infof(format string, args ...interface{})  {}
func (m *MockLogger) Warn(msg string)                           {}
func (m *MockLogger) Warnf(format string, args ...interface{})  {}
func (m *MockLogger) Error(msg string)                          {}
func (m *MockLogger) Errorf(format string, args ...interface{}) {}
func (m *MockLogger) Fatal(msg string)                          {}
func (m *MockLogger) Fatalf(format string, args ...interface{}) {}
func (m *MockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *MockLogger) Sync() error                               { return nil }
func (m *MockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// RecordingLogger 记录 Warn 及以上级别的日志，用于断言拒绝原因被记录
type RecordingLogger struct {
	MockLogger
	mu      sync.Mutex
	entries []string
}

func (r *RecordingLogger) record(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, level+": "+msg)
}

func (r *RecordingLogger) Warn(msg string) { r.record("WARN", msg) }
func (r *RecordingLogger) Warnf(format string, args ...interface{}) {
	r.record("WARN", fmt.Sprintf(format, args...))
}
func (r *RecordingLogger) Error(msg string) { r.record("ERROR", msg) }
func (r *RecordingLogger) Errorf(format string, args ...interface{}) {
	r.record("ERROR", fmt.Sprintf(format, args...))
}
func (r *RecordingLogger) With(args ...interface{}) log.Logger { return r }

// Contains 是否存在包含 substr 的日志
func (r *RecordingLogger) Contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
