// Package writegate 写门闸实现
//
// 引擎在外部账本已变更而本地提交失败时进入只读，之后所有变更操作被拒绝，
// 查询照常。退出只读需要运维显式调用 ExitReadOnly。
package writegate

import (
	"context"
	"fmt"
	"sync"
	"time"

	wgif "github.com/weisyn/ace/pkg/interfaces/infrastructure/writegate"
)

// Gate 默认写门闸
type Gate struct {
	mu    sync.RWMutex
	state *readOnlyState // nil 表示可写
}

type readOnlyState struct {
	reason string
	since  time.Time
}

var _ wgif.WriteGate = (*Gate)(nil)

// New 创建可写状态的门闸
func New() *Gate {
	return &Gate{}
}

// EnterReadOnly 首次进入时记录原因与时间，重复进入不覆盖
func (g *Gate) EnterReadOnly(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == nil {
		g.state = &readOnlyState{reason: reason, since: time.Now()}
	}
}

// ExitReadOnly 恢复可写
func (g *Gate) ExitReadOnly() {
	g.mu.Lock()
	g.state = nil
	g.mu.Unlock()
}

// IsReadOnly 是否只读
func (g *Gate) IsReadOnly() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state != nil
}

// ReadOnlyReason 只读原因；可写时为空
func (g *Gate) ReadOnlyReason() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state == nil {
		return ""
	}
	return g.state.reason
}

// ReadOnlySince 进入只读的时间；可写时为零值
func (g *Gate) ReadOnlySince() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state == nil {
		return time.Time{}
	}
	return g.state.since
}

// AssertWriteAllowed 变更操作的前置检查
func (g *Gate) AssertWriteAllowed(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.RLock()
	st := g.state
	g.mu.RUnlock()
	if st != nil {
		return fmt.Errorf("%w: op=%s reason=%s since=%s",
			wgif.ErrWriteBlocked, op, st.reason, st.since.Format(time.RFC3339))
	}
	return nil
}
