// Package writegate 定义写门闸接口
//
// 只读模式用于不可自动恢复的故障（例如外部账本已变更而本地状态提交失败）。
// 进入只读后，所有变更操作在执行前被拒绝，只读操作不受影响，
// 直到运维人员核对状态后显式退出只读。
package writegate

import (
	"context"
	"errors"
	"time"
)

// ErrWriteBlocked 写操作被门闸拒绝
var ErrWriteBlocked = errors.New("write blocked")

// WriteGate 写门闸接口
type WriteGate interface {
	// EnterReadOnly 进入只读模式，reason 用于日志和错误消息
	EnterReadOnly(reason string)

	// ExitReadOnly 退出只读模式
	ExitReadOnly()

	// IsReadOnly 检查当前是否处于只读模式
	IsReadOnly() bool

	// ReadOnlyReason 返回进入只读模式的原因，不在只读模式时为空
	ReadOnlyReason() string

	// ReadOnlySince 返回进入只读模式的时间，不在只读模式时为零值
	ReadOnlySince() time.Time

	// AssertWriteAllowed 校验写操作是否允许，拒绝时返回包装 ErrWriteBlocked 的错误
	AssertWriteAllowed(ctx context.Context, op string) error
}
