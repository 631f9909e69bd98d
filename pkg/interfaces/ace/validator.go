// Package ace 定义 ACE 引擎对外暴露的接口
package ace

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/pkg/types"
)

// ValidationContext 验证一个证明所需的调用上下文
type ValidationContext struct {
	// Sender 证明绑定的发送方，进入挑战 transcript
	Sender common.Address
	// ReferenceString 引擎当前保存的公共参考串
	ReferenceString types.ReferenceString
}

// ProofValidator 单一证明类型的验证器
//
// 验证器是无状态的纯验证组件：解析证明字节、校验代数关系并返回公开输出，
// 不修改任何注册表。新的证明类型通过注册新的实现加入，不修改分发逻辑。
type ProofValidator interface {
	// Name 验证器名称，用于派生验证器地址
	Name() string

	// Validate 验证证明并返回结构化输出；任一检查失败即整体失败
	Validate(ctx context.Context, proof []byte, vctx *ValidationContext) (types.ProofOutputs, error)
}
