package joinsplit

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/group"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/ace/pkg/types"
)

// 供应量调整验证器名称
const (
	MintName = "JoinSplitFluid.Mint"
	BurnName = "JoinSplitFluid.Burn"
)

// FluidRole 供应量调整的方向
type FluidRole uint8

const (
	// RoleMint 新票据进入流通
	RoleMint FluidRole = 1
	// RoleBurn 票据退出流通
	RoleBurn FluidRole = 2
)

// FluidHeaderSize 供应量证明在 join-split 编码前的标志字
const FluidHeaderSize = types.WordSize

// FluidDomain transcript 的首个元素，绑定调整方向与是否携带旧累计量票据
func FluidDomain(role FluidRole, hasOldTotal bool) uint64 {
	d := uint64(role) << 1
	if hasOldTotal {
		d |= 1
	}
	return d
}

// FluidProof 供应量调整证明
//
// 票据顺序为 [新累计量, 旧累计量(可选), 调整票据...]，新累计量是唯一的输入侧票据，
// 因此证明的关系是 新累计量 = 旧累计量 + Σ调整票据。公开价值与公开所有者必须为零。
type FluidProof struct {
	HasOldTotal bool
	Proof       *Proof
}

// Encode 编码为 [flags] ‖ join-split 编码
func (p *FluidProof) Encode() []byte {
	body := p.Proof.Encode()
	out := make([]byte, FluidHeaderSize, FluidHeaderSize+len(body))
	if p.HasOldTotal {
		out[FluidHeaderSize-1] = 1
	}
	return append(out, body...)
}

var _ aceiface.ProofValidator = (*FluidValidator)(nil)

// FluidValidator 铸造与销毁证明验证器
//
// 输出固定两项：
//
//	outputs[0]: 累计量迁移，输入为旧累计量（首次调整为空），输出为新累计量
//	outputs[1]: 铸造时为新建票据（输出侧），销毁时为被花费票据（输入侧）
type FluidValidator struct {
	role   FluidRole
	logger log.Logger
}

// NewMint 创建铸造验证器
func NewMint(logger log.Logger) *FluidValidator {
	return &FluidValidator{role: RoleMint, logger: logger}
}

// NewBurn 创建销毁验证器
func NewBurn(logger log.Logger) *FluidValidator {
	return &FluidValidator{role: RoleBurn, logger: logger}
}

// Name 实现 ProofValidator
func (v *FluidValidator) Name() string {
	if v.role == RoleBurn {
		return BurnName
	}
	return MintName
}

// Validate 实现 ProofValidator
func (v *FluidValidator) Validate(ctx context.Context, proof []byte, vctx *aceiface.ValidationContext) (types.ProofOutputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if vctx == nil {
		return nil, types.WrapMalformedInputError("missing validation context")
	}
	crs, err := group.DecodeReferenceString(vctx.ReferenceString)
	if err != nil {
		return nil, err
	}

	if len(proof) < FluidHeaderSize {
		return nil, types.WrapMalformedInputError("supply proof length %d below flag word", len(proof))
	}
	flags := new(big.Int).SetBytes(proof[:FluidHeaderSize])
	if flags.BitLen() > 1 {
		return nil, types.WrapMalformedInputError("supply proof flags %s", flags)
	}
	hasOld := flags.Sign() != 0
	body := proof[FluidHeaderSize:]

	p, n, err := decodeHeader(body)
	if err != nil {
		return nil, err
	}
	switch {
	case p.publicValue.Sign() != 0:
		return nil, types.WrapMalformedInputError("supply proofs move no public value")
	case p.publicOwner != (common.Address{}):
		return nil, types.WrapMalformedInputError("supply proofs have no public owner")
	case p.m != 1:
		return nil, types.WrapMalformedInputError("supply proof input count %d, want 1", p.m)
	}
	first := 1
	if hasOld {
		first = 2
	}
	if n <= first {
		return nil, types.WrapMalformedInputError("supply proof has %d notes, want more than %d", n, first)
	}
	if p.notes, err = decodeRows(body, n); err != nil {
		return nil, err
	}

	if err := verify(crs, vctx.Sender, p, FluidDomain(v.role, hasOld)); err != nil {
		if v.logger != nil {
			v.logger.Debugf("供应量证明验证失败: validator=%s sender=%s notes=%d err=%v", v.Name(), vctx.Sender.Hex(), n, err)
		}
		return nil, err
	}

	transition := types.ProofOutput{
		InputNotes:  []types.Note{},
		OutputNotes: []types.Note{p.notes[0].raw},
		PublicValue: new(big.Int),
		Challenge:   p.challenge,
	}
	if hasOld {
		transition.InputNotes = append(transition.InputNotes, p.notes[1].raw)
	}
	adjusted := make([]types.Note, 0, n-first)
	for _, note := range p.notes[first:] {
		adjusted = append(adjusted, note.raw)
	}
	change := types.ProofOutput{
		InputNotes:  []types.Note{},
		OutputNotes: []types.Note{},
		PublicValue: new(big.Int),
		Challenge:   p.challenge,
	}
	if v.role == RoleBurn {
		change.InputNotes = adjusted
	} else {
		change.OutputNotes = adjusted
	}

	if v.logger != nil {
		v.logger.Debugf("供应量证明验证通过: validator=%s sender=%s adjusted=%d", v.Name(), vctx.Sender.Hex(), len(adjusted))
	}
	return types.ProofOutputs{transition, change}, nil
}
