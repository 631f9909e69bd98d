// Package publicrange 实现公开区间比较证明（工具类证明）
//
// 证明隐藏票据价值 k_orig 与公开整数 pc 之间的比较关系，借助辅助票据 k_util：
//
//	isGreaterOrEqual = 1:  k_orig - k_util = pc      （k_orig >= pc）
//	isGreaterOrEqual = 0:  k_orig + k_util = pc - 1  （k_orig <  pc）
//
// 票据价值的非负性由参考串的配对检查保证。工具类证明只用于验证期断言，
// 其输出永远不会驱动票据注册表的变更。
package publicrange

import (
	"context"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/group"
	"github.com/weisyn/ace/internal/core/ace/transcript"
	"github.com/weisyn/ace/internal/core/ace/validators/joinsplit"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/ace/pkg/types"
)

// Name 验证器名称
const Name = "PublicRange"

// 证明字节布局
//
//	header: [challenge, publicComparison, isGreaterOrEqual]
//	row 0:  原始票据 [kBar, aBar, γx, γy, σx, σy]
//	row 1:  辅助票据 [kBar(忽略，由验证方推导), aBar, γx, γy, σx, σy]
const (
	HeaderSize = 3 * types.WordSize
	RowSize    = 6 * types.WordSize
	ProofSize  = HeaderSize + 2*RowSize
)

var _ aceiface.ProofValidator = (*Validator)(nil)

// Row 单个票据的证明数据
type Row = joinsplit.Row

// Proof 公开区间证明的结构化表示
type Proof struct {
	Challenge        *big.Int
	PublicComparison *big.Int
	IsGreaterOrEqual bool
	Original         Row
	Utility          Row
}

// Encode 按固定布局编码
func (p *Proof) Encode() []byte {
	// 复用 join-split 的行编码，然后替换头部
	js := &joinsplit.Proof{Rows: []Row{p.Original, p.Utility}}
	body := js.Encode()[joinsplit.HeaderSize:]

	out := make([]byte, HeaderSize, ProofSize)
	if p.Challenge != nil {
		p.Challenge.FillBytes(out[0:32])
	}
	if p.PublicComparison != nil {
		p.PublicComparison.FillBytes(out[32:64])
	}
	if p.IsGreaterOrEqual {
		out[95] = 1
	}
	return append(out, body...)
}

// Validator 公开区间验证器
type Validator struct {
	logger log.Logger
}

// New 创建验证器
func New(logger log.Logger) *Validator {
	return &Validator{logger: logger}
}

// Name 实现 ProofValidator
func (v *Validator) Name() string {
	return Name
}

type note struct {
	kBar  *big.Int
	aBar  *big.Int
	gamma bn254.G1Affine
	sigma bn254.G1Affine
	raw   types.Note
}

// Validate 实现 ProofValidator
func (v *Validator) Validate(ctx context.Context, proof []byte, vctx *aceiface.ValidationContext) (types.ProofOutputs, error) {
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
	if len(proof) != ProofSize {
		return nil, types.WrapMalformedInputError("public range proof length %d, want %d", len(proof), ProofSize)
	}

	challenge := group.Reduce(new(big.Int).SetBytes(proof[0:32]))
	if challenge.Sign() == 0 {
		return nil, types.WrapInvalidScalarError("challenge is zero modulo group order", -1)
	}
	comparison, err := group.DecodeScalar(proof[32:64])
	if err != nil {
		return nil, types.WrapInvalidScalarError("public comparison not reduced", -1)
	}
	flag := new(big.Int).SetBytes(proof[64:96])
	if flag.Cmp(big.NewInt(1)) > 0 {
		return nil, types.WrapMalformedInputError("isGreaterOrEqual must be 0 or 1")
	}
	gte := flag.Sign() == 1

	notes, err := decodeNotes(proof[HeaderSize:])
	if err != nil {
		return nil, err
	}

	if err := verify(crs, vctx.Sender, challenge, comparison, gte, notes); err != nil {
		if v.logger != nil {
			v.logger.Debugf("public-range 证明验证失败: sender=%s err=%v", vctx.Sender.Hex(), err)
		}
		return nil, err
	}

	out := types.ProofOutput{
		InputNotes:  []types.Note{notes[0].raw},
		OutputNotes: []types.Note{notes[1].raw},
		PublicOwner: common.Address{},
		PublicValue: new(big.Int),
		Challenge:   challenge,
	}
	if v.logger != nil {
		v.logger.Debugf("public-range 证明验证通过: sender=%s comparison=%s gte=%t", vctx.Sender.Hex(), comparison, gte)
	}
	return types.ProofOutputs{out}, nil
}

func decodeNotes(body []byte) ([2]note, error) {
	var notes [2]note
	for i := 0; i < 2; i++ {
		row := body[i*RowSize : (i+1)*RowSize]
		kBar, err := group.DecodeScalar(row[0:32])
		if err != nil {
			return notes, types.WrapInvalidScalarError("kBar not reduced", i)
		}
		aBar, err := group.DecodeScalar(row[32:64])
		if err != nil {
			return notes, types.WrapInvalidScalarError("aBar not reduced", i)
		}
		if aBar.Sign() == 0 {
			return notes, types.WrapInvalidScalarError("aBar is zero", i)
		}
		if i == 0 && kBar.Sign() == 0 {
			return notes, types.WrapInvalidScalarError("kBar is zero", i)
		}
		gamma, err := group.DecodeG1(row[64:96], row[96:128])
		if err != nil {
			return notes, types.WrapInvalidCurvePointError("gamma: "+err.Error(), i)
		}
		sigma, err := group.DecodeG1(row[128:160], row[160:192])
		if err != nil {
			return notes, types.WrapInvalidCurvePointError("sigma: "+err.Error(), i)
		}
		notes[i] = note{kBar: kBar, aBar: aBar, gamma: gamma, sigma: sigma}
		copy(notes[i].raw.Gamma[:], row[64:128])
		copy(notes[i].raw.Sigma[:], row[128:192])
	}
	return notes, nil
}

// DeriveUtilityKBar 按比较关系推导辅助票据的 kBar
func DeriveUtilityKBar(challenge, comparison, originalKBar *big.Int, gte bool) *big.Int {
	out := new(big.Int)
	if gte {
		// kBar_u = kBar_o - c·pc
		out.Mul(challenge, comparison)
		out.Sub(originalKBar, out)
	} else {
		// kBar_u = c·(pc-1) - kBar_o
		out.Sub(comparison, big.NewInt(1))
		out.Mul(out, challenge)
		out.Sub(out, originalKBar)
	}
	return group.Reduce(out)
}

func verify(crs *group.CRS, sender common.Address, c, comparison *big.Int, gte bool, notes [2]note) error {
	notes[1].kBar = DeriveUtilityKBar(c, comparison, notes[0].kBar, gte)
	negC := new(big.Int).Sub(group.Order(), c)

	flag := uint64(0)
	if gte {
		flag = 1
	}
	tr := transcript.New().
		AppendAddress(sender).
		AppendScalar(comparison).
		AppendUint(flag)
	for i := range notes {
		tr.AppendPoint(&notes[i].gamma).AppendPoint(&notes[i].sigma)
	}
	for i := range notes {
		b := joinsplit.BlindingFactor(&notes[i].gamma, &notes[i].sigma, &crs.H, notes[i].kBar, notes[i].aBar, negC)
		if b.IsInfinity() {
			return types.WrapInvalidCurvePointError("blinding factor at infinity", i)
		}
		tr.AppendPoint(&b)
	}
	if tr.Challenge().Cmp(c) != 0 {
		return types.ErrChallengeMismatch
	}

	return joinsplit.PairingCheck(crs, c,
		[]bn254.G1Affine{notes[0].gamma, notes[1].gamma},
		[]bn254.G1Affine{notes[0].sigma, notes[1].sigma},
	)
}
