// Package joinsplit 实现 join-split 证明验证器
//
// 证明断言：输入票据价值之和 = 输出票据价值之和 + 公开价值，且不泄露任何票据价值。
// 票据 (γ, σ) 满足 σ = γ^k · h^a。对每个票据重建盲化点：
//
//	输入票据: B = γ^kBar · h^aBar · σ^(-c)
//	输出票据: B = γ^kBar · h^aBar · σ^(+c)
//
// 最后一个票据的 kBar 由验证方按平衡关系推导：kBar_last = c·kPublic - Σ kBar_i。
// 挑战值 c 为 transcript [sender, kPublic, m, publicOwner, notes, blindingFactors]
// 的哈希对群阶取模。最后以批量配对检查确认票据由可信参考串构造。
package joinsplit

import (
	"context"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/ace/internal/core/ace/group"
	"github.com/weisyn/ace/internal/core/ace/transcript"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/ace/pkg/types"
)

// Name 验证器名称
const Name = "JoinSplit"

var _ aceiface.ProofValidator = (*Validator)(nil)

// Validator join-split 验证器
//
// 验证器不持有参考串：每次验证使用引擎当前保存的参考串，更换参考串即时生效。
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

	p, n, err := decodeHeader(proof)
	if err != nil {
		return nil, err
	}
	if p.notes, err = decodeRows(proof, n); err != nil {
		return nil, err
	}

	if err := verify(crs, vctx.Sender, p, 0); err != nil {
		if v.logger != nil {
			v.logger.Debugf("join-split 证明验证失败: sender=%s notes=%d err=%v", vctx.Sender.Hex(), n, err)
		}
		return nil, err
	}

	out := types.ProofOutput{
		InputNotes:  make([]types.Note, 0, p.m),
		OutputNotes: make([]types.Note, 0, n-p.m),
		PublicOwner: p.publicOwner,
		PublicValue: p.publicValue,
		Challenge:   p.challenge,
	}
	for i, note := range p.notes {
		if i < p.m {
			out.InputNotes = append(out.InputNotes, note.raw)
		} else {
			out.OutputNotes = append(out.OutputNotes, note.raw)
		}
	}

	if v.logger != nil {
		v.logger.Debugf("join-split 证明验证通过: sender=%s inputs=%d outputs=%d publicValue=%s",
			vctx.Sender.Hex(), len(out.InputNotes), len(out.OutputNotes), p.publicValue)
	}
	return types.ProofOutputs{out}, nil
}

// verify 检查挑战值与配对关系；domain 非零时作为 transcript 的第一个元素
func verify(crs *group.CRS, sender common.Address, p *decodedProof, domain uint64) error {
	order := group.Order()
	c := p.challenge
	negC := new(big.Int).Sub(order, c)
	kPublic := group.Reduce(p.publicValue)

	// 推导最后一个票据的 kBar
	last := len(p.notes) - 1
	sum := new(big.Int)
	for i := 0; i < last; i++ {
		sum.Add(sum, p.notes[i].kBar)
	}
	derived := new(big.Int).Mul(c, kPublic)
	derived.Sub(derived, sum)
	p.notes[last].kBar = group.Reduce(derived)

	tr := transcript.New()
	if domain != 0 {
		tr.AppendUint(domain)
	}
	tr.AppendAddress(sender).
		AppendScalar(kPublic).
		AppendUint(uint64(p.m)).
		AppendAddress(p.publicOwner)
	for i := range p.notes {
		tr.AppendPoint(&p.notes[i].gamma).AppendPoint(&p.notes[i].sigma)
	}

	for i := range p.notes {
		note := &p.notes[i]
		exp := c
		if i < p.m {
			exp = negC
		}
		b := BlindingFactor(&note.gamma, &note.sigma, &crs.H, note.kBar, note.aBar, exp)
		if b.IsInfinity() {
			return types.WrapInvalidCurvePointError("blinding factor at infinity", i)
		}
		tr.AppendPoint(&b)
	}

	if tr.Challenge().Cmp(c) != 0 {
		return types.ErrChallengeMismatch
	}

	gammas := make([]bn254.G1Affine, len(p.notes))
	sigmas := make([]bn254.G1Affine, len(p.notes))
	for i := range p.notes {
		gammas[i] = p.notes[i].gamma
		sigmas[i] = p.notes[i].sigma
	}
	return PairingCheck(crs, c, gammas, sigmas)
}

// BlindingFactor 计算 γ^kBar · h^aBar · σ^exp
func BlindingFactor(gamma, sigma, h *bn254.G1Affine, kBar, aBar, exp *big.Int) bn254.G1Affine {
	return group.MultiExp(
		[]bn254.G1Affine{*gamma, *h, *sigma},
		[]*big.Int{kBar, aBar, exp},
	)
}

// PairingCheck 批量检查 e(Σ xᵢγᵢ, T2) = e(Σ xᵢσᵢ, g2)，权重由挑战值派生
func PairingCheck(crs *group.CRS, challenge *big.Int, gammas, sigmas []bn254.G1Affine) error {
	weights := make([]*big.Int, len(gammas))
	seed := challenge.FillBytes(make([]byte, types.WordSize))
	for i := range weights {
		idx := new(big.Int).SetInt64(int64(i)).FillBytes(make([]byte, types.WordSize))
		x := group.Reduce(new(big.Int).SetBytes(crypto.Keccak256(seed, idx)))
		if x.Sign() == 0 {
			x.SetInt64(1)
		}
		weights[i] = x
	}

	gammaAcc := group.MultiExp(gammas, weights)
	sigmaAcc := group.MultiExp(sigmas, weights)
	negSigma := group.Neg(&sigmaAcc)

	ok, err := group.PairingCheck(
		[]bn254.G1Affine{gammaAcc, negSigma},
		[]bn254.G2Affine{crs.T2, group.G2Generator()},
	)
	if err != nil {
		return types.WrapMalformedInputError("pairing: %v", err)
	}
	if !ok {
		return types.ErrPairingCheckFailed
	}
	return nil
}
