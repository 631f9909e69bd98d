package testutil

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/group"
	"github.com/weisyn/ace/internal/core/ace/transcript"
	"github.com/weisyn/ace/internal/core/ace/validators/joinsplit"
	"github.com/weisyn/ace/internal/core/ace/validators/publicrange"
)

// JoinSplitParams join-split 证明的输入
type JoinSplitParams struct {
	Sender      common.Address
	Inputs      []*Note
	Outputs     []*Note
	PublicOwner common.Address
	// PublicValue 满足 Σinputs = Σoutputs + PublicValue
	PublicValue int64
}

// ProveJoinSplit 构造诚实的 join-split 证明
//
// 盲化因子满足 Σ bk = 0，使验证方推导出的最后一个 kBar 与证明方一致。
func (s *TrustedSetup) ProveJoinSplit(p JoinSplitParams) *joinsplit.Proof {
	return s.prove(0, p)
}

// SupplyParams 铸造/销毁证明的输入
type SupplyParams struct {
	Sender   common.Address
	NewTotal *Note
	// OldTotal 首次调整时为空
	OldTotal *Note
	Adjusted []*Note
}

// ProveSupply 构造诚实的供应量调整证明，要求 NewTotal = OldTotal + ΣAdjusted
func (s *TrustedSetup) ProveSupply(role joinsplit.FluidRole, p SupplyParams) *joinsplit.FluidProof {
	outputs := make([]*Note, 0, len(p.Adjusted)+1)
	if p.OldTotal != nil {
		outputs = append(outputs, p.OldTotal)
	}
	outputs = append(outputs, p.Adjusted...)
	hasOld := p.OldTotal != nil
	proof := s.prove(joinsplit.FluidDomain(role, hasOld), JoinSplitParams{
		Sender:  p.Sender,
		Inputs:  []*Note{p.NewTotal},
		Outputs: outputs,
	})
	return &joinsplit.FluidProof{HasOldTotal: hasOld, Proof: proof}
}

func (s *TrustedSetup) prove(domain uint64, p JoinSplitParams) *joinsplit.Proof {
	notes := make([]*Note, 0, len(p.Inputs)+len(p.Outputs))
	notes = append(notes, p.Inputs...)
	notes = append(notes, p.Outputs...)
	n := len(notes)
	m := len(p.Inputs)
	if n == 0 {
		panic("join-split proof needs at least one note")
	}

	bk := make([]*big.Int, n)
	ba := make([]*big.Int, n)
	sum := new(big.Int)
	for i := 0; i < n; i++ {
		ba[i] = RandomScalar()
		if i < n-1 {
			bk[i] = RandomScalar()
			sum.Add(sum, bk[i])
		}
	}
	bk[n-1] = group.Reduce(new(big.Int).Neg(sum))

	kPublic := group.Reduce(big.NewInt(p.PublicValue))
	tr := transcript.New()
	if domain != 0 {
		tr.AppendUint(domain)
	}
	tr.AppendAddress(p.Sender).
		AppendScalar(kPublic).
		AppendUint(uint64(m)).
		AppendAddress(p.PublicOwner)
	for _, note := range notes {
		tr.AppendPoint(&note.Gamma).AppendPoint(&note.Sigma)
	}
	for i, note := range notes {
		b := blind(&note.Gamma, &s.H, bk[i], ba[i])
		tr.AppendPoint(&b)
	}
	c := tr.Challenge()

	rows := make([]joinsplit.Row, n)
	for i, note := range notes {
		ck := new(big.Int).Mul(c, note.K)
		ca := new(big.Int).Mul(c, note.A)
		kBar := new(big.Int).Set(bk[i])
		aBar := new(big.Int).Set(ba[i])
		if i < m {
			kBar.Add(kBar, ck)
			aBar.Add(aBar, ca)
		} else {
			kBar.Sub(kBar, ck)
			aBar.Sub(aBar, ca)
		}
		rows[i] = joinsplit.Row{
			KBar:  group.Reduce(kBar),
			ABar:  group.Reduce(aBar),
			Gamma: note.Gamma,
			Sigma: note.Sigma,
		}
	}

	return &joinsplit.Proof{
		Challenge:   c,
		PublicValue: big.NewInt(p.PublicValue),
		PublicOwner: p.PublicOwner,
		M:           m,
		Rows:        rows,
	}
}

// ProvePublicRange 构造比较证明，返回证明与自动生成的辅助票据
func (s *TrustedSetup) ProvePublicRange(sender common.Address, original *Note, comparison uint64, gte bool) (*publicrange.Proof, *Note, error) {
	k := original.K.Uint64()
	var ku uint64
	switch {
	case gte && k >= comparison:
		ku = k - comparison
	case !gte && k < comparison:
		ku = comparison - 1 - k
	default:
		return nil, nil, fmt.Errorf("relation does not hold: value=%d comparison=%d gte=%t", k, comparison, gte)
	}
	utility := s.NewNote(ku)

	bkO := RandomScalar()
	bkU := new(big.Int).Set(bkO)
	if !gte {
		bkU = group.Reduce(new(big.Int).Neg(bkO))
	}
	baO := RandomScalar()
	baU := RandomScalar()

	flag := uint64(0)
	if gte {
		flag = 1
	}
	pc := new(big.Int).SetUint64(comparison)
	tr := transcript.New().AppendAddress(sender).AppendScalar(pc).AppendUint(flag)
	tr.AppendPoint(&original.Gamma).AppendPoint(&original.Sigma)
	tr.AppendPoint(&utility.Gamma).AppendPoint(&utility.Sigma)
	bO := blind(&original.Gamma, &s.H, bkO, baO)
	bU := blind(&utility.Gamma, &s.H, bkU, baU)
	tr.AppendPoint(&bO).AppendPoint(&bU)
	c := tr.Challenge()

	response := func(note *Note, bk, ba *big.Int) joinsplit.Row {
		kBar := new(big.Int).Add(bk, new(big.Int).Mul(c, note.K))
		aBar := new(big.Int).Add(ba, new(big.Int).Mul(c, note.A))
		return joinsplit.Row{KBar: group.Reduce(kBar), ABar: group.Reduce(aBar), Gamma: note.Gamma, Sigma: note.Sigma}
	}

	return &publicrange.Proof{
		Challenge:        c,
		PublicComparison: pc,
		IsGreaterOrEqual: gte,
		Original:         response(original, bkO, baO),
		Utility:          response(utility, bkU, baU),
	}, utility, nil
}

func blind(gamma, h *bn254.G1Affine, bk, ba *big.Int) bn254.G1Affine {
	return group.MultiExp([]bn254.G1Affine{*gamma, *h}, []*big.Int{bk, ba})
}
