// Package testutil 提供 ACE 模块测试的辅助工具
//
// 🧪 **测试辅助**
//
// 包含已知陷门的可信设置、票据构造、join-split 与 public-range 证明构造器。
// 这些构造器只用于测试：生产环境的证明由客户端生成，陷门必须销毁。
package testutil

import (
	"crypto/rand"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/weisyn/ace/internal/core/ace/group"
	"github.com/weisyn/ace/pkg/types"
)

// TrustedSetup 陷门已知的可信设置
type TrustedSetup struct {
	Y   *big.Int
	H   bn254.G1Affine
	CRS *group.CRS
}

// NewTrustedSetup 使用随机陷门与默认 h 生成元创建可信设置
func NewTrustedSetup() *TrustedSetup {
	h, err := group.DefaultH()
	if err != nil {
		panic(err)
	}
	return NewTrustedSetupWith(h, RandomScalar())
}

// NewTrustedSetupWith 使用指定 h 与陷门创建可信设置
func NewTrustedSetupWith(h bn254.G1Affine, y *big.Int) *TrustedSetup {
	return &TrustedSetup{Y: y, H: h, CRS: group.SetupFromTrapdoor(h, y)}
}

// ReferenceString 编码后的参考串
func (s *TrustedSetup) ReferenceString() types.ReferenceString {
	return s.CRS.Encode()
}

// Note 携带打开值的测试票据
type Note struct {
	K     *big.Int
	A     *big.Int
	Gamma bn254.G1Affine
	Sigma bn254.G1Affine
}

// Raw 票据的公开表示
func (n *Note) Raw() types.Note {
	return types.Note{Gamma: group.EncodeG1(&n.Gamma), Sigma: group.EncodeG1(&n.Sigma)}
}

// NewNote 构造价值为 k 的票据：γ = h^(a/(y-k))，σ = γ^k · h^a
func (s *TrustedSetup) NewNote(k uint64) *Note {
	kk := new(big.Int).SetUint64(k)
	a := RandomScalar()

	denom := group.Reduce(new(big.Int).Sub(s.Y, kk))
	inv := new(big.Int).ModInverse(denom, group.Order())
	mu := group.ScalarMul(&s.H, inv)
	gamma := group.ScalarMul(&mu, a)

	gk := group.ScalarMul(&gamma, kk)
	ha := group.ScalarMul(&s.H, a)
	sigma := group.Add(&gk, &ha)

	return &Note{K: kk, A: a, Gamma: gamma, Sigma: sigma}
}

// NewNotes 按价值列表批量构造票据
func (s *TrustedSetup) NewNotes(values ...uint64) []*Note {
	out := make([]*Note, len(values))
	for i, v := range values {
		out[i] = s.NewNote(v)
	}
	return out
}

// RandomScalar 返回 [1, r) 内的随机标量
func RandomScalar() *big.Int {
	for {
		v, err := rand.Int(rand.Reader, group.Order())
		if err != nil {
			panic(err)
		}
		if v.Sign() != 0 {
			return v
		}
	}
}
