// Package transcript 提供 Fiat-Shamir 挑战值的构造
//
// 元素按调用顺序逐个吸收进 Keccak-256，每个元素编码为 32 字节大端字。
// 最终摘要对群阶取模得到挑战标量。元素的顺序由各验证器固定。
package transcript

import (
	"hash"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// WordSize 单个元素的编码长度
const WordSize = 32

// Transcript 挑战值构造器，不可并发使用
type Transcript struct {
	h     hash.Hash
	count int
}

// New 创建空的 transcript
func New() *Transcript {
	return &Transcript{h: sha3.NewLegacyKeccak256()}
}

// AppendWord 吸收一个 32 字节字；较短的输入左侧补零，较长的输入截取低 32 字节
func (t *Transcript) AppendWord(b []byte) *Transcript {
	var w [WordSize]byte
	if len(b) > WordSize {
		b = b[len(b)-WordSize:]
	}
	copy(w[WordSize-len(b):], b)
	t.h.Write(w[:])
	t.count++
	return t
}

// AppendScalar 吸收一个非负整数；超过 256 位时只保留低 256 位
func (t *Transcript) AppendScalar(v *big.Int) *Transcript {
	if v == nil {
		return t.AppendWord(nil)
	}
	return t.AppendWord(v.Bytes())
}

// AppendUint 吸收一个无符号整数
func (t *Transcript) AppendUint(v uint64) *Transcript {
	return t.AppendScalar(new(big.Int).SetUint64(v))
}

// AppendAddress 吸收一个地址（左侧补零）
func (t *Transcript) AppendAddress(a common.Address) *Transcript {
	return t.AppendWord(a.Bytes())
}

// AppendPoint 吸收一个 G1 点的 x、y 坐标
func (t *Transcript) AppendPoint(p *bn254.G1Affine) *Transcript {
	x := p.X.Bytes()
	y := p.Y.Bytes()
	t.AppendWord(x[:])
	return t.AppendWord(y[:])
}

// Len 已吸收的元素个数
func (t *Transcript) Len() int {
	return t.count
}

// Challenge 返回当前摘要对群阶取模的结果，不改变 transcript 状态
func (t *Transcript) Challenge() *big.Int {
	digest := t.h.Sum(nil)
	c := new(big.Int).SetBytes(digest)
	return c.Mod(c, fr.Modulus())
}

// Build 对按序给出的 32 字节元素计算挑战值
func Build(elements ...[]byte) *big.Int {
	t := New()
	for _, e := range elements {
		t.AppendWord(e)
	}
	return t.Challenge()
}
