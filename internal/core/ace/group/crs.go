package group

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/pkg/types"
)

// 派生 h 生成元所用的哈希域
var (
	hGeneratorMessage = []byte("weisyn/ace: h generator")
	hGeneratorDST     = []byte("WEISYN-ACE-V1-CS01-with-BN254G1_XMD:SHA-256_SVDW_RO_")
)

// CRS 解码后的公共参考串
//
// g 为规范生成元，h 为独立生成元，T2 = g2^y 为配对元素，y 为可信设置的陷门。
type CRS struct {
	H  bn254.G1Affine
	T2 bn254.G2Affine
}

// DefaultH 由固定消息哈希得到的 h 生成元
func DefaultH() (bn254.G1Affine, error) {
	return bn254.HashToG1(hGeneratorMessage, hGeneratorDST)
}

// DecodeReferenceString 解码并校验参考串
func DecodeReferenceString(rs types.ReferenceString) (*CRS, error) {
	if rs.IsZero() {
		return nil, fmt.Errorf("%w: reference string not set", types.ErrReferenceStringMismatch)
	}
	h, err := DecodeG1(rs[0].Bytes(), rs[1].Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: h: %w", types.ErrReferenceStringMismatch, err)
	}
	t2, err := DecodeG2([4][]byte{rs[2].Bytes(), rs[3].Bytes(), rs[4].Bytes(), rs[5].Bytes()})
	if err != nil {
		return nil, fmt.Errorf("%w: t2: %w", types.ErrReferenceStringMismatch, err)
	}
	return &CRS{H: h, T2: t2}, nil
}

// Encode 编码为参考串
func (c *CRS) Encode() types.ReferenceString {
	var rs types.ReferenceString
	h := EncodeG1(&c.H)
	rs[0] = common.BytesToHash(h[:types.WordSize])
	rs[1] = common.BytesToHash(h[types.WordSize:])
	t2 := EncodeG2(&c.T2)
	for i := range t2 {
		rs[2+i] = common.Hash(t2[i])
	}
	return rs
}

// Equal 两个参考串是否相同
func (c *CRS) Equal(other *CRS) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.H.Equal(&other.H) && c.T2.Equal(&other.T2)
}

// SetupFromTrapdoor 由陷门 y 构造参考串，仅用于开发网络与测试
func SetupFromTrapdoor(h bn254.G1Affine, y *big.Int) *CRS {
	g2 := G2Generator()
	var t2 bn254.G2Affine
	t2.ScalarMultiplication(&g2, Reduce(y))
	return &CRS{H: h, T2: t2}
}
