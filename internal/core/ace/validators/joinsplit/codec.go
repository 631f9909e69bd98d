package joinsplit

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/group"
	"github.com/weisyn/ace/pkg/types"
)

// 证明字节布局
//
//	header: [challenge, publicValue(int256), publicOwner, m]
//	row i:  [kBar, aBar, γx, γy, σx, σy]
const (
	headerWords = 4
	rowWords    = 6

	HeaderSize = headerWords * types.WordSize
	RowSize    = rowWords * types.WordSize
)

var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

// Row 单个票据的证明数据
type Row struct {
	KBar  *big.Int
	ABar  *big.Int
	Gamma bn254.G1Affine
	Sigma bn254.G1Affine
}

// Proof join-split 证明的结构化表示，供证明构造方编码使用
type Proof struct {
	Challenge   *big.Int
	PublicValue *big.Int
	PublicOwner common.Address
	M           int
	Rows        []Row
}

func putWord(dst []byte, v *big.Int) {
	if v == nil {
		return
	}
	if v.Sign() < 0 {
		v = new(big.Int).Add(two256, v)
	}
	v.FillBytes(dst[:types.WordSize])
}

// Encode 按固定布局编码证明
func (p *Proof) Encode() []byte {
	out := make([]byte, HeaderSize+len(p.Rows)*RowSize)
	putWord(out[0:], p.Challenge)
	putWord(out[32:], p.PublicValue)
	copy(out[64+12:96], p.PublicOwner.Bytes())
	putWord(out[96:], big.NewInt(int64(p.M)))

	for i, r := range p.Rows {
		base := HeaderSize + i*RowSize
		putWord(out[base:], r.KBar)
		putWord(out[base+32:], r.ABar)
		g := group.EncodeG1(&r.Gamma)
		s := group.EncodeG1(&r.Sigma)
		copy(out[base+64:base+128], g[:])
		copy(out[base+128:base+192], s[:])
	}
	return out
}

// decodedNote 解码并通过逐票据检查的票据
type decodedNote struct {
	kBar  *big.Int
	aBar  *big.Int
	gamma bn254.G1Affine
	sigma bn254.G1Affine
	raw   types.Note
}

// decodedProof 通过结构与逐票据检查的证明
type decodedProof struct {
	challenge   *big.Int
	publicValue *big.Int
	publicOwner common.Address
	m           int
	notes       []decodedNote
}

func word(data []byte, i int) []byte {
	return data[i*types.WordSize : (i+1)*types.WordSize]
}

// decodeSignedWord 将 32 字节按 int256 补码解释
func decodeSignedWord(w []byte) *big.Int {
	v := new(big.Int).SetBytes(w)
	if w[0]&0x80 != 0 {
		v.Sub(v, two256)
	}
	return v
}

// decodeAddressWord 地址字的高 12 字节必须为零
func decodeAddressWord(w []byte) (common.Address, bool) {
	for _, b := range w[:12] {
		if b != 0 {
			return common.Address{}, false
		}
	}
	return common.BytesToAddress(w[12:]), true
}

// decodeHeader 解析并校验证明头部与形状
func decodeHeader(data []byte) (*decodedProof, int, error) {
	if len(data) < HeaderSize+RowSize {
		return nil, 0, types.WrapMalformedInputError("proof length %d below minimum %d", len(data), HeaderSize+RowSize)
	}
	if (len(data)-HeaderSize)%RowSize != 0 {
		return nil, 0, types.WrapMalformedInputError("proof body length %d is not a multiple of %d", len(data)-HeaderSize, RowSize)
	}
	n := (len(data) - HeaderSize) / RowSize

	challenge := group.Reduce(new(big.Int).SetBytes(word(data, 0)))
	if challenge.Sign() == 0 {
		return nil, 0, types.WrapInvalidScalarError("challenge is zero modulo group order", -1)
	}

	owner, ok := decodeAddressWord(word(data, 2))
	if !ok {
		return nil, 0, types.WrapMalformedInputError("public owner word has dirty high bytes")
	}

	mWord := new(big.Int).SetBytes(word(data, 3))
	if !mWord.IsInt64() || mWord.Int64() > int64(n) {
		return nil, 0, types.WrapMalformedInputError("input count %s exceeds note count %d", mWord, n)
	}

	return &decodedProof{
		challenge:   challenge,
		publicValue: decodeSignedWord(word(data, 1)),
		publicOwner: owner,
		m:           int(mWord.Int64()),
		notes:       make([]decodedNote, 0, n),
	}, n, nil
}

// decodeRows 逐票据解码并检查点与标量；最后一个票据的 kBar 由验证方推导，不要求非零
func decodeRows(data []byte, n int) ([]decodedNote, error) {
	notes := make([]decodedNote, n)
	for i := 0; i < n; i++ {
		row := data[HeaderSize+i*RowSize : HeaderSize+(i+1)*RowSize]

		kBar, err := group.DecodeScalar(word(row, 0))
		if err != nil {
			return nil, types.WrapInvalidScalarError("kBar not reduced", i)
		}
		aBar, err := group.DecodeScalar(word(row, 1))
		if err != nil {
			return nil, types.WrapInvalidScalarError("aBar not reduced", i)
		}
		if aBar.Sign() == 0 {
			return nil, types.WrapInvalidScalarError("aBar is zero", i)
		}
		if kBar.Sign() == 0 && i != n-1 {
			return nil, types.WrapInvalidScalarError("kBar is zero", i)
		}

		gamma, err := group.DecodeG1(word(row, 2), word(row, 3))
		if err != nil {
			return nil, types.WrapInvalidCurvePointError("gamma: "+err.Error(), i)
		}
		sigma, err := group.DecodeG1(word(row, 4), word(row, 5))
		if err != nil {
			return nil, types.WrapInvalidCurvePointError("sigma: "+err.Error(), i)
		}

		var raw types.Note
		copy(raw.Gamma[:], row[64:128])
		copy(raw.Sigma[:], row[128:192])

		notes[i] = decodedNote{kBar: kBar, aBar: aBar, gamma: gamma, sigma: sigma, raw: raw}
	}
	return notes, nil
}
