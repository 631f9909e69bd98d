package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// WordSize 证明与参考串中每个字段元素的字节数
const WordSize = 32

// Note 机密票据：一对 G1 承诺点 (γ, σ)，每个点按 x‖y 大端编码
type Note struct {
	Gamma [2 * WordSize]byte
	Sigma [2 * WordSize]byte
}

// Hash 票据哈希，注册表内的票据标识
func (n Note) Hash() common.Hash {
	return crypto.Keccak256Hash(n.Gamma[:], n.Sigma[:])
}

// ProofOutput 证明验证后的公开输出
type ProofOutput struct {
	InputNotes  []Note
	OutputNotes []Note
	PublicOwner common.Address
	// PublicValue 正数表示提取（机密 → 公开），负数表示存入
	PublicValue *big.Int
	Challenge   *big.Int
}

// ProofOutputs 一次验证产生的全部输出
type ProofOutputs []ProofOutput

// proofOutputRLP RLP 无法编码负数，公开价值拆成符号位与绝对值
type proofOutputRLP struct {
	InputNotes     []Note
	OutputNotes    []Note
	PublicOwner    common.Address
	PublicValueNeg bool
	PublicValueAbs *big.Int
	Challenge      *big.Int
}

func (o *ProofOutput) toRLP() *proofOutputRLP {
	value := o.PublicValue
	if value == nil {
		value = new(big.Int)
	}
	challenge := o.Challenge
	if challenge == nil {
		challenge = new(big.Int)
	}
	return &proofOutputRLP{
		InputNotes:     o.InputNotes,
		OutputNotes:    o.OutputNotes,
		PublicOwner:    o.PublicOwner,
		PublicValueNeg: value.Sign() < 0,
		PublicValueAbs: new(big.Int).Abs(value),
		Challenge:      challenge,
	}
}

func (r *proofOutputRLP) toOutput() ProofOutput {
	value := new(big.Int).Set(r.PublicValueAbs)
	if r.PublicValueNeg {
		value.Neg(value)
	}
	return ProofOutput{
		InputNotes:  r.InputNotes,
		OutputNotes: r.OutputNotes,
		PublicOwner: r.PublicOwner,
		PublicValue: value,
		Challenge:   r.Challenge,
	}
}

// Encode 输出的规范编码
func (o *ProofOutput) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(o.toRLP())
}

// Hash 输出哈希，即缓存键中的 outputHash
func (o *ProofOutput) Hash() (common.Hash, error) {
	enc, err := o.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// DecodeProofOutput 解码单个证明输出
func DecodeProofOutput(data []byte) (*ProofOutput, error) {
	var r proofOutputRLP
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, WrapMalformedInputError("decode proof output: %v", err)
	}
	out := r.toOutput()
	return &out, nil
}

// Encode 输出列表的规范编码
func (outs ProofOutputs) Encode() ([]byte, error) {
	list := make([]*proofOutputRLP, len(outs))
	for i := range outs {
		list[i] = outs[i].toRLP()
	}
	return rlp.EncodeToBytes(list)
}

// DecodeProofOutputs 解码输出列表
func DecodeProofOutputs(data []byte) (ProofOutputs, error) {
	var list []*proofOutputRLP
	if err := rlp.DecodeBytes(data, &list); err != nil {
		return nil, WrapMalformedInputError("decode proof outputs: %v", err)
	}
	outs := make(ProofOutputs, len(list))
	for i, r := range list {
		outs[i] = r.toOutput()
	}
	return outs, nil
}

// ReferenceString 公共参考串：[Hx, Hy, T2.x.imag, T2.x.real, T2.y.imag, T2.y.real]
type ReferenceString [6]common.Hash

// IsZero 参考串是否未设置
func (rs ReferenceString) IsZero() bool {
	return rs == ReferenceString{}
}

// Bytes 参考串的连续字节表示
func (rs ReferenceString) Bytes() []byte {
	out := make([]byte, 0, len(rs)*WordSize)
	for _, w := range rs {
		out = append(out, w.Bytes()...)
	}
	return out
}

// ReferenceStringFromBytes 从 192 字节还原参考串
func ReferenceStringFromBytes(b []byte) (ReferenceString, error) {
	var rs ReferenceString
	if len(b) != len(rs)*WordSize {
		return rs, WrapMalformedInputError("reference string length %d", len(b))
	}
	for i := range rs {
		rs[i] = common.BytesToHash(b[i*WordSize : (i+1)*WordSize])
	}
	return rs, nil
}
