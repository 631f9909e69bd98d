// Package group 封装 BN254 上的点校验、标量约简与承诺运算
//
// 所有曲线运算都委托给 gnark-crypto，本包只负责字节编解码和合法性检查，
// 错误统一归类为 types.ErrInvalidCurvePoint / types.ErrInvalidScalar。
package group

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/weisyn/ace/pkg/types"
)

// Order 标量域的模（群阶 r）
func Order() *big.Int {
	return fr.Modulus()
}

// FieldModulus 基域的模 p
func FieldModulus() *big.Int {
	return fp.Modulus()
}

// G1Generator 规范 G1 生成元 g
func G1Generator() bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	return g1
}

// G2Generator 规范 G2 生成元
func G2Generator() bn254.G2Affine {
	_, _, _, g2 := bn254.Generators()
	return g2
}

// DecodeG1 从 x、y 两个 32 字节大端字解码 G1 点
//
// 坐标必须小于 p，点必须在曲线上且不是无穷远点。
func DecodeG1(x, y []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if err := p.X.SetBytesCanonical(x); err != nil {
		return p, fmt.Errorf("%w: x coordinate: %v", types.ErrInvalidCurvePoint, err)
	}
	if err := p.Y.SetBytesCanonical(y); err != nil {
		return p, fmt.Errorf("%w: y coordinate: %v", types.ErrInvalidCurvePoint, err)
	}
	if p.IsInfinity() {
		return p, fmt.Errorf("%w: point at infinity", types.ErrInvalidCurvePoint)
	}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("%w: point not on curve", types.ErrInvalidCurvePoint)
	}
	return p, nil
}

// DecodeG1Bytes 从 64 字节 x‖y 解码 G1 点
func DecodeG1Bytes(b []byte) (bn254.G1Affine, error) {
	if len(b) != 2*types.WordSize {
		return bn254.G1Affine{}, fmt.Errorf("%w: encoding length %d", types.ErrInvalidCurvePoint, len(b))
	}
	return DecodeG1(b[:types.WordSize], b[types.WordSize:])
}

// EncodeG1 将 G1 点编码为 x‖y
func EncodeG1(p *bn254.G1Affine) [2 * types.WordSize]byte {
	var out [2 * types.WordSize]byte
	x := p.X.Bytes()
	y := p.Y.Bytes()
	copy(out[:types.WordSize], x[:])
	copy(out[types.WordSize:], y[:])
	return out
}

// DecodeG2 按 [x.imag, x.real, y.imag, y.real] 解码 G2 点，并检查子群
func DecodeG2(words [4][]byte) (bn254.G2Affine, error) {
	var q bn254.G2Affine
	targets := []*fp.Element{&q.X.A1, &q.X.A0, &q.Y.A1, &q.Y.A0}
	for i, w := range words {
		if err := targets[i].SetBytesCanonical(w); err != nil {
			return q, fmt.Errorf("%w: g2 coordinate %d: %v", types.ErrInvalidCurvePoint, i, err)
		}
	}
	if q.IsInfinity() {
		return q, fmt.Errorf("%w: g2 point at infinity", types.ErrInvalidCurvePoint)
	}
	if !q.IsOnCurve() || !q.IsInSubGroup() {
		return q, fmt.Errorf("%w: g2 point not in subgroup", types.ErrInvalidCurvePoint)
	}
	return q, nil
}

// EncodeG2 与 DecodeG2 对应的编码
func EncodeG2(q *bn254.G2Affine) [4][types.WordSize]byte {
	var out [4][types.WordSize]byte
	out[0] = q.X.A1.Bytes()
	out[1] = q.X.A0.Bytes()
	out[2] = q.Y.A1.Bytes()
	out[3] = q.Y.A0.Bytes()
	return out
}

// DecodeScalar 解码一个必须小于群阶的标量
func DecodeScalar(b []byte) (*big.Int, error) {
	v := new(big.Int).SetBytes(b)
	if v.Cmp(fr.Modulus()) >= 0 {
		return nil, fmt.Errorf("%w: scalar not reduced", types.ErrInvalidScalar)
	}
	return v, nil
}

// Reduce 对群阶取模，负数映射到 [0, r)
func Reduce(v *big.Int) *big.Int {
	out := new(big.Int).Mod(v, fr.Modulus())
	return out
}

// ScalarMul 计算 p^s
func ScalarMul(p *bn254.G1Affine, s *big.Int) bn254.G1Affine {
	var out bn254.G1Affine
	out.ScalarMultiplication(p, Reduce(s))
	return out
}

// Add 计算 a·b（群运算记为乘法）
func Add(a, b *bn254.G1Affine) bn254.G1Affine {
	var out bn254.G1Affine
	out.Add(a, b)
	return out
}

// Neg 计算 p^-1
func Neg(p *bn254.G1Affine) bn254.G1Affine {
	var out bn254.G1Affine
	out.Neg(p)
	return out
}

// MultiExp 计算 Π bases[i]^scalars[i]
func MultiExp(bases []bn254.G1Affine, scalars []*big.Int) bn254.G1Affine {
	var acc bn254.G1Affine
	for i := range bases {
		term := ScalarMul(&bases[i], scalars[i])
		acc = Add(&acc, &term)
	}
	return acc
}

// PairingCheck 检查 Π e(P_i, Q_i) == 1
func PairingCheck(p []bn254.G1Affine, q []bn254.G2Affine) (bool, error) {
	return bn254.PairingCheck(p, q)
}

// HashToG1 将消息哈希为 G1 点，用于派生独立生成元
func HashToG1(msg, dst []byte) (bn254.G1Affine, error) {
	return bn254.HashToG1(msg, dst)
}
