// Package secp256k1 提供 secp256k1 签名恢复
//
// 封装 btcd/btcec 的公钥恢复，按以太坊约定把签名恢复为地址：
// 签名布局为 r(32) ‖ s(32) ‖ v(1)，v 取 {0,1} 或 {27,28}，
// 地址为未压缩公钥（去掉 0x04 前缀）的 keccak256 后 20 字节。
package secp256k1

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Recoverer 基于 btcec 的签名恢复器
type Recoverer struct{}

// NewRecoverer 创建签名恢复器
func NewRecoverer() *Recoverer {
	return &Recoverer{}
}

// RecoverPubkey 从签名恢复未压缩公钥（65字节）
func (r *Recoverer) RecoverPubkey(hash, signature []byte) ([]byte, error) {
	if len(signature) != 65 {
		return nil, &ErrInvalidSignatureLength{Expected: 65, Got: len(signature)}
	}
	if len(hash) != 32 {
		return nil, &ErrInvalidHashLength{Expected: 32, Got: len(hash)}
	}

	v := signature[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return nil, &ErrRecoverPubkeyFailed{Err: fmt.Errorf("invalid recovery id: %d", signature[64])}
	}

	// btcec 的紧凑格式: header(27+recID) ‖ r ‖ s
	compact := make([]byte, 65)
	compact[0] = 27 + v
	copy(compact[1:], signature[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, &ErrRecoverPubkeyFailed{Err: err}
	}
	return pub.SerializeUncompressed(), nil
}

// RecoverAddress 从签名恢复签名者地址
func (r *Recoverer) RecoverAddress(hash common.Hash, signature [65]byte) (common.Address, error) {
	pub, err := r.RecoverPubkey(hash.Bytes(), signature[:])
	if err != nil {
		return common.Address{}, err
	}
	return PubkeyToAddress(pub)
}

// PubkeyToAddress 把公钥（压缩或未压缩）转换为以太坊地址
func PubkeyToAddress(pub []byte) (common.Address, error) {
	key, err := btcec.ParsePubKey(pub)
	if err != nil {
		return common.Address{}, fmt.Errorf("parse public key: %w", err)
	}
	raw := key.SerializeUncompressed()
	return common.BytesToAddress(crypto.Keccak256(raw[1:])[12:]), nil
}

// 错误类型定义

// ErrInvalidSignatureLength 签名长度无效
type ErrInvalidSignatureLength struct {
	Expected int
	Got      int
}

func (e *ErrInvalidSignatureLength) Error() string {
	return fmt.Sprintf("无效的签名长度: 期望 %d 字节，实际 %d 字节", e.Expected, e.Got)
}

// ErrInvalidHashLength 哈希长度无效
type ErrInvalidHashLength struct {
	Expected int
	Got      int
}

func (e *ErrInvalidHashLength) Error() string {
	return fmt.Sprintf("无效的哈希长度: 期望 %d 字节，实际 %d 字节", e.Expected, e.Got)
}

// ErrRecoverPubkeyFailed 公钥恢复失败
type ErrRecoverPubkeyFailed struct {
	Err error
}

func (e *ErrRecoverPubkeyFailed) Error() string {
	return fmt.Sprintf("公钥恢复失败: %v", e.Err)
}

func (e *ErrRecoverPubkeyFailed) Unwrap() error {
	return e.Err
}
