// Package eip712 实现签名授权所需的 EIP-712 类型化数据哈希
//
// 只覆盖 Dai 风格 permit 一种消息：
//
//	digest = keccak256(0x19 ‖ 0x01 ‖ domainSeparator ‖ hashStruct(permit))
//
// 签名恢复通过 SignatureRecoverer 注入，哈希与恢复实现解耦。
package eip712

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/ace/pkg/types"
)

// 类型哈希
var (
	DomainTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	PermitTypeHash = crypto.Keccak256Hash([]byte("Permit(address holder,address spender,uint256 nonce,uint256 expiry,bool allowed)"))
)

// DaiName / DaiVersion 参考账本使用的域参数
const (
	DaiName    = "Dai Stablecoin"
	DaiVersion = "1"
)

// ErrZeroSigner 恢复出的签名者为零地址
var ErrZeroSigner = errors.New("recovered zero signer")

// SignatureRecoverer 从摘要与签名恢复签名者地址
type SignatureRecoverer interface {
	RecoverAddress(digest common.Hash, signature [65]byte) (common.Address, error)
}

// Domain EIP-712 域
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract common.Address
}

// DaiDomain 账本 token 对应的 Dai 域
func DaiDomain(chainID uint64, token common.Address) Domain {
	return Domain{Name: DaiName, Version: DaiVersion, ChainID: chainID, VerifyingContract: token}
}

// Separator 域分隔符
func (d Domain) Separator() common.Hash {
	return crypto.Keccak256Hash(
		DomainTypeHash.Bytes(),
		crypto.Keccak256([]byte(d.Name)),
		crypto.Keccak256([]byte(d.Version)),
		uintWord(d.ChainID),
		common.LeftPadBytes(d.VerifyingContract.Bytes(), 32),
	)
}

// HashMessage 对结构哈希加上域前缀
func (d Domain) HashMessage(structHash common.Hash) common.Hash {
	sep := d.Separator()
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, sep.Bytes(), structHash.Bytes())
}

// PermitStructHash permit 的结构哈希
func PermitStructHash(p *types.Permit) common.Hash {
	allowed := uintWord(0)
	if p.Allowed {
		allowed = uintWord(1)
	}
	return crypto.Keccak256Hash(
		PermitTypeHash.Bytes(),
		common.LeftPadBytes(p.Holder.Bytes(), 32),
		common.LeftPadBytes(p.Spender.Bytes(), 32),
		uintWord(p.Nonce),
		uintWord(p.Expiry),
		allowed,
	)
}

// PermitDigest 待签名的 permit 摘要
func PermitDigest(d Domain, p *types.Permit) common.Hash {
	return d.HashMessage(PermitStructHash(p))
}

// RecoverPermitSigner 恢复 permit 签名者；零地址视为失败
func RecoverPermitSigner(r SignatureRecoverer, d Domain, p *types.Permit) (common.Address, error) {
	signer, err := r.RecoverAddress(PermitDigest(d, p), p.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover permit signer: %w", err)
	}
	if signer == (common.Address{}) {
		return common.Address{}, ErrZeroSigner
	}
	return signer, nil
}

func uintWord(v uint64) []byte {
	word := make([]byte, 32)
	binary.BigEndian.PutUint64(word[24:], v)
	return word
}
