package testutil

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/ace/internal/core/infrastructure/crypto/eip712"
	"github.com/weisyn/ace/pkg/types"
)

// Account 持有私钥的测试账户
type Account struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
}

// NewAccount 生成随机账户
func NewAccount() *Account {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &Account{Key: key, Address: crypto.PubkeyToAddress(key.PublicKey)}
}

// SignPermit 以账户身份签发 permit，Holder 固定为账户地址
func (a *Account) SignPermit(domain eip712.Domain, spender common.Address, nonce, expiry uint64, allowed bool) *types.Permit {
	p := &types.Permit{
		Holder:  a.Address,
		Spender: spender,
		Nonce:   nonce,
		Expiry:  expiry,
		Allowed: allowed,
	}
	digest := eip712.PermitDigest(domain, p)
	sig, err := crypto.Sign(digest.Bytes(), a.Key)
	if err != nil {
		panic(err)
	}
	copy(p.Signature[:], sig)
	return p
}
