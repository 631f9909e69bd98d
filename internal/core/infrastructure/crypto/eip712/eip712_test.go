package eip712

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/internal/core/infrastructure/crypto/secp256k1"
	"github.com/weisyn/ace/pkg/types"
)

func TestTypeHashes(t *testing.T) {
	// Dai 合约中的常量
	assert.Equal(t,
		common.HexToHash("0xea2aa0a1be11a07ed86d755c93467f4f82362b452371d1ba94d1715123511acb"),
		PermitTypeHash)
	assert.Equal(t,
		common.HexToHash("0x8b73c3c69bb8fe3d512ecc4cf759cc79239f7b179b0ffacaa9a75d522b39400f"),
		DomainTypeHash)
}

func TestSeparatorBindsDomain(t *testing.T) {
	token := common.HexToAddress("0x1000000000000000000000000000000000000001")
	base := DaiDomain(1, token).Separator()

	assert.NotEqual(t, base, DaiDomain(2, token).Separator())
	assert.NotEqual(t, base, DaiDomain(1, common.Address{}).Separator())
	other := DaiDomain(1, token)
	other.Version = "2"
	assert.NotEqual(t, base, other.Separator())
}

func TestRecoverPermitSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	holder := crypto.PubkeyToAddress(key.PublicKey)
	domain := DaiDomain(1337, common.HexToAddress("0x2000000000000000000000000000000000000002"))

	p := &types.Permit{
		Holder:  holder,
		Spender: common.HexToAddress("0x3000000000000000000000000000000000000003"),
		Nonce:   4,
		Allowed: true,
	}
	digest := PermitDigest(domain, p)
	sig, err := crypto.Sign(digest.Bytes(), key)
	require.NoError(t, err)
	copy(p.Signature[:], sig)

	r := secp256k1.NewRecoverer()
	signer, err := RecoverPermitSigner(r, domain, p)
	require.NoError(t, err)
	assert.Equal(t, holder, signer)

	// 改动任一字段后恢复出其他地址
	p.Nonce = 5
	signer, err = RecoverPermitSigner(r, domain, p)
	require.NoError(t, err)
	assert.NotEqual(t, holder, signer)
}

type zeroRecoverer struct{}

func (zeroRecoverer) RecoverAddress(common.Hash, [65]byte) (common.Address, error) {
	return common.Address{}, nil
}

func TestRecoverPermitSignerRejectsZero(t *testing.T) {
	_, err := RecoverPermitSigner(zeroRecoverer{}, DaiDomain(1, common.Address{}), &types.Permit{})
	require.ErrorIs(t, err, ErrZeroSigner)
}
