package secp256k1

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	hash := crypto.Keccak256Hash([]byte("permit"))
	sig, err := crypto.Sign(hash.Bytes(), key)
	require.NoError(t, err)

	var raw [65]byte
	copy(raw[:], sig)
	r := NewRecoverer()

	got, err := r.RecoverAddress(hash, raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// v 取 27/28 的形式同样接受
	raw[64] += 27
	got, err = r.RecoverAddress(hash, raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecoverRejectsBadInput(t *testing.T) {
	r := NewRecoverer()
	hash := crypto.Keccak256([]byte("x"))

	_, err := r.RecoverPubkey(hash, make([]byte, 64))
	var lenErr *ErrInvalidSignatureLength
	require.ErrorAs(t, err, &lenErr)

	_, err = r.RecoverPubkey(hash[:31], make([]byte, 65))
	var hashErr *ErrInvalidHashLength
	require.ErrorAs(t, err, &hashErr)

	sig := make([]byte, 65)
	sig[64] = 10
	_, err = r.RecoverPubkey(hash, sig)
	var recErr *ErrRecoverPubkeyFailed
	require.ErrorAs(t, err, &recErr)

	// r = s = 0 无法恢复
	sig[64] = 0
	_, err = r.RecoverPubkey(hash, sig)
	require.ErrorAs(t, err, &recErr)
}

func TestPubkeyToAddressAcceptsCompressed(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	compressed := crypto.CompressPubkey(&key.PublicKey)

	addr, err := PubkeyToAddress(compressed)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)
}
