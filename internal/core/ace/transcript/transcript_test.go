package transcript

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeIsReducedKeccak(t *testing.T) {
	a := common.LeftPadBytes([]byte{1}, 32)
	b := common.LeftPadBytes([]byte{2}, 32)

	want := new(big.Int).SetBytes(crypto.Keccak256(a, b))
	want.Mod(want, fr.Modulus())

	assert.Equal(t, 0, Build(a, b).Cmp(want))
	assert.True(t, Build(a, b).Cmp(fr.Modulus()) < 0)
}

func TestOrderMatters(t *testing.T) {
	a := []byte{1}
	b := []byte{2}
	assert.NotEqual(t, 0, Build(a, b).Cmp(Build(b, a)))
	assert.NotEqual(t, 0, Build(a, b).Cmp(Build(a)))
}

func TestDeterministicAcrossBuilders(t *testing.T) {
	_, _, g1, _ := bn254.Generators()
	sender := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	build := func() *big.Int {
		return New().
			AppendAddress(sender).
			AppendScalar(big.NewInt(20)).
			AppendUint(2).
			AppendPoint(&g1).
			Challenge()
	}
	require.Equal(t, 0, build().Cmp(build()))

	tr := New().AppendAddress(sender).AppendUint(2).AppendPoint(&g1)
	assert.Equal(t, 4, tr.Len())
}

func TestAppendWordPadsAndTruncates(t *testing.T) {
	short := New().AppendWord([]byte{0x05}).Challenge()
	padded := New().AppendWord(common.LeftPadBytes([]byte{0x05}, 32)).Challenge()
	assert.Equal(t, 0, short.Cmp(padded))

	long := append([]byte{0xff}, common.LeftPadBytes([]byte{0x05}, 32)...)
	assert.Equal(t, 0, New().AppendWord(long).Challenge().Cmp(padded))
}

func TestAppendScalarTruncatesWideValues(t *testing.T) {
	wide := new(big.Int).Lsh(big.NewInt(1), 300)
	wide.Add(wide, big.NewInt(5))

	require.NotPanics(t, func() { New().AppendScalar(wide) })
	assert.Equal(t, 0, New().AppendScalar(wide).Challenge().Cmp(New().AppendScalar(big.NewInt(5)).Challenge()))
	assert.Equal(t, 0, New().AppendScalar(nil).Challenge().Cmp(New().AppendUint(0).Challenge()))
}
