package group

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/pkg/types"
)

func TestDecodeG1RoundTrip(t *testing.T) {
	g := G1Generator()
	p := ScalarMul(&g, big.NewInt(7))
	enc := EncodeG1(&p)

	got, err := DecodeG1Bytes(enc[:])
	require.NoError(t, err)
	assert.True(t, got.Equal(&p))
}

func TestDecodeG1Rejects(t *testing.T) {
	g := G1Generator()
	enc := EncodeG1(&g)

	t.Run("off curve", func(t *testing.T) {
		bad := enc
		bad[63] ^= 0x01
		_, err := DecodeG1Bytes(bad[:])
		require.True(t, errors.Is(err, types.ErrInvalidCurvePoint))
	})

	t.Run("infinity", func(t *testing.T) {
		_, err := DecodeG1(make([]byte, 32), make([]byte, 32))
		require.True(t, errors.Is(err, types.ErrInvalidCurvePoint))
	})

	t.Run("coordinate not reduced", func(t *testing.T) {
		x := new(big.Int).Add(new(big.Int).SetBytes(enc[:32]), FieldModulus())
		if x.BitLen() > 256 {
			t.Skip("coordinate plus modulus overflows a word")
		}
		_, err := DecodeG1(x.FillBytes(make([]byte, 32)), enc[32:])
		require.True(t, errors.Is(err, types.ErrInvalidCurvePoint))
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := DecodeG1Bytes(enc[:63])
		require.True(t, errors.Is(err, types.ErrInvalidCurvePoint))
	})
}

func TestDecodeScalar(t *testing.T) {
	v, err := DecodeScalar(big.NewInt(42).Bytes())
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	_, err = DecodeScalar(Order().Bytes())
	require.True(t, errors.Is(err, types.ErrInvalidScalar))
}

func TestReduceNegative(t *testing.T) {
	r := Reduce(big.NewInt(-1))
	assert.Equal(t, 0, r.Cmp(new(big.Int).Sub(Order(), big.NewInt(1))))
}

func TestG2RoundTripAndPairing(t *testing.T) {
	g2 := G2Generator()
	var q bn254.G2Affine
	q.ScalarMultiplication(&g2, big.NewInt(11))

	words := EncodeG2(&q)
	got, err := DecodeG2([4][]byte{words[0][:], words[1][:], words[2][:], words[3][:]})
	require.NoError(t, err)
	assert.True(t, got.Equal(&q))

	// e(g^11, g2) · e(g^-1, g2^11) == 1
	g := G1Generator()
	a := ScalarMul(&g, big.NewInt(11))
	b := Neg(&g)
	ok, err := PairingCheck([]bn254.G1Affine{a, b}, []bn254.G2Affine{g2, q})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMultiExp(t *testing.T) {
	g := G1Generator()
	h, err := HashToG1([]byte("h"), []byte("ACE-TEST"))
	require.NoError(t, err)

	got := MultiExp([]bn254.G1Affine{g, h}, []*big.Int{big.NewInt(3), big.NewInt(5)})
	gg := ScalarMul(&g, big.NewInt(3))
	hh := ScalarMul(&h, big.NewInt(5))
	want := Add(&gg, &hh)
	assert.True(t, got.Equal(&want))
}

func TestReferenceStringRoundTrip(t *testing.T) {
	h, err := DefaultH()
	require.NoError(t, err)
	crs := SetupFromTrapdoor(h, big.NewInt(42))

	got, err := DecodeReferenceString(crs.Encode())
	require.NoError(t, err)
	assert.True(t, crs.Equal(got))
	assert.False(t, crs.Equal(SetupFromTrapdoor(h, big.NewInt(43))))
	assert.False(t, crs.Equal(nil))

	_, err = DecodeReferenceString(types.ReferenceString{})
	assert.True(t, errors.Is(err, types.ErrReferenceStringMismatch))
}
