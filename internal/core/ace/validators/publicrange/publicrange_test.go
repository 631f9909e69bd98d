package publicrange_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/internal/core/ace/testutil"
	"github.com/weisyn/ace/internal/core/ace/validators/publicrange"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/types"
)

var sender = common.HexToAddress("0x00000000000000000000000000000000000000c3")

func TestValidate_Relations(t *testing.T) {
	setup := testutil.NewTrustedSetup()
	v := publicrange.New(testutil.NewTestLogger())
	vctx := &aceiface.ValidationContext{Sender: sender, ReferenceString: setup.ReferenceString()}

	cases := []struct {
		name       string
		value      uint64
		comparison uint64
		gte        bool
	}{
		{"greater", 50, 10, true},
		{"equal", 10, 10, true},
		{"less", 9, 10, false},
		{"less than far", 0, 1000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			original := setup.NewNote(tc.value)
			proof, utility, err := setup.ProvePublicRange(sender, original, tc.comparison, tc.gte)
			require.NoError(t, err)

			data := proof.Encode()
			require.Len(t, data, publicrange.ProofSize)

			outs, err := v.Validate(context.Background(), data, vctx)
			require.NoError(t, err)
			require.Len(t, outs, 1)
			assert.Equal(t, []types.Note{original.Raw()}, outs[0].InputNotes)
			assert.Equal(t, []types.Note{utility.Raw()}, outs[0].OutputNotes)
			assert.Equal(t, common.Address{}, outs[0].PublicOwner)
			assert.Equal(t, 0, outs[0].PublicValue.Sign())
		})
	}
}

func TestValidate_FalseClaimRejected(t *testing.T) {
	setup := testutil.NewTrustedSetup()
	v := publicrange.New(testutil.NewTestLogger())
	vctx := &aceiface.ValidationContext{Sender: sender, ReferenceString: setup.ReferenceString()}

	// 以 50 >= 10 的证明冒充 50 >= 20
	original := setup.NewNote(50)
	proof, _, err := setup.ProvePublicRange(sender, original, 10, true)
	require.NoError(t, err)
	proof.PublicComparison = big.NewInt(20)

	_, err = v.Validate(context.Background(), proof.Encode(), vctx)
	assert.True(t, errors.Is(err, types.ErrChallengeMismatch), "got %v", err)

	_, _, err = setup.ProvePublicRange(sender, original, 60, true)
	assert.Error(t, err)
}

func TestValidate_FlippedFlagRejected(t *testing.T) {
	setup := testutil.NewTrustedSetup()
	v := publicrange.New(testutil.NewTestLogger())
	vctx := &aceiface.ValidationContext{Sender: sender, ReferenceString: setup.ReferenceString()}

	proof, _, err := setup.ProvePublicRange(sender, setup.NewNote(5), 10, false)
	require.NoError(t, err)
	proof.IsGreaterOrEqual = true

	_, err = v.Validate(context.Background(), proof.Encode(), vctx)
	assert.True(t, errors.Is(err, types.ErrChallengeMismatch), "got %v", err)
}

func TestValidate_SenderBound(t *testing.T) {
	setup := testutil.NewTrustedSetup()
	v := publicrange.New(testutil.NewTestLogger())

	proof, _, err := setup.ProvePublicRange(sender, setup.NewNote(5), 1, true)
	require.NoError(t, err)

	vctx := &aceiface.ValidationContext{Sender: common.HexToAddress("0x01"), ReferenceString: setup.ReferenceString()}
	_, err = v.Validate(context.Background(), proof.Encode(), vctx)
	assert.True(t, errors.Is(err, types.ErrChallengeMismatch))
}

func TestValidate_MalformedShape(t *testing.T) {
	setup := testutil.NewTrustedSetup()
	v := publicrange.New(testutil.NewTestLogger())
	vctx := &aceiface.ValidationContext{Sender: sender, ReferenceString: setup.ReferenceString()}

	proof, _, err := setup.ProvePublicRange(sender, setup.NewNote(5), 1, true)
	require.NoError(t, err)
	data := proof.Encode()

	_, err = v.Validate(context.Background(), data[:len(data)-32], vctx)
	assert.True(t, errors.Is(err, types.ErrMalformedInput))

	bad := append([]byte(nil), data...)
	bad[95] = 2
	_, err = v.Validate(context.Background(), bad, vctx)
	assert.True(t, errors.Is(err, types.ErrMalformedInput))
}

func TestDeriveUtilityKBar(t *testing.T) {
	c := big.NewInt(3)
	// gte: kBar_u = kBar_o - c·pc
	assert.Zero(t, big.NewInt(70).Cmp(publicrange.DeriveUtilityKBar(c, big.NewInt(10), big.NewInt(100), true)))
	// lt: kBar_u = c·(pc-1) - kBar_o
	assert.Zero(t, big.NewInt(17).Cmp(publicrange.DeriveUtilityKBar(c, big.NewInt(10), big.NewInt(10), false)))
}
