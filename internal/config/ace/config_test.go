package ace

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/pkg/types"
)

func TestNewDefaults(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	opts := c.GetOptions()
	assert.Equal(t, KindLayout{EpochBits: 16, CategoryBits: 8, IDBits: 8}, opts.KindLayout)
	assert.True(t, opts.ReferenceString.IsZero())
	assert.Equal(t, uint64(1337), opts.ChainID)
}

func TestNewUserConfig(t *testing.T) {
	owner := "0x00000000000000000000000000000000000000aa"
	trapdoor := "0x2a"
	epochBits := uint(20)
	chainID := uint64(5)
	c, err := New(&types.UserACEConfig{
		Owner:       &owner,
		DevTrapdoor: &trapdoor,
		KindLayout:  &types.UserKindLayoutConfig{EpochBits: &epochBits},
		ChainID:     &chainID,
		Tokens: []types.UserTokenConfig{{
			Name:     "DAI",
			Address:  "0x00000000000000000000000000000000000000d1",
			Balances: map[string]string{owner: "1000"},
		}},
	})
	require.NoError(t, err)

	opts := c.GetOptions()
	assert.Equal(t, common.HexToAddress(owner), opts.Owner)
	assert.Zero(t, big.NewInt(42).Cmp(opts.DevTrapdoor))
	assert.Equal(t, uint(20), opts.KindLayout.EpochBits)
	assert.Equal(t, uint(8), opts.KindLayout.CategoryBits)
	require.Len(t, opts.Tokens, 1)
	assert.Zero(t, big.NewInt(1000).Cmp(opts.Tokens[0].Balances[common.HexToAddress(owner)]))
}

func TestNewRejectsMalformed(t *testing.T) {
	bad := "not-an-address"
	_, err := New(&types.UserACEConfig{Owner: &bad})
	assert.Error(t, err)

	_, err = New(&types.UserACEConfig{ReferenceString: []string{"0x01"}})
	assert.Error(t, err)
}
