package proofkind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownKinds(t *testing.T) {
	assert.Equal(t, Kind(65793), JoinSplit)
	assert.Equal(t, Kind(66562), PublicRange)

	c, err := DefaultLayout.Decode(PublicRange)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.Epoch)
	assert.Equal(t, CategoryUtility, c.Category)
	assert.Equal(t, uint64(2), c.ID)
}

func TestEpochOffset(t *testing.T) {
	next, err := DefaultLayout.WithEpoch(JoinSplit, 2)
	require.NoError(t, err)
	assert.Equal(t, JoinSplit+65536, next)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, k := range []Kind{0, 1, 1 << 8, Kind(1<<16 | 9<<8 | 1), Kind(1 << 31)} {
		_, err := DefaultLayout.Decode(k)
		assert.Error(t, err, "kind %d", k)
	}
}

func TestCustomLayout(t *testing.T) {
	l := Layout{EpochBits: 8, CategoryBits: 4, IDBits: 12}
	require.NoError(t, l.Validate())

	k, err := l.Encode(3, CategoryBurn, 4000)
	require.NoError(t, err)
	c, err := l.Decode(k)
	require.NoError(t, err)
	assert.Equal(t, Components{Epoch: 3, Category: CategoryBurn, ID: 4000}, c)

	_, err = l.Encode(256, CategoryBurn, 1)
	assert.Error(t, err)
	assert.Error(t, Layout{EpochBits: 20, CategoryBits: 8, IDBits: 8}.Validate())
}
