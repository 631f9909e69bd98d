package cache

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/testutil"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/ace/pkg/types"
)

var (
	submitter = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	outHash   = common.HexToHash("0x1234")
)

func TestKeyBindsAllFields(t *testing.T) {
	base := Key(proofkind.JoinSplit, outHash, submitter)
	assert.NotEqual(t, base, Key(proofkind.PublicRange, outHash, submitter))
	assert.NotEqual(t, base, Key(proofkind.JoinSplit, common.HexToHash("0x1235"), submitter))
	assert.NotEqual(t, base, Key(proofkind.JoinSplit, outHash, common.HexToAddress("0xa2")))
	assert.Equal(t, base, Key(proofkind.JoinSplit, outHash, submitter))
}

func TestRecordConsume(t *testing.T) {
	store := testutil.NewMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		ok, err := IsValidated(tx, proofkind.JoinSplit, outHash, submitter)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, Record(tx, proofkind.JoinSplit, outHash, submitter))
		// 重复记录幂等
		require.NoError(t, Record(tx, proofkind.JoinSplit, outHash, submitter))
		ok, err = IsValidated(tx, proofkind.JoinSplit, outHash, submitter)
		require.NoError(t, err)
		assert.True(t, ok)

		// 其他提交者的条目互不影响
		err = Consume(tx, proofkind.JoinSplit, outHash, common.HexToAddress("0xa2"))
		assert.ErrorIs(t, err, types.ErrReplayRejected)

		return Consume(tx, proofkind.JoinSplit, outHash, submitter)
	}))

	err := store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		return Consume(tx, proofkind.JoinSplit, outHash, submitter)
	})
	require.ErrorIs(t, err, types.ErrReplayRejected)

	err = store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		return Record(tx, proofkind.JoinSplit, outHash, submitter)
	})
	require.ErrorIs(t, err, types.ErrReplayRejected)
}

func TestConsumeRejectsZeroHash(t *testing.T) {
	store := testutil.NewMemoryStore(t)
	err := store.RunInTransaction(context.Background(), func(tx storage.BadgerTransaction) error {
		return Consume(tx, proofkind.JoinSplit, common.Hash{}, submitter)
	})
	require.ErrorIs(t, err, types.ErrReplayRejected)
}
