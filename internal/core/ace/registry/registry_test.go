package registry

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/testutil"
	"github.com/weisyn/ace/internal/core/ace/validators"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/ace/pkg/types"
)

func setup(t *testing.T) (*Registry, storage.BadgerStore, common.Address) {
	t.Helper()
	stub := &testutil.StubValidator{ValidatorName: "Stub"}
	set := validators.NewSet(stub)
	return New(proofkind.DefaultLayout, set), testutil.NewMemoryStore(t), validators.AddressOf("Stub")
}

func run(t *testing.T, store storage.BadgerStore, fn func(tx storage.BadgerTransaction) error) error {
	t.Helper()
	return store.RunInTransaction(context.Background(), fn)
}

func TestSetProofLifecycle(t *testing.T) {
	r, store, addr := setup(t)

	require.NoError(t, run(t, store, func(tx storage.BadgerTransaction) error {
		status, _, err := r.Status(tx, proofkind.JoinSplit)
		require.NoError(t, err)
		assert.Equal(t, StatusUnset, status)
		return r.SetProof(tx, proofkind.JoinSplit, addr)
	}))

	require.NoError(t, store.View(context.Background(), func(tx storage.BadgerTransaction) error {
		status, got, err := r.Status(tx, proofkind.JoinSplit)
		require.NoError(t, err)
		assert.Equal(t, StatusRegistered, status)
		assert.Equal(t, addr, got)

		v, c, err := r.Resolve(tx, proofkind.JoinSplit)
		require.NoError(t, err)
		assert.Equal(t, "Stub", v.Name())
		assert.Equal(t, proofkind.CategoryBalanced, c.Category)
		return nil
	}))

	// 同一验证器重复注册也被拒绝
	err := run(t, store, func(tx storage.BadgerTransaction) error {
		return r.SetProof(tx, proofkind.JoinSplit, addr)
	})
	require.ErrorIs(t, err, types.ErrImmutabilityViolation)

	require.NoError(t, run(t, store, func(tx storage.BadgerTransaction) error {
		return r.Invalidate(tx, proofkind.JoinSplit)
	}))
	require.NoError(t, store.View(context.Background(), func(tx storage.BadgerTransaction) error {
		status, _, err := r.Status(tx, proofkind.JoinSplit)
		require.NoError(t, err)
		assert.Equal(t, StatusInvalidated, status)
		_, _, err = r.Resolve(tx, proofkind.JoinSplit)
		assert.ErrorIs(t, err, types.ErrUnknownOrDisabledProofKind)
		return nil
	}))

	// 失效是终态
	err = run(t, store, func(tx storage.BadgerTransaction) error {
		return r.SetProof(tx, proofkind.JoinSplit, addr)
	})
	require.ErrorIs(t, err, types.ErrImmutabilityViolation)
	err = run(t, store, func(tx storage.BadgerTransaction) error {
		return r.Invalidate(tx, proofkind.JoinSplit)
	})
	require.ErrorIs(t, err, types.ErrUnknownOrDisabledProofKind)
}

func TestSetProofEpoch(t *testing.T) {
	r, store, addr := setup(t)
	next := proofkind.JoinSplit + 65536

	err := run(t, store, func(tx storage.BadgerTransaction) error {
		return r.SetProof(tx, next, addr)
	})
	require.ErrorIs(t, err, types.ErrEpochViolation)

	require.NoError(t, run(t, store, func(tx storage.BadgerTransaction) error {
		epoch, err := r.IncrementEpoch(tx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), epoch)
		return r.SetProof(tx, next, addr)
	}))
}

func TestSetProofRejectsBadInput(t *testing.T) {
	r, store, addr := setup(t)

	cases := []struct {
		name string
		kind proofkind.Kind
		addr common.Address
		want error
	}{
		{"zero kind", 0, addr, types.ErrMalformedInput},
		{"unknown category", proofkind.Kind(1<<16 | 9<<8 | 1), addr, types.ErrMalformedInput},
		{"null validator", proofkind.JoinSplit, common.Address{}, types.ErrMalformedInput},
		{"no code", proofkind.JoinSplit, common.HexToAddress("0x01"), types.ErrMalformedInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := run(t, store, func(tx storage.BadgerTransaction) error {
				return r.SetProof(tx, tc.kind, tc.addr)
			})
			require.ErrorIs(t, err, tc.want)
		})
	}

	require.NoError(t, store.View(context.Background(), func(tx storage.BadgerTransaction) error {
		_, err := r.GetValidator(tx, proofkind.JoinSplit)
		assert.ErrorIs(t, err, types.ErrUnknownOrDisabledProofKind)
		status, _, err := r.Status(tx, 0)
		require.NoError(t, err)
		assert.Equal(t, StatusUnset, status)
		return nil
	}))
}

func TestLatestEpochDefaultsToOne(t *testing.T) {
	r, store, _ := setup(t)
	require.NoError(t, store.View(context.Background(), func(tx storage.BadgerTransaction) error {
		epoch, err := r.LatestEpoch(tx)
		require.NoError(t, err)
		assert.Equal(t, InitialEpoch, epoch)
		return nil
	}))
}
