package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/ace/internal/config/storage/badger"
	interfaces "github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
)

// 初始化测试环境
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{
		Path:         t.TempDir(),
		SyncWrites:   false,
		MemTableSize: 1 << 20, // 1MB
	})
	store, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBasicKeyValueOperations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	key := []byte("test-key")
	value := []byte("test-value")

	// 1. 不存在的键
	exists, err := store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)

	val, err := store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, val)

	// 2. 设置并读取
	require.NoError(t, store.Set(ctx, key, value))
	exists, err = store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.True(t, exists)

	val, err = store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, value, val)

	// 3. 覆盖
	newValue := []byte("updated-value")
	require.NoError(t, store.Set(ctx, key, newValue))
	val, err = store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, newValue, val)

	// 4. 删除
	require.NoError(t, store.Delete(ctx, key))
	exists, err = store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestPrefixScan(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, []byte("p:a"), []byte("1")))
	require.NoError(t, store.Set(ctx, []byte("p:b"), []byte("2")))
	require.NoError(t, store.Set(ctx, []byte("q:a"), []byte("3")))

	result, err := store.PrefixScan(ctx, []byte("p:"))
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"p:a": []byte("1"), "p:b": []byte("2")}, result)
}

func TestTransaction(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// 1. 提交
	err := store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		if err := tx.Set([]byte("tx-key1"), []byte("tx-value1")); err != nil {
			return err
		}
		return tx.Set([]byte("tx-key2"), []byte("tx-value2"))
	})
	require.NoError(t, err)

	val1, err := store.Get(ctx, []byte("tx-key1"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("tx-value1"), val1)

	// 2. 回滚，错误原样返回
	rollback := errors.New("rollback")
	err = store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		if err := tx.Set([]byte("tx-key3"), []byte("tx-value3")); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	exists, err := store.Exists(ctx, []byte("tx-key3"))
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestViewIsReadOnly(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, []byte("k"), []byte("v")))

	err := store.View(ctx, func(tx interfaces.BadgerTransaction) error {
		val, err := tx.Get([]byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), val)
		return tx.Set([]byte("k"), []byte("x"))
	})
	assert.ErrorIs(t, err, ErrReadOnlyTransaction)
}

func TestCanceledContext(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, []byte("k"), []byte("v")), context.Canceled)
	_, err := store.Get(ctx, []byte("k"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteAfterClose(t *testing.T) {
	store, err := New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	// 重复关闭无害
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Set(context.Background(), []byte("k"), []byte("v")), ErrStoreClosing)
}

func TestInMemoryStore(t *testing.T) {
	store, err := New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, []byte("k"), []byte("v")))
	val, err := store.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
	assert.NoError(t, store.RunValueLogGC(ctx, 0.5))
}

func TestSmallMemTableOpens(t *testing.T) {
	for _, inMemory := range []bool{false, true} {
		opts := &badgerconfig.BadgerOptions{InMemory: inMemory, MemTableSize: 1 << 20}
		if !inMemory {
			opts.Path = t.TempDir()
		}
		store, err := New(badgerconfig.NewFromOptions(opts), nil)
		require.NoError(t, err, "inMemory=%t", inMemory)
		require.NoError(t, store.Close())
	}
}

func TestSmallMemTableLargeValue(t *testing.T) {
	store := setupTestStore(t)
	opts := store.db.Opts()
	assert.LessOrEqual(t, opts.ValueThreshold, opts.MemTableSize*15/100)

	ctx := context.Background()
	big := make([]byte, 100<<10)
	require.NoError(t, store.Set(ctx, []byte("big"), big))
	val, err := store.Get(ctx, []byte("big"))
	require.NoError(t, err)
	assert.Len(t, val, len(big))
}

func TestValueThresholdFor(t *testing.T) {
	assert.Equal(t, int64(1<<20), valueThresholdFor(64<<20, 1<<20))
	assert.Equal(t, int64((1<<20)*15/100/2), valueThresholdFor(1<<20, 1<<20))
	assert.Equal(t, int64(1024), valueThresholdFor(1<<20, 1024))
}
