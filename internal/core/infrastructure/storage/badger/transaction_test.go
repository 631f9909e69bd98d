package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
)

// 创建测试事务
func createTestTransaction(t *testing.T) *Transaction {
	store := setupTestStore(t)
	tx := newTransaction(store.db.NewTransaction(true), false)
	t.Cleanup(tx.Discard)
	return tx
}

func TestTransactionCRUD(t *testing.T) {
	tx := createTestTransaction(t)

	key := []byte("tx-test-key")
	value := []byte("tx-test-value")

	require.NoError(t, tx.Set(key, value))

	val, err := tx.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, value, val)

	exists, err := tx.Exists(key)
	assert.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, tx.Delete(key))
	exists, err = tx.Exists(key)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactionCommit(t *testing.T) {
	store := setupTestStore(t)

	tx := newTransaction(store.db.NewTransaction(true), false)
	require.NoError(t, tx.Set([]byte("commit-key"), []byte("v")))
	require.NoError(t, tx.Commit())
	assert.False(t, tx.IsActive())

	// 已提交事务不能再次提交或写入
	assert.Error(t, tx.Commit())
	assert.Error(t, tx.Set([]byte("x"), []byte("y")))

	// 丢弃后的事务
	tx2 := newTransaction(store.db.NewTransaction(true), false)
	require.NoError(t, tx2.Set([]byte("discard-key"), []byte("v")))
	tx2.Discard()
	assert.Error(t, tx2.Commit())

	val, err := store.Get(t.Context(), []byte("commit-key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
	exists, err := store.Exists(t.Context(), []byte("discard-key"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactionIsolation(t *testing.T) {
	store := setupTestStore(t)

	tx1 := newTransaction(store.db.NewTransaction(true), false)
	defer tx1.Discard()
	tx2 := newTransaction(store.db.NewTransaction(true), false)
	defer tx2.Discard()

	key := []byte("isolation-key")
	require.NoError(t, tx1.Set(key, []byte("v1")))

	// 事务1提交前，事务2看不到修改
	exists, err := tx2.Exists(key)
	assert.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, tx1.Commit())

	tx3 := newTransaction(store.db.NewTransaction(false), true)
	defer tx3.Discard()
	val, err := tx3.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
}

func TestTransactionMerge(t *testing.T) {
	tx := createTestTransaction(t)

	concat := func(existingVal, newVal []byte) []byte {
		return append(append([]byte{}, existingVal...), newVal...)
	}

	key := []byte("merge-test-key")
	require.NoError(t, tx.Set(key, []byte("hello")))
	require.NoError(t, tx.Merge(key, []byte(" world"), concat))

	val, err := tx.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello world"), val)

	// 不存在的键：existingVal 为 nil
	newKey := []byte("new-merge-key")
	require.NoError(t, tx.Merge(newKey, []byte("new value"), concat))
	val, err = tx.Get(newKey)
	assert.NoError(t, err)
	assert.Equal(t, []byte("new value"), val)
}

func TestTransactionIterate(t *testing.T) {
	tx := createTestTransaction(t)

	require.NoError(t, tx.Set([]byte("n:2"), []byte("b")))
	require.NoError(t, tx.Set([]byte("n:1"), []byte("a")))
	require.NoError(t, tx.Set([]byte("m:1"), []byte("z")))

	var keys []string
	err := tx.Iterate([]byte("n:"), func(key, value []byte) error {
		keys = append(keys, string(key)+"="+string(value))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n:1=a", "n:2=b"}, keys)
}

func TestTransactionInterface(t *testing.T) {
	var tx interfaces.BadgerTransaction = createTestTransaction(t)
	assert.NotNil(t, tx)
}
