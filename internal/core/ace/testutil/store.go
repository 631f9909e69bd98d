package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/ace/internal/config/storage/badger"
	"github.com/weisyn/ace/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
)

// NewMemoryStore 创建内存 BadgerDB，测试结束时自动关闭
func NewMemoryStore(t testing.TB) storage.BadgerStore {
	t.Helper()
	cfg := badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{
		InMemory:     true,
		MemTableSize: 16 << 20,
	})
	store, err := badger.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
