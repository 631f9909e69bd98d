package writegate

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	wgif "github.com/weisyn/ace/pkg/interfaces/infrastructure/writegate"
)

func TestReadOnlyBlocksWrites(t *testing.T) {
	gate := New()
	ctx := context.Background()

	assert.NoError(t, gate.AssertWriteAllowed(ctx, "setProof"))

	gate.EnterReadOnly("ledger diverged")
	assert.True(t, gate.IsReadOnly())
	assert.Equal(t, "ledger diverged", gate.ReadOnlyReason())
	since := gate.ReadOnlySince()
	assert.False(t, since.IsZero())

	err := gate.AssertWriteAllowed(ctx, "updateNoteRegistry")
	assert.ErrorIs(t, err, wgif.ErrWriteBlocked)
	assert.Contains(t, err.Error(), "updateNoteRegistry")

	// 重复进入保留最初原因
	gate.EnterReadOnly("second")
	assert.Equal(t, "ledger diverged", gate.ReadOnlyReason())
	assert.Equal(t, since, gate.ReadOnlySince())

	gate.ExitReadOnly()
	assert.False(t, gate.IsReadOnly())
	assert.Empty(t, gate.ReadOnlyReason())
	assert.True(t, gate.ReadOnlySince().IsZero())
	assert.NoError(t, gate.AssertWriteAllowed(ctx, "setProof"))
}

func TestAssertHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, New().AssertWriteAllowed(ctx, "op"), context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	gate := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			gate.EnterReadOnly("concurrent")
			gate.ExitReadOnly()
		}()
		go func() {
			defer wg.Done()
			_ = gate.AssertWriteAllowed(context.Background(), "op")
			_ = gate.IsReadOnly()
		}()
	}
	wg.Wait()
}
