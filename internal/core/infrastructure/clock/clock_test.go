package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClock(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	c := NewMockClock(base)
	assert.Equal(t, uint64(1_700_000_000), c.Timestamp())

	c.Advance(90 * time.Second)
	assert.Equal(t, uint64(1_700_000_090), c.Timestamp())
	assert.Equal(t, 90*time.Second, c.Since(base))

	c.Set(base)
	assert.Equal(t, base, c.Now())
}

func TestNTPClockAppliesOffset(t *testing.T) {
	c := newNTPClock("test", time.Hour, time.Second, func(string) (time.Duration, error) {
		return time.Hour, nil
	})
	assert.WithinDuration(t, time.Now().Add(time.Hour), c.Now(), 5*time.Second)

	healthy, offset, _, err := c.Health()
	assert.False(t, healthy) // 偏移超出阈值
	assert.Equal(t, time.Hour, offset)
	assert.NoError(t, err)
}

func TestNTPClockQueryFailure(t *testing.T) {
	calls := 0
	c := newNTPClock("test", time.Hour, time.Second, func(string) (time.Duration, error) {
		calls++
		return 0, errors.New("unreachable")
	})
	assert.WithinDuration(t, time.Now(), c.Now(), 5*time.Second)
	assert.Equal(t, 1, calls)

	healthy, _, _, err := c.Health()
	assert.False(t, healthy)
	assert.Error(t, err)
}

func TestClockMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newNTPClock("test", time.Hour, time.Second, func(string) (time.Duration, error) {
		return 10 * time.Millisecond, nil
	})
	require.NoError(t, RegisterClockMetrics(reg, c.Health))

	count, err := testutil.GatherAndCount(reg, "ace_clock_healthy")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTimestampBeforeEpoch(t *testing.T) {
	c := NewMockClock(time.Unix(-10, 0))
	assert.Zero(t, c.Timestamp())
}
