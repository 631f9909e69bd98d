package clock

import (
	"time"

	infraClock "github.com/weisyn/ace/pkg/interfaces/infrastructure/clock"
)

// SystemClock 本机时间，未做任何校正
type SystemClock struct{}

// NewSystemClock 创建系统时钟
func NewSystemClock() infraClock.Clock { return SystemClock{} }

func (SystemClock) Now() time.Time                  { return time.Now() }
func (SystemClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (SystemClock) Timestamp() uint64               { return infraClock.TimestampOf(time.Now()) }
