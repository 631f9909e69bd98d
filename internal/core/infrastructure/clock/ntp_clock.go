package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"

	infraClock "github.com/weisyn/ace/pkg/interfaces/infrastructure/clock"
)

// queryFunc 查询NTP偏移，测试可替换
type queryFunc func(server string) (time.Duration, error)

func queryNTP(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// NTPClock 通过NTP周期性校正偏移的时钟实现
//
// 许可（permit）过期判定依赖该时钟，节点本地时间漂移时仍能给出一致的判定。
type NTPClock struct {
	mu                 sync.Mutex
	server             string
	query              queryFunc
	offset             time.Duration
	lastSync           time.Time
	syncInterval       time.Duration
	backoff            time.Duration
	backoffInitial     time.Duration
	backoffMax         time.Duration
	unhealthyThreshold time.Duration
	lastError          error
}

var _ infraClock.Clock = (*NTPClock)(nil)

// NewNTPClock 创建NTP时钟
// server 例如 "time.google.com"，syncInterval 建议 5~10 分钟
func NewNTPClock(server string, syncInterval, unhealthyThreshold time.Duration) *NTPClock {
	return newNTPClock(server, syncInterval, unhealthyThreshold, queryNTP)
}

func newNTPClock(server string, syncInterval, unhealthyThreshold time.Duration, query queryFunc) *NTPClock {
	c := &NTPClock{
		server:             server,
		query:              query,
		syncInterval:       syncInterval,
		backoffInitial:     5 * time.Second,
		backoffMax:         5 * time.Minute,
		unhealthyThreshold: unhealthyThreshold,
	}
	// 初始化失败不致命，置零偏移，后续重试
	c.mu.Lock()
	c.syncLocked()
	c.mu.Unlock()
	return c
}

func (c *NTPClock) Now() time.Time {
	c.mu.Lock()
	c.maybeSyncLocked()
	offset := c.offset
	c.mu.Unlock()
	return time.Now().Add(offset)
}

func (c *NTPClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *NTPClock) Timestamp() uint64               { return infraClock.TimestampOf(c.Now()) }

// Health 返回当前健康状态与关键指标
// healthy: 最近一次同步无错误，且偏移量在阈值内
func (c *NTPClock) Health() (healthy bool, offset time.Duration, lastSync time.Time, lastError error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	offset, lastSync, lastError = c.offset, c.lastSync, c.lastError
	if c.unhealthyThreshold > 0 && (offset < -c.unhealthyThreshold || offset > c.unhealthyThreshold) {
		return false, offset, lastSync, lastError
	}
	if lastError != nil {
		return false, offset, lastSync, lastError
	}
	return true, offset, lastSync, nil
}

func (c *NTPClock) maybeSyncLocked() {
	// 有效同步间隔（含退避）
	effective := c.syncInterval
	if c.backoff > 0 {
		if c.backoff > c.backoffMax {
			c.backoff = c.backoffMax
		}
		effective = c.backoff
	}
	if time.Since(c.lastSync) < effective {
		return
	}
	if !c.syncLocked() {
		if c.backoff == 0 {
			c.backoff = c.backoffInitial
		} else {
			c.backoff *= 2
		}
		return
	}
	c.backoff = 0
}

func (c *NTPClock) syncLocked() bool {
	offset, err := c.query(c.server)
	if err != nil {
		c.lastError = err
		// 失败也记录尝试时间，避免每次 Now 都阻塞在网络请求上
		c.lastSync = time.Now()
		return false
	}
	c.offset = offset
	c.lastSync = time.Now()
	c.lastError = nil
	return true
}
