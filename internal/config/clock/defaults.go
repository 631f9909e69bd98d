package clock

import "time"

// 时钟服务配置默认值
const (
	// defaultType 默认系统时钟
	defaultType = "system"

	// defaultNTPServer 默认NTP服务器
	defaultNTPServer = "time.google.com"
)

var (
	// defaultSyncInterval NTP 同步间隔
	defaultSyncInterval = 5 * time.Minute

	// defaultOffsetThreshold 偏移超过该值时告警
	defaultOffsetThreshold = 500 * time.Millisecond
)
