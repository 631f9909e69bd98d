// Package clock 提供时钟服务配置
package clock

import (
	"os"
	"strconv"
	"time"

	configtypes "github.com/weisyn/ace/pkg/types"
)

// ClockOptions 时钟配置
type ClockOptions struct {
	Type            string        `json:"type"` // system | ntp
	NTPServer       string        `json:"ntp_server"`
	SyncInterval    time.Duration `json:"sync_interval"`
	OffsetThreshold time.Duration `json:"offset_threshold"` // 判定不健康的偏移阈值
}

// Config 提供访问选项
type Config struct {
	options *ClockOptions
}

// New 创建配置
//
// 环境变量优先于配置文件：
//
//	CLOCK_TYPE (system|ntp)
//	CLOCK_NTP_SERVER
//	CLOCK_SYNC_INTERVAL_MS
func New(userConfig *configtypes.UserClockConfig) *Config {
	opts := &ClockOptions{
		Type:            defaultType,
		NTPServer:       defaultNTPServer,
		SyncInterval:    defaultSyncInterval,
		OffsetThreshold: defaultOffsetThreshold,
	}

	if userConfig != nil {
		if userConfig.Type != nil {
			opts.Type = *userConfig.Type
		}
		if userConfig.NTPServer != nil {
			opts.NTPServer = *userConfig.NTPServer
		}
	}

	if v := os.Getenv("CLOCK_TYPE"); v != "" {
		opts.Type = v
	}
	if v := os.Getenv("CLOCK_NTP_SERVER"); v != "" {
		opts.NTPServer = v
	}
	if v := os.Getenv("CLOCK_SYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.SyncInterval = time.Duration(n) * time.Millisecond
		}
	}

	return &Config{options: opts}
}

func (c *Config) GetOptions() *ClockOptions { return c.options }
