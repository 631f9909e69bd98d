package api

import "time"

// API服务默认配置值
const (
	defaultHTTPEnabled    = true
	defaultHTTPHost       = "127.0.0.1"
	defaultHTTPPort       = 28680
	defaultEnableMetrics  = true
	defaultMaxRequestSize = 1 << 20 // 1MB，足以容纳数十个票据的证明
)

var (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
)
