// Package api 提供 HTTP API 配置
package api

import (
	"time"

	"github.com/weisyn/ace/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	Enabled bool   `json:"enabled"` // 是否启用HTTP服务
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口

	// 是否暴露 Prometheus 指标端点
	EnableMetrics bool `json:"enable_metrics"`

	// 超时配置
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`

	// 最大请求体大小(字节)
	MaxRequestSize int64 `json:"max_request_size"`
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置
func New(userConfig *types.UserAPIConfig) *Config {
	options := &APIOptions{
		HTTP: HTTPConfig{
			Enabled:        defaultHTTPEnabled,
			Host:           defaultHTTPHost,
			Port:           defaultHTTPPort,
			EnableMetrics:  defaultEnableMetrics,
			ReadTimeout:    defaultReadTimeout,
			WriteTimeout:   defaultWriteTimeout,
			MaxRequestSize: defaultMaxRequestSize,
		},
	}

	if userConfig != nil {
		if userConfig.HTTPEnabled != nil {
			options.HTTP.Enabled = *userConfig.HTTPEnabled
		}
		if userConfig.HTTPHost != nil {
			options.HTTP.Host = *userConfig.HTTPHost
		}
		if userConfig.HTTPPort != nil {
			options.HTTP.Port = *userConfig.HTTPPort
		}
		if userConfig.MetricsEnabled != nil {
			options.HTTP.EnableMetrics = *userConfig.MetricsEnabled
		}
	}

	return &Config{options: options}
}

// GetOptions 获取API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
