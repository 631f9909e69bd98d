package app

import (
	"github.com/weisyn/ace/pkg/interfaces/config"
	"github.com/weisyn/ace/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项，实现 config.AppOptions 接口
type options struct {
	// 用户配置
	appConfig *types.AppConfig

	// API支持开关 (默认启用)
	enableAPI bool

	// 额外的 fx 选项（测试注入）
	extra []interface{}
}

// 编译时校验options是否实现了config.AppOptions接口
var _ config.AppOptions = (*options)(nil)

// WithAppConfig 使用已解析的用户配置
func WithAppConfig(appConfig *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = appConfig
	}
}

// WithoutAPI 禁用API模块
func WithoutAPI() Option {
	return func(o *options) {
		o.enableAPI = false
	}
}

// WithPopulate 启动后把容器中的实例填充到 targets（指针）
func WithPopulate(targets ...interface{}) Option {
	return func(o *options) {
		o.extra = append(o.extra, targets...)
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	o := &options{enableAPI: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.appConfig == nil {
		o.appConfig = &types.AppConfig{}
	}
	return o
}

// GetAppConfig 获取应用配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
