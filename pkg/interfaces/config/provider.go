// Package config provides configuration provider interfaces.
package config

import (
	aceconfig "github.com/weisyn/ace/internal/config/ace"
	apiconfig "github.com/weisyn/ace/internal/config/api"
	clockconfig "github.com/weisyn/ace/internal/config/clock"
	eventconfig "github.com/weisyn/ace/internal/config/event"
	logconfig "github.com/weisyn/ace/internal/config/log"
	badgerconfig "github.com/weisyn/ace/internal/config/storage/badger"
)

// Provider 配置提供者接口
type Provider interface {
	// GetEnvironment 获取运行环境 dev | test | prod
	GetEnvironment() string

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetBadger 获取BadgerDB存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetClock 获取时钟配置
	GetClock() *clockconfig.ClockOptions

	// GetEvent 获取事件配置
	GetEvent() *eventconfig.EventOptions

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetACE 获取 ACE 引擎配置
	GetACE() *aceconfig.ACEOptions
}
