package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/ace/internal/config/ace"
	"github.com/weisyn/ace/internal/config/api"
	"github.com/weisyn/ace/internal/config/clock"
	"github.com/weisyn/ace/internal/config/event"
	"github.com/weisyn/ace/internal/config/log"
	"github.com/weisyn/ace/internal/config/storage/badger"
	"github.com/weisyn/ace/pkg/interfaces/config"
	"github.com/weisyn/ace/pkg/types"
)

const defaultEnvironment = "dev"

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
	ace       *ace.ACEOptions
}

var _ config.Provider = (*Provider)(nil)

// NewProvider 创建配置提供者；ACE 配置在此处校验，格式错误直接返回
func NewProvider(appConfig *types.AppConfig) (*Provider, error) {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	aceCfg, err := ace.New(appConfig.ACE)
	if err != nil {
		return nil, err
	}
	return &Provider{appConfig: appConfig, ace: aceCfg.GetOptions()}, nil
}

// GetEnvironment 获取运行环境
func (p *Provider) GetEnvironment() string {
	if p.appConfig.Environment != nil && *p.appConfig.Environment != "" {
		return *p.appConfig.Environment
	}
	return defaultEnvironment
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetBadger 获取BadgerDB存储配置
//
// 未配置 storage.data_root 时回退到 data_dir。
func (p *Provider) GetBadger() *badger.BadgerOptions {
	storage := p.appConfig.Storage
	if (storage == nil || storage.DataRoot == nil) && p.appConfig.DataDir != nil {
		merged := types.UserStorageConfig{DataRoot: p.appConfig.DataDir}
		if storage != nil {
			merged.InMemory = storage.InMemory
		}
		storage = &merged
	}
	return badger.New(storage).GetOptions()
}

// GetClock 获取时钟配置
func (p *Provider) GetClock() *clock.ClockOptions {
	return clock.New(p.appConfig.Clock).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	return event.New(p.appConfig.Event).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetACE 获取 ACE 引擎配置
func (p *Provider) GetACE() *ace.ACEOptions {
	return p.ace
}

// appOptions AppOptions 的文件实现
type appOptions struct {
	appConfig *types.AppConfig
}

func (o *appOptions) GetAppConfig() *types.AppConfig { return o.appConfig }

// NewAppOptions 包装已解析的应用配置
func NewAppOptions(appConfig *types.AppConfig) config.AppOptions {
	return &appOptions{appConfig: appConfig}
}

// LoadFromFile 读取 JSON 配置文件；path 为空时返回默认配置
func LoadFromFile(path string) (config.AppOptions, error) {
	if path == "" {
		return NewAppOptions(&types.AppConfig{}), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes 解析 JSON 配置内容（内置配置走这里）
func LoadFromBytes(data []byte) (config.AppOptions, error) {
	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return NewAppOptions(&appConfig), nil
}
