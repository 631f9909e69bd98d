// Package badger 提供 BadgerDB 存储配置
package badger

import (
	"path/filepath"

	configtypes "github.com/weisyn/ace/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	// === 基础配置 ===
	Path       string `json:"path"`        // 数据库存储路径
	InMemory   bool   `json:"in_memory"`   // 是否使用内存模式
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入

	// === 性能配置 ===
	MemTableSize int64 `json:"mem_table_size"` // 内存表大小

	// === 维护配置 ===
	EnableAutoGC   bool    `json:"enable_auto_gc"`   // 是否定期执行值日志GC
	GCDiscardRatio float64 `json:"gc_discard_ratio"` // 值日志GC丢弃比例
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置
//
// 路径规则：配置了 storage.data_root 时使用 {data_root}/badger，否则使用默认路径。
func New(userConfig *configtypes.UserStorageConfig) *Config {
	options := &BadgerOptions{
		Path:           defaultPath,
		SyncWrites:     defaultSyncWrites,
		MemTableSize:   defaultMemTableSize,
		EnableAutoGC:   defaultEnableAutoGC,
		GCDiscardRatio: defaultGCDiscardRatio,
	}

	if userConfig != nil {
		if userConfig.DataRoot != nil {
			options.Path = filepath.Join(*userConfig.DataRoot, "badger")
		}
		if userConfig.InMemory != nil {
			options.InMemory = *userConfig.InMemory
		}
	}

	return &Config{options: options}
}

// NewFromOptions 从BadgerOptions创建配置
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{options: options}
}

// NewInMemory 内存模式配置，测试与演示使用
func NewInMemory() *Config {
	c := New(nil)
	c.options.InMemory = true
	c.options.EnableAutoGC = false
	return c
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// GetPath 获取数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsInMemory 是否内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// IsSyncWritesEnabled 是否启用同步写入
func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

// GetMemTableSize 获取内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}

// IsAutoGCEnabled 是否启用定期值日志GC
func (c *Config) IsAutoGCEnabled() bool {
	return c.options.EnableAutoGC && !c.options.InMemory
}

// GetGCDiscardRatio 值日志GC丢弃比例
func (c *Config) GetGCDiscardRatio() float64 {
	return c.options.GCDiscardRatio
}
