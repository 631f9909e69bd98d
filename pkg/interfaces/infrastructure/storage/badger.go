// Package storage 定义键值存储接口
//
// 💾 **BadgerDB存储服务**
//
// ACE 引擎的全部持久状态（证明注册表、已验证证明缓存、票据注册表、纪元）
// 保存在同一个 BadgerDB 键空间中。每个引擎操作在单个事务内执行：
// 要么全部写入，要么全部丢弃。
package storage

import (
	"context"
)

// BadgerStore 键值存储的应用接口
type BadgerStore interface {
	// Close 关闭数据库，等待进行中的写事务结束
	Close() error

	// Get 获取指定键的值；键不存在时返回 nil, nil
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对，已存在时覆盖
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除键，不存在时不报错
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 按前缀扫描键值对，返回map的键为键的字符串表示
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// View 在只读事务中执行 fn，写操作返回错误
	View(ctx context.Context, fn func(tx BadgerTransaction) error) error

	// RunInTransaction 在读写事务中执行 fn
	// fn 返回错误时事务被丢弃，否则提交
	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error
}

// BadgerTransaction 键值存储事务
type BadgerTransaction interface {
	// Get 获取指定键的值；键不存在时返回 nil, nil
	Get(key []byte) ([]byte, error)

	// Set 设置键值对
	Set(key, value []byte) error

	// Delete 删除指定键
	Delete(key []byte) error

	// Exists 检查键是否存在
	Exists(key []byte) (bool, error)

	// Merge 读取现有值，经 mergeFunc 合并后写回；键不存在时 existingVal 为 nil
	Merge(key, value []byte, mergeFunc func(existingVal, newVal []byte) []byte) error

	// Iterate 按键序遍历前缀下的键值对，fn 返回错误时停止
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}
