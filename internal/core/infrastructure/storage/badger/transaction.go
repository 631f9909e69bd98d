package badger

import (
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
)

// 确保 Transaction 实现了 storage.BadgerTransaction 接口
var _ storage.BadgerTransaction = (*Transaction)(nil)

// ErrReadOnlyTransaction 只读事务中的写操作
var ErrReadOnlyTransaction = errors.New("read-only transaction")

// TransactionState 定义事务的状态
type TransactionState int32

const (
	// TxActive 表示事务处于活动状态
	TxActive TransactionState = iota
	// TxCommitted 表示事务已提交
	TxCommitted
	// TxDiscarded 表示事务已丢弃
	TxDiscarded
)

// Transaction 实现BadgerTransaction接口
type Transaction struct {
	txn        *badgerdb.Txn
	readOnly   bool
	state      int32 // 使用atomic操作管理状态
	operations int   // 写操作次数
}

func newTransaction(txn *badgerdb.Txn, readOnly bool) *Transaction {
	return &Transaction{txn: txn, readOnly: readOnly, state: int32(TxActive)}
}

func (t *Transaction) checkActive() error {
	if t.getState() != TxActive {
		return fmt.Errorf("事务已关闭")
	}
	return nil
}

func (t *Transaction) checkWritable() error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if t.readOnly {
		return ErrReadOnlyTransaction
	}
	return nil
}

// Get 获取指定键的值
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if err := t.checkActive(); err != nil {
		return nil, err
	}

	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, nil // 键不存在时返回nil值和nil错误
		}
		return nil, err
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("复制键值失败: %w", err)
	}
	return val, nil
}

// Set 设置键值对
func (t *Transaction) Set(key, value []byte) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("设置键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Delete 删除指定键的值
func (t *Transaction) Delete(key []byte) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("删除键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Exists 检查键是否存在
func (t *Transaction) Exists(key []byte) (bool, error) {
	if err := t.checkActive(); err != nil {
		return false, err
	}
	_, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("检查键存在性失败: %w", err)
	}
	return true, nil
}

// Merge 原子性地合并键的现有值与新值
func (t *Transaction) Merge(key, value []byte, mergeFunc func(existingVal, newVal []byte) []byte) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	existingVal, err := t.Get(key)
	if err != nil {
		return fmt.Errorf("获取现有值失败: %w", err)
	}
	if err := t.Set(key, mergeFunc(existingVal, value)); err != nil {
		return fmt.Errorf("设置合并值失败: %w", err)
	}
	return nil
}

// Iterate 按键序遍历前缀下的键值对
func (t *Transaction) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("复制键值失败: %w", err)
		}
		if err := fn(item.KeyCopy(nil), val); err != nil {
			return err
		}
	}
	return nil
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxCommitted)) {
		if t.getState() == TxCommitted {
			return fmt.Errorf("事务已提交")
		}
		return fmt.Errorf("事务已丢弃，无法提交")
	}

	// 没有写操作时无需提交
	if t.operations == 0 {
		t.txn.Discard()
		return nil
	}

	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}
	return nil
}

// Discard 丢弃事务中的所有更改
func (t *Transaction) Discard() {
	if atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxDiscarded)) {
		t.txn.Discard()
	}
}

func (t *Transaction) getState() TransactionState {
	return TransactionState(atomic.LoadInt32(&t.state))
}

// IsActive 检查事务是否处于活动状态
func (t *Transaction) IsActive() bool {
	return t.getState() == TxActive
}
