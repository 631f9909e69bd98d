// Package cache 已验证证明缓存
//
// 条目键为 keccak256(kind ‖ outputHash ‖ submitter)，状态只能单向推进：
// Absent → Validated → Consumed。被消费的条目不会复活。
package cache

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/pkg/types"
)

// Store 缓存需要的读写能力
type Store interface {
	rawdb.KeyValueReader
	rawdb.KeyValueWriter
}

// Key 缓存键
func Key(kind proofkind.Kind, outputHash common.Hash, submitter common.Address) common.Hash {
	var word [types.WordSize]byte
	word[28] = byte(kind >> 24)
	word[29] = byte(kind >> 16)
	word[30] = byte(kind >> 8)
	word[31] = byte(kind)
	return crypto.Keccak256Hash(word[:], outputHash.Bytes(), common.LeftPadBytes(submitter.Bytes(), types.WordSize))
}

// Record 记录一条已验证输出；已消费的条目拒绝重新记录
func Record(db Store, kind proofkind.Kind, outputHash common.Hash, submitter common.Address) error {
	key := Key(kind, outputHash, submitter)
	state, err := rawdb.ReadCacheState(db, key)
	if err != nil {
		return err
	}
	switch state {
	case rawdb.CacheConsumed:
		return fmt.Errorf("%w: output %s already consumed", types.ErrReplayRejected, outputHash.Hex())
	case rawdb.CacheValidated:
		return nil
	}
	return rawdb.WriteCacheState(db, key, rawdb.CacheValidated)
}

// IsValidated 条目是否处于 Validated 状态
func IsValidated(db rawdb.KeyValueReader, kind proofkind.Kind, outputHash common.Hash, submitter common.Address) (bool, error) {
	state, err := rawdb.ReadCacheState(db, Key(kind, outputHash, submitter))
	if err != nil {
		return false, err
	}
	return state == rawdb.CacheValidated, nil
}

// Consume 消费条目；零哈希、不存在或已消费时返回 ReplayRejected
func Consume(db Store, kind proofkind.Kind, outputHash common.Hash, submitter common.Address) error {
	if outputHash == (common.Hash{}) {
		return fmt.Errorf("%w: empty proof hash", types.ErrReplayRejected)
	}
	key := Key(kind, outputHash, submitter)
	state, err := rawdb.ReadCacheState(db, key)
	if err != nil {
		return err
	}
	if state != rawdb.CacheValidated {
		return fmt.Errorf("%w: no validated proof for %s", types.ErrReplayRejected, outputHash.Hex())
	}
	return rawdb.WriteCacheState(db, key, rawdb.CacheConsumed)
}
