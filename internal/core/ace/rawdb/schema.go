// Package rawdb ACE 引擎状态的底层键空间与记录编解码
//
// 全部状态保存在同一个 BadgerDB 键空间中，采用前缀区分不同记录，
// 定长字段（地址、哈希、证明类型）直接拼接，避免键冲突。
// 记录统一使用 RLP 编码。访问器只做编解码，不做业务校验。
package rawdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// 键前缀
var (
	epochKey = []byte("ace:epoch") // -> 纪元 (8 bytes BE)
	crsKey   = []byte("ace:crs")   // -> 参考串 (192 bytes)

	proofPrefix    = []byte("ace:k:") // + kind (4 bytes BE) -> ProofRecord RLP
	factoryPrefix  = []byte("ace:f:") // + factoryID (4 bytes BE) -> 工厂地址
	cachePrefix    = []byte("ace:c:") // + cacheKey -> 缓存状态 (1 byte)
	registryPrefix = []byte("ace:r:") // + owner -> RegistryRecord RLP
	notePrefix     = []byte("ace:n:") // + owner + noteHash -> NoteRecord RLP
	approvalPrefix = []byte("ace:a:") // + publicOwner + registryOwner + proofHash -> 额度 (32 bytes BE)
)

func encodeUint32(v uint32) []byte {
	enc := make([]byte, 4)
	binary.BigEndian.PutUint32(enc, v)
	return enc
}

func encodeUint64(v uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, v)
	return enc
}

// concat 拼接键；总是分配新切片，前缀变量不会被改写
func concat(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	key := make([]byte, 0, size)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// proofKey = proofPrefix + kind
func proofKey(kind uint32) []byte {
	return concat(proofPrefix, encodeUint32(kind))
}

// factoryKey = factoryPrefix + factoryID
func factoryKey(id uint32) []byte {
	return concat(factoryPrefix, encodeUint32(id))
}

// cacheKey = cachePrefix + validatedProofHash
func cacheKey(key common.Hash) []byte {
	return concat(cachePrefix, key.Bytes())
}

// registryKey = registryPrefix + owner
func registryKey(owner common.Address) []byte {
	return concat(registryPrefix, owner.Bytes())
}

// noteKey = notePrefix + owner + noteHash
func noteKey(owner common.Address, noteHash common.Hash) []byte {
	return concat(notePrefix, owner.Bytes(), noteHash.Bytes())
}

// notesPrefix 某个注册表下全部票据的前缀
func notesPrefix(owner common.Address) []byte {
	return concat(notePrefix, owner.Bytes())
}

// approvalKey = approvalPrefix + publicOwner + registryOwner + proofHash
func approvalKey(publicOwner, registryOwner common.Address, proofHash common.Hash) []byte {
	return concat(approvalPrefix, publicOwner.Bytes(), registryOwner.Bytes(), proofHash.Bytes())
}
