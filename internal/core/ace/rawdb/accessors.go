package rawdb

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/weisyn/ace/pkg/types"
)

// KeyValueReader 只读访问，View 与读写事务都满足
type KeyValueReader interface {
	Get(key []byte) ([]byte, error)
	Exists(key []byte) (bool, error)
}

// KeyValueWriter 写访问
type KeyValueWriter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KeyValueIterator 前缀遍历
type KeyValueIterator interface {
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}

// ============================================================================
//                              记录类型
// ============================================================================

// ProofRecord 证明类型注册记录
type ProofRecord struct {
	Validator   common.Address
	Invalidated bool
}

// RegistryRecord 票据注册表记录
type RegistryRecord struct {
	Ledger          common.Address
	ScalingFactor   *uint256.Int
	CanAdjustSupply bool
	CanConvert      bool
	FactoryID       uint32
	// TotalSupply 注册表托管的公开价值总额（账本单位）
	TotalSupply *uint256.Int
	// TotalMinted 与 TotalBurned 是累计铸造、销毁量的机密票据哈希
	TotalMinted common.Hash
	TotalBurned common.Hash
}

// NoteStatus 票据状态
type NoteStatus uint8

const (
	NoteUnknown NoteStatus = iota
	NoteUnspent
	NoteSpent
)

func (s NoteStatus) String() string {
	switch s {
	case NoteUnspent:
		return "UNSPENT"
	case NoteSpent:
		return "SPENT"
	default:
		return "UNKNOWN"
	}
}

// NoteRecord 票据记录；时间为 unix 秒，DestroyedAt 为 0 表示未花费
type NoteRecord struct {
	Status      NoteStatus
	CreatedAt   uint64
	DestroyedAt uint64
}

// CacheState 已验证证明缓存条目状态
type CacheState uint8

const (
	CacheAbsent CacheState = iota
	CacheValidated
	CacheConsumed
)

// ============================================================================
//                              纪元与参考串
// ============================================================================

// ReadEpoch 读取当前纪元；未写入时返回 0
func ReadEpoch(db KeyValueReader) (uint64, error) {
	data, err := db.Get(epochKey)
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt epoch record: %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// WriteEpoch 写入当前纪元
func WriteEpoch(db KeyValueWriter, epoch uint64) error {
	return db.Set(epochKey, encodeUint64(epoch))
}

// ReadReferenceString 读取参考串；未设置时返回零值
func ReadReferenceString(db KeyValueReader) (types.ReferenceString, error) {
	data, err := db.Get(crsKey)
	if err != nil || data == nil {
		return types.ReferenceString{}, err
	}
	return types.ReferenceStringFromBytes(data)
}

// WriteReferenceString 写入参考串
func WriteReferenceString(db KeyValueWriter, rs types.ReferenceString) error {
	return db.Set(crsKey, rs.Bytes())
}

// ============================================================================
//                              证明注册表
// ============================================================================

// ReadProof 读取证明类型记录；未注册返回 nil
func ReadProof(db KeyValueReader, kind uint32) (*ProofRecord, error) {
	data, err := db.Get(proofKey(kind))
	if err != nil || data == nil {
		return nil, err
	}
	rec := new(ProofRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, fmt.Errorf("decode proof record %d: %w", kind, err)
	}
	return rec, nil
}

// WriteProof 写入证明类型记录
func WriteProof(db KeyValueWriter, kind uint32, rec *ProofRecord) error {
	enc, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	return db.Set(proofKey(kind), enc)
}

// ReadFactory 读取工厂地址；未注册返回零地址与 false
func ReadFactory(db KeyValueReader, id uint32) (common.Address, bool, error) {
	data, err := db.Get(factoryKey(id))
	if err != nil || data == nil {
		return common.Address{}, false, err
	}
	return common.BytesToAddress(data), true, nil
}

// WriteFactory 写入工厂地址
func WriteFactory(db KeyValueWriter, id uint32, addr common.Address) error {
	return db.Set(factoryKey(id), addr.Bytes())
}

// ============================================================================
//                              已验证证明缓存
// ============================================================================

// ReadCacheState 读取缓存条目状态
func ReadCacheState(db KeyValueReader, key common.Hash) (CacheState, error) {
	data, err := db.Get(cacheKey(key))
	if err != nil || data == nil {
		return CacheAbsent, err
	}
	if len(data) != 1 {
		return CacheAbsent, fmt.Errorf("corrupt cache record %s", key.Hex())
	}
	return CacheState(data[0]), nil
}

// WriteCacheState 写入缓存条目状态
func WriteCacheState(db KeyValueWriter, key common.Hash, state CacheState) error {
	return db.Set(cacheKey(key), []byte{byte(state)})
}

// ============================================================================
//                              票据注册表
// ============================================================================

// ReadRegistry 读取注册表记录；不存在返回 nil
func ReadRegistry(db KeyValueReader, owner common.Address) (*RegistryRecord, error) {
	data, err := db.Get(registryKey(owner))
	if err != nil || data == nil {
		return nil, err
	}
	rec := new(RegistryRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", owner.Hex(), err)
	}
	return rec, nil
}

// WriteRegistry 写入注册表记录
func WriteRegistry(db KeyValueWriter, owner common.Address, rec *RegistryRecord) error {
	enc, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	return db.Set(registryKey(owner), enc)
}

// HasRegistry 注册表是否存在
func HasRegistry(db KeyValueReader, owner common.Address) (bool, error) {
	return db.Exists(registryKey(owner))
}

// ReadNote 读取票据记录；不存在返回 nil
func ReadNote(db KeyValueReader, owner common.Address, noteHash common.Hash) (*NoteRecord, error) {
	data, err := db.Get(noteKey(owner, noteHash))
	if err != nil || data == nil {
		return nil, err
	}
	rec := new(NoteRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, fmt.Errorf("decode note %s: %w", noteHash.Hex(), err)
	}
	return rec, nil
}

// WriteNote 写入票据记录
func WriteNote(db KeyValueWriter, owner common.Address, noteHash common.Hash, rec *NoteRecord) error {
	enc, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	return db.Set(noteKey(owner, noteHash), enc)
}

// IterateNotes 按票据哈希顺序遍历注册表内的票据
func IterateNotes(db KeyValueIterator, owner common.Address, fn func(noteHash common.Hash, rec *NoteRecord) error) error {
	prefix := notesPrefix(owner)
	return db.Iterate(prefix, func(key, value []byte) error {
		rec := new(NoteRecord)
		if err := rlp.DecodeBytes(value, rec); err != nil {
			return fmt.Errorf("decode note: %w", err)
		}
		return fn(common.BytesToHash(key[len(prefix):]), rec)
	})
}

// ReadPublicApproval 读取公开授权额度；未授权返回 0
func ReadPublicApproval(db KeyValueReader, publicOwner, registryOwner common.Address, proofHash common.Hash) (*uint256.Int, error) {
	data, err := db.Get(approvalKey(publicOwner, registryOwner, proofHash))
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(data), nil
}

// WritePublicApproval 写入公开授权额度；额度为 0 时删除条目
func WritePublicApproval(db KeyValueWriter, publicOwner, registryOwner common.Address, proofHash common.Hash, value *uint256.Int) error {
	key := approvalKey(publicOwner, registryOwner, proofHash)
	if value == nil || value.IsZero() {
		return db.Delete(key)
	}
	enc := value.Bytes32()
	return db.Set(key, enc[:])
}
