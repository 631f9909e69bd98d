package noteregistry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/pkg/types"
)

// CryptoSystemDefault 当前唯一的密码体系（BN254 上的 join-split 票据）
const CryptoSystemDefault uint8 = 1

// FactoryID 注册表工厂标识：epoch(8) | cryptoSystem(8) | assetType(8)
type FactoryID uint32

// NewFactoryID 打包工厂标识
func NewFactoryID(epoch, cryptoSystem, assetType uint8) FactoryID {
	return FactoryID(uint32(epoch)<<16 | uint32(cryptoSystem)<<8 | uint32(assetType))
}

// AssetType 资产类型：bit0 可转换，bit1 可调整供应量
func AssetType(canConvert, canAdjustSupply bool) uint8 {
	var t uint8
	if canConvert {
		t |= 1
	}
	if canAdjustSupply {
		t |= 2
	}
	return t
}

// Epoch 工厂纪元
func (id FactoryID) Epoch() uint8 { return uint8(id >> 16) }

// CryptoSystem 密码体系
func (id FactoryID) CryptoSystem() uint8 { return uint8(id >> 8) }

// AssetType 资产类型
func (id FactoryID) AssetType() uint8 { return uint8(id) }

func (id FactoryID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Epoch(), id.CryptoSystem(), id.AssetType())
}

// FactoryAddress 默认工厂的确定性地址
func FactoryAddress(id FactoryID) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("ace.factory/" + id.String()))[12:])
}

// DefaultFactories 纪元 1 下四种资产类型的工厂
func DefaultFactories() []FactoryID {
	out := make([]FactoryID, 0, 4)
	for at := uint8(0); at < 4; at++ {
		out = append(out, NewFactoryID(1, CryptoSystemDefault, at))
	}
	return out
}

// SetFactory 登记工厂；纪元不得超过 latestEpoch，已登记的工厂不可修改
func SetFactory(db Store, id FactoryID, factory common.Address, latestEpoch uint64) error {
	if id.Epoch() == 0 || id.CryptoSystem() == 0 || id.AssetType() > 3 {
		return types.WrapMalformedInputError("factory id %s", id)
	}
	if uint64(id.Epoch()) > latestEpoch {
		return types.WrapEpochViolationError(uint64(id.Epoch()), latestEpoch)
	}
	if factory == (common.Address{}) {
		return types.WrapMalformedInputError("factory address is null")
	}
	existing, ok, err := rawdb.ReadFactory(db, uint32(id))
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: factory %s already set to %s", types.ErrImmutabilityViolation, id, existing.Hex())
	}
	return rawdb.WriteFactory(db, uint32(id), factory)
}
