// Package registry 证明注册表：证明类型到验证器地址的映射与纪元
//
// 每个证明类型的状态机为 Unset → Registered → Invalidated，失效是终态。
// 已注册的条目不可修改；只能注册纪元不超过当前纪元的类型。
// 权限检查由引擎完成，这里只维护状态。
package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/internal/core/ace/validators"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/types"
)

// InitialEpoch 纪元起始值
const InitialEpoch uint64 = 1

// Status 证明类型状态
type Status uint8

const (
	StatusUnset Status = iota
	StatusRegistered
	StatusInvalidated
)

func (s Status) String() string {
	switch s {
	case StatusRegistered:
		return "REGISTERED"
	case StatusInvalidated:
		return "INVALIDATED"
	default:
		return "UNSET"
	}
}

// Store 注册表需要的读写能力
type Store interface {
	rawdb.KeyValueReader
	rawdb.KeyValueWriter
}

// Registry 证明注册表
type Registry struct {
	layout proofkind.Layout
	set    *validators.Set
}

// New 创建注册表；set 提供"已部署"的验证器
func New(layout proofkind.Layout, set *validators.Set) *Registry {
	return &Registry{layout: layout, set: set}
}

// Layout 证明类型编码布局
func (r *Registry) Layout() proofkind.Layout {
	return r.layout
}

// LatestEpoch 当前纪元
func (r *Registry) LatestEpoch(db rawdb.KeyValueReader) (uint64, error) {
	epoch, err := rawdb.ReadEpoch(db)
	if err != nil {
		return 0, err
	}
	if epoch == 0 {
		return InitialEpoch, nil
	}
	return epoch, nil
}

// IncrementEpoch 纪元加一并返回新值
func (r *Registry) IncrementEpoch(db Store) (uint64, error) {
	epoch, err := r.LatestEpoch(db)
	if err != nil {
		return 0, err
	}
	limit := uint64(1)<<r.layout.EpochBits - 1
	if epoch >= limit {
		return 0, types.WrapEpochViolationError(epoch+1, epoch)
	}
	epoch++
	if err := rawdb.WriteEpoch(db, epoch); err != nil {
		return 0, err
	}
	return epoch, nil
}

// Decode 解码证明类型，格式错误返回 MalformedInput
func (r *Registry) Decode(kind proofkind.Kind) (proofkind.Components, error) {
	c, err := r.layout.Decode(kind)
	if err != nil {
		return c, types.WrapMalformedInputError("%v", err)
	}
	return c, nil
}

// SetProof 注册证明类型
func (r *Registry) SetProof(db Store, kind proofkind.Kind, validator common.Address) error {
	c, err := r.Decode(kind)
	if err != nil {
		return err
	}
	latest, err := r.LatestEpoch(db)
	if err != nil {
		return err
	}
	if c.Epoch > latest {
		return types.WrapEpochViolationError(c.Epoch, latest)
	}
	rec, err := rawdb.ReadProof(db, uint32(kind))
	if err != nil {
		return err
	}
	if rec != nil {
		return fmt.Errorf("%w: kind %d already set to %s", types.ErrImmutabilityViolation, kind, rec.Validator.Hex())
	}
	if validator == (common.Address{}) {
		return types.WrapMalformedInputError("validator address is null")
	}
	if !r.set.HasCode(validator) {
		return types.WrapMalformedInputError("validator %s has no code", validator.Hex())
	}
	return rawdb.WriteProof(db, uint32(kind), &rawdb.ProofRecord{Validator: validator})
}

// Invalidate 使已注册的证明类型永久失效
func (r *Registry) Invalidate(db Store, kind proofkind.Kind) error {
	if _, err := r.Decode(kind); err != nil {
		return err
	}
	rec, err := rawdb.ReadProof(db, uint32(kind))
	if err != nil {
		return err
	}
	if rec == nil || rec.Invalidated {
		return types.WrapUnknownProofKindError(uint32(kind))
	}
	rec.Invalidated = true
	return rawdb.WriteProof(db, uint32(kind), rec)
}

// Status 证明类型状态与登记的验证器地址；格式错误的类型视为 Unset
func (r *Registry) Status(db rawdb.KeyValueReader, kind proofkind.Kind) (Status, common.Address, error) {
	if _, err := r.layout.Decode(kind); err != nil {
		return StatusUnset, common.Address{}, nil
	}
	rec, err := rawdb.ReadProof(db, uint32(kind))
	if err != nil || rec == nil {
		return StatusUnset, common.Address{}, err
	}
	if rec.Invalidated {
		return StatusInvalidated, rec.Validator, nil
	}
	return StatusRegistered, rec.Validator, nil
}

// GetValidator 已注册证明类型的验证器地址；未注册或已失效返回错误
func (r *Registry) GetValidator(db rawdb.KeyValueReader, kind proofkind.Kind) (common.Address, error) {
	status, addr, err := r.Status(db, kind)
	if err != nil {
		return common.Address{}, err
	}
	if status != StatusRegistered {
		return common.Address{}, types.WrapUnknownProofKindError(uint32(kind))
	}
	return addr, nil
}

// Resolve 解析证明类型到验证器实现
func (r *Registry) Resolve(db rawdb.KeyValueReader, kind proofkind.Kind) (aceiface.ProofValidator, proofkind.Components, error) {
	c, err := r.Decode(kind)
	if err != nil {
		return nil, c, err
	}
	addr, err := r.GetValidator(db, kind)
	if err != nil {
		return nil, c, err
	}
	v, ok := r.set.Lookup(addr)
	if !ok {
		return nil, c, fmt.Errorf("%w: validator %s for kind %d has no code", types.ErrUnknownOrDisabledProofKind, addr.Hex(), kind)
	}
	return v, c, nil
}
