package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/group"
	"github.com/weisyn/ace/internal/core/ace/noteregistry"
	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/internal/core/ace/registry"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/ace/pkg/types"
)

// ============================================================================
//                              证明注册表（特权操作）
// ============================================================================

// SetProof 注册证明类型到验证器地址
func (e *Engine) SetProof(ctx context.Context, caller common.Address, kind proofkind.Kind, validator common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner("setProof", caller); err != nil {
		return e.reject("setProof", caller, err)
	}
	err := e.update(ctx, "setProof", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		if err := e.proofs.SetProof(tx, kind, validator); err != nil {
			return err
		}
		c, _ := e.proofs.Decode(kind)
		events.add(EventProofRegistered, ProofEvent{Kind: kind, Validator: validator, Epoch: c.Epoch})
		return nil
	})
	if err != nil {
		return e.reject("setProof", caller, err)
	}
	e.logger.Infof("证明类型已注册: kind=%d validator=%s", kind, validator.Hex())
	return nil
}

// InvalidateProof 使证明类型永久失效
func (e *Engine) InvalidateProof(ctx context.Context, caller common.Address, kind proofkind.Kind) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner("invalidateProof", caller); err != nil {
		return e.reject("invalidateProof", caller, err)
	}
	err := e.update(ctx, "invalidateProof", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		if err := e.proofs.Invalidate(tx, kind); err != nil {
			return err
		}
		events.add(EventProofInvalidated, ProofEvent{Kind: kind})
		return nil
	})
	if err != nil {
		return e.reject("invalidateProof", caller, err)
	}
	e.logger.Infof("证明类型已失效: kind=%d", kind)
	return nil
}

// IncrementEpoch 纪元加一，返回新纪元
func (e *Engine) IncrementEpoch(ctx context.Context, caller common.Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner("incrementEpoch", caller); err != nil {
		return 0, e.reject("incrementEpoch", caller, err)
	}
	var epoch uint64
	err := e.update(ctx, "incrementEpoch", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		var err error
		if epoch, err = e.proofs.IncrementEpoch(tx); err != nil {
			return err
		}
		events.add(EventEpochIncremented, ProofEvent{Epoch: epoch})
		return nil
	})
	if err != nil {
		return 0, e.reject("incrementEpoch", caller, err)
	}
	e.logger.Infof("纪元已递增: epoch=%d", epoch)
	return epoch, nil
}

// LatestEpoch 当前纪元
func (e *Engine) LatestEpoch(ctx context.Context) (uint64, error) {
	var epoch uint64
	err := e.view(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		epoch, err = e.proofs.LatestEpoch(tx)
		return err
	})
	return epoch, err
}

// SetReferenceString 设置公共参考串；参考串必须格式正确
func (e *Engine) SetReferenceString(ctx context.Context, caller common.Address, rs types.ReferenceString) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner("setReferenceString", caller); err != nil {
		return e.reject("setReferenceString", caller, err)
	}
	if _, err := group.DecodeReferenceString(rs); err != nil {
		return e.reject("setReferenceString", caller, err)
	}
	err := e.update(ctx, "setReferenceString", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		if err := rawdb.WriteReferenceString(tx, rs); err != nil {
			return err
		}
		events.add(EventReferenceStringUpdated, rs)
		return nil
	})
	if err != nil {
		return e.reject("setReferenceString", caller, err)
	}
	e.logger.Info("公共参考串已更新")
	return nil
}

// ReferenceString 当前公共参考串；未设置时为零值
func (e *Engine) ReferenceString(ctx context.Context) (types.ReferenceString, error) {
	var rs types.ReferenceString
	err := e.view(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		rs, err = rawdb.ReadReferenceString(tx)
		return err
	})
	return rs, err
}

// SetFactory 登记票据注册表工厂
func (e *Engine) SetFactory(ctx context.Context, caller common.Address, id noteregistry.FactoryID, factory common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner("setFactory", caller); err != nil {
		return e.reject("setFactory", caller, err)
	}
	err := e.update(ctx, "setFactory", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		latest, err := e.proofs.LatestEpoch(tx)
		if err != nil {
			return err
		}
		if err := noteregistry.SetFactory(tx, id, factory, latest); err != nil {
			return err
		}
		events.add(EventFactorySet, FactoryEvent{FactoryID: uint32(id), Address: factory})
		return nil
	})
	if err != nil {
		return e.reject("setFactory", caller, err)
	}
	e.logger.Infof("注册表工厂已登记: id=%s address=%s", id, factory.Hex())
	return nil
}

// GetProofStatus 证明类型状态与验证器地址
func (e *Engine) GetProofStatus(ctx context.Context, kind proofkind.Kind) (registry.Status, common.Address, error) {
	var (
		status registry.Status
		addr   common.Address
	)
	err := e.view(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		status, addr, err = e.proofs.Status(tx, kind)
		return err
	})
	return status, addr, err
}

// GetValidatorAddress 已注册证明类型的验证器地址；未注册或已失效返回错误
func (e *Engine) GetValidatorAddress(ctx context.Context, kind proofkind.Kind) (common.Address, error) {
	var addr common.Address
	err := e.view(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		addr, err = e.proofs.GetValidator(tx, kind)
		return err
	})
	return addr, err
}
