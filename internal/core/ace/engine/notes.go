package engine

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/weisyn/ace/internal/core/ace/cache"
	"github.com/weisyn/ace/internal/core/ace/noteregistry"
	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/ace/pkg/types"
)

// RegistryInfo 票据注册表视图
type RegistryInfo struct {
	Owner   common.Address
	Custody common.Address
	*rawdb.RegistryRecord
}

// CreateNoteRegistry 为调用方创建票据注册表
func (e *Engine) CreateNoteRegistry(ctx context.Context, caller, ledger common.Address, scalingFactor *uint256.Int, canAdjustSupply, canConvert bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.update(ctx, "createNoteRegistry", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		rec, err := e.notes.Create(tx, caller, ledger, scalingFactor, canAdjustSupply, canConvert)
		if err != nil {
			return err
		}
		events.add(EventRegistryCreated, RegistryEvent{Owner: caller, Ledger: ledger, FactoryID: rec.FactoryID})
		return nil
	})
	e.metrics.observeUpdate("createNoteRegistry", err)
	if err != nil {
		return e.reject("createNoteRegistry", caller, err)
	}
	e.logger.Infof("票据注册表已创建: owner=%s ledger=%s scaling=%s convert=%t adjust=%t",
		caller.Hex(), ledger.Hex(), scalingFactor, canConvert, canAdjustSupply)
	return nil
}

// PublicApprove 公开持有人授权某注册表为 proofHash 存入至多 value
func (e *Engine) PublicApprove(ctx context.Context, caller, registryOwner common.Address, proofHash common.Hash, value *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.update(ctx, "publicApprove", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		if err := e.notes.PublicApprove(tx, caller, registryOwner, proofHash, value); err != nil {
			return err
		}
		events.add(EventPublicApproval, RegistryEvent{Owner: registryOwner, ProofHash: proofHash, PublicOwner: caller, Value: value.Dec()})
		return nil
	})
	if err != nil {
		return e.reject("publicApprove", caller, err)
	}
	e.logger.Debugf("公开授权: publicOwner=%s registry=%s proof=%s value=%s", caller.Hex(), registryOwner.Hex(), proofHash.Hex(), value)
	return nil
}

// UpdateNoteRegistry 以已验证的证明输出更新调用方的注册表
//
// 证明必须先由 proofSender 验证（缓存条目处于 Validated），成功后条目被消费。
// permit 非空时以签名授权代替预先的 approve，只用于存入。
func (e *Engine) UpdateNoteRegistry(ctx context.Context, caller common.Address, kind proofkind.Kind, encodedOutput []byte, proofSender common.Address, permit *types.Permit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var settlement *noteregistry.Settlement
	err := e.update(ctx, "updateNoteRegistry", func(tx storage.BadgerTransaction, events *pending, markLedger func()) error {
		c, err := e.proofs.Decode(kind)
		if err != nil {
			return err
		}
		rec, err := e.notes.Get(tx, caller)
		if err != nil {
			return err
		}
		switch c.Category {
		case proofkind.CategoryBalanced:
		case proofkind.CategoryUtility:
			return fmt.Errorf("%w: kind %d", types.ErrUtilityProofMisuse, kind)
		default:
			if !rec.CanAdjustSupply {
				return fmt.Errorf("%w: kind %d on registry %s", types.ErrSupplyAdjustmentDisabled, kind, caller.Hex())
			}
			return types.WrapMalformedInputError("%s proofs are applied with mint/burn", c.Category)
		}

		out, err := types.DecodeProofOutput(encodedOutput)
		if err != nil {
			return err
		}
		proofHash, err := out.Hash()
		if err != nil {
			return types.WrapMalformedInputError("hash proof output: %v", err)
		}
		ok, err := e.isValidated(tx, kind, proofHash, proofSender)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: no matching validated proof %s", types.ErrReplayRejected, proofHash.Hex())
		}

		if settlement, err = e.notes.Transfer(tx, caller, rec, out, proofHash); err != nil {
			return err
		}
		if err := cache.Consume(tx, kind, proofHash, proofSender); err != nil {
			return err
		}

		events.notes(EventNoteDestroyed, caller, settlement.Spent)
		events.notes(EventNoteCreated, caller, settlement.Created)
		events.add(EventRegistryUpdated, RegistryEvent{
			Owner:       caller,
			Ledger:      rec.Ledger,
			ProofHash:   proofHash,
			PublicOwner: out.PublicOwner,
			Value:       out.PublicValue.String(),
		})

		// 账本是最后一步
		if err := settlement.Execute(permit); err != nil {
			return err
		}
		if !settlement.Amount.IsZero() {
			markLedger()
		}
		return nil
	})
	e.metrics.observeUpdate("updateNoteRegistry", err)
	if err != nil {
		return e.reject("updateNoteRegistry", caller, err)
	}
	e.metrics.consumed(1)
	e.logger.Infof("票据注册表已更新: owner=%s spent=%d created=%d amount=%s deposit=%t",
		caller.Hex(), len(settlement.Spent), len(settlement.Created), settlement.Amount, settlement.Deposit)
	return nil
}

// Mint 验证并应用铸造证明；调用方为注册表所有者
func (e *Engine) Mint(ctx context.Context, caller common.Address, kind proofkind.Kind, proof []byte, sender common.Address) error {
	return e.adjustSupply(ctx, "mint", proofkind.CategoryMint, caller, kind, proof, sender)
}

// Burn 验证并应用销毁证明；调用方为注册表所有者
func (e *Engine) Burn(ctx context.Context, caller common.Address, kind proofkind.Kind, proof []byte, sender common.Address) error {
	return e.adjustSupply(ctx, "burn", proofkind.CategoryBurn, caller, kind, proof, sender)
}

func (e *Engine) adjustSupply(ctx context.Context, op string, want proofkind.Category, caller common.Address, kind proofkind.Kind, proof []byte, sender common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var change *noteregistry.SupplyChange
	err := e.update(ctx, op, func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		c, err := e.proofs.Decode(kind)
		if err != nil {
			return err
		}
		if c.Category != want {
			if c.Category == proofkind.CategoryUtility {
				return fmt.Errorf("%w: kind %d", types.ErrUtilityProofMisuse, kind)
			}
			return types.WrapMalformedInputError("%s requires a %s proof, got %s", op, want, c.Category)
		}
		rec, err := e.notes.Get(tx, caller)
		if err != nil {
			return err
		}
		if !rec.CanAdjustSupply {
			return fmt.Errorf("%w: registry %s", types.ErrSupplyAdjustmentDisabled, caller.Hex())
		}
		res, _, err := e.validate(ctx, tx, kind, sender, proof)
		if err != nil {
			return err
		}

		if want == proofkind.CategoryMint {
			change, err = e.notes.Mint(tx, caller, rec, res.Outputs)
			if err != nil {
				return err
			}
			events.notes(EventNoteCreated, caller, change.Notes)
			events.add(EventSupplyMinted, RegistryEvent{Owner: caller, ProofHash: change.Total})
			return nil
		}
		change, err = e.notes.Burn(tx, caller, rec, res.Outputs)
		if err != nil {
			return err
		}
		events.notes(EventNoteDestroyed, caller, change.Notes)
		events.add(EventSupplyBurned, RegistryEvent{Owner: caller, ProofHash: change.Total})
		return nil
	})
	e.metrics.observeUpdate(op, err)
	if err != nil {
		return e.reject(op, caller, err)
	}
	e.logger.Infof("供应量已调整: op=%s owner=%s notes=%d total=%s", op, caller.Hex(), len(change.Notes), change.Total.Hex())
	return nil
}

// GetRegistry 读取注册表
func (e *Engine) GetRegistry(ctx context.Context, owner common.Address) (*RegistryInfo, error) {
	var info *RegistryInfo
	err := e.view(ctx, func(tx storage.BadgerTransaction) error {
		rec, err := e.notes.Get(tx, owner)
		if err != nil {
			return err
		}
		info = &RegistryInfo{Owner: owner, Custody: noteregistry.CustodyAddress(owner), RegistryRecord: rec}
		return nil
	})
	return info, err
}

// GetNote 读取注册表中的票据
func (e *Engine) GetNote(ctx context.Context, owner common.Address, noteHash common.Hash) (*rawdb.NoteRecord, error) {
	var rec *rawdb.NoteRecord
	err := e.view(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		rec, err = e.notes.GetNote(tx, owner, noteHash)
		return err
	})
	return rec, err
}
