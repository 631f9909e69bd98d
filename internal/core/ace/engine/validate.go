package engine

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/cache"
	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/internal/core/ace/registry"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/ace/pkg/types"
)

// ValidationResult 一次证明验证的结果
type ValidationResult struct {
	Outputs types.ProofOutputs
	// Hashes 每个输出的哈希，即缓存键中的 outputHash
	Hashes []common.Hash
	// Cached 输出是否写入了已验证证明缓存；工具类证明不缓存
	Cached bool
}

// ValidateProof 验证证明并把输出记入缓存
//
// submitter 是缓存条目的归属方，sender 进入挑战 transcript。
func (e *Engine) ValidateProof(ctx context.Context, submitter common.Address, kind proofkind.Kind, sender common.Address, proof []byte) (*ValidationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	label := unknownValidator
	var res *ValidationResult
	err := e.update(ctx, "validateProof", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		var err error
		res, label, err = e.validate(ctx, tx, kind, sender, proof)
		if err != nil {
			return err
		}
		c, _ := e.proofs.Decode(kind)
		if c.Category == proofkind.CategoryUtility {
			return nil
		}
		for _, h := range res.Hashes {
			if err := cache.Record(tx, kind, h, submitter); err != nil {
				return err
			}
		}
		res.Cached = true
		events.add(EventProofValidated, ValidationEvent{Kind: kind, Submitter: submitter, Hashes: res.Hashes})
		return nil
	})
	e.metrics.observeValidation(label, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, e.reject("validateProof", submitter, err)
	}
	e.logger.Debugf("证明验证通过: kind=%d submitter=%s outputs=%d cached=%t", kind, submitter.Hex(), len(res.Outputs), res.Cached)
	return res, nil
}

// unknownValidator 证明类型无法解析时的指标标签
const unknownValidator = "unknown"

// validate 解析证明类型并调用验证器，不写缓存
//
// 返回的名称是解析到的验证器名，解析失败时为 unknownValidator；
// 指标只按它打标签，调用方提交的任意 kind 不会产生新的序列。
func (e *Engine) validate(ctx context.Context, db rawdb.KeyValueReader, kind proofkind.Kind, sender common.Address, proof []byte) (*ValidationResult, string, error) {
	v, _, err := e.proofs.Resolve(db, kind)
	if err != nil {
		return nil, unknownValidator, err
	}
	name := v.Name()
	rs, err := rawdb.ReadReferenceString(db)
	if err != nil {
		return nil, name, err
	}
	outs, err := v.Validate(ctx, proof, &aceiface.ValidationContext{Sender: sender, ReferenceString: rs})
	if err != nil {
		return nil, name, err
	}
	res := &ValidationResult{Outputs: outs, Hashes: make([]common.Hash, len(outs))}
	for i := range outs {
		if res.Hashes[i], err = outs[i].Hash(); err != nil {
			return nil, name, types.WrapMalformedInputError("hash proof output %d: %v", i, err)
		}
	}
	return res, name, nil
}

// ValidateProofByHash 条目 (kind, hash, submitter) 是否处于已验证状态
//
// 未注册、已失效或格式错误的证明类型返回 false 而不是错误。
func (e *Engine) ValidateProofByHash(ctx context.Context, kind proofkind.Kind, hash common.Hash, submitter common.Address) (bool, error) {
	var ok bool
	err := e.view(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		ok, err = e.isValidated(tx, kind, hash, submitter)
		return err
	})
	return ok, err
}

func (e *Engine) isValidated(db rawdb.KeyValueReader, kind proofkind.Kind, hash common.Hash, submitter common.Address) (bool, error) {
	status, _, err := e.proofs.Status(db, kind)
	if err != nil || status != registry.StatusRegistered {
		return false, err
	}
	return cache.IsValidated(db, kind, hash, submitter)
}

// ClearProofByHashes 消费调用方自己的缓存条目
func (e *Engine) ClearProofByHashes(ctx context.Context, caller common.Address, kind proofkind.Kind, hashes []common.Hash) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.update(ctx, "clearProofByHashes", func(tx storage.BadgerTransaction, events *pending, _ func()) error {
		if _, err := e.proofs.Decode(kind); err != nil {
			return err
		}
		for _, h := range hashes {
			if err := cache.Consume(tx, kind, h, caller); err != nil {
				return err
			}
		}
		events.add(EventProofsCleared, ValidationEvent{Kind: kind, Submitter: caller, Hashes: hashes})
		return nil
	})
	if err != nil {
		return e.reject("clearProofByHashes", caller, err)
	}
	e.metrics.consumed(len(hashes))
	e.logger.Debugf("缓存条目已清除: kind=%d caller=%s count=%d", kind, caller.Hex(), len(hashes))
	return nil
}
