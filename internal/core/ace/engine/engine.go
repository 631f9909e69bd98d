// Package engine ACE 引擎：证明注册表、已验证证明缓存与票据注册表的聚合
//
// 🔐 **ACE 引擎**
//
// 引擎拥有全部持久状态（BadgerDB 键空间），对外提供唯一的操作入口：
//   - 每个操作在引擎互斥锁下、单个 Badger 事务内执行，要么全部生效要么全部丢弃
//   - 变更操作先经过 WriteGate；只读模式下直接拒绝
//   - 账本转账是事务闭包的最后一步，失败即丢弃事务
//   - 事件只在事务提交后发布
//   - 特权操作（注册证明、失效、纪元、参考串、工厂）统一经 requireOwner 鉴权
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/weisyn/ace/internal/core/ace/noteregistry"
	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/internal/core/ace/registry"
	"github.com/weisyn/ace/internal/core/ace/validators"
	"github.com/weisyn/ace/internal/core/ace/validators/joinsplit"
	"github.com/weisyn/ace/internal/core/ace/validators/publicrange"
	logimpl "github.com/weisyn/ace/internal/core/infrastructure/log"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/ace/pkg/types"
)

// ReasonReadOnly 引擎处于只读模式
const ReasonReadOnly = "READ_ONLY"

// Config 引擎配置
type Config struct {
	Owner  common.Address
	Layout proofkind.Layout
	// ReferenceString 启动时写入的参考串；已有参考串时忽略
	ReferenceString types.ReferenceString
}

// Deps 引擎依赖；Bus、Gate、Metrics、Clock 可为空
type Deps struct {
	Store      storage.BadgerStore
	Validators *validators.Set
	Ledgers    aceiface.LedgerDirectory
	Clock      clock.Clock
	Bus        event.EventBus
	Gate       writegate.WriteGate
	Metrics    *Metrics
	Logger     log.Logger
}

// Engine ACE 引擎
type Engine struct {
	mu sync.Mutex

	cfg        Config
	store      storage.BadgerStore
	validators *validators.Set
	proofs     *registry.Registry
	notes      *noteregistry.Manager
	bus        event.EventBus
	gate       writegate.WriteGate
	metrics    *Metrics
	logger     log.Logger
}

// New 创建引擎
func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Store == nil {
		return nil, errors.New("engine requires a store")
	}
	if deps.Validators == nil {
		deps.Validators = validators.NewSet()
	}
	if deps.Ledgers == nil {
		return nil, errors.New("engine requires a ledger directory")
	}
	if cfg.Layout == (proofkind.Layout{}) {
		cfg.Layout = proofkind.DefaultLayout
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	if cfg.Owner == (common.Address{}) {
		return nil, errors.New("engine owner must be set")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logimpl.FromZap(zap.NewNop())
	}
	return &Engine{
		cfg:        cfg,
		store:      deps.Store,
		validators: deps.Validators,
		proofs:     registry.New(cfg.Layout, deps.Validators),
		notes:      noteregistry.NewManager(deps.Ledgers, deps.Clock),
		bus:        deps.Bus,
		gate:       deps.Gate,
		metrics:    deps.Metrics,
		logger:     logger,
	}, nil
}

// Owner 特权操作员
func (e *Engine) Owner() common.Address {
	return e.cfg.Owner
}

// Layout 证明类型编码布局
func (e *Engine) Layout() proofkind.Layout {
	return e.cfg.Layout
}

// Validators 已部署的验证器集合
func (e *Engine) Validators() *validators.Set {
	return e.validators
}

// Bootstrap 初始化纪元、参考串、内置证明类型与默认工厂；已存在的条目保持不变
func (e *Engine) Bootstrap(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	builtin := []struct {
		category proofkind.Category
		id       uint64
		name     string
	}{
		{proofkind.CategoryBalanced, 1, joinsplit.Name},
		{proofkind.CategoryMint, 1, joinsplit.MintName},
		{proofkind.CategoryBurn, 1, joinsplit.BurnName},
		{proofkind.CategoryUtility, 2, publicrange.Name},
	}

	return e.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		epoch, err := rawdb.ReadEpoch(tx)
		if err != nil {
			return err
		}
		if epoch == 0 {
			if err := rawdb.WriteEpoch(tx, registry.InitialEpoch); err != nil {
				return err
			}
		}

		if !e.cfg.ReferenceString.IsZero() {
			rs, err := rawdb.ReadReferenceString(tx)
			if err != nil {
				return err
			}
			switch {
			case rs.IsZero():
				if err := rawdb.WriteReferenceString(tx, e.cfg.ReferenceString); err != nil {
					return err
				}
			case rs != e.cfg.ReferenceString:
				e.logger.Warn("已保存的参考串与配置不同，沿用已保存的参考串")
			}
		}

		for _, b := range builtin {
			addr := validators.AddressOf(b.name)
			if !e.validators.HasCode(addr) {
				continue
			}
			kind, err := e.cfg.Layout.Encode(registry.InitialEpoch, b.category, b.id)
			if err != nil {
				return err
			}
			status, _, err := e.proofs.Status(tx, kind)
			if err != nil {
				return err
			}
			if status != registry.StatusUnset {
				continue
			}
			if err := e.proofs.SetProof(tx, kind, addr); err != nil {
				return err
			}
			e.logger.Infof("内置证明类型已注册: kind=%d validator=%s(%s)", kind, b.name, addr.Hex())
		}

		for _, id := range noteregistry.DefaultFactories() {
			if _, ok, err := rawdb.ReadFactory(tx, uint32(id)); err != nil {
				return err
			} else if ok {
				continue
			}
			if err := noteregistry.SetFactory(tx, id, noteregistry.FactoryAddress(id), registry.InitialEpoch); err != nil {
				return err
			}
		}
		return nil
	})
}

// ============================================================================
//                              事务与鉴权
// ============================================================================

func (e *Engine) requireOwner(op string, caller common.Address) error {
	if caller != e.cfg.Owner {
		return types.WrapPermissionDeniedError(op, caller.Hex())
	}
	return nil
}

// update 在写事务中执行 fn，提交后发布事件
//
// fn 通过 markLedger 声明账本已经变更；此后若提交失败，引擎状态与账本不一致，
// 引擎进入只读模式等待人工处理。
func (e *Engine) update(ctx context.Context, op string, fn func(tx storage.BadgerTransaction, events *pending, markLedger func()) error) error {
	if e.gate != nil {
		if err := e.gate.AssertWriteAllowed(ctx, op); err != nil {
			return err
		}
	}

	var events pending
	ledgerApplied := false
	err := e.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		events = events[:0]
		return fn(tx, &events, func() { ledgerApplied = true })
	})
	if err != nil {
		if ledgerApplied {
			reason := fmt.Sprintf("%s: ledger applied but state commit failed: %v", op, err)
			e.logger.Errorf("引擎状态与账本不一致，进入只读模式: %s", reason)
			if e.gate != nil {
				e.gate.EnterReadOnly(reason)
			}
		}
		return err
	}

	if e.bus != nil {
		for _, ev := range events {
			e.bus.PublishEvent(ev)
		}
	}
	return nil
}

func (e *Engine) view(ctx context.Context, fn func(tx storage.BadgerTransaction) error) error {
	return e.store.View(ctx, fn)
}

// reject 记录被拒绝的操作及其稳定原因
func (e *Engine) reject(op string, caller common.Address, err error) error {
	if err != nil {
		e.logger.Warnf("ACE 操作被拒绝: op=%s caller=%s reason=%s err=%v", op, caller.Hex(), reasonOf(err), err)
	}
	return err
}

func reasonOf(err error) string {
	if errors.Is(err, writegate.ErrWriteBlocked) {
		return ReasonReadOnly
	}
	return types.ReasonOf(err)
}

// ReasonOf 引擎错误的稳定原因码
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	return reasonOf(err)
}
