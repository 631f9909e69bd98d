package engine

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	aceconfig "github.com/weisyn/ace/internal/config/ace"
	"github.com/weisyn/ace/internal/core/ace/group"
	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/validators"
	"github.com/weisyn/ace/internal/core/ace/validators/joinsplit"
	"github.com/weisyn/ace/internal/core/ace/validators/publicrange"
	logimpl "github.com/weisyn/ace/internal/core/infrastructure/log"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/config"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/ace/pkg/types"
)

// ModuleParams 引擎模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Provider   config.Provider
	Store      storage.BadgerStore
	Ledgers    aceiface.LedgerDirectory
	Clock      clock.Clock
	Bus        event.EventBus        `optional:"true"`
	Gate       writegate.WriteGate   `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Logger     log.Logger            `optional:"true"`
}

// Module 返回 ACE 引擎模块
func Module() fx.Option {
	return fx.Module("ace",
		fx.Provide(ProvideEngine),
	)
}

// TrustedReferenceString 按配置得到可信参考串：显式参考串优先，其次开发陷门
func TrustedReferenceString(opts *aceconfig.ACEOptions) (types.ReferenceString, error) {
	if !opts.ReferenceString.IsZero() {
		return opts.ReferenceString, nil
	}
	if opts.DevTrapdoor != nil {
		h, err := group.DefaultH()
		if err != nil {
			return types.ReferenceString{}, err
		}
		return group.SetupFromTrapdoor(h, opts.DevTrapdoor).Encode(), nil
	}
	return types.ReferenceString{}, nil
}

// ProvideEngine 创建引擎并在启动时完成 Bootstrap
func ProvideEngine(params ModuleParams) (*Engine, error) {
	opts := params.Provider.GetACE()
	logger := logimpl.NewModuleLogger(params.Logger, "ace")

	rs, err := TrustedReferenceString(opts)
	if err != nil {
		return nil, err
	}
	if !rs.IsZero() {
		if _, err := group.DecodeReferenceString(rs); err != nil {
			return nil, fmt.Errorf("配置的参考串无效: %w", err)
		}
	}

	set := validators.NewSet(
		joinsplit.New(logger),
		joinsplit.NewMint(logger),
		joinsplit.NewBurn(logger),
		publicrange.New(logger),
	)

	var metrics *Metrics
	if params.Registerer != nil {
		metrics = NewMetrics(params.Registerer)
	}

	eng, err := New(Config{
		Owner: opts.Owner,
		Layout: proofkind.Layout{
			EpochBits:    opts.KindLayout.EpochBits,
			CategoryBits: opts.KindLayout.CategoryBits,
			IDBits:       opts.KindLayout.IDBits,
		},
		ReferenceString: rs,
	}, Deps{
		Store:      params.Store,
		Validators: set,
		Ledgers:    params.Ledgers,
		Clock:      params.Clock,
		Bus:        params.Bus,
		Gate:       params.Gate,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return eng.Bootstrap(ctx)
		},
	})
	return eng, nil
}
