// Package storage 提供存储管理功能
package storage

import (
	"context"

	"go.uber.org/fx"

	badgerconfig "github.com/weisyn/ace/internal/config/storage/badger"
	"github.com/weisyn/ace/internal/core/infrastructure/log"
	"github.com/weisyn/ace/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/ace/pkg/interfaces/config"
	logif "github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider // 配置提供者
	Logger    logif.Logger    // 日志记录器
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore // BadgerDB存储（必需，失败即错误）
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 打开BadgerDB，并在应用停止时关闭
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger := log.NewModuleLogger(params.Logger, "storage")
	store, err := badger.New(badgerconfig.NewFromOptions(params.Provider.GetBadger()), logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("正在关闭存储服务...")
			return store.Close()
		},
	})

	return ModuleOutput{BadgerStore: store}, nil
}
