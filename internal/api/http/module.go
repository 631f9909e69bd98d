package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/weisyn/ace/internal/core/ace/engine"
	logimpl "github.com/weisyn/ace/internal/core/infrastructure/log"
	"github.com/weisyn/ace/pkg/interfaces/config"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/writegate"
)

// ServerParams HTTP 模块依赖
type ServerParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Provider   config.Provider
	Logger     log.Logger
	Engine     *engine.Engine
	Gate       writegate.WriteGate   `optional:"true"`
	Bus        event.EventBus        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Gatherer   prometheus.Gatherer   `optional:"true"`
}

// Module 返回 HTTP 模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
	)
}

// ProvideServer 创建服务器；启用时注册生命周期钩子
func ProvideServer(params ServerParams) *Server {
	opts := params.Provider.GetAPI().HTTP
	if params.Provider.GetEnvironment() == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logimpl.NewModuleLogger(params.Logger, "http")

	deps := RouterDeps{
		ACE:        params.Engine,
		Gate:       params.Gate,
		Bus:        params.Bus,
		Logger:     logger,
		Registerer: params.Registerer,
	}
	if opts.EnableMetrics {
		deps.Gatherer = params.Gatherer
	}
	server := NewServer(opts, NewRouter(deps), logger)

	if !opts.Enabled {
		logger.Info("HTTP服务未启用")
		return server
	}
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error { return server.Start() },
		OnStop:  server.Stop,
	})
	return server
}
