// Package http ACE 引擎的 HTTP API 服务
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/ace/internal/api/http/handlers"
	"github.com/weisyn/ace/internal/api/http/middleware"
	apitypes "github.com/weisyn/ace/internal/api/types"
	"github.com/weisyn/ace/internal/api/websocket"
	apiconfig "github.com/weisyn/ace/internal/config/api"
	"github.com/weisyn/ace/internal/core/ace/engine"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/writegate"
)

// RouterDeps 路由依赖；Gate、Bus、Registerer、Gatherer 可为空
type RouterDeps struct {
	ACE        handlers.ACEService
	Gate       writegate.WriteGate
	Bus        event.EventBus
	Logger     log.Logger
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter 构建路由：/health、/api/v1/ace/*，以及可选的事件推送与 /metrics
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(deps.Logger))
	if deps.Registerer != nil {
		router.Use(middleware.NewMetrics(deps.Registerer).Middleware())
	}
	router.Use(middleware.ErrorHandler())

	router.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, apitypes.CodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	handlers.NewHealthHandler(deps.Gate).RegisterRoutes(router)
	v1 := router.Group("/api/v1")
	handlers.NewACEHandlers(deps.ACE).RegisterRoutes(v1)
	if deps.Bus != nil {
		websocket.NewServer(deps.Bus, engine.EventTypes, deps.Logger).RegisterRoutes(v1)
	}

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

// Server HTTP 服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	opts       apiconfig.HTTPConfig
	logger     log.Logger
	addr       string
}

// NewServer 创建服务器
func NewServer(opts apiconfig.HTTPConfig, router *gin.Engine, logger log.Logger) *Server {
	return &Server{
		router: router,
		opts:   opts,
		logger: logger,
	}
}

// Handler 路由处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 实际监听地址；未启动时为空
func (s *Server) Addr() string {
	return s.addr
}

// Start 监听端口并在后台提供服务
//
// 端口占用时直接返回错误。
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.opts.Host, fmt.Sprintf("%d", s.opts.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("HTTP服务器监听失败: %w", err)
	}
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:        s.router,
		ReadTimeout:    s.opts.ReadTimeout,
		WriteTimeout:   s.opts.WriteTimeout,
		MaxHeaderBytes: 1 << 16,
	}
	if s.opts.MaxRequestSize > 0 {
		s.httpServer.Handler = http.MaxBytesHandler(s.router, s.opts.MaxRequestSize)
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP服务器运行失败: %v", err)
		}
	}()

	s.logger.Infof("HTTP服务器已启动: http://%s/api/v1/ace", s.addr)
	return nil
}

// Stop 优雅关闭，最多等待 5 秒
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}
	s.logger.Info("HTTP服务器已关闭")
	return nil
}
