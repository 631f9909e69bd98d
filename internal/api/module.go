// Package api 对外接口模块
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/ace/internal/api/http"
)

// Module 返回API模块；Invoke 确保 HTTP 服务器被实例化并挂上生命周期
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
		fx.Invoke(func(*http.Server) {}),
	)
}
