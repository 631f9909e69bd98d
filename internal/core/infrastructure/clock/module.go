// Package clock 提供时间源实现：系统时钟、NTP 校正时钟与测试用 Mock 时钟
package clock

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/weisyn/ace/pkg/interfaces/config"
	infraClock "github.com/weisyn/ace/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
)

// ModuleParams 时钟模块依赖
type ModuleParams struct {
	fx.In

	Provider   config.Provider
	Logger     log.Logger            `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 返回时钟模块
func Module() fx.Option {
	return fx.Module("clock",
		fx.Provide(ProvideClock),
	)
}

// ProvideClock 按配置创建时钟；NTP 时钟同时注册健康指标
func ProvideClock(params ModuleParams) (infraClock.Clock, error) {
	opts := params.Provider.GetClock()
	switch opts.Type {
	case "", "system":
		return NewSystemClock(), nil
	case "ntp":
		c := NewNTPClock(opts.NTPServer, opts.SyncInterval, opts.OffsetThreshold)
		if healthy, offset, _, err := c.Health(); !healthy && params.Logger != nil {
			params.Logger.Warnf("NTP时钟初始同步异常: server=%s offset=%s err=%v", opts.NTPServer, offset, err)
		}
		if params.Registerer != nil {
			if err := RegisterClockMetrics(params.Registerer, c.Health); err != nil {
				return nil, fmt.Errorf("注册时钟指标失败: %w", err)
			}
		}
		return c, nil
	default:
		return nil, fmt.Errorf("未知时钟类型: %s", opts.Type)
	}
}
