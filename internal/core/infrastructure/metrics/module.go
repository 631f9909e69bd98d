// Package metrics 提供进程级 Prometheus 注册表
//
// 注册表同时以 Registerer（各模块注册指标）与 Gatherer（/metrics 端点采集）
// 两种身份注入，默认附带 Go 运行时与进程采集器。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Output 指标模块输出
type Output struct {
	fx.Out

	Registry   *prometheus.Registry
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Module 返回指标模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideRegistry),
	)
}

// NewRegistry 创建带运行时采集器的注册表
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideRegistry fx 构造函数
func ProvideRegistry() Output {
	reg := NewRegistry()
	return Output{Registry: reg, Registerer: reg, Gatherer: reg}
}
