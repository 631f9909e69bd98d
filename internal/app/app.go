// Package app 组装并运行 ACE 服务进程
package app

import (
	"context"
)

// App 运行中的应用
type App interface {
	// Stop 停止应用，释放存储与监听端口
	Stop() error

	// Wait 阻塞直到收到退出信号，然后停止应用
	Wait() error
}

type internalApp struct {
	bootstrap *Bootstrap
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待信号后停止
func (a *internalApp) Wait() error {
	WaitForSignal()
	return a.Stop()
}

// Start 启动应用
func Start(appOptions ...Option) (App, error) {
	return BootstrapApp(appOptions...)
}
