package writegate

import (
	"go.uber.org/fx"

	wgif "github.com/weisyn/ace/pkg/interfaces/infrastructure/writegate"
)

// Module 提供进程内唯一的写门闸
func Module() fx.Option {
	return fx.Module("writegate",
		fx.Provide(fx.Annotate(New, fx.As(new(wgif.WriteGate)))),
	)
}
