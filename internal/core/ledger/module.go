package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/fx"

	"github.com/weisyn/ace/internal/core/infrastructure/crypto/secp256k1"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/config"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
)

// ModuleParams 账本模块依赖
type ModuleParams struct {
	fx.In

	Provider config.Provider
	Clock    clock.Clock
	Logger   log.Logger `optional:"true"`
}

// ModuleOutput 账本模块输出
type ModuleOutput struct {
	fx.Out

	Directory       *Directory
	LedgerDirectory aceiface.LedgerDirectory
}

// Module 返回参考账本模块
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(ProvideDirectory),
	)
}

// ProvideDirectory 按 ace.tokens 配置部署参考账本并写入初始余额
func ProvideDirectory(params ModuleParams) (ModuleOutput, error) {
	opts := params.Provider.GetACE()
	dir := NewDirectory()
	recoverer := secp256k1.NewRecoverer()

	for _, t := range opts.Tokens {
		token := NewToken(t.Name, t.Address, opts.ChainID, recoverer, params.Clock)
		for holder, amount := range t.Balances {
			v, overflow := uint256.FromBig(amount)
			if overflow {
				return ModuleOutput{}, fmt.Errorf("token %s balance of %s overflows uint256", t.Name, holder.Hex())
			}
			if err := token.Mint(holder, v); err != nil {
				return ModuleOutput{}, fmt.Errorf("token %s: %w", t.Name, err)
			}
		}
		if err := dir.Register(token); err != nil {
			return ModuleOutput{}, err
		}
		if params.Logger != nil {
			params.Logger.Infof("参考账本已部署: name=%s address=%s holders=%d", t.Name, t.Address.Hex(), len(t.Balances))
		}
	}

	return ModuleOutput{Directory: dir, LedgerDirectory: dir}, nil
}
