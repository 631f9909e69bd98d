package ace

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/weisyn/ace/pkg/types"
)

// Ledger 公开价值账本（ERC20 语义）
//
// 每个方法要么完整生效要么不产生任何变化。
type Ledger interface {
	// Address 账本地址，也是 EIP-712 域中的 verifyingContract
	Address() common.Address

	BalanceOf(owner common.Address) *uint256.Int
	Allowance(owner, spender common.Address) *uint256.Int
	// Nonce 持有人下一个可用的 permit nonce
	Nonce(owner common.Address) uint64
	TotalSupply() *uint256.Int

	Approve(owner, spender common.Address, amount *uint256.Int) error
	Transfer(from, to common.Address, amount *uint256.Int) error
	TransferFrom(spender, from, to common.Address, amount *uint256.Int) error

	// Permit 校验签名授权并设置额度
	Permit(p *types.Permit) error

	// PermitAndTransferFrom 原子地应用 permit 并以 spender 身份转账，
	// 转账失败时 permit 也不生效
	PermitAndTransferFrom(p *types.Permit, spender, from, to common.Address, amount *uint256.Int) error
}

// LedgerDirectory 按地址查找账本
type LedgerDirectory interface {
	Ledger(addr common.Address) (Ledger, bool)
}
