// Package ledger 提供内存中的参考公开价值账本
//
// Token 实现 ERC20 的余额、额度与转账语义，并支持 Dai 风格的 permit：
// 持有人对 EIP-712 摘要签名，任何人可提交该签名为 spender 设置额度。
// 账本用于测试、CLI 与演示节点；生产部署中账本是外部系统。
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/weisyn/ace/internal/core/infrastructure/crypto/eip712"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/ace/pkg/types"
)

// 账本错误
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrZeroAddress           = errors.New("zero address")
)

var _ aceiface.Ledger = (*Token)(nil)

// maxAllowance 无限额度，转账时不扣减
var maxAllowance = new(uint256.Int).SetAllOne()

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// Token 内存账本
type Token struct {
	name      string
	address   common.Address
	domain    eip712.Domain
	recoverer eip712.SignatureRecoverer
	clock     clock.Clock

	mu          sync.RWMutex
	totalSupply *uint256.Int
	balances    map[common.Address]*uint256.Int
	allowances  map[allowanceKey]*uint256.Int
	nonces      map[common.Address]uint64
}

// NewToken 创建账本
func NewToken(name string, address common.Address, chainID uint64, recoverer eip712.SignatureRecoverer, clk clock.Clock) *Token {
	return &Token{
		name:        name,
		address:     address,
		domain:      eip712.DaiDomain(chainID, address),
		recoverer:   recoverer,
		clock:       clk,
		totalSupply: new(uint256.Int),
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[allowanceKey]*uint256.Int),
		nonces:      make(map[common.Address]uint64),
	}
}

// Name 账本名称
func (t *Token) Name() string { return t.name }

// Address 实现 Ledger
func (t *Token) Address() common.Address { return t.address }

// Domain permit 使用的 EIP-712 域
func (t *Token) Domain() eip712.Domain { return t.domain }

// Mint 增发，只用于初始化余额
func (t *Token) Mint(to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[to] = new(uint256.Int).Add(t.balanceOf(to), amount)
	t.totalSupply.Add(t.totalSupply, amount)
	return nil
}

// BalanceOf 实现 Ledger
func (t *Token) BalanceOf(owner common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.balanceOf(owner))
}

// Allowance 实现 Ledger
func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.allowance(owner, spender))
}

// Nonce 实现 Ledger
func (t *Token) Nonce(owner common.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nonces[owner]
}

// TotalSupply 实现 Ledger
func (t *Token) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.totalSupply)
}

// Approve 实现 Ledger
func (t *Token) Approve(owner, spender common.Address, amount *uint256.Int) error {
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return ErrZeroAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allowances[allowanceKey{owner, spender}] = new(uint256.Int).Set(amount)
	return nil
}

// Transfer 实现 Ledger
func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkTransfer(from, to, amount); err != nil {
		return err
	}
	t.move(from, to, amount)
	return nil
}

// TransferFrom 实现 Ledger；发送方自身转账不检查额度
func (t *Token) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transferFrom(spender, from, to, amount)
}

// Permit 实现 Ledger
func (t *Token) Permit(p *types.Permit) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkPermit(p); err != nil {
		return err
	}
	t.applyPermit(p)
	return nil
}

// PermitAndTransferFrom 实现 Ledger
func (t *Token) PermitAndTransferFrom(p *types.Permit, spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkPermit(p); err != nil {
		return err
	}

	// 转账失败时回滚 permit 的额度与 nonce
	key := allowanceKey{p.Holder, p.Spender}
	prev, hadPrev := t.allowances[key]
	prevNonce := t.nonces[p.Holder]
	t.applyPermit(p)
	if err := t.transferFrom(spender, from, to, amount); err != nil {
		if hadPrev {
			t.allowances[key] = prev
		} else {
			delete(t.allowances, key)
		}
		t.nonces[p.Holder] = prevNonce
		return err
	}
	return nil
}

// ============================================================================
//                              内部方法（调用方持有锁）
// ============================================================================

func (t *Token) balanceOf(owner common.Address) *uint256.Int {
	if b, ok := t.balances[owner]; ok {
		return b
	}
	return new(uint256.Int)
}

func (t *Token) allowance(owner, spender common.Address) *uint256.Int {
	if a, ok := t.allowances[allowanceKey{owner, spender}]; ok {
		return a
	}
	return new(uint256.Int)
}

func (t *Token) checkTransfer(from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if t.balanceOf(from).Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), t.balanceOf(from), amount)
	}
	return nil
}

func (t *Token) move(from, to common.Address, amount *uint256.Int) {
	t.balances[from] = new(uint256.Int).Sub(t.balanceOf(from), amount)
	t.balances[to] = new(uint256.Int).Add(t.balanceOf(to), amount)
}

func (t *Token) transferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	if err := t.checkTransfer(from, to, amount); err != nil {
		return err
	}
	if spender != from {
		allowed := t.allowance(from, spender)
		if allowed.Lt(amount) {
			return fmt.Errorf("%w: %s → %s allows %s, needs %s", ErrInsufficientAllowance, from.Hex(), spender.Hex(), allowed, amount)
		}
		if !allowed.Eq(maxAllowance) {
			t.allowances[allowanceKey{from, spender}] = new(uint256.Int).Sub(allowed, amount)
		}
	}
	t.move(from, to, amount)
	return nil
}

func (t *Token) checkPermit(p *types.Permit) error {
	if p == nil {
		return types.WrapPermitInvalidError(errors.New("missing permit"))
	}
	if p.Holder == (common.Address{}) {
		return types.WrapPermitInvalidError(errors.New("invalid-address-0"))
	}
	if t.recoverer == nil {
		return types.WrapPermitInvalidError(errors.New("no signature recoverer"))
	}
	signer, err := eip712.RecoverPermitSigner(t.recoverer, t.domain, p)
	if err != nil {
		return types.WrapPermitInvalidError(err)
	}
	if signer != p.Holder {
		return types.WrapPermitInvalidError(fmt.Errorf("invalid-permit: signer %s", signer.Hex()))
	}
	if p.Expiry != 0 && t.clock != nil && t.clock.Timestamp() > p.Expiry {
		return types.WrapPermitInvalidError(fmt.Errorf("permit-expired: expiry %d", p.Expiry))
	}
	if p.Nonce != t.nonces[p.Holder] {
		return types.WrapPermitInvalidError(fmt.Errorf("invalid-nonce: got %d want %d", p.Nonce, t.nonces[p.Holder]))
	}
	return nil
}

func (t *Token) applyPermit(p *types.Permit) {
	t.nonces[p.Holder]++
	wad := new(uint256.Int)
	if p.Allowed {
		wad.Set(maxAllowance)
	}
	t.allowances[allowanceKey{p.Holder, p.Spender}] = wad
}
