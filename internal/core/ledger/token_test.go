package ledger

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/internal/core/ace/testutil"
	"github.com/weisyn/ace/internal/core/infrastructure/clock"
	"github.com/weisyn/ace/internal/core/infrastructure/crypto/secp256k1"
	"github.com/weisyn/ace/pkg/types"
)

var tokenAddr = common.HexToAddress("0x00000000000000000000000000000000000000d1")

func newToken(t *testing.T, now time.Time) (*Token, *clock.MockClock) {
	t.Helper()
	clk := clock.NewMockClock(now)
	return NewToken("DAI", tokenAddr, 1337, secp256k1.NewRecoverer(), clk), clk
}

func TestTransferAndAllowance(t *testing.T) {
	token, _ := newToken(t, time.Unix(1_000, 0))
	alice := testutil.NewAccount().Address
	bob := testutil.NewAccount().Address
	spender := testutil.NewAccount().Address

	require.NoError(t, token.Mint(alice, uint256.NewInt(100)))
	require.NoError(t, token.Transfer(alice, bob, uint256.NewInt(30)))
	assert.Equal(t, uint64(70), token.BalanceOf(alice).Uint64())
	assert.Equal(t, uint64(30), token.BalanceOf(bob).Uint64())

	err := token.Transfer(bob, alice, uint256.NewInt(31))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	err = token.TransferFrom(spender, alice, bob, uint256.NewInt(10))
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, token.Approve(alice, spender, uint256.NewInt(15)))
	require.NoError(t, token.TransferFrom(spender, alice, bob, uint256.NewInt(10)))
	assert.Equal(t, uint64(5), token.Allowance(alice, spender).Uint64())
	assert.Equal(t, uint64(100), token.TotalSupply().Uint64())
}

func TestPermit(t *testing.T) {
	token, clk := newToken(t, time.Unix(1_000, 0))
	holder := testutil.NewAccount()
	spender := testutil.NewAccount().Address

	p := holder.SignPermit(token.Domain(), spender, 0, 0, true)
	require.NoError(t, token.Permit(p))
	assert.Equal(t, uint64(1), token.Nonce(holder.Address))
	assert.True(t, token.Allowance(holder.Address, spender).Eq(maxAllowance))

	// 重放同一 permit：nonce 已递增
	err := token.Permit(p)
	require.ErrorIs(t, err, types.ErrPermitInvalid)

	// allowed=false 清零额度
	revoke := holder.SignPermit(token.Domain(), spender, 1, 0, false)
	require.NoError(t, token.Permit(revoke))
	assert.True(t, token.Allowance(holder.Address, spender).IsZero())

	// 过期
	expired := holder.SignPermit(token.Domain(), spender, 2, 999, true)
	require.ErrorIs(t, token.Permit(expired), types.ErrPermitInvalid)
	clk.Set(time.Unix(999, 0))
	require.NoError(t, token.Permit(expired))

	// 错误 nonce
	wrong := holder.SignPermit(token.Domain(), spender, 5, 0, true)
	require.ErrorIs(t, token.Permit(wrong), types.ErrPermitInvalid)

	// 签名者不是 holder
	forged := testutil.NewAccount().SignPermit(token.Domain(), spender, 3, 0, true)
	forged.Holder = holder.Address
	require.ErrorIs(t, token.Permit(forged), types.ErrPermitInvalid)

	// 其他账本的域
	other := NewToken("DAI", common.HexToAddress("0xd2"), 1337, secp256k1.NewRecoverer(), clk)
	foreign := holder.SignPermit(other.Domain(), spender, 3, 0, true)
	require.ErrorIs(t, token.Permit(foreign), types.ErrPermitInvalid)
}

func TestPermitAndTransferFromIsAtomic(t *testing.T) {
	token, _ := newToken(t, time.Unix(1_000, 0))
	holder := testutil.NewAccount()
	spender := testutil.NewAccount().Address
	require.NoError(t, token.Mint(holder.Address, uint256.NewInt(50)))

	p := holder.SignPermit(token.Domain(), spender, 0, 0, true)
	err := token.PermitAndTransferFrom(p, spender, holder.Address, spender, uint256.NewInt(60))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Zero(t, token.Nonce(holder.Address))
	assert.True(t, token.Allowance(holder.Address, spender).IsZero())

	require.NoError(t, token.PermitAndTransferFrom(p, spender, holder.Address, spender, uint256.NewInt(50)))
	assert.Equal(t, uint64(1), token.Nonce(holder.Address))
	assert.Equal(t, uint64(50), token.BalanceOf(spender).Uint64())
	// 无限额度不扣减
	assert.True(t, token.Allowance(holder.Address, spender).Eq(maxAllowance))
}

func TestDirectory(t *testing.T) {
	token, _ := newToken(t, time.Now())
	dir := NewDirectory()
	require.NoError(t, dir.Register(token))
	require.Error(t, dir.Register(token))

	got, ok := dir.Ledger(tokenAddr)
	require.True(t, ok)
	assert.Equal(t, token, got)
	_, ok = dir.Ledger(common.Address{})
	assert.False(t, ok)
	assert.Equal(t, []common.Address{tokenAddr}, dir.Addresses())
}
