package noteregistry

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/internal/core/ace/testutil"
	"github.com/weisyn/ace/internal/core/infrastructure/clock"
	"github.com/weisyn/ace/internal/core/infrastructure/crypto/secp256k1"
	"github.com/weisyn/ace/internal/core/ledger"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/ace/pkg/types"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	tokenAdr = common.HexToAddress("0x00000000000000000000000000000000000000d1")
)

type fixture struct {
	store storage.BadgerStore
	token *ledger.Token
	m     *Manager
	user  *testutil.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewMockClock(time.Unix(1_700_000_000, 0))
	token := ledger.NewToken("DAI", tokenAdr, 1337, secp256k1.NewRecoverer(), clk)
	dir := ledger.NewDirectory()
	require.NoError(t, dir.Register(token))

	f := &fixture{
		store: testutil.NewMemoryStore(t),
		token: token,
		m:     NewManager(dir, clk),
		user:  testutil.NewAccount(),
	}
	require.NoError(t, token.Mint(f.user.Address, uint256.NewInt(1_000)))
	f.update(t, func(tx storage.BadgerTransaction) error {
		for _, id := range DefaultFactories() {
			if err := SetFactory(tx, id, FactoryAddress(id), 1); err != nil {
				return err
			}
		}
		return nil
	})
	return f
}

func (f *fixture) update(t *testing.T, fn func(tx storage.BadgerTransaction) error) {
	t.Helper()
	require.NoError(t, f.store.RunInTransaction(context.Background(), fn))
}

func (f *fixture) try(fn func(tx storage.BadgerTransaction) error) error {
	return f.store.RunInTransaction(context.Background(), fn)
}

func note(b byte) types.Note {
	var n types.Note
	n.Gamma[0] = b
	n.Sigma[63] = b
	return n
}

func TestFactoryID(t *testing.T) {
	id := NewFactoryID(1, CryptoSystemDefault, AssetType(true, true))
	assert.Equal(t, FactoryID(0x010103), id)
	assert.Equal(t, "1.1.3", id.String())
	assert.Equal(t, uint8(1), AssetType(true, false))
	assert.Equal(t, uint8(2), AssetType(false, true))
}

func TestSetFactory(t *testing.T) {
	f := newFixture(t)
	id := NewFactoryID(2, CryptoSystemDefault, 0)

	err := f.try(func(tx storage.BadgerTransaction) error {
		return SetFactory(tx, id, FactoryAddress(id), 1)
	})
	require.ErrorIs(t, err, types.ErrEpochViolation)

	f.update(t, func(tx storage.BadgerTransaction) error {
		return SetFactory(tx, id, FactoryAddress(id), 2)
	})
	err = f.try(func(tx storage.BadgerTransaction) error {
		return SetFactory(tx, id, FactoryAddress(id), 2)
	})
	require.ErrorIs(t, err, types.ErrImmutabilityViolation)

	err = f.try(func(tx storage.BadgerTransaction) error {
		return SetFactory(tx, NewFactoryID(1, CryptoSystemDefault, 7), common.HexToAddress("0x01"), 1)
	})
	require.ErrorIs(t, err, types.ErrMalformedInput)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	f.update(t, func(tx storage.BadgerTransaction) error {
		rec, err := f.m.Create(tx, owner, tokenAdr, uint256.NewInt(10), false, true)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x010101), rec.FactoryID)
		return nil
	})

	err := f.try(func(tx storage.BadgerTransaction) error {
		_, err := f.m.Create(tx, owner, tokenAdr, uint256.NewInt(10), false, true)
		return err
	})
	require.ErrorIs(t, err, types.ErrRegistryExists)

	other := common.HexToAddress("0xb2")
	err = f.try(func(tx storage.BadgerTransaction) error {
		_, err := f.m.Create(tx, other, tokenAdr, new(uint256.Int), false, true)
		return err
	})
	require.ErrorIs(t, err, types.ErrMalformedInput)

	err = f.try(func(tx storage.BadgerTransaction) error {
		_, err := f.m.Create(tx, other, common.HexToAddress("0xdead"), uint256.NewInt(1), false, true)
		return err
	})
	require.ErrorIs(t, err, types.ErrMalformedInput)

	err = f.try(func(tx storage.BadgerTransaction) error {
		_, err := f.m.Get(tx, other)
		return err
	})
	require.ErrorIs(t, err, types.ErrUnknownRegistry)
}

func TestCreateRequiresFactory(t *testing.T) {
	f := newFixture(t)
	f.store = testutil.NewMemoryStore(t)
	err := f.try(func(tx storage.BadgerTransaction) error {
		_, err := f.m.Create(tx, owner, tokenAdr, uint256.NewInt(1), false, true)
		return err
	})
	require.ErrorIs(t, err, types.ErrUnknownFactory)
}

func TestTransferDepositAndWithdraw(t *testing.T) {
	f := newFixture(t)
	proofHash := common.HexToHash("0xaa")
	custody := CustodyAddress(owner)

	f.update(t, func(tx storage.BadgerTransaction) error {
		_, err := f.m.Create(tx, owner, tokenAdr, uint256.NewInt(10), false, true)
		return err
	})
	require.NoError(t, f.token.Approve(f.user.Address, custody, uint256.NewInt(200)))

	deposit := &types.ProofOutput{
		OutputNotes: []types.Note{note(1), note(2)},
		PublicOwner: f.user.Address,
		PublicValue: big.NewInt(-20),
	}

	// 没有公开授权
	err := f.try(func(tx storage.BadgerTransaction) error {
		rec, err := f.m.Get(tx, owner)
		require.NoError(t, err)
		_, err = f.m.Transfer(tx, owner, rec, deposit, proofHash)
		return err
	})
	require.ErrorIs(t, err, types.ErrInsufficientPublicApproval)

	f.update(t, func(tx storage.BadgerTransaction) error {
		return f.m.PublicApprove(tx, f.user.Address, owner, proofHash, uint256.NewInt(50))
	})
	f.update(t, func(tx storage.BadgerTransaction) error {
		rec, err := f.m.Get(tx, owner)
		require.NoError(t, err)
		s, err := f.m.Transfer(tx, owner, rec, deposit, proofHash)
		require.NoError(t, err)
		assert.True(t, s.Deposit)
		assert.Equal(t, uint64(200), s.Amount.Uint64())
		assert.Len(t, s.Created, 2)
		return s.Execute(nil)
	})
	assert.Equal(t, uint64(800), f.token.BalanceOf(f.user.Address).Uint64())
	assert.Equal(t, uint64(200), f.token.BalanceOf(custody).Uint64())

	f.update(t, func(tx storage.BadgerTransaction) error {
		rec, err := f.m.Get(tx, owner)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), rec.TotalSupply.Uint64())
		left, err := rawdb.ReadPublicApproval(tx, f.user.Address, owner, proofHash)
		require.NoError(t, err)
		assert.Equal(t, uint64(30), left.Uint64())
		return nil
	})

	// 同一票据再次输出
	err = f.try(func(tx storage.BadgerTransaction) error {
		rec, _ := f.m.Get(tx, owner)
		_, err := f.m.Transfer(tx, owner, rec, &types.ProofOutput{OutputNotes: []types.Note{note(1)}}, proofHash)
		return err
	})
	require.ErrorIs(t, err, types.ErrNoteExists)

	withdraw := &types.ProofOutput{
		InputNotes:  []types.Note{note(1)},
		PublicOwner: f.user.Address,
		PublicValue: big.NewInt(5),
	}
	f.update(t, func(tx storage.BadgerTransaction) error {
		rec, err := f.m.Get(tx, owner)
		require.NoError(t, err)
		s, err := f.m.Transfer(tx, owner, rec, withdraw, proofHash)
		require.NoError(t, err)
		return s.Execute(nil)
	})
	assert.Equal(t, uint64(850), f.token.BalanceOf(f.user.Address).Uint64())

	f.update(t, func(tx storage.BadgerTransaction) error {
		n, err := f.m.GetNote(tx, owner, note(1).Hash())
		require.NoError(t, err)
		assert.Equal(t, rawdb.NoteSpent, n.Status)
		assert.Equal(t, uint64(1_700_000_000), n.DestroyedAt)
		return nil
	})

	err = f.try(func(tx storage.BadgerTransaction) error {
		rec, _ := f.m.Get(tx, owner)
		_, err := f.m.Transfer(tx, owner, rec, &types.ProofOutput{InputNotes: []types.Note{note(1)}}, proofHash)
		return err
	})
	require.ErrorIs(t, err, types.ErrDoubleSpend)

	err = f.try(func(tx storage.BadgerTransaction) error {
		rec, _ := f.m.Get(tx, owner)
		_, err := f.m.Transfer(tx, owner, rec, &types.ProofOutput{InputNotes: []types.Note{note(9)}}, proofHash)
		return err
	})
	require.ErrorIs(t, err, types.ErrUnknownNote)
}

func TestTransferConversionDisabled(t *testing.T) {
	f := newFixture(t)
	f.update(t, func(tx storage.BadgerTransaction) error {
		_, err := f.m.Create(tx, owner, tokenAdr, uint256.NewInt(1), false, false)
		return err
	})
	err := f.try(func(tx storage.BadgerTransaction) error {
		rec, _ := f.m.Get(tx, owner)
		_, err := f.m.Transfer(tx, owner, rec, &types.ProofOutput{OutputNotes: []types.Note{note(1)}, PublicValue: big.NewInt(-1)}, common.Hash{})
		return err
	})
	require.ErrorIs(t, err, types.ErrConversionDisabled)
}

func TestSettlementPermitChecks(t *testing.T) {
	f := newFixture(t)
	custody := CustodyAddress(owner)
	s := &Settlement{
		Owner:       owner,
		Ledger:      f.token,
		Custody:     custody,
		PublicOwner: f.user.Address,
		Amount:      uint256.NewInt(100),
		Deposit:     true,
	}

	wrongSpender := f.user.SignPermit(f.token.Domain(), owner, 0, 0, true)
	require.ErrorIs(t, s.Execute(wrongSpender), types.ErrPermitInvalid)

	badNonce := f.user.SignPermit(f.token.Domain(), custody, 3, 0, true)
	require.ErrorIs(t, s.Execute(badNonce), types.ErrPermitInvalid)
	assert.Equal(t, uint64(1_000), f.token.BalanceOf(f.user.Address).Uint64())

	// 无授权的 TransferFrom 失败
	require.ErrorIs(t, s.Execute(nil), types.ErrPublicTransferFailed)

	ok := f.user.SignPermit(f.token.Domain(), custody, 0, 0, true)
	require.NoError(t, s.Execute(ok))
	assert.Equal(t, uint64(100), f.token.BalanceOf(custody).Uint64())

	zero := &Settlement{Amount: new(uint256.Int)}
	require.ErrorIs(t, zero.Execute(ok), types.ErrMalformedInput)
	require.NoError(t, zero.Execute(nil))
}

func TestMintAndBurn(t *testing.T) {
	f := newFixture(t)
	f.update(t, func(tx storage.BadgerTransaction) error {
		_, err := f.m.Create(tx, owner, tokenAdr, uint256.NewInt(1), true, false)
		return err
	})

	mint := types.ProofOutputs{
		{OutputNotes: []types.Note{note(10)}},
		{OutputNotes: []types.Note{note(1), note(2)}},
	}
	f.update(t, func(tx storage.BadgerTransaction) error {
		rec, err := f.m.Get(tx, owner)
		require.NoError(t, err)
		change, err := f.m.Mint(tx, owner, rec, mint)
		require.NoError(t, err)
		assert.Equal(t, note(10).Hash(), change.Total)
		assert.Len(t, change.Notes, 2)
		return nil
	})

	// 旧累计量票据不匹配
	bad := types.ProofOutputs{
		{InputNotes: []types.Note{note(99)}, OutputNotes: []types.Note{note(11)}},
		{OutputNotes: []types.Note{note(3)}},
	}
	err := f.try(func(tx storage.BadgerTransaction) error {
		rec, _ := f.m.Get(tx, owner)
		_, err := f.m.Mint(tx, owner, rec, bad)
		return err
	})
	require.ErrorIs(t, err, types.ErrMalformedInput)

	burn := types.ProofOutputs{
		{OutputNotes: []types.Note{note(20)}},
		{InputNotes: []types.Note{note(1)}},
	}
	f.update(t, func(tx storage.BadgerTransaction) error {
		rec, err := f.m.Get(tx, owner)
		require.NoError(t, err)
		_, err = f.m.Burn(tx, owner, rec, burn)
		require.NoError(t, err)
		n, err := f.m.GetNote(tx, owner, note(1).Hash())
		require.NoError(t, err)
		assert.Equal(t, rawdb.NoteSpent, n.Status)
		rec, err = f.m.Get(tx, owner)
		require.NoError(t, err)
		assert.Equal(t, note(10).Hash(), rec.TotalMinted)
		assert.Equal(t, note(20).Hash(), rec.TotalBurned)
		return nil
	})
}

func TestSupplyAdjustmentDisabled(t *testing.T) {
	f := newFixture(t)
	f.update(t, func(tx storage.BadgerTransaction) error {
		_, err := f.m.Create(tx, owner, tokenAdr, uint256.NewInt(1), false, true)
		return err
	})
	err := f.try(func(tx storage.BadgerTransaction) error {
		rec, _ := f.m.Get(tx, owner)
		_, err := f.m.Mint(tx, owner, rec, types.ProofOutputs{{}, {}})
		return err
	})
	require.ErrorIs(t, err, types.ErrSupplyAdjustmentDisabled)
}

func TestScaledAmount(t *testing.T) {
	v, err := ScaledAmount(big.NewInt(-7), uint256.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(21), v.Uint64())

	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err = ScaledAmount(huge, uint256.NewInt(4))
	require.ErrorIs(t, err, types.ErrMalformedInput)
}
