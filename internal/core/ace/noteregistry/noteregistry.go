// Package noteregistry 票据注册表
//
// 每个所有者最多拥有一个注册表，关联一个公开价值账本。注册表记录票据状态，
// 并按 scalingFactor 把证明中的公开价值换算为账本单位，维护托管总额。
// 这里只改写引擎事务内的状态；账本转账由 Settlement 在事务最后一步执行。
package noteregistry

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/weisyn/ace/internal/core/ace/rawdb"
	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/ace/pkg/types"
)

// Store 注册表需要的读写能力
type Store interface {
	rawdb.KeyValueReader
	rawdb.KeyValueWriter
}

// CustodyAddress 注册表托管公开价值使用的账户
func CustodyAddress(owner common.Address) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("ace.registry/"), owner.Bytes())[12:])
}

// Manager 票据注册表管理
type Manager struct {
	ledgers aceiface.LedgerDirectory
	clock   clock.Clock
}

// NewManager 创建管理器
func NewManager(ledgers aceiface.LedgerDirectory, clk clock.Clock) *Manager {
	return &Manager{ledgers: ledgers, clock: clk}
}

func (m *Manager) now() uint64 {
	if m.clock == nil {
		return 0
	}
	return m.clock.Timestamp()
}

// Create 为 owner 创建注册表；工厂由资产标志推导，必须已登记
func (m *Manager) Create(db Store, owner, ledger common.Address, scalingFactor *uint256.Int, canAdjustSupply, canConvert bool) (*rawdb.RegistryRecord, error) {
	exists, err := rawdb.HasRegistry(db, owner)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: owner %s", types.ErrRegistryExists, owner.Hex())
	}
	if scalingFactor == nil || scalingFactor.IsZero() {
		return nil, types.WrapMalformedInputError("scaling factor must be positive")
	}
	if canConvert {
		if _, ok := m.ledgers.Ledger(ledger); !ok {
			return nil, types.WrapMalformedInputError("unknown ledger %s", ledger.Hex())
		}
	}

	id := NewFactoryID(1, CryptoSystemDefault, AssetType(canConvert, canAdjustSupply))
	if _, ok, err := rawdb.ReadFactory(db, uint32(id)); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownFactory, id)
	}

	rec := &rawdb.RegistryRecord{
		Ledger:          ledger,
		ScalingFactor:   new(uint256.Int).Set(scalingFactor),
		CanAdjustSupply: canAdjustSupply,
		CanConvert:      canConvert,
		FactoryID:       uint32(id),
		TotalSupply:     new(uint256.Int),
	}
	if err := rawdb.WriteRegistry(db, owner, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get 读取注册表，不存在返回 UnknownRegistry
func (m *Manager) Get(db rawdb.KeyValueReader, owner common.Address) (*rawdb.RegistryRecord, error) {
	rec, err := rawdb.ReadRegistry(db, owner)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: owner %s", types.ErrUnknownRegistry, owner.Hex())
	}
	if rec.TotalSupply == nil {
		rec.TotalSupply = new(uint256.Int)
	}
	return rec, nil
}

// PublicApprove publicOwner 授权 registryOwner 的注册表为 proofHash 存入至多 value
func (m *Manager) PublicApprove(db Store, publicOwner, registryOwner common.Address, proofHash common.Hash, value *uint256.Int) error {
	if _, err := m.Get(db, registryOwner); err != nil {
		return err
	}
	return rawdb.WritePublicApproval(db, publicOwner, registryOwner, proofHash, value)
}

// GetNote 读取票据记录
func (m *Manager) GetNote(db rawdb.KeyValueReader, owner common.Address, noteHash common.Hash) (*rawdb.NoteRecord, error) {
	rec, err := rawdb.ReadNote(db, owner, noteHash)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownNote, noteHash.Hex())
	}
	return rec, nil
}

// spendNotes 把输入票据标记为已花费
func (m *Manager) spendNotes(db Store, owner common.Address, notes []types.Note) ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, len(notes))
	for _, n := range notes {
		h := n.Hash()
		rec, err := rawdb.ReadNote(db, owner, h)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: %s", types.ErrUnknownNote, h.Hex())
		}
		if rec.Status != rawdb.NoteUnspent {
			return nil, fmt.Errorf("%w: %s", types.ErrDoubleSpend, h.Hex())
		}
		rec.Status = rawdb.NoteSpent
		rec.DestroyedAt = m.now()
		if err := rawdb.WriteNote(db, owner, h, rec); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

// createNotes 登记输出票据
func (m *Manager) createNotes(db Store, owner common.Address, notes []types.Note) ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, len(notes))
	for _, n := range notes {
		h := n.Hash()
		rec, err := rawdb.ReadNote(db, owner, h)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return nil, fmt.Errorf("%w: %s", types.ErrNoteExists, h.Hex())
		}
		if err := rawdb.WriteNote(db, owner, h, &rawdb.NoteRecord{Status: rawdb.NoteUnspent, CreatedAt: m.now()}); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

// ScaledAmount |value| × scalingFactor，溢出返回 MalformedInput
func ScaledAmount(value *big.Int, scalingFactor *uint256.Int) (*uint256.Int, error) {
	abs, overflow := uint256.FromBig(new(big.Int).Abs(value))
	if overflow {
		return nil, types.WrapMalformedInputError("public value %s overflows", value)
	}
	out, overflow := new(uint256.Int).MulOverflow(abs, scalingFactor)
	if overflow {
		return nil, types.WrapMalformedInputError("scaled public value overflows")
	}
	return out, nil
}

// ============================================================================
//                              价值转移
// ============================================================================

// Settlement 一次注册表更新对应的账本动作
type Settlement struct {
	Owner       common.Address
	Ledger      aceiface.Ledger
	Custody     common.Address
	PublicOwner common.Address
	// Amount 账本单位；为零表示无需转账
	Amount  *uint256.Int
	Deposit bool
	Spent   []common.Hash
	Created []common.Hash
}

// Transfer 按证明输出更新票据与托管总额，返回待执行的账本动作
//
// 存入要求 publicOwner 对 proofHash 的公开授权不少于 |publicValue|，并扣减授权。
func (m *Manager) Transfer(db Store, owner common.Address, rec *rawdb.RegistryRecord, out *types.ProofOutput, proofHash common.Hash) (*Settlement, error) {
	s := &Settlement{
		Owner:       owner,
		Custody:     CustodyAddress(owner),
		PublicOwner: out.PublicOwner,
		Amount:      new(uint256.Int),
	}

	var err error
	if s.Spent, err = m.spendNotes(db, owner, out.InputNotes); err != nil {
		return nil, err
	}
	if s.Created, err = m.createNotes(db, owner, out.OutputNotes); err != nil {
		return nil, err
	}

	value := out.PublicValue
	if value == nil || value.Sign() == 0 {
		return s, rawdb.WriteRegistry(db, owner, rec)
	}
	if !rec.CanConvert {
		return nil, fmt.Errorf("%w: registry %s", types.ErrConversionDisabled, owner.Hex())
	}
	ledger, ok := m.ledgers.Ledger(rec.Ledger)
	if !ok {
		return nil, types.WrapPublicTransferError(fmt.Errorf("ledger %s not found", rec.Ledger.Hex()))
	}
	s.Ledger = ledger
	if s.Amount, err = ScaledAmount(value, rec.ScalingFactor); err != nil {
		return nil, err
	}

	if value.Sign() < 0 {
		s.Deposit = true
		need, _ := uint256.FromBig(new(big.Int).Abs(value))
		approved, err := rawdb.ReadPublicApproval(db, out.PublicOwner, owner, proofHash)
		if err != nil {
			return nil, err
		}
		if approved.Lt(need) {
			return nil, fmt.Errorf("%w: approved %s, needs %s", types.ErrInsufficientPublicApproval, approved, need)
		}
		if err := rawdb.WritePublicApproval(db, out.PublicOwner, owner, proofHash, new(uint256.Int).Sub(approved, need)); err != nil {
			return nil, err
		}
		if _, overflow := rec.TotalSupply.AddOverflow(rec.TotalSupply, s.Amount); overflow {
			return nil, types.WrapMalformedInputError("registry custody overflows")
		}
	} else {
		if rec.TotalSupply.Lt(s.Amount) {
			return nil, types.WrapPublicTransferError(fmt.Errorf("custody %s below withdrawal %s", rec.TotalSupply, s.Amount))
		}
		rec.TotalSupply.Sub(rec.TotalSupply, s.Amount)
	}
	return s, rawdb.WriteRegistry(db, owner, rec)
}

// Execute 执行账本动作；permit 只用于存入，且必须授权给托管账户
func (s *Settlement) Execute(permit *types.Permit) error {
	if s.Amount == nil || s.Amount.IsZero() {
		if permit != nil {
			return types.WrapMalformedInputError("permit supplied without deposit")
		}
		return nil
	}
	if !s.Deposit {
		if permit != nil {
			return types.WrapMalformedInputError("permit supplied without deposit")
		}
		if err := s.Ledger.Transfer(s.Custody, s.PublicOwner, s.Amount); err != nil {
			return types.WrapPublicTransferError(err)
		}
		return nil
	}

	if permit == nil {
		if err := s.Ledger.TransferFrom(s.Custody, s.PublicOwner, s.Custody, s.Amount); err != nil {
			return types.WrapPublicTransferError(err)
		}
		return nil
	}
	if permit.Holder != s.PublicOwner || permit.Spender != s.Custody {
		return types.WrapPermitInvalidError(fmt.Errorf("permit for %s → %s, deposit needs %s → %s",
			permit.Holder.Hex(), permit.Spender.Hex(), s.PublicOwner.Hex(), s.Custody.Hex()))
	}
	err := s.Ledger.PermitAndTransferFrom(permit, s.Custody, s.PublicOwner, s.Custody, s.Amount)
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrPermitInvalid) {
		return err
	}
	return types.WrapPublicTransferError(err)
}
