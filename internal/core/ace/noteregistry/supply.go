package noteregistry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/pkg/types"
)

// SupplyChange 一次铸造或销毁的结果
type SupplyChange struct {
	// Total 新的累计量票据哈希
	Total common.Hash
	// Notes 铸造时为新建票据，销毁时为被花费的票据
	Notes []common.Hash
}

// checkSupplyOutputs 校验铸造/销毁证明的输出形状
//
//	outputs[0]: 累计量迁移，输入为旧累计量票据（首次为空），输出为新累计量票据
//	outputs[1]: 被铸造或被销毁的票据，公开价值必须为零
func checkSupplyOutputs(outs types.ProofOutputs, current common.Hash) (common.Hash, *types.ProofOutput, error) {
	if len(outs) != 2 {
		return common.Hash{}, nil, types.WrapMalformedInputError("supply proof needs 2 outputs, got %d", len(outs))
	}
	total := &outs[0]
	if len(total.OutputNotes) != 1 {
		return common.Hash{}, nil, types.WrapMalformedInputError("supply transition needs exactly one new total note")
	}
	switch {
	case current == (common.Hash{}) && len(total.InputNotes) != 0:
		return common.Hash{}, nil, types.WrapMalformedInputError("first supply transition takes no old total")
	case current != (common.Hash{}) && (len(total.InputNotes) != 1 || total.InputNotes[0].Hash() != current):
		return common.Hash{}, nil, types.WrapMalformedInputError("old total note does not match registry")
	}
	for i := range outs {
		if outs[i].PublicValue != nil && outs[i].PublicValue.Sign() != 0 {
			return common.Hash{}, nil, types.WrapMalformedInputError("supply proofs move no public value")
		}
	}
	return total.OutputNotes[0].Hash(), &outs[1], nil
}

// Mint 铸造：登记新票据并更新累计铸造量
func (m *Manager) Mint(db Store, owner common.Address, rec *rawdb.RegistryRecord, outs types.ProofOutputs) (*SupplyChange, error) {
	if !rec.CanAdjustSupply {
		return nil, fmt.Errorf("%w: registry %s", types.ErrSupplyAdjustmentDisabled, owner.Hex())
	}
	total, minted, err := checkSupplyOutputs(outs, rec.TotalMinted)
	if err != nil {
		return nil, err
	}
	notes, err := m.createNotes(db, owner, minted.OutputNotes)
	if err != nil {
		return nil, err
	}
	rec.TotalMinted = total
	if err := rawdb.WriteRegistry(db, owner, rec); err != nil {
		return nil, err
	}
	return &SupplyChange{Total: total, Notes: notes}, nil
}

// Burn 销毁：花费票据并更新累计销毁量
func (m *Manager) Burn(db Store, owner common.Address, rec *rawdb.RegistryRecord, outs types.ProofOutputs) (*SupplyChange, error) {
	if !rec.CanAdjustSupply {
		return nil, fmt.Errorf("%w: registry %s", types.ErrSupplyAdjustmentDisabled, owner.Hex())
	}
	total, burned, err := checkSupplyOutputs(outs, rec.TotalBurned)
	if err != nil {
		return nil, err
	}
	notes, err := m.spendNotes(db, owner, burned.InputNotes)
	if err != nil {
		return nil, err
	}
	rec.TotalBurned = total
	if err := rawdb.WriteRegistry(db, owner, rec); err != nil {
		return nil, err
	}
	return &SupplyChange{Total: total, Notes: notes}, nil
}
