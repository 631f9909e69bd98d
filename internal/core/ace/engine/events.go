package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/event"
)

// 引擎事件类型；事件在事务提交后发布
const (
	EventProofRegistered        event.EventType = "ace.proof.registered"
	EventProofInvalidated       event.EventType = "ace.proof.invalidated"
	EventEpochIncremented       event.EventType = "ace.epoch.incremented"
	EventReferenceStringUpdated event.EventType = "ace.crs.updated"
	EventFactorySet             event.EventType = "ace.factory.set"
	EventProofValidated         event.EventType = "ace.proof.validated"
	EventProofsCleared          event.EventType = "ace.proof.cleared"
	EventRegistryCreated        event.EventType = "ace.registry.created"
	EventRegistryUpdated        event.EventType = "ace.registry.updated"
	EventPublicApproval         event.EventType = "ace.registry.approval"
	EventNoteCreated            event.EventType = "ace.note.created"
	EventNoteDestroyed          event.EventType = "ace.note.destroyed"
	EventSupplyMinted           event.EventType = "ace.supply.minted"
	EventSupplyBurned           event.EventType = "ace.supply.burned"
)

// EventTypes 引擎发布的全部事件类型
var EventTypes = []event.EventType{
	EventProofRegistered,
	EventProofInvalidated,
	EventEpochIncremented,
	EventReferenceStringUpdated,
	EventFactorySet,
	EventProofValidated,
	EventProofsCleared,
	EventRegistryCreated,
	EventRegistryUpdated,
	EventPublicApproval,
	EventNoteCreated,
	EventNoteDestroyed,
	EventSupplyMinted,
	EventSupplyBurned,
}

// aceEvent 引擎事件
type aceEvent struct {
	typ  event.EventType
	data interface{}
}

func (e *aceEvent) Type() event.EventType { return e.typ }
func (e *aceEvent) Data() interface{}     { return e.data }

// ProofEvent 证明注册表事件数据
type ProofEvent struct {
	Kind      proofkind.Kind
	Validator common.Address
	Epoch     uint64
}

// ValidationEvent 证明验证或清除事件数据
type ValidationEvent struct {
	Kind      proofkind.Kind
	Submitter common.Address
	Hashes    []common.Hash
}

// RegistryEvent 票据注册表事件数据
type RegistryEvent struct {
	Owner       common.Address
	Ledger      common.Address
	FactoryID   uint32
	ProofHash   common.Hash
	PublicOwner common.Address
	Value       string
}

// NoteEvent 票据事件数据
type NoteEvent struct {
	Owner    common.Address
	NoteHash common.Hash
}

// FactoryEvent 工厂事件数据
type FactoryEvent struct {
	FactoryID uint32
	Address   common.Address
}

// pending 事务内收集、提交后发布的事件
type pending []*aceEvent

func (p *pending) add(typ event.EventType, data interface{}) {
	*p = append(*p, &aceEvent{typ: typ, data: data})
}

func (p *pending) notes(typ event.EventType, owner common.Address, hashes []common.Hash) {
	for _, h := range hashes {
		p.add(typ, NoteEvent{Owner: owner, NoteHash: h})
	}
}
