package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
)

var _ aceiface.LedgerDirectory = (*Directory)(nil)

// Directory 地址到账本的索引
type Directory struct {
	mu      sync.RWMutex
	ledgers map[common.Address]aceiface.Ledger
}

// NewDirectory 创建空索引
func NewDirectory() *Directory {
	return &Directory{ledgers: make(map[common.Address]aceiface.Ledger)}
}

// Register 注册账本；同一地址只能注册一次
func (d *Directory) Register(l aceiface.Ledger) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.ledgers[l.Address()]; ok {
		return fmt.Errorf("ledger %s already registered", l.Address().Hex())
	}
	d.ledgers[l.Address()] = l
	return nil
}

// Ledger 实现 LedgerDirectory
func (d *Directory) Ledger(addr common.Address) (aceiface.Ledger, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	l, ok := d.ledgers[addr]
	return l, ok
}

// Addresses 按地址排序的全部账本
func (d *Directory) Addresses() []common.Address {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]common.Address, 0, len(d.ledgers))
	for addr := range d.ledgers {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}
