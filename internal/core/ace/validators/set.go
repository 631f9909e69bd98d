// Package validators 管理已部署的证明验证器实现
//
// 证明注册表只保存 kind → 验证器地址；地址是否“有代码”由 Set 判断。
package validators

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
)

const addressDomain = "ace.validator/"

// AddressOf 由验证器名称派生确定性地址
func AddressOf(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(addressDomain + name))[12:])
}

// Set 地址到验证器实现的映射
type Set struct {
	mu     sync.RWMutex
	byAddr map[common.Address]aceiface.ProofValidator
}

// NewSet 创建验证器集合并部署给定实现
func NewSet(vs ...aceiface.ProofValidator) *Set {
	s := &Set{byAddr: make(map[common.Address]aceiface.ProofValidator)}
	for _, v := range vs {
		s.Deploy(v)
	}
	return s
}

// Deploy 部署验证器，返回其地址；同名重复部署覆盖旧实现
func (s *Set) Deploy(v aceiface.ProofValidator) common.Address {
	addr := AddressOf(v.Name())
	s.mu.Lock()
	s.byAddr[addr] = v
	s.mu.Unlock()
	return addr
}

// Lookup 按地址查找验证器
func (s *Set) Lookup(addr common.Address) (aceiface.ProofValidator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byAddr[addr]
	return v, ok
}

// HasCode 地址上是否部署了验证器
func (s *Set) HasCode(addr common.Address) bool {
	_, ok := s.Lookup(addr)
	return ok
}

// Addresses 已部署的验证器地址，按字典序
func (s *Set) Addresses() []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]common.Address, 0, len(s.byAddr))
	for a := range s.byAddr {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}
