// Package ace 提供 ACE 引擎配置
package ace

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/weisyn/ace/pkg/types"
)

// KindLayout 证明类型编码位宽
type KindLayout struct {
	EpochBits    uint `json:"epoch_bits"`
	CategoryBits uint `json:"category_bits"`
	IDBits       uint `json:"id_bits"`
}

// TokenOptions 启动时部署的参考账本
type TokenOptions struct {
	Name     string                      `json:"name"`
	Address  common.Address              `json:"address"`
	Balances map[common.Address]*big.Int `json:"balances"`
}

// ACEOptions ACE 引擎配置选项
type ACEOptions struct {
	Owner           common.Address        `json:"owner"`
	ReferenceString types.ReferenceString `json:"reference_string"`
	DevTrapdoor     *big.Int              `json:"-"`
	KindLayout      KindLayout            `json:"kind_layout"`
	ChainID         uint64                `json:"chain_id"`
	Tokens          []TokenOptions        `json:"tokens"`
}

// Config ACE 配置实现
type Config struct {
	options *ACEOptions
}

// New 创建 ACE 配置，格式错误的字段返回错误
func New(userConfig *types.UserACEConfig) (*Config, error) {
	options := &ACEOptions{
		Owner: common.HexToAddress(defaultOwner),
		KindLayout: KindLayout{
			EpochBits:    defaultEpochBits,
			CategoryBits: defaultCategoryBits,
			IDBits:       defaultIDBits,
		},
		ChainID: defaultChainID,
	}
	if userConfig == nil {
		return &Config{options: options}, nil
	}

	if userConfig.Owner != nil {
		if !common.IsHexAddress(*userConfig.Owner) {
			return nil, fmt.Errorf("ace.owner 不是有效地址: %q", *userConfig.Owner)
		}
		options.Owner = common.HexToAddress(*userConfig.Owner)
	}

	if len(userConfig.ReferenceString) > 0 {
		if len(userConfig.ReferenceString) != len(options.ReferenceString) {
			return nil, fmt.Errorf("ace.reference_string 需要 %d 个字，实际 %d", len(options.ReferenceString), len(userConfig.ReferenceString))
		}
		for i, w := range userConfig.ReferenceString {
			b, err := hexutil.Decode(w)
			if err != nil || len(b) > common.HashLength {
				return nil, fmt.Errorf("ace.reference_string[%d] 格式错误: %q", i, w)
			}
			options.ReferenceString[i] = common.BytesToHash(b)
		}
	}

	if userConfig.DevTrapdoor != nil {
		y, ok := new(big.Int).SetString(strings.TrimPrefix(*userConfig.DevTrapdoor, "0x"), 16)
		if !ok || y.Sign() == 0 {
			return nil, fmt.Errorf("ace.dev_trapdoor 格式错误")
		}
		options.DevTrapdoor = y
	}

	if l := userConfig.KindLayout; l != nil {
		if l.EpochBits != nil {
			options.KindLayout.EpochBits = *l.EpochBits
		}
		if l.CategoryBits != nil {
			options.KindLayout.CategoryBits = *l.CategoryBits
		}
		if l.IDBits != nil {
			options.KindLayout.IDBits = *l.IDBits
		}
	}

	if userConfig.ChainID != nil {
		options.ChainID = *userConfig.ChainID
	}

	for _, t := range userConfig.Tokens {
		if !common.IsHexAddress(t.Address) {
			return nil, fmt.Errorf("ace.tokens[%s].address 不是有效地址", t.Name)
		}
		token := TokenOptions{
			Name:     t.Name,
			Address:  common.HexToAddress(t.Address),
			Balances: make(map[common.Address]*big.Int, len(t.Balances)),
		}
		for holder, amount := range t.Balances {
			v, ok := new(big.Int).SetString(amount, 10)
			if !common.IsHexAddress(holder) || !ok || v.Sign() < 0 {
				return nil, fmt.Errorf("ace.tokens[%s].balances[%s] 格式错误", t.Name, holder)
			}
			token.Balances[common.HexToAddress(holder)] = v
		}
		options.Tokens = append(options.Tokens, token)
	}

	return &Config{options: options}, nil
}

// GetOptions 获取 ACE 配置选项
func (c *Config) GetOptions() *ACEOptions {
	return c.options
}
