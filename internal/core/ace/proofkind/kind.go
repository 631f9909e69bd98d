// Package proofkind 证明类型标识的编解码
//
// 证明类型是一个整数，打包 (epoch, category, id) 三个字段。
// 各字段位宽由 Layout 决定，默认 epoch:16 | category:8 | id:8。
package proofkind

import (
	"fmt"
)

// Kind 证明类型标识
type Kind uint32

// Category 证明类别
type Category uint8

const (
	// CategoryBalanced 价值守恒类证明（join-split 等）
	CategoryBalanced Category = 1
	// CategoryMint 铸造类证明
	CategoryMint Category = 2
	// CategoryBurn 销毁类证明
	CategoryBurn Category = 3
	// CategoryUtility 工具类证明，不驱动价值变更
	CategoryUtility Category = 4
)

// String 返回类别名称
func (c Category) String() string {
	switch c {
	case CategoryBalanced:
		return "BALANCED"
	case CategoryMint:
		return "MINT"
	case CategoryBurn:
		return "BURN"
	case CategoryUtility:
		return "UTILITY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(c))
	}
}

// Valid 是否为已知类别
func (c Category) Valid() bool {
	return c >= CategoryBalanced && c <= CategoryUtility
}

// Components 解包后的证明类型
type Components struct {
	Epoch    uint64
	Category Category
	ID       uint64
}

// Layout 三个字段的位宽，高位到低位依次为 epoch、category、id
type Layout struct {
	EpochBits    uint
	CategoryBits uint
	IDBits       uint
}

// DefaultLayout 默认布局：epoch+1 即 +65536
var DefaultLayout = Layout{EpochBits: 16, CategoryBits: 8, IDBits: 8}

// Validate 检查布局是否可用
func (l Layout) Validate() error {
	if l.EpochBits == 0 || l.CategoryBits == 0 || l.IDBits == 0 {
		return fmt.Errorf("proof kind layout fields must be non-empty: %+v", l)
	}
	if l.EpochBits+l.CategoryBits+l.IDBits > 32 {
		return fmt.Errorf("proof kind layout exceeds 32 bits: %+v", l)
	}
	if l.CategoryBits < 3 {
		return fmt.Errorf("proof kind layout category too narrow: %+v", l)
	}
	return nil
}

func mask(bits uint) uint64 {
	return (uint64(1) << bits) - 1
}

// Encode 打包证明类型，字段溢出时返回错误
func (l Layout) Encode(epoch uint64, category Category, id uint64) (Kind, error) {
	if epoch == 0 || epoch > mask(l.EpochBits) {
		return 0, fmt.Errorf("epoch %d out of range", epoch)
	}
	if uint64(category) > mask(l.CategoryBits) || !category.Valid() {
		return 0, fmt.Errorf("category %d out of range", category)
	}
	if id == 0 || id > mask(l.IDBits) {
		return 0, fmt.Errorf("id %d out of range", id)
	}
	v := epoch<<(l.CategoryBits+l.IDBits) | uint64(category)<<l.IDBits | id
	return Kind(v), nil
}

// MustEncode 同 Encode，失败时 panic；仅用于常量初始化
func (l Layout) MustEncode(epoch uint64, category Category, id uint64) Kind {
	k, err := l.Encode(epoch, category, id)
	if err != nil {
		panic(err)
	}
	return k
}

// Decode 解包证明类型；零值、超宽或类别未知时返回错误
func (l Layout) Decode(k Kind) (Components, error) {
	v := uint64(k)
	if v == 0 || v>>(l.EpochBits+l.CategoryBits+l.IDBits) != 0 {
		return Components{}, fmt.Errorf("malformed proof kind %d", k)
	}
	c := Components{
		Epoch:    v >> (l.CategoryBits + l.IDBits),
		Category: Category((v >> l.IDBits) & mask(l.CategoryBits)),
		ID:       v & mask(l.IDBits),
	}
	if c.Epoch == 0 || c.ID == 0 || !c.Category.Valid() {
		return Components{}, fmt.Errorf("malformed proof kind %d", k)
	}
	return c, nil
}

// WithEpoch 返回相同类别和 id、指定纪元的证明类型
func (l Layout) WithEpoch(k Kind, epoch uint64) (Kind, error) {
	c, err := l.Decode(k)
	if err != nil {
		return 0, err
	}
	return l.Encode(epoch, c.Category, c.ID)
}

// 已知证明类型（默认布局）
var (
	// JoinSplit = 65793
	JoinSplit = DefaultLayout.MustEncode(1, CategoryBalanced, 1)
	// PublicRange = 66562
	PublicRange = DefaultLayout.MustEncode(1, CategoryUtility, 2)
)
