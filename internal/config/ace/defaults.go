package ace

// ACE 引擎默认配置值
const (
	// defaultOwner 开发网络的默认所有者
	defaultOwner = "0x00000000000000000000000000000000000ace01"

	// 默认证明类型布局 epoch:16 | category:8 | id:8
	defaultEpochBits    = 16
	defaultCategoryBits = 8
	defaultIDBits       = 8

	// defaultChainID 本地开发链
	defaultChainID = 1337
)
