package types

// AppConfig 应用配置，对应 JSON 配置文件的根结构
//
// 🔧 零值陷阱处理说明：
// 字段使用指针类型区分"用户未设置"与"用户设置为零值"：
// - nil: 未在配置文件中设置，使用各配置包 defaults.go 中的默认值
// - &value: 用户明确设置，即使是零值（0、false、""）也会被采用
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 时钟配置（许可过期判定）
	Clock *UserClockConfig `json:"clock,omitempty"`

	// 事件配置
	Event *UserEventConfig `json:"event,omitempty"`

	// ACE 引擎配置
	ACE *UserACEConfig `json:"ace,omitempty"`
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	HTTPEnabled    *bool   `json:"http_enabled,omitempty"`    // 是否启用HTTP服务（默认true）
	HTTPHost       *string `json:"http_host,omitempty"`       // 监听地址
	HTTPPort       *int    `json:"http_port,omitempty"`       // 监听端口
	MetricsEnabled *bool   `json:"metrics_enabled,omitempty"` // 是否暴露 /metrics
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	DataRoot *string `json:"data_root,omitempty"` // 数据根目录（data_root）
	InMemory *bool   `json:"in_memory,omitempty"` // 使用内存 BadgerDB（数据不持久化）
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserClockConfig 用户时钟配置
type UserClockConfig struct {
	Type      *string `json:"type,omitempty"`       // system | ntp
	NTPServer *string `json:"ntp_server,omitempty"` // NTP 服务器
}

// UserEventConfig 用户事件配置
type UserEventConfig struct {
	Enabled *bool `json:"enabled,omitempty"` // 是否启用事件总线
}

// UserACEConfig 用户 ACE 引擎配置
type UserACEConfig struct {
	// Owner 引擎所有者地址（hex）
	Owner *string `json:"owner,omitempty"`

	// ReferenceString 公共参考串，6 个 32 字节 hex 字
	ReferenceString []string `json:"reference_string,omitempty"`

	// DevTrapdoor 仅开发环境：由陷门派生参考串，优先级低于 ReferenceString
	DevTrapdoor *string `json:"dev_trapdoor,omitempty"`

	// KindLayout 证明类型编码的位宽布局
	KindLayout *UserKindLayoutConfig `json:"kind_layout,omitempty"`

	// ChainID EIP-712 域使用的链 ID
	ChainID *uint64 `json:"chain_id,omitempty"`

	// Tokens 启动时部署的参考账本
	Tokens []UserTokenConfig `json:"tokens,omitempty"`
}

// UserKindLayoutConfig 证明类型位宽
type UserKindLayoutConfig struct {
	EpochBits    *uint `json:"epoch_bits,omitempty"`
	CategoryBits *uint `json:"category_bits,omitempty"`
	IDBits       *uint `json:"id_bits,omitempty"`
}

// UserTokenConfig 参考账本配置
type UserTokenConfig struct {
	Name     string            `json:"name"`
	Address  string            `json:"address"`
	Balances map[string]string `json:"balances,omitempty"` // 地址 → 十进制余额
}
