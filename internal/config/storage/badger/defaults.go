package badger

// BadgerDB存储默认配置值
const (
	// defaultPath 默认数据目录
	defaultPath = "./data/badger"

	// defaultSyncWrites 引擎状态要求每次提交落盘
	defaultSyncWrites = true

	// defaultMemTableSize 64MB
	defaultMemTableSize = 64 << 20

	// defaultEnableAutoGC 默认定期执行值日志GC
	defaultEnableAutoGC = true

	// defaultGCDiscardRatio 文件中可丢弃数据超过一半时重写
	defaultGCDiscardRatio = 0.5
)
