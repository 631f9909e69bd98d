// Package configs 内置环境配置
package configs

import _ "embed"

// 嵌入所有环境的配置文件（在configs目录内直接引用）
//
//go:embed development/config.json
var developmentConfig []byte

//go:embed production/config.json
var productionConfig []byte

// GetDevelopmentConfig 获取开发环境配置
func GetDevelopmentConfig() []byte {
	return developmentConfig
}

// GetProductionConfig 获取生产环境配置
func GetProductionConfig() []byte {
	return productionConfig
}

// Get 按环境名取内置配置：dev | prod
func Get(env string) ([]byte, bool) {
	switch env {
	case "dev", "development":
		return developmentConfig, true
	case "prod", "production":
		return productionConfig, true
	default:
		return nil, false
	}
}
