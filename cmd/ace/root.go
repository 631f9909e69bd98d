package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weisyn/ace/configs"
	"github.com/weisyn/ace/internal/app/version"
	"github.com/weisyn/ace/internal/config"
	ifconfig "github.com/weisyn/ace/pkg/interfaces/config"
	"github.com/weisyn/ace/pkg/types"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // 配置文件路径
	Env        string // 内置配置环境
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "ace",
	Short: "ACE 机密资产引擎",
	Long: `ACE - 基于零知识证明的机密资产引擎

  ace serve                    启动引擎与 HTTP API
  ace kind encode|decode       证明类型编码工具
  ace epoch                    查看当前纪元
  ace proof status <kind>      查看证明类型状态
  ace crs show                 查看公共参考串

查询类命令直接读取配置中的数据目录，需在服务停止时执行。`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// 输出被重定向时去掉颜色与样式
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			pterm.DisableStyling()
		}
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "JSON 配置文件路径 (优先于 --env)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Env, "env", "", "使用内置配置: dev | prod (均未指定时使用默认值)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(kindCmd)
	rootCmd.AddCommand(epochCmd)
	rootCmd.AddCommand(proofCmd)
	rootCmd.AddCommand(crsCmd)
}

// loadAppConfig 读取 --config 文件或 --env 内置配置
func loadAppConfig() (*types.AppConfig, error) {
	var (
		opts ifconfig.AppOptions
		err  error
	)
	switch {
	case globalFlags.ConfigPath != "":
		opts, err = config.LoadFromFile(globalFlags.ConfigPath)
	case globalFlags.Env != "":
		data, ok := configs.Get(globalFlags.Env)
		if !ok {
			return nil, fmt.Errorf("未知的内置配置环境 %q", globalFlags.Env)
		}
		opts, err = config.LoadFromBytes(data)
	default:
		opts, err = config.LoadFromFile("")
	}
	if err != nil {
		return nil, err
	}
	return opts.GetAppConfig(), nil
}
