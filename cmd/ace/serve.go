package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/ace/internal/app"
	"github.com/weisyn/ace/internal/app/version"
)

var serveNoAPI bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动引擎与 HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadAppConfig()
		if err != nil {
			return err
		}
		opts := []app.Option{app.WithAppConfig(cfg)}
		if serveNoAPI {
			opts = append(opts, app.WithoutAPI())
		}

		a, err := app.Start(opts...)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("ace %s 已启动，按 Ctrl+C 停止", version.Version)
		if err := a.Wait(); err != nil {
			return err
		}
		pterm.Info.Println("已停止")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoAPI, "no-api", false, "不启动 HTTP API")
}
