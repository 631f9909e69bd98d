package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/ace/internal/app"
	"github.com/weisyn/ace/internal/core/ace/engine"
)

// withEngine 以离线模式（不启动 API）启动引擎执行查询
func withEngine(fn func(ctx context.Context, eng *engine.Engine) error) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	var eng *engine.Engine
	a, err := app.Start(app.WithAppConfig(cfg), app.WithoutAPI(), app.WithPopulate(&eng))
	if err != nil {
		return err
	}
	runErr := fn(context.Background(), eng)
	if err := a.Stop(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

var epochCmd = &cobra.Command{
	Use:   "epoch",
	Short: "查看当前纪元",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			epoch, err := eng.LatestEpoch(ctx)
			if err != nil {
				return err
			}
			pterm.Println(epoch)
			return nil
		})
	},
}

var proofCmd = &cobra.Command{
	Use:   "proof",
	Short: "证明类型查询",
}

var proofStatusCmd = &cobra.Command{
	Use:   "status <kind>",
	Short: "查看证明类型状态与验证器",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			comps, err := eng.Layout().Decode(kind)
			if err != nil {
				return err
			}
			status, validator, err := eng.GetProofStatus(ctx, kind)
			if err != nil {
				return err
			}
			return pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(pterm.TableData{
				{"kind", "epoch", "category", "id", "status", "validator"},
				{
					strconv.FormatUint(uint64(kind), 10),
					strconv.FormatUint(comps.Epoch, 10),
					comps.Category.String(),
					strconv.FormatUint(comps.ID, 10),
					status.String(),
					validator.Hex(),
				},
			}).Render()
		})
	},
}

var crsCmd = &cobra.Command{
	Use:   "crs",
	Short: "公共参考串",
}

var crsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "查看已存储的公共参考串",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			rs, err := eng.ReferenceString(ctx)
			if err != nil {
				return err
			}
			if rs.IsZero() {
				pterm.Warning.Println("未设置公共参考串")
				return nil
			}
			data := pterm.TableData{{"#", "word"}}
			for i, w := range rs {
				data = append(data, []string{fmt.Sprint(i), w.Hex()})
			}
			return pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(data).Render()
		})
	},
}

func init() {
	proofCmd.AddCommand(proofStatusCmd)
	crsCmd.AddCommand(crsShowCmd)
}
