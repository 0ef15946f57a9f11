// gentemplate 按 report.* 配置生成一份空白的月度缺勤模板
//
// 用法：
//
//	gentemplate --config ./config/config.yaml --out ./templates/devamsizlik_sablon.xlsx
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mesem-yoklama/config"
	"mesem-yoklama/internal/report"
)

var (
	configPath string
	outPath    string
	overwrite  bool
)

var rootCmd = &cobra.Command{
	Use:   "gentemplate",
	Short: "生成月度缺勤报表模板",
	Long:  `按配置中的 report 坐标生成 xlsx 模板，供本地开发与测试使用。`,
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "输出路径（默认 report.template_path）")
	rootCmd.Flags().BoolVarP(&overwrite, "force", "f", false, "覆盖已存在的文件")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadReport(configPath)
	if err != nil {
		return err
	}

	target := outPath
	if target == "" {
		target = cfg.TemplatePath
	}
	if _, err := os.Stat(target); err == nil && !overwrite {
		return fmt.Errorf("%s 已存在，使用 --force 覆盖", target)
	}

	f, err := report.BuildTemplate(report.LayoutFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("生成模板失败: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(target); err != nil {
		return fmt.Errorf("保存模板失败: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "模板已生成: %s\n", target)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
