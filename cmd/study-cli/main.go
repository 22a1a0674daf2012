package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuqie6/StudyMirror/internal/bootstrap"
	"github.com/yuqie6/StudyMirror/internal/pkg/buildinfo"
)

var (
	cfgFile      string
	userID       int64
	outputFormat string
	core         *bootstrap.Core
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "study",
		Short:   "StudyMirror - 学习记录统一与分析引擎",
		Long:    `StudyMirror 将计时学习与番茄钟记录合并为统一历史，并生成统计、洞察、方法推荐与周期对比。`,
		Version: buildinfo.Version,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().Int64VarP(&userID, "user", "u", 1, "用户 ID")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "输出格式 (json|yaml)")

	rootCmd.AddCommand(withCore(historyCmd()))
	rootCmd.AddCommand(withCore(statsCmd()))
	rootCmd.AddCommand(withCore(insightsCmd()))
	rootCmd.AddCommand(withCore(suggestCmd()))
	rootCmd.AddCommand(withCore(compareCmd()))
	rootCmd.AddCommand(withCore(subjectsCmd()))
	rootCmd.AddCommand(withCore(seedCmd()))
	rootCmd.AddCommand(withCore(serveCmd()))
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// withCore 在命令执行前打开 Core，执行结束（含出错）后关闭
func withCore(cmd *cobra.Command) *cobra.Command {
	run := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := bootstrap.NewCore(cfgFile, bootstrap.Options{})
		if err != nil {
			slog.Error("初始化失败", "error", err)
			return err
		}
		core = c
		defer func() {
			_ = c.Close()
			core = nil
		}()
		return run(cmd, args)
	}
	return cmd
}
