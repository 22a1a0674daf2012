package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuqie6/StudyMirror/internal/pkg/buildinfo"
	"github.com/yuqie6/StudyMirror/internal/pkg/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件管理",
	}
	cmd.AddCommand(configInitCmd())
	return cmd
}

// configInitCmd 以默认值生成配置文件
func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "生成默认配置文件",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("配置文件已存在: %s（使用 --force 覆盖）", path)
			}

			cfg := config.Default()
			cfg.App.Version = buildinfo.Version
			if err := config.WriteFile(path, cfg); err != nil {
				return err
			}
			fmt.Printf("✅ 已生成配置文件: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有文件")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("StudyMirror %s (%s)\n", buildinfo.Version, buildinfo.Commit)
		},
	}
}
