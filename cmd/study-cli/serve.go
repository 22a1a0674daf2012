package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/StudyMirror/internal/httpapi"
	"github.com/yuqie6/StudyMirror/internal/pkg/config"
)

// serveCmd 启动本地 HTTP API，并监听配置变更热更新阈值
func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动本地 HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := listen
			if addr == "" {
				addr = core.Cfg.Server.ListenAddr
			}
			srv, err := httpapi.Start(ctx, core, httpapi.Options{ListenAddr: addr})
			if err != nil {
				return err
			}

			if cfgFile != "" {
				if err := config.Watch(ctx, cfgFile, core.ApplyConfig); err != nil {
					slog.Warn("配置监听失败，阈值不会热更新", "error", err)
				}
			}

			slog.Info("StudyMirror 已启动", "base_url", srv.BaseURL(), "version", core.Cfg.App.Version)
			<-ctx.Done()

			slog.Info("正在关闭...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "监听地址，默认取配置 server.listen_addr")
	return cmd
}
