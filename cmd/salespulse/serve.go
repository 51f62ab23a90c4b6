package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"salespulse/internal/logger"
	"salespulse/internal/server"
	"salespulse/internal/util"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		port    int
		devMode bool
		dataDir string
		open    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Khởi động máy chủ cục bộ",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, info, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			// 命令行参数仅在配置未显式指定端口时生效
			if port > 0 && !info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}
			if dataDir != "" {
				cfg.Data.DataDir = dataDir
			}

			srv, err := server.NewServer(cfg)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

			errCh := make(chan error, 1)
			go func() {
				logger.L.Info("server listening", "addr", addr, "config", info.Path, "configFound", info.FileFound)
				errCh <- srv.Run(addr)
			}()

			if open && !cfg.Server.DevMode {
				if err := util.OpenBrowser(url); err != nil {
					fmt.Printf("Không mở được trình duyệt, hãy truy cập: %s\n", url)
				}
			} else {
				fmt.Printf("Truy cập: %s\n", url)
			}
			fmt.Println("Nhấn Ctrl+C để dừng...")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("failed to start server: %w", err)
				}
			case <-quit:
			}

			logger.L.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "cổng dịch vụ (chỉ áp dụng khi config.toml không đặt port)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "chế độ phát triển")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "thư mục dữ liệu (ghi đè cấu hình)")
	cmd.Flags().BoolVar(&open, "open", true, "tự mở trình duyệt sau khi khởi động")
	return cmd
}
