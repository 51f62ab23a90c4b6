package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"salespulse/internal/config"
	"salespulse/internal/logger"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "salespulse",
		Short:         "Thống kê doanh thu bán hàng và doanh thu quy đổi theo hệ số",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "đường dẫn config.toml (mặc định cạnh tệp thực thi)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(reportCmd(&configPath))
	rootCmd.AddCommand(rulesCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Lỗi:", err)
		os.Exit(1)
	}
}

// loadConfig 加载配置并初始化日志
func loadConfig(path string) (*config.AppConfig, config.LoadConfigInfo, error) {
	cfg, info, err := config.LoadConfigWithInfo(path)
	if err != nil {
		return nil, info, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, info, err
	}
	logger.InitLoggerWithWriter(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return cfg, info, nil
}
