package cmd

import (
	"fmt"
	"os"

	"Tunelist/config"
	"Tunelist/logger"
	"Tunelist/server"

	"github.com/spf13/cobra"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tunelist",
	Short: "Tunelist is a music catalog and playlist API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		return logger.InitLogger(logger.Config{
			Level:       logger.LogLevel(cfg.LogLevel),
			OutputPath:  cfg.LogFile,
			MaxSize:     100,
			MaxBackups:  7,
			MaxAge:      30,
			Compress:    true,
			Development: cfg.IsDevelopment(),
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	// 默认启动服务器
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
