package cmd

import (
	"Tunelist/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "启动Tunelist服务器",
	Long:    `启动HTTP服务器，提供歌曲、歌单和用户认证API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
