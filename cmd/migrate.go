package cmd

import (
	"fmt"

	"Tunelist/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "数据库迁移",
	Long:  `创建或更新 users、tracks、playlists 和 playlist_tracks 表。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("连接数据库 %s:%s/%s...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
		gdb, err := db.ConnectGormDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}
		fmt.Println("数据库迁移完成！")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
