package cmd

import (
	"errors"
	"fmt"

	"Tunelist/storage"

	"github.com/spf13/cobra"
)

var minioStats bool

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO封面存储桶管理",
	Long:  `检查封面存储桶，不存在时创建，并列出已上传的封面或显示统计信息。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.MinioEnabled() {
			return errors.New("MINIO_ENDPOINT 未设置")
		}
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		client, err := storage.NewMinioClient(cfg)
		if err != nil {
			return err
		}
		store := storage.NewCoverStore(client, cfg.MinioBucket)
		if err := store.EnsureBucket(cmd.Context()); err != nil {
			return err
		}

		covers, err := store.ListCovers(cmd.Context())
		if err != nil {
			return err
		}

		if minioStats {
			var total int64
			for _, c := range covers {
				total += c.Size
			}
			fmt.Printf("封面数量: %d\n总大小: %s\n", len(covers), storage.FormatSize(total))
			return nil
		}

		for _, c := range covers {
			fmt.Printf("%-45s %10s  %s\n", c.Key, storage.FormatSize(c.Size), c.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("\n共 %d 个封面\n", len(covers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "显示存储桶统计信息")

	minioCmd.Example = `  # 列出所有封面
  tunelist minio

  # 显示存储桶统计信息
  tunelist minio -s`
}
