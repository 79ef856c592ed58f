package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
)

// CoverInfo 封面文件信息
type CoverInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListCovers returns every cover in the bucket, newest first.
func (s *CoverStore) ListCovers(ctx context.Context) ([]CoverInfo, error) {
	// stops the listing goroutine when we return early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var covers []CoverInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出封面失败: %w", obj.Err)
		}
		covers = append(covers, CoverInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}

	sort.Slice(covers, func(i, j int) bool {
		return covers[i].LastModified.After(covers[j].LastModified)
	})
	return covers, nil
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
