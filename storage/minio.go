package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"Tunelist/config"
	"Tunelist/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxCoverSize is the largest cover image accepted for upload.
const MaxCoverSize = 5 << 20

// ErrObjectNotFound is returned by GetCover when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrUnsupportedImage is returned by PutCover for content types outside coverExtensions.
var ErrUnsupportedImage = errors.New("unsupported image type")

// 允许的封面类型及其扩展名
var coverExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// CoverExtension returns the file extension for an accepted cover content type.
func CoverExtension(contentType string) (string, bool) {
	ext, ok := coverExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// IsValidCoverKey reports whether key looks like one PutCover generated.
func IsValidCoverKey(key string) bool {
	ext := path.Ext(key)
	if _, err := uuid.Parse(strings.TrimSuffix(key, ext)); err != nil {
		return false
	}
	for _, known := range coverExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Object is an open cover stream.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// CoverStore keeps cover art in one MinIO bucket.
type CoverStore struct {
	client *minio.Client
	bucket string
}

// NewMinioClient 初始化 MinIO 客户端
func NewMinioClient(cfg *config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}
	return client, nil
}

// NewCoverStore 创建封面存储
func NewCoverStore(client *minio.Client, bucket string) *CoverStore {
	return &CoverStore{client: client, bucket: bucket}
}

// Bucket returns the bucket name covers are written to.
func (s *CoverStore) Bucket() string {
	return s.bucket
}

// EnsureBucket 检查存储桶是否存在，不存在则创建
func (s *CoverStore) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if exists {
		logger.Info("存储桶已存在", logger.String("bucket", s.bucket))
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	logger.Info("成功创建存储桶", logger.String("bucket", s.bucket))
	return nil
}

// PutCover uploads an image under a fresh random key and returns the key.
func (s *CoverStore) PutCover(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	ext, ok := CoverExtension(contentType)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	key := uuid.NewString() + ext
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return "", fmt.Errorf("上传封面失败: %w", err)
	}
	return key, nil
}

// GetCover opens the object for reading. The caller closes it.
func (s *CoverStore) GetCover(ctx context.Context, key string) (*Object, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取封面失败: %w", err)
	}

	// GetObject is lazy; Stat is the first call that talks to the server.
	info, err := object.Stat()
	if err != nil {
		object.Close()
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("读取封面失败: %w", err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Object{ReadCloser: object, ContentType: contentType, Size: info.Size}, nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
