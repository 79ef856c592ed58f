package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"Tunelist/config"

	"github.com/minio/minio-go/v7"
)

func TestCoverExtension(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		ok          bool
	}{
		{"image/jpeg", ".jpg", true},
		{"IMAGE/PNG", ".png", true},
		{" image/webp ", ".webp", true},
		{"image/gif", ".gif", true},
		{"image/svg+xml", "", false},
		{"text/plain", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		ext, ok := CoverExtension(tt.contentType)
		if ext != tt.want || ok != tt.ok {
			t.Errorf("CoverExtension(%q) = %q, %v; want %q, %v", tt.contentType, ext, ok, tt.want, tt.ok)
		}
	}
}

func TestIsValidCoverKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"0b8f3d52-6d2c-4f0e-9d0a-2f1f0c1b2a3c.jpg", true},
		{"0b8f3d52-6d2c-4f0e-9d0a-2f1f0c1b2a3c.webp", true},
		{"0b8f3d52-6d2c-4f0e-9d0a-2f1f0c1b2a3c.exe", false},
		{"0b8f3d52-6d2c-4f0e-9d0a-2f1f0c1b2a3c", false},
		{"../secrets.jpg", false},
		{"cover.jpg", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidCoverKey(tt.key); got != tt.want {
			t.Errorf("IsValidCoverKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestNewMinioClient(t *testing.T) {
	client, err := NewMinioClient(&config.Config{
		MinioEndpoint:  "localhost:9000",
		MinioAccessKey: "minio",
		MinioSecretKey: "minio123",
	})
	if err != nil {
		t.Fatalf("NewMinioClient failed: %v", err)
	}

	store := NewCoverStore(client, "covers")
	if store.Bucket() != "covers" {
		t.Errorf("unexpected bucket %q", store.Bucket())
	}

	if _, err := NewMinioClient(&config.Config{MinioEndpoint: "http://localhost:9000"}); err == nil {
		t.Error("expected error for an endpoint with a scheme")
	}
}

func TestIsNoSuchKey(t *testing.T) {
	if !isNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}) {
		t.Error("expected NoSuchKey to be recognised")
	}
	if isNoSuchKey(errors.New("connection refused")) {
		t.Error("plain errors are not missing objects")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{MaxCoverSize, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestListCoversError(t *testing.T) {
	var lists int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list-type") == "2" {
			atomic.AddInt32(&lists, 1)
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
			`<Error><Code>AccessDenied</Code><Message>Access Denied.</Message>` +
			`<BucketName>covers</BucketName><RequestId>1</RequestId></Error>`))
	}))
	defer srv.Close()

	client, err := NewMinioClient(&config.Config{
		MinioEndpoint:  strings.TrimPrefix(srv.URL, "http://"),
		MinioAccessKey: "minio",
		MinioSecretKey: "minio123",
	})
	if err != nil {
		t.Fatalf("NewMinioClient failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	covers, err := NewCoverStore(client, "covers").ListCovers(ctx)
	if err == nil {
		t.Fatalf("expected a listing error, got %d covers", len(covers))
	}
	if minio.ToErrorResponse(errors.Unwrap(err)).Code != "AccessDenied" {
		t.Errorf("expected AccessDenied to be wrapped, got %v", err)
	}
	if n := atomic.LoadInt32(&lists); n != 1 {
		t.Errorf("expected exactly one list request, got %d", n)
	}
}
