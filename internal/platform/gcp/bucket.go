package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

// ArchiveStore keeps copies of produced documents.
type ArchiveStore interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	Close() error
}

type BucketConfig struct {
	Bucket  string
	Prefix  string
	Storage ObjectStorageConfig
	Timeout time.Duration
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucket        string
	prefix        string
	timeout       time.Duration
}

func NewBucketService(ctx context.Context, log *logger.Logger, cfg BucketConfig) (ArchiveStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("archive bucket name required")
	}
	serviceLog := log.With("service", "BucketService")

	stClient, err := cfg.Storage.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	serviceLog.Info("Object storage initialized",
		"mode", cfg.Storage.Mode,
		"emulator_host", cfg.Storage.EmulatorHost,
		"bucket", cfg.Bucket,
		"prefix", cfg.Prefix,
	)
	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		timeout:       timeout,
	}, nil
}

// UploadFile writes file under the configured prefix and returns its gs:// URI.
func (bs *bucketService) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	objectKey := bs.objectKey(key)
	ctx, cancel := context.WithTimeout(ctx, bs.timeout)
	defer cancel()

	w := bs.storageClient.Bucket(bs.bucket).Object(objectKey).NewWriter(ctx)
	if contentType == "" {
		contentType = contentTypeForKey(objectKey)
	}
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return "gs://" + bs.bucket + "/" + objectKey, nil
}

func (bs *bucketService) Close() error {
	return bs.storageClient.Close()
}

func (bs *bucketService) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if bs.prefix == "" {
		return key
	}
	return bs.prefix + "/" + key
}

// ArchiveKey lays documents out by day: 2006/01/02/<id>/<fileName>.
func ArchiveKey(now time.Time, id, fileName string) string {
	return path.Join(now.UTC().Format("2006/01/02"), id, path.Base(fileName))
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	default:
		return ""
	}
}

// UploadBytes is a convenience for callers holding the whole object in memory.
func UploadBytes(ctx context.Context, store ArchiveStore, key string, data []byte, contentType string) (string, error) {
	return store.UploadFile(ctx, key, bytes.NewReader(data), contentType)
}
