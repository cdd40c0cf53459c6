package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotConfigured is returned by NewClient when no endpoint is set.
var ErrNotConfigured = errors.New("storage endpoint not configured")

// Client is the subset of the MinIO API used to keep cluster snapshots.
type Client interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	// GetObject streams a snapshot back. The caller closes the reader.
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	// ListObjects streams the keys under opts.Prefix. Cancel ctx to stop early.
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// NewClient builds a MinIO client for cfg. The client does not dial; use Check
// to find out whether the endpoint answers.
func NewClient(cfg Config) (Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Snapshots are small; a stalled endpoint must fail an export, not hang it.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &snapshotClient{Client: mc}, nil
}

// Check asks the endpoint whether bucket exists. A missing bucket is fine since
// exports create it; an unreachable endpoint or rejected credentials are not.
func Check(ctx context.Context, client Client, bucket string) error {
	if _, err := client.BucketExists(ctx, bucket); err != nil {
		return fmt.Errorf("storage endpoint unreachable: %w", err)
	}
	return nil
}

// Connect builds a client for cfg and checks that the endpoint answers.
func Connect(ctx context.Context, cfg Config) (Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := Check(ctx, client, cfg.Bucket); err != nil {
		return nil, err
	}
	return client, nil
}

// snapshotClient narrows GetObject to an io.ReadCloser so Client can be mocked.
type snapshotClient struct {
	*minio.Client
}

func (c *snapshotClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucketName, objectName, opts)
}
