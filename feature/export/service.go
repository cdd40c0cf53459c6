package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"identity-reconciler/core/contact"
	"identity-reconciler/core/reconcile"
	"identity-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const timeLayout = "20060102T150405Z"

// Snapshot is the document written to object storage.
type Snapshot struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Clusters    []*reconcile.IdentityView `json:"clusters"`
}

// Result describes an uploaded snapshot.
type Result struct {
	Bucket   string   `json:"bucket"`
	Key      string   `json:"key"`
	Clusters int      `json:"clusters"`
	Size     int64    `json:"size"`
	Pruned   []string `json:"pruned"`
}

// Service writes cluster snapshots to object storage.
type Service struct {
	store  contact.Store
	client storage.Client
	cfg    storage.Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new export service.
func NewService(store contact.Store, client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		client: client,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// BuildSnapshot assembles the view of every cluster, ordered by primary id.
func (s *Service) BuildSnapshot(ctx context.Context) (*Snapshot, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// ListAll is ordered by id; BuildView expects members oldest first.
	members := make(map[int64][]contact.Contact)
	primaries := make([]contact.Contact, 0)
	for _, c := range all {
		if c.IsPrimary() {
			primaries = append(primaries, c)
		}
		if root, ok := c.RootID(); ok {
			members[root] = append(members[root], c)
		}
	}

	snap := &Snapshot{
		GeneratedAt: s.now().UTC(),
		Clusters:    make([]*reconcile.IdentityView, 0, len(primaries)),
	}
	for _, p := range primaries {
		cluster := members[p.ID]
		sort.SliceStable(cluster, func(i, j int) bool { return cluster[i].Older(cluster[j]) })
		snap.Clusters = append(snap.Clusters, reconcile.BuildView(p, cluster))
	}
	return snap, nil
}

// Export uploads a snapshot of every cluster and prunes old snapshots when a
// retention limit is configured.
func (s *Service) Export(ctx context.Context) (*Result, error) {
	snap, err := s.BuildSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	key := s.objectKey(snap.GeneratedAt)
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}

	s.logger.Info("Exported cluster snapshot",
		zap.String("bucket", s.cfg.Bucket),
		zap.String("key", key),
		zap.Int("clusters", len(snap.Clusters)))

	pruned, err := s.prune(ctx)
	if err != nil {
		s.logger.Warn("Failed to prune old snapshots", zap.Error(err))
	}

	return &Result{
		Bucket:   s.cfg.Bucket,
		Key:      key,
		Clusters: len(snap.Clusters),
		Size:     int64(len(data)),
		Pruned:   pruned,
	}, nil
}

// List returns the snapshot keys under the configured prefix, newest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	// Cancelling stops the lister goroutine when we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix(),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			keys = append(keys, obj.Key)
		}
	}
	// Timestamps in the key sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Open streams a snapshot back. The caller closes the reader.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid snapshot name %q", name)
	}
	return s.client.GetObject(ctx, s.cfg.Bucket, path.Join(s.prefix(), name), minio.GetObjectOptions{})
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	s.logger.Info("Creating export bucket", zap.String("bucket", s.cfg.Bucket))
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

func (s *Service) prune(ctx context.Context) ([]string, error) {
	pruned := []string{}
	if s.cfg.Retain <= 0 {
		return pruned, nil
	}
	keys, err := s.List(ctx)
	if err != nil {
		return pruned, err
	}
	if len(keys) <= s.cfg.Retain {
		return pruned, nil
	}
	for _, key := range keys[s.cfg.Retain:] {
		if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return pruned, fmt.Errorf("failed to remove snapshot %s: %w", key, err)
		}
		pruned = append(pruned, key)
	}
	return pruned, nil
}

func (s *Service) prefix() string {
	return strings.Trim(s.cfg.Prefix, "/")
}

func (s *Service) objectKey(at time.Time) string {
	return path.Join(s.prefix(), "clusters-"+at.UTC().Format(timeLayout)+".json")
}
