// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the small interface the export feature
// needs. Both AWS S3 and self-hosted MinIO instances are supported.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: ensure the snapshot bucket exists.
//   - PutObject: upload a cluster snapshot.
//   - GetObject: stream a snapshot back.
//   - ListObjects: list snapshots under a prefix.
//   - RemoveObject: prune old snapshots.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, config.Bucket)
package storage
