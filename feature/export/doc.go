// Package export writes snapshots of every identity cluster to object storage.
//
// A snapshot is one JSON document holding the consolidated view of every
// cluster, ordered by primary id. It is stored as
// <prefix>/clusters-<UTC timestamp>.json; the bucket is created on first use.
// When storage.retain is set, older snapshots beyond that count are removed.
//
// # HTTP Endpoints
//
//   - POST /export : Writes a new snapshot.
//   - GET /export : Lists snapshot keys, newest first.
//   - GET /export/:name : Streams one snapshot.
package export
