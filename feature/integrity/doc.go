// Package integrity provides health checks over the contact table.
//
// # Checks Provided
//
//   - Schema: Validates that the contacts table matches the Contact model (columns, types).
//     Type checks are skipped on Postgres, which reports generic type names.
//   - Clusters: Reports violations of the primary/secondary invariants: secondaries
//     without a link, links to missing contacts, links to other secondaries and
//     primaries carrying a link.
//
// # Fixing
//
// Chained secondaries are re-pointed at the primary their chain ends in. Contacts
// whose link cannot be resolved are promoted to primary. All repairs run in one
// transaction.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/clusters : Runs the cluster check (supports ?fix=true).
package integrity
