// Package metrics exposes Prometheus collectors for identity reconciliation.
package metrics
