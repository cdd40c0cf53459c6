// Package reconcile implements identity reconciliation over the contact store.
//
// Given an observation of an email and/or a phone number, the engine decides
// whether it matches existing identity clusters, whether a new primary must be
// created, whether clusters must be merged under the eldest primary, and
// returns the consolidated view of the resulting cluster.
//
// # Architecture
//
// 1. Plan: BuildPlan reads matches and clusters and returns the actions to take
// (create_primary, create_secondary, demote_primary, relink) without writing.
//
// 2. Apply: ApplyPlan executes those actions against a transaction-bound store.
//
// 3. Engine: Identify runs plan, apply and view assembly inside one transaction
// bounded by Config.LockTimeout. The transaction first locks the observed email
// and phone values, then locks candidate primaries in id order before reading
// their clusters. Identical concurrent observations are collapsed with
// singleflight; the shared call does not inherit any one caller's cancellation.
//
// # Errors
//
// ErrInvalidInput is returned when neither value is present. Every store
// failure is wrapped in *StorageError; the engine never retries.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(contact.NewGormStore(db), logger, cfg.Reconcile)
//	view, err := engine.Identify(ctx, &email, &phone)
//
//	// Dry run
//	plan, err := engine.Plan(ctx, &email, &phone)
package reconcile
