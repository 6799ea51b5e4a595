// Package state holds the live credential set for one tiffin process.
//
// # Overview
//
// The request executor never touches storage. It takes a credential set in
// and hands a possibly refreshed set back; the caller passes that result to
// Store.Commit. The Store merges it under its mutex and persists through a
// session.Store only when the merge changed something:
//
//	executor.Execute(ctx, store.Credentials(), req)
//	        │ (Outcome, next)
//	        ▼
//	store.Commit(ctx, next) ──changed?──▶ backend.Save
//
// This makes Store the one serialization boundary for credential reads,
// merges and saves. In TUI mode the poller runs on its own goroutine while
// the UI reads snapshots, and neither can observe a half-applied refresh.
//
// # Failure Semantics
//
// A failed save is not fatal. The merged set stays in memory for the rest
// of the process, Snapshot().LastError records the problem and a warning is
// logged. Replace and Clear, used by login and logout, return their errors
// because the user asked for exactly that write.
//
// # Defensive Copying
//
// Credentials and Snapshot return deep copies; callers may mutate the maps
// they receive.
package state
