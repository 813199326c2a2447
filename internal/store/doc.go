// Package store provides SQLite-backed client-local storage for the PLMS
// command line client.
//
// The store holds the state that must survive between invocations:
//   - Credential: the single bearer token issued at login or registration,
//     together with the API base URL it was issued by
//   - Profile: a snapshot of the signed-in user, refreshed by the session gate
//
// Nothing from the catalog is cached here; every view re-fetches from the API.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
