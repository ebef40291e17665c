// Package store provides SQLite-backed local storage for glaze.
//
// Two tables live in one database file:
//   - kv: a private key/value channel used to persist the target UMF between
//     runs (the local-store persistence strategy).
//   - solves: an append-only log of settled solve requests, one row per
//     request sequence number, used by the history command and for debugging.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// The engine is the only writer; it calls into the store from its event loop.
package store
