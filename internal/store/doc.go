// Package store provides SQLite-backed durable storage for radixrunner runs.
//
// The log has two tables:
//   - runs: one row per engine run, with its shadow configuration
//   - samples: monitor samples, keyed by content-addressed ID
//
// # Ordering
//
// Samples are ordered by their logical seq, never by wall time. Every sample
// query ends in ORDER BY seq ASC, id COLLATE BINARY ASC. Runs are listed by
// ID; run IDs are UUIDv7, which sort by creation time.
//
// # Idempotency
//
// Writing a run or sample whose ID already exists is silently ignored, so a
// sink may retry. Sample IDs come from ir.SampleID.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Samples must belong to a stored run
package store
