// Package metrics provides lock-free counters and latency histograms for
// tokenguard observability.
//
// # Design
//
// Counters are stored in cache-line-padded uint64 slots and incremented
// atomically via [sync/atomic.AddUint64]. Histograms use 8 fixed buckets
// (≤5ms … +Inf). Both are allocation-free on the write path.
//
// # Architecture boundaries
//
// This package owns metric storage and snapshot creation. Metric IDs and
// names live in the root package; export (Prometheus, OTel) lives in
// metrics/export/ and reads snapshots.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import tokenguard or any sibling package.
//   - Expose global metric registries.
package metrics
