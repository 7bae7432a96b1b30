// Package devstore persists per-device volume state in SQLite.
//
// The store keeps an in-memory cache of every row, warmed once at open, and
// the cache stays authoritative for the life of the process. Writes are
// applied to the cache synchronously and flushed to the database by a single
// background writer, last-write-wins; a failed flush is logged and not
// retried. Callers therefore never wait on storage I/O, matching the
// fire-and-forget durability the volume coordinator requires.
//
// Rows exist only for bonded devices: Remove drops a device on unbond and
// Prune clears rows for devices that were unbonded while the daemon was not
// running.
package devstore
