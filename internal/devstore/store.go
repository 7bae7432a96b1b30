package devstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"btvol/internal/config"
	"btvol/internal/logging"
)

// Record is the cached state for one bonded device.
type Record struct {
	Name   string
	Volume int
}

type writeOp struct {
	address string
	record  Record
	remove  bool

	// barrier, when set, marks a synchronization point: the op performs no
	// database work and ack is closed once every earlier op has been applied.
	ack chan struct{}
}

// writeQueueSize bounds the flush backlog. The queue filling up means
// storage is stalled; further writes are dropped rather than blocking the
// caller, and the cache remains correct for the running process.
const writeQueueSize = 256

// Store manages per-device volume persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cache  map[string]Record
	closed bool

	writes chan writeOp
	done   chan struct{}

	closeOnce sync.Once
}

// Open initializes or connects to the device volume database, applies the
// schema, and warms the in-memory cache from the stored rows.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   dbPath,
		logger: logging.NewComponentLogger(logger, "devstore"),
		cache:  make(map[string]Record),
		writes: make(chan writeOp, writeQueueSize),
		done:   make(chan struct{}),
	}
	ctx := context.Background()
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.warmCache(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	go store.flushLoop()
	return store, nil
}

func (s *Store) warmCache(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT address, name, volume FROM device_volumes")
	if err != nil {
		return fmt.Errorf("load device volumes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var address string
		var record Record
		if err := rows.Scan(&address, &record.Name, &record.Volume); err != nil {
			return fmt.Errorf("scan device volume: %w", err)
		}
		s.cache[address] = record
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate device volumes: %w", err)
	}
	return nil
}

// Close stops the background writer, flushes queued writes, and closes the
// database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.writes)
		s.mu.Unlock()
		<-s.done
	})
	return s.db.Close()
}

// Volume returns the stored volume for a device address.
func (s *Store) Volume(address string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.cache[address]
	return record.Volume, ok
}

// Name returns the last known friendly name for a device address.
func (s *Store) Name(address string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache[address].Name
}

// Put stores the volume for a device and schedules a flush. The existing
// friendly name is preserved.
func (s *Store) Put(address string, volume int) {
	s.mu.Lock()
	record := s.cache[address]
	record.Volume = volume
	s.cache[address] = record
	s.mu.Unlock()

	s.enqueue(writeOp{address: address, record: record})
}

// SetName records the friendly name reported for a device and schedules a
// flush. Addresses without a stored volume record are ignored; a name alone
// never creates a record, so callers seed the volume first.
func (s *Store) SetName(address, name string) {
	s.mu.Lock()
	record, ok := s.cache[address]
	if !ok || record.Name == name {
		s.mu.Unlock()
		return
	}
	record.Name = name
	s.cache[address] = record
	s.mu.Unlock()

	s.enqueue(writeOp{address: address, record: record})
}

// Remove deletes a device's stored state. Called on unbond; disconnects do
// not remove stored volume.
func (s *Store) Remove(address string) {
	s.mu.Lock()
	_, ok := s.cache[address]
	delete(s.cache, address)
	s.mu.Unlock()
	if !ok {
		return
	}

	s.enqueue(writeOp{address: address, remove: true})
}

// Prune removes every stored device whose address fails the keep predicate.
// Used at startup so devices unbonded while the daemon was down do not
// resurrect. Returns the pruned addresses.
func (s *Store) Prune(keep func(address string) bool) []string {
	s.mu.Lock()
	var pruned []string
	for address := range s.cache {
		if keep != nil && keep(address) {
			continue
		}
		delete(s.cache, address)
		pruned = append(pruned, address)
	}
	s.mu.Unlock()

	for _, address := range pruned {
		s.enqueue(writeOp{address: address, remove: true})
	}
	return pruned
}

// All returns a copy of the cached device records.
func (s *Store) All() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Record, len(s.cache))
	for address, record := range s.cache {
		out[address] = record
	}
	return out
}

// enqueue hands an op to the writer goroutine. The channel send happens under
// the mutex so it can never race Close closing the channel.
func (s *Store) enqueue(op writeOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.writes <- op:
	default:
		s.logger.Warn("write queue full, dropping flush",
			logging.String(logging.FieldDevice, op.address),
			logging.String(logging.FieldEventType, "devstore_flush_dropped"),
			logging.String(logging.FieldImpact, "stored volume may be stale after restart"),
			logging.String(logging.FieldErrorHint, "check that the state directory is writable and not on stalled storage"))
	}
}

func (s *Store) flushLoop() {
	defer close(s.done)
	for op := range s.writes {
		if op.ack != nil {
			close(op.ack)
			continue
		}
		s.flush(op)
	}
}

func (s *Store) flush(op writeOp) {
	var err error
	if op.remove {
		_, err = s.db.Exec("DELETE FROM device_volumes WHERE address = ?", op.address)
	} else {
		_, err = s.db.Exec(
			`INSERT INTO device_volumes (address, name, volume, updated_at)
             VALUES (?, ?, ?, ?)
             ON CONFLICT(address) DO UPDATE SET name = excluded.name,
                 volume = excluded.volume, updated_at = excluded.updated_at`,
			op.address,
			op.record.Name,
			op.record.Volume,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
	}
	if err != nil {
		s.logger.Warn("flush failed",
			logging.String(logging.FieldDevice, op.address),
			logging.Error(err),
			logging.String(logging.FieldEventType, "devstore_flush_failed"),
			logging.String(logging.FieldImpact, "stored volume may be stale after restart"),
			logging.String(logging.FieldErrorHint, "check database file permissions and free disk space"))
	}
}

// Flush blocks until every write queued before the call has been applied.
// A no-op once the store is closed. Intended for tests and shutdown paths,
// never for coordinator operations.
func (s *Store) Flush() {
	ack := make(chan struct{})
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.writes <- writeOp{ack: ack}
	s.mu.Unlock()
	<-ack
}
