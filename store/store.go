// Package store implements the Record Store (C4) and Query & Cache Layer
// (C5): relational persistence of encrypted records, content-addressed
// payload deduplication, full-table-scan predicate evaluation against the
// Homomorphic Index Engine, and three bounded LRU caches.
package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/luxfi/vaultdb/cachebus"
	"github.com/luxfi/vaultdb/vaulterr"
)

const (
	defaultCacheCapacity = 1000
	defaultQueryTimeout  = 30 * time.Second
)

// Options configures a DB at Open time. Zero values fall back to spec
// defaults (capacity 1000 per cache, 30s query timeout).
type Options struct {
	RecordCacheCapacity   int
	EqualityCacheCapacity int
	RangeCacheCapacity    int
	QueryTimeout          time.Duration
	Bus                   *cachebus.Bus
	Logger                *logrus.Logger
}

// DB wraps a *sql.DB together with the C5 cache layer and an optional
// cross-process invalidation bus.
type DB struct {
	db     *sql.DB
	bus    *cachebus.Bus
	log    *logrus.Logger
	timeout time.Duration

	recordCache *lruCache[int64, *EncryptedRecord]
	eqCache     *lruCache[uint64, []int64]
	rangeCache  *lruCache[string, []int64]

	refMu    sync.Mutex
	refCache map[string]int64
}

// Open opens a *sql.DB via driverName/dsn, creates the schema if absent, and
// returns a ready DB. The caller owns the driver's lifecycle implications
// (e.g. registering modernc.org/sqlite under "sqlite").
func Open(ctx context.Context, driverName, dsn string, opts Options) (*DB, error) {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.Open", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.Open", err)
	}
	if err := initSchema(ctx, sqlDB); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	return &DB{
		db:          sqlDB,
		bus:         opts.Bus,
		log:         log,
		timeout:     timeout,
		recordCache: newLRUCache[int64, *EncryptedRecord](orDefault(opts.RecordCacheCapacity)),
		eqCache:     newLRUCache[uint64, []int64](orDefault(opts.EqualityCacheCapacity)),
		rangeCache:  newLRUCache[string, []int64](orDefault(opts.RangeCacheCapacity)),
		refCache:    make(map[string]int64),
	}, nil
}

func orDefault(capacity int) int {
	if capacity <= 0 {
		return defaultCacheCapacity
	}
	return capacity
}

// Close releases the underlying *sql.DB.
func (d *DB) Close() error {
	return d.db.Close()
}

// session hands out one *sql.Conn per operation, with a bounded context for
// the SQL round trip, released on every exit path.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	conn   *sql.Conn
}

func (d *DB) acquire(ctx context.Context) (*session, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.acquire", err)
	}
	sessCtx, cancel := context.WithTimeout(ctx, d.timeout)
	return &session{ctx: sessCtx, cancel: cancel, conn: conn}, nil
}

func (s *session) release() {
	s.cancel()
	s.conn.Close()
}

// invalidateQueryCaches clears the equality and range query caches (the
// spec's coarse, all-or-nothing invalidation policy) and, if a cache bus is
// configured, broadcasts the invalidation to other processes.
func (d *DB) invalidateQueryCaches(ctx context.Context) {
	d.eqCache.Clear()
	d.rangeCache.Clear()
	if d.bus != nil {
		if err := d.bus.Publish(ctx, cachebus.InvalidateAll); err != nil {
			d.log.WithError(err).Warn("store: cache bus publish failed")
		}
	}
}

// ClearCaches empties all three LRUs and the reference cache.
func (d *DB) ClearCaches(ctx context.Context) {
	d.recordCache.Clear()
	d.eqCache.Clear()
	d.rangeCache.Clear()

	d.refMu.Lock()
	d.refCache = make(map[string]int64)
	d.refMu.Unlock()

	if d.bus != nil {
		if err := d.bus.Publish(ctx, cachebus.InvalidateAll); err != nil {
			d.log.WithError(err).Warn("store: cache bus publish failed")
		}
	}
}

// GetCacheStats reports hit/miss/occupancy for all three C5 caches.
func (d *DB) GetCacheStats() Stats {
	return Stats{
		Record:   d.recordCache.Stats(),
		Equality: d.eqCache.Stats(),
		Range:    d.rangeCache.Stats(),
	}
}
