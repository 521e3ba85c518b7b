package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/evalboard/internal/telemetry/logger"
)

// BadgerStore is a key-value store backed by Badger v3.
type BadgerStore struct {
	db       *badger.DB
	cfg      BadgerConfig
	logger   logger.Logger
	inMemory bool

	lastGCTime atomic.Int64
	closed     atomic.Bool
	closeOnce  sync.Once

	stopCh chan struct{}
	doneCh chan struct{}
}

// OpenBadger opens a store in dir. An empty dir keeps all data in memory.
func OpenBadger(dir string, cfg BadgerConfig, log logger.Logger) (*BadgerStore, error) {
	if log == nil {
		log = logger.Default()
	}
	log = log.With("component", "badger")

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: log}
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:       db,
		cfg:      cfg,
		logger:   log,
		inMemory: dir == "",
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if s.inMemory || cfg.GCInterval <= 0 {
		close(s.doneCh)
	} else {
		go s.gcLoop()
	}

	log.Info("badger store opened", "dir", dir, "in_memory", s.inMemory)
	return s, nil
}

// Get retrieves a value by key.
func (s *BadgerStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a key-value pair. A positive ttl expires the entry.
func (s *BadgerStore) Set(ctx context.Context, key, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(newEntry(key, value, ttl))
	})
}

// Upsert reads key and lets fn decide the new value inside one
// transaction. fn receives nil when the key is absent; returning a nil
// value leaves the key unchanged.
func (s *BadgerStore) Upsert(ctx context.Context, key []byte, ttl time.Duration, fn func(old []byte) ([]byte, error)) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var old []byte
		item, err := txn.Get(key)
		switch {
		case err == nil:
			if old, err = item.ValueCopy(nil); err != nil {
				return err
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		value, err := fn(old)
		if err != nil || value == nil {
			return err
		}
		return txn.SetEntry(newEntry(key, value, ttl))
	})
}

// Delete removes a key.
func (s *BadgerStore) Delete(ctx context.Context, key []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Scan iterates over keys with a given prefix. fn returns false to stop.
func (s *BadgerStore) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if !fn(item.KeyCopy(nil), value) {
				break
			}
		}
		return nil
	})
}

// Count returns the number of live keys with the given prefix.
func (s *BadgerStore) Count(ctx context.Context, prefix []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// GC runs value-log garbage collection until Badger has nothing left to
// rewrite and returns the number of rewritten files. In-memory stores have
// no value log.
func (s *BadgerStore) GC(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if s.inMemory {
		return 0, nil
	}

	start := time.Now()
	rewritten := 0
	for {
		if err := ctx.Err(); err != nil {
			return rewritten, err
		}
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return rewritten, fmt.Errorf("gc: %w", err)
		}
		rewritten++
	}

	s.lastGCTime.Store(time.Now().UnixMilli())
	s.logger.Debug("gc completed", "rewritten", rewritten, "elapsed", time.Since(start))
	return rewritten, nil
}

// Stats returns storage statistics.
func (s *BadgerStore) Stats(ctx context.Context) (*KVStats, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	lsm, vlog := s.db.Size()
	return &KVStats{
		TotalSize:    uint64(lsm + vlog),
		LSMSize:      uint64(lsm),
		ValueLogSize: uint64(vlog),
		LastGCTime:   s.lastGCTime.Load(),
	}, nil
}

// Close stops background GC and closes the database.
func (s *BadgerStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.stopCh)
		<-s.doneCh

		if cerr := s.db.Close(); cerr != nil {
			err = fmt.Errorf("close db: %w", cerr)
			return
		}
		s.logger.Info("badger store closed")
	})
	return err
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := s.GC(ctx); err != nil && !errors.Is(err, ErrClosed) {
				s.logger.Error("auto gc failed", "error", err)
			}
			cancel()
		case <-s.stopCh:
			return
		}
	}
}

func newEntry(key, value []byte, ttl time.Duration) *badger.Entry {
	e := badger.NewEntry(key, value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return e
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
