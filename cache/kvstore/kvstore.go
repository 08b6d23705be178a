// Package kvstore implements a persistent key-value cache.
package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/akrylysov/pogreb"
	"github.com/oasisprotocol/oasis-core/go/common/cbor"

	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/metrics"
)

// How long OpenKVStore waits for pogreb before continuing without a cache.
const openTimeout = 30 * time.Second

// A key in the KVStore.
type CacheKey []byte

// GenerateCacheKey derives a key from an operation name and its inputs.
// Equal inputs always produce equal keys.
func GenerateCacheKey(operation string, params ...interface{}) CacheKey {
	return CacheKey(cbor.Marshal([]interface{}{operation, params}))
}

// A key-value store. Typed access goes through GetFromCacheOrCall.
type KVStore interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Close() error
}

type pogrebKVStore struct {
	db *pogreb.DB

	path    string
	logger  *log.Logger
	metrics *metrics.BuildMetrics // if nil, no metrics are emitted

	// Set once the database is open; pogreb may still be reindexing in the
	// background after OpenKVStore returns.
	initialized atomic.Bool
}

var _ KVStore = (*pogrebKVStore)(nil)

// Get implements KVStore.
// NOTE: Cache read metrics are only captured by GetFromCacheOrCall.
func (s *pogrebKVStore) Get(key []byte) ([]byte, error) {
	if !s.initialized.Load() {
		return nil, fmt.Errorf("kvstore: not initialized yet")
	}
	return s.db.Get(key)
}

// Has implements KVStore.
func (s *pogrebKVStore) Has(key []byte) (bool, error) {
	if !s.initialized.Load() {
		return false, nil
	}
	return s.db.Has(key)
}

// Put implements KVStore.
func (s *pogrebKVStore) Put(key []byte, value []byte) error {
	if !s.initialized.Load() {
		s.logger.Debug("skipping write to uninitialized KVStore", "key", CacheKey(key).Pretty())
		return nil
	}
	return s.db.Put(key, value)
}

// Close implements KVStore.
func (s *pogrebKVStore) Close() error {
	if !s.initialized.Load() {
		// A reindex in progress is abandoned and restarts on the next open.
		s.logger.Warn("skipping closing uninitialized KVStore")
		return nil
	}
	s.logger.Info("closing KVStore", "path", s.path)
	return s.db.Close()
}

// Deletes pogreb index backups that were backed up again (*.bac.bac...).
// Repeated crashes otherwise grow the file names past the filesystem limit.
func (s *pogrebKVStore) pruneBackups() {
	files, err := filepath.Glob(filepath.Join(s.path, "*.bac.bac"))
	if err != nil {
		s.logger.Warn("failed to list pogreb index backups", "err", err)
		return
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			s.logger.Warn("failed to delete pogreb index backup", "err", err, "file", f)
		}
	}
}

func (s *pogrebKVStore) init() error {
	s.pruneBackups()

	s.logger.Info("(re)opening KVStore", "path", s.path)
	db, err := pogreb.Open(s.path, &pogreb.Options{BackgroundSyncInterval: -1})
	if err != nil {
		s.logger.Error("failed to initialize pogreb store", "err", err)
		return err
	}

	s.db = db
	s.initialized.Store(true)
	s.logger.Info(fmt.Sprintf("KVStore has %d entries", db.Count()))
	return nil
}

// OpenKVStore opens the cache at `path`, creating it if needed.
// `metrics` can be `nil`, in which case no metrics are emitted during operation.
func OpenKVStore(logger *log.Logger, path string, metrics *metrics.BuildMetrics) (KVStore, error) {
	store := &pogrebKVStore{
		logger:  logger.WithModule("kvstore"),
		path:    path,
		metrics: metrics,
	}

	// pogreb reindexes after an unclean shutdown, which can take long for a
	// large store: https://github.com/akrylysov/pogreb/issues/35
	initErrCh := make(chan error, 1)
	go func() {
		initErrCh <- store.init()
	}()

	select {
	case err := <-initErrCh:
		if err != nil {
			return nil, err
		}
		return store, nil
	case <-time.After(openTimeout):
		// Every read is a miss until the reindex is done.
		store.logger.Warn("KVStore initialization timed out, continuing without cache while the database is reindexing in the background")
		return store, nil
	}
}

// Pretty returns a human-readable version of the cache key: the decoded CBOR
// if possible, the raw bytes in hex otherwise. For debugging only.
func (cacheKey CacheKey) Pretty() string {
	var pretty string
	var parsed interface{}
	if err := cbor.Unmarshal(cacheKey, &parsed); err == nil {
		pretty = fmt.Sprintf("%+v", parsed)
	} else {
		pretty = fmt.Sprintf("%x", cacheKey)
	}
	if len(pretty) > 100 {
		pretty = pretty[:95] + "[...]"
	}
	return pretty
}

var errNoSuchKey = errors.New("no such key")

func increaseReadCounter(cache KVStore, status metrics.CacheReadStatus) {
	if s, ok := cache.(*pogrebKVStore); ok && s.metrics != nil {
		s.metrics.LocalCacheReads(status).Inc()
	}
}

// fetchTypedValue fetches the value of `key` from the cache, interpreted as a `Value`.
func fetchTypedValue[Value any](cache KVStore, key CacheKey, value *Value) error {
	isCached, err := cache.Has(key)
	if err != nil {
		increaseReadCounter(cache, metrics.CacheReadStatusError)
		return err
	}
	if !isCached {
		increaseReadCounter(cache, metrics.CacheReadStatusMiss)
		return errNoSuchKey
	}
	raw, err := cache.Get(key)
	if err != nil {
		increaseReadCounter(cache, metrics.CacheReadStatusError)
		return fmt.Errorf("failed to fetch key %s from cache: %w", key.Pretty(), err)
	}
	if err = cbor.Unmarshal(raw, value); err != nil {
		increaseReadCounter(cache, metrics.CacheReadStatusBadValue)
		return fmt.Errorf("failed to unmarshal the value for key %s from cache into %T: %w; raw value was %x", key.Pretty(), value, err, raw)
	}
	increaseReadCounter(cache, metrics.CacheReadStatusHit)
	return nil
}

// GetFromCacheOrCall returns the cached value of `key` if it exists,
// interpreted as a `Value`. Otherwise it calls `valueFunc` and caches the
// result before returning it. Unreadable entries are recomputed.
func GetFromCacheOrCall[Value any](cache KVStore, key CacheKey, valueFunc func() (*Value, error)) (*Value, error) {
	var cached Value
	switch err := fetchTypedValue(cache, key, &cached); {
	case err == nil:
		return &cached, nil
	case errors.Is(err, errNoSuchKey):
	default:
		if s, ok := cache.(*pogrebKVStore); ok {
			s.logger.Warn("error fetching from cache", "key", key.Pretty(), "err", err)
		}
	}

	computed, err := valueFunc()
	if err != nil {
		return nil, err
	}
	return computed, cache.Put(key, cbor.Marshal(computed))
}
