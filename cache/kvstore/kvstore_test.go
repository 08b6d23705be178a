package kvstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/oasisprotocol/oasis-core/go/common/cbor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/metrics"
)

type summary struct {
	Hash   string
	Height uint32
}

func openTestStore(t *testing.T, m *metrics.BuildMetrics) KVStore {
	t.Helper()
	store, err := OpenKVStore(log.NewDefaultLogger("kvstore-test"), filepath.Join(t.TempDir(), "cache"), m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetFromCacheOrCall(t *testing.T) {
	m := metrics.NewDefaultBuildMetrics("kvstore_test")
	store := openTestStore(t, &m)
	key := GenerateCacheKey("verify", "bitcoin-main", uint32(0))

	misses := testutil.ToFloat64(m.LocalCacheReads(metrics.CacheReadStatusMiss))
	hits := testutil.ToFloat64(m.LocalCacheReads(metrics.CacheReadStatusHit))

	calls := 0
	compute := func() (*summary, error) {
		calls++
		return &summary{Hash: "abc", Height: 7}, nil
	}

	first, err := GetFromCacheOrCall(store, key, compute)
	require.NoError(t, err)
	second, err := GetFromCacheOrCall(store, key, compute)
	require.NoError(t, err)

	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
	require.Equal(t, misses+1, testutil.ToFloat64(m.LocalCacheReads(metrics.CacheReadStatusMiss)))
	require.Equal(t, hits+1, testutil.ToFloat64(m.LocalCacheReads(metrics.CacheReadStatusHit)))
}

func TestGetFromCacheOrCallError(t *testing.T) {
	store := openTestStore(t, nil)
	key := GenerateCacheKey("verify", "broken")
	failure := errors.New("boom")

	_, err := GetFromCacheOrCall(store, key, func() (*summary, error) { return nil, failure })
	require.ErrorIs(t, err, failure)

	has, err := store.Has(key)
	require.NoError(t, err)
	require.False(t, has)
}

func TestGetFromCacheOrCallBadValue(t *testing.T) {
	store := openTestStore(t, nil)
	key := GenerateCacheKey("verify", "bad")
	require.NoError(t, store.Put(key, cbor.Marshal("not a summary")))

	value, err := GetFromCacheOrCall(store, key, func() (*summary, error) { return &summary{Hash: "fresh"}, nil })
	require.NoError(t, err)
	require.Equal(t, "fresh", value.Hash)
}

func TestCacheKeyPretty(t *testing.T) {
	require.Contains(t, GenerateCacheKey("verify", "x").Pretty(), "verify")
	require.Equal(t, "ff00", CacheKey{0xff, 0x00}.Pretty())
}
