package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/vesta-spread-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingResolver struct {
	calls  int
	result domain.Place
	err    error
}

func (m *countingResolver) ResolvePlace(_ context.Context, _, _ float64) (domain.Place, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedResolver tests ---

func TestCachedResolver_CacheHit(t *testing.T) {
	inner := &countingResolver{
		result: domain.Place{Name: "Ouse", FormattedAddress: "Ouse, Tasmania, Australia"},
	}
	metrics := testMetrics()
	cached := NewCachedResolver(inner, 10, metrics)

	r1, err := cached.ResolvePlace(context.Background(), -42.48, 146.71)
	require.NoError(t, err)
	assert.Equal(t, "Ouse", r1.Name)

	r2, err := cached.ResolvePlace(context.Background(), -42.48, 146.71)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedResolver_DifferentCoordinatesMiss(t *testing.T) {
	inner := &countingResolver{
		result: domain.Place{Name: "Place", FormattedAddress: "Place, Tasmania"},
	}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, _ = cached.ResolvePlace(context.Background(), -42.48, 146.71)
	_, _ = cached.ResolvePlace(context.Background(), -41.54, 147.20)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedResolver_EmptyResultNotCached(t *testing.T) {
	inner := &countingResolver{}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, _ = cached.ResolvePlace(context.Background(), -42.0, 146.0)
	_, _ = cached.ResolvePlace(context.Background(), -42.0, 146.0)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.cache.size())
}

func TestCachedResolver_ErrorNotCached(t *testing.T) {
	inner := &countingResolver{err: errors.New("unavailable")}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, err := cached.ResolvePlace(context.Background(), -42.0, 146.0)
	require.Error(t, err)
	assert.Equal(t, 0, cached.cache.size())
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.Place{Name: "A"})
	c.put("b", domain.Place{Name: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.Name)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Place{Name: "A"})
	c.put("b", domain.Place{Name: "B"})
	c.put("c", domain.Place{Name: "C"}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", result.Name)

	result, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result.Name)
	assert.Equal(t, 2, c.size())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Place{Name: "A"})
	c.put("b", domain.Place{Name: "B"})

	c.get("a")

	// "b" is now least recently used
	c.put("c", domain.Place{Name: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Place{Name: "A1"})
	c.put("a", domain.Place{Name: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.Name)
	assert.Equal(t, 1, c.size())
}
