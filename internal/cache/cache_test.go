package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/compiler"
	"github.com/roach88/termql/internal/queryir"
	"github.com/roach88/termql/internal/validate"
)

func TestCacheHitReturnsSameResult(t *testing.T) {
	c := New()
	ctx := context.Background()

	first, err := c.Get(ctx, "<< 404684003")
	require.NoError(t, err)
	second, err := c.Get(ctx, "<< 404684003")
	require.NoError(t, err)

	assert.Same(t, first, second)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Builds)
	assert.Equal(t, 1, stats.Entries)
}

func TestCacheKeepsBuildErrors(t *testing.T) {
	c := New()
	ctx := context.Background()

	_, err := c.Get(ctx, "<< AND 404684003")
	require.Error(t, err)
	_, again := c.Get(ctx, "<< AND 404684003")

	assert.Same(t, err, again)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Builds)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestCacheSharesNFCEquivalentText(t *testing.T) {
	var builds atomic.Int64
	c := New(WithBuildFunc(func(src string) (*compiler.Result, error) {
		builds.Add(1)
		return &compiler.Result{Predicate: &queryir.MatchAll{}}, nil
	}))
	ctx := context.Background()

	_, err := c.Get(ctx, "* {{ term = \"caf\u00e9\" }}")
	require.NoError(t, err)
	_, err = c.Get(ctx, "* {{ term = \"cafe\u0301\" }}")
	require.NoError(t, err)

	assert.Equal(t, int64(1), builds.Load())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(WithMaxEntries(2))
	ctx := context.Background()

	a, err := c.Get(ctx, "404684003")
	require.NoError(t, err)
	_, err = c.Get(ctx, "138875005")
	require.NoError(t, err)

	// Touch a so the second entry is the oldest.
	_, err = c.Get(ctx, "404684003")
	require.NoError(t, err)
	_, err = c.Get(ctx, "39057004")
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)

	again, err := c.Get(ctx, "404684003")
	require.NoError(t, err)
	assert.Same(t, a, again, "recently used entry must survive eviction")

	buildsBefore := c.Stats().Builds
	_, err = c.Get(ctx, "138875005")
	require.NoError(t, err)
	assert.Equal(t, buildsBefore+1, c.Stats().Builds, "evicted entry is rebuilt")
}

func TestCacheCollapsesConcurrentBuilds(t *testing.T) {
	var builds atomic.Int64
	release := make(chan struct{})
	c := New(WithBuildFunc(func(src string) (*compiler.Result, error) {
		builds.Add(1)
		<-release
		return &compiler.Result{Predicate: &queryir.ConceptIs{ID: src}}, nil
	}))
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	var ready sync.WaitGroup
	results := make([]*compiler.Result, callers)
	ready.Add(callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ready.Done()
			res, err := c.Get(ctx, "404684003")
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	ready.Wait()
	close(release)
	wg.Wait()

	// Callers that arrive after the build finished hit the cache instead.
	assert.Equal(t, int64(1), builds.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestCacheUsesValidationOptions(t *testing.T) {
	ctx := context.Background()

	lenient := New()
	_, err := lenient.Get(ctx, "404684004")
	require.NoError(t, err)

	strict := New(WithValidation(validate.Options{
		MinTermLength: 2,
		MinIDLength:   6,
		MaxIDLength:   18,
		CheckDigits:   true,
	}))
	_, err = strict.Get(ctx, "404684004")
	var errs validate.Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, []string{validate.ErrConceptIDCheck}, errs.Codes())
}

func TestCacheClear(t *testing.T) {
	c := New()
	ctx := context.Background()
	_, err := c.Get(ctx, "404684003")
	require.NoError(t, err)

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestNewDefaultsCapacity(t *testing.T) {
	assert.Equal(t, DefaultMaxEntries, New(WithMaxEntries(0)).Stats().MaxEntries)
}
