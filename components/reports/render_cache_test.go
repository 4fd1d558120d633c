package reports

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheMemoizesRenders(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "markup", nil
	}

	for i := 0; i < 3; i++ {
		payload, err := cache.GetOrRender("key", render)
		require.NoError(t, err)
		assert.Equal(t, "markup", payload)
	}
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpiresEntries(t *testing.T) {
	cache := NewChartCache(time.Millisecond)
	calls := 0
	render := func() (string, error) {
		calls++
		return "markup", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCachePropagatesRenderErrors(t *testing.T) {
	cache := NewChartCache(time.Minute)
	wantErr := errors.New("render failed")
	_, err := cache.GetOrRender("key", func() (string, error) {
		return "", wantErr
	})
	require.ErrorIs(t, err, wantErr)

	calls := 0
	_, err = cache.GetOrRender("key", func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "failed renders must not be cached")
}

func TestChartCacheBoundsEntries(t *testing.T) {
	cache := NewChartCache(time.Minute)
	cache.maxEntries = 2
	for _, key := range []string{"a", "b", "c"} {
		_, err := cache.GetOrRender(key, func() (string, error) { return key, nil })
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, len(cache.entries), 2)
	payload, ok := cache.get("c")
	require.True(t, ok, "newest entry must survive eviction")
	assert.Equal(t, "c", payload)
}

func TestConfigHashDeterministic(t *testing.T) {
	cfg := map[string]any{"chartType": "bar", "maxRows": 5}
	assert.Equal(t, configHash(cfg), configHash(map[string]any{"chartType": "bar", "maxRows": 5}))
	assert.Equal(t, "empty", configHash(nil))
	assert.NotEqual(t, configHash(cfg), configHash(map[string]any{"chartType": "pie"}))
}
