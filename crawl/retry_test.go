package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetryDelays(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond}

	t.Run("retries until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("temporary")
			}
			return "ok", nil
		}

		html, err := crawl.FetchWithRetryDelays(context.Background(), "u", fetch, nil, delays)

		require.NoError(t, err)
		assert.Equal(t, "ok", html)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error after all attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (string, error) {
			calls++
			return "", errors.New("down")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "u", fetch, nil, delays)

		assert.EqualError(t, err, "down")
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry not found", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (string, error) {
			calls++
			return "", docsynth.Errorf(docsynth.ENOTFOUND, "HTTP 404")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "u", fetch, nil, delays)

		assert.Equal(t, docsynth.ENOTFOUND, docsynth.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		fetch := func(context.Context, string) (string, error) {
			cancel()
			return "", errors.New("down")
		}

		_, err := crawl.FetchWithRetryDelays(ctx, "u", fetch, nil, []time.Duration{time.Hour})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
