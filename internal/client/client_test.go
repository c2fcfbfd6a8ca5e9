package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/ptero/internal/auth"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		c, err := New(nil)
		require.ErrorIs(t, err, ptero.ErrConfigRequired)
		assert.Nil(t, c)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		c, err := New(&ptero.Config{Token: testApplicationKey})
		require.ErrorIs(t, err, ptero.ErrBaseURLRequired)
		assert.Nil(t, c)
	})

	t.Run("client key falls back to the application key", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, item("user", map[string]any{"id": 1})))

		c, err := New(&ptero.Config{BaseURL: panel.server.URL, Token: testApplicationKey})
		require.NoError(t, err)

		_, err = c.ClientAPI().Account().Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+testApplicationKey, panel.last(t).Header.Get("Authorization"))
	})

	t.Run("separate keys per surface", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, item("user", map[string]any{"id": 1})))

		c, err := New(&ptero.Config{
			BaseURL:     panel.server.URL,
			Token:       testApplicationKey,
			ClientToken: testClientKey,
			UserAgent:   "ptero-test/1.0",
			HTTPTimeout: 5 * time.Second,
		})
		require.NoError(t, err)

		_, err = c.Application().Users().Get(context.Background(), 1, nil)
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+testApplicationKey, panel.last(t).Header.Get("Authorization"))
		assert.Equal(t, "ptero-test/1.0", panel.last(t).Header.Get("User-Agent"))

		_, err = c.ClientAPI().Account().Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+testClientKey, panel.last(t).Header.Get("Authorization"))
	})

	t.Run("missing key fails before the request is built", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, nil))

		c, err := New(&ptero.Config{BaseURL: panel.server.URL})
		require.NoError(t, err)

		_, err = c.Application().Users().Get(context.Background(), 1, nil)
		require.ErrorIs(t, err, auth.ErrNoToken)
		assert.True(t, ptero.IsValidation(err))

		_, err = c.ClientAPI().Account().Get(context.Background())
		require.ErrorIs(t, err, auth.ErrNoToken)
		assert.Empty(t, panel.calls())
	})

	t.Run("requests per minute throttles each key", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, item("user", map[string]any{"id": 1})))

		c, err := New(&ptero.Config{BaseURL: panel.server.URL, Token: testApplicationKey, RequestsPerMinute: 1})
		require.NoError(t, err)

		_, err = c.Application().Users().Get(context.Background(), 1, nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err = c.Application().Users().Get(ctx, 1, nil)
		require.Error(t, err)
		assert.True(t, ptero.IsKind(err, ptero.KindTransport))
		assert.Len(t, panel.calls(), 1)
	})

	t.Run("interceptors see every request", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, item("user", map[string]any{"id": 1})))

		var seen atomic.Int32

		chain := ptero.NewInterceptorChain()
		chain.AddRequestInterceptor(func(_ context.Context, request *ptero.Request) error {
			seen.Add(1)
			request.Headers.Set("X-Trace", "abc")

			return nil
		})

		c, err := New(&ptero.Config{BaseURL: panel.server.URL, Token: testApplicationKey, Interceptors: chain})
		require.NoError(t, err)

		_, err = c.Application().Users().Get(context.Background(), 1, nil)
		require.NoError(t, err)
		_, err = c.ClientAPI().Account().Get(context.Background())
		require.NoError(t, err)

		assert.Equal(t, int32(2), seen.Load())
		assert.Equal(t, "abc", panel.last(t).Header.Get("X-Trace"))
	})
}
