package pteroclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/fivetwenty-io/ptero/pkg/pteroclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		client, err := pteroclient.New(&ptero.Config{BaseURL: "https://panel.example.com", Token: "ptla_x"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := pteroclient.New(nil)
		require.ErrorIs(t, err, ptero.ErrConfigRequired)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := pteroclient.New(&ptero.Config{BaseURL: " / "})
		require.ErrorIs(t, err, ptero.ErrBaseURLRequired)
	})

	t.Run("does not modify the config", func(t *testing.T) {
		t.Parallel()

		config := &ptero.Config{BaseURL: "panel.example.com/"}

		_, err := pteroclient.New(config)
		require.NoError(t, err)
		assert.Equal(t, "panel.example.com/", config.BaseURL)
	})
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"panel.example.com":          "https://panel.example.com",
		"https://panel.example.com/": "https://panel.example.com",
		"http://localhost:8080//":    "http://localhost:8080",
		"  panel.example.com  ":      "https://panel.example.com",
		"":                           "",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, pteroclient.NormalizeURL(input), input)
	}
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	var (
		mu            sync.Mutex
		authorization []string
	)

	seen := func() []string {
		mu.Lock()
		defer mu.Unlock()

		return append([]string(nil), authorization...)
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		mu.Lock()
		authorization = append(authorization, request.Header.Get("Authorization"))
		mu.Unlock()

		switch request.URL.Path {
		case "/api/application/users/1", "/api/client/account":
			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(map[string]any{
				"object":     "user",
				"attributes": map[string]any{"id": 1, "username": "ada"},
			})
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := pteroclient.NewWithTokens(server.URL+"/", "ptla_app", "ptlc_client")
	require.NoError(t, err)

	user, err := client.Application().Users().Get(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	account, err := client.ClientAPI().Account().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada", account.Username)

	assert.Equal(t, []string{"Bearer ptla_app", "Bearer ptlc_client"}, seen())

	single, err := pteroclient.NewWithToken(server.URL, "ptla_app")
	require.NoError(t, err)

	_, err = single.ClientAPI().Account().Get(context.Background())
	require.NoError(t, err)
	calls := seen()
	assert.Equal(t, "Bearer ptla_app", calls[len(calls)-1])
}
