package auth_test

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/ptero/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	tests := getTokenValidityTestCases()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.token.Valid())
		})
	}
}

func getTokenValidityTestCases() []struct {
	name     string
	token    *auth.Token
	expected bool
} {
	return []struct {
		name     string
		token    *auth.Token
		expected bool
	}{
		{
			name:     "nil token",
			token:    nil,
			expected: false,
		},
		{
			name: "empty access token",
			token: &auth.Token{
				AccessToken: "",
			},
			expected: false,
		},
		{
			name: "valid token without expiry",
			token: &auth.Token{
				AccessToken: "ptla_test",
			},
			expected: true,
		},
	}
}

func TestTokenStore(t *testing.T) {
	t.Parallel()
	t.Run("new store is empty", testNewStoreEmpty)
	t.Run("set and get token", testSetAndGetToken)
	t.Run("clear token", testClearToken)
	t.Run("concurrent access", testConcurrentTokenAccess)
}

func testNewStoreEmpty(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	assert.Nil(t, store.Get())
}

func testSetAndGetToken(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	token := &auth.Token{
		AccessToken: "ptla_test",
	}

	store.Set(token)
	retrieved := store.Get()
	assert.NotNil(t, retrieved)
	assert.Equal(t, token.AccessToken, retrieved.AccessToken)
}

func testClearToken(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	token := &auth.Token{
		AccessToken: "ptla_test",
	}

	store.Set(token)
	assert.NotNil(t, store.Get())

	store.Clear()
	assert.Nil(t, store.Get())
}

func testConcurrentTokenAccess(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	done := make(chan bool)

	startTokenSetters(store, done)
	startTokenGetters(store, done)

	for range 4 {
		<-done
	}

	finalToken := store.Get()
	assert.NotNil(t, finalToken)
	assert.True(t, finalToken.AccessToken == "ptla_one" || finalToken.AccessToken == "ptlc_two")
}

func startTokenSetters(store *auth.TokenStore, done chan bool) {
	go func() {
		for range 100 {
			store.Set(&auth.Token{
				AccessToken: "ptla_one",
			})
		}

		done <- true
	}()

	go func() {
		for range 100 {
			store.Set(&auth.Token{
				AccessToken: "ptlc_two",
			})
		}

		done <- true
	}()
}

func startTokenGetters(store *auth.TokenStore, done chan bool) {
	go func() {
		for range 100 {
			_ = store.Get()
		}

		done <- true
	}()

	go func() {
		for range 100 {
			_ = store.Get()
		}

		done <- true
	}()
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	manager := auth.NewStaticTokenManager("Bearer ptla_abc123")

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ptla_abc123", token)
	assert.Equal(t, auth.KindApplication, manager.Token().KeyKind())

	manager.SetToken("bearer ptlc_xyz")
	assert.Equal(t, auth.KindClient, manager.Token().KeyKind())
	assert.Equal(t, "ptlc_xyz", manager.Token().AccessToken)

	manager.SetToken("  ")
	_, err = manager.GetToken(context.Background())
	require.ErrorIs(t, err, auth.ErrNoToken)
	assert.Empty(t, manager.Token().KeyKind())
}

func TestToken_KeyKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, auth.KindApplication, (&auth.Token{AccessToken: "ptla_x"}).KeyKind())
	assert.Equal(t, auth.KindClient, (&auth.Token{AccessToken: "ptlc_x"}).KeyKind())
	assert.Empty(t, (&auth.Token{AccessToken: "legacy"}).KeyKind())
}
