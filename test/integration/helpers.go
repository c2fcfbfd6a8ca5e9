//go:build integration

package integration

import (
	"os"
	"testing"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/fivetwenty-io/ptero/pkg/pteroclient"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	URL         string
	Token       string
	ClientToken string
	Server      string
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:         os.Getenv("PTERO_URL"),
		Token:       os.Getenv("PTERO_TOKEN"),
		ClientToken: os.Getenv("PTERO_CLIENT_TOKEN"),
		Server:      os.Getenv("PTERO_TEST_SERVER"),
	}
}

// SkipIfMissingApplication skips the test without a panel and application key.
func (config *TestConfig) SkipIfMissingApplication(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.Token == "" {
		t.Skip("PTERO_URL or PTERO_TOKEN not set, skipping integration test")
	}
}

// SkipIfMissingClient skips the test without a panel and client key.
func (config *TestConfig) SkipIfMissingClient(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.ClientToken == "" {
		t.Skip("PTERO_URL or PTERO_CLIENT_TOKEN not set, skipping integration test")
	}
}

// NewClient creates a panel client from the test configuration.
func (config *TestConfig) NewClient(t *testing.T) ptero.Client {
	t.Helper()

	client, err := pteroclient.NewWithTokens(config.URL, config.Token, config.ClientToken)
	require.NoError(t, err)

	return client
}
