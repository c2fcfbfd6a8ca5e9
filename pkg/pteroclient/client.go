package pteroclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/ptero/internal/client"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// New creates a new panel client. The config is not modified.
func New(config *ptero.Config) (ptero.Client, error) {
	if config == nil {
		return nil, ptero.ErrConfigRequired
	}

	baseURL := NormalizeURL(config.BaseURL)
	if baseURL == "" {
		return nil, ptero.ErrBaseURLRequired
	}

	normalized := *config
	normalized.BaseURL = baseURL

	c, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithToken creates a new client with a panel address and one API key used
// for both surfaces.
func NewWithToken(baseURL, token string) (ptero.Client, error) {
	return New(&ptero.Config{
		BaseURL: baseURL,
		Token:   token,
	})
}

// NewWithTokens creates a new client with separate Application and Client
// API keys.
func NewWithTokens(baseURL, applicationToken, clientToken string) (ptero.Client, error) {
	return New(&ptero.Config{
		BaseURL:     baseURL,
		Token:       applicationToken,
		ClientToken: clientToken,
	})
}

// NormalizeURL trims surrounding space and trailing slashes and adds
// "https://" when no scheme is present. An empty address stays empty.
func NormalizeURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return ""
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}
