package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fivetwenty-io/ptero/internal/auth"
	internalhttp "github.com/fivetwenty-io/ptero/internal/http"
	"github.com/stretchr/testify/require"
)

const (
	testApplicationKey = "ptla_application0000000000000000000000000000000"
	testClientKey      = "ptlc_client00000000000000000000000000000000000"
	testServerID       = "1a7ce997"
)

// recordedRequest is one request seen by the fake panel.
type recordedRequest struct {
	Method      string
	Path        string
	EscapedPath string
	Query       string
	Header      http.Header
	Body        []byte
}

// decode unmarshals the recorded body.
func (r recordedRequest) decode(t *testing.T) map[string]any {
	t.Helper()

	var body map[string]any

	require.NoError(t, json.Unmarshal(r.Body, &body))

	return body
}

// fakePanel is an httptest server that records every request.
type fakePanel struct {
	mu       sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

func newFakePanel(t *testing.T, handler http.HandlerFunc) *fakePanel {
	t.Helper()

	panel := &fakePanel{}
	panel.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)

		panel.mu.Lock()
		panel.requests = append(panel.requests, recordedRequest{
			Method:      request.Method,
			Path:        request.URL.Path,
			EscapedPath: request.URL.EscapedPath(),
			Query:       request.URL.RawQuery,
			Header:      request.Header.Clone(),
			Body:        body,
		})
		panel.mu.Unlock()

		handler(writer, request)
	}))
	t.Cleanup(panel.server.Close)

	return panel
}

// client returns a client whose surfaces use separate keys, like a real
// deployment.
func (p *fakePanel) client() *Client {
	application := internalhttp.NewClient(p.server.URL, auth.NewStaticTokenManager(testApplicationKey))
	clientAPI := internalhttp.NewClient(p.server.URL, auth.NewStaticTokenManager(testClientKey))

	return NewWithTransports(application, clientAPI)
}

func (p *fakePanel) calls() []recordedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]recordedRequest(nil), p.requests...)
}

func (p *fakePanel) last(t *testing.T) recordedRequest {
	t.Helper()

	calls := p.calls()
	require.NotEmpty(t, calls)

	return calls[len(calls)-1]
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if body != nil {
		_ = json.NewEncoder(writer).Encode(body)
	}
}

func item(object string, attributes map[string]any) map[string]any {
	return map[string]any{"object": object, "attributes": attributes}
}

func list(object string, page, totalPages int, attributes ...map[string]any) map[string]any {
	data := make([]map[string]any, 0, len(attributes))
	for _, attrs := range attributes {
		data = append(data, item(object, attrs))
	}

	return map[string]any{
		"object": "list",
		"data":   data,
		"meta": map[string]any{
			"pagination": map[string]any{
				"total":        len(attributes) * totalPages,
				"count":        len(attributes),
				"per_page":     len(attributes),
				"current_page": page,
				"total_pages":  totalPages,
				"links":        []any{},
			},
		},
	}
}

func errorEnvelope(code, status, detail string) map[string]any {
	return map[string]any{
		"errors": []map[string]any{{"code": code, "status": status, "detail": detail}},
	}
}

func respond(status int, body any) http.HandlerFunc {
	return func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, status, body)
	}
}
