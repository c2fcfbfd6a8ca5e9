package ptero_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// fakeTransport records every spec and answers with respond.
type fakeTransport struct {
	mu      sync.Mutex
	specs   []*ptero.RequestSpec
	respond func(spec *ptero.RequestSpec) (*ptero.RawResponse, error)
}

func (f *fakeTransport) Send(_ context.Context, spec *ptero.RequestSpec) (*ptero.RawResponse, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	f.mu.Unlock()

	return f.respond(spec)
}

func (f *fakeTransport) sent() []*ptero.RequestSpec {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*ptero.RequestSpec(nil), f.specs...)
}

func staticTransport(status int, body string) *fakeTransport {
	return &fakeTransport{
		respond: func(*ptero.RequestSpec) (*ptero.RawResponse, error) {
			return &ptero.RawResponse{StatusCode: status, Header: http.Header{}, Body: []byte(body)}, nil
		},
	}
}

func queryValue(spec *ptero.RequestSpec, key string) string {
	for _, param := range spec.Query() {
		if param.Key == key {
			return param.Value
		}
	}

	return ""
}
