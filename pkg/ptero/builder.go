package ptero

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Content types used by the panel API.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// Static errors for err113 compliance.
var (
	ErrEmptyMethod   = errors.New("request method is empty")
	ErrEmptyQueryKey = errors.New("query parameter key is empty")
)

// QueryParam is one key/value pair of a query string.
type QueryParam struct {
	Key   string
	Value string
}

// RequestBuilder accumulates the parts of a request. It is owned by one call
// and frozen into a RequestSpec by Build.
type RequestBuilder struct {
	route       string
	method      string
	path        string
	query       []QueryParam
	includes    []string
	body        []byte
	contentType string
	accept      string
	err         error
	bodyErr     error
}

// NewRequest starts a request for the given route kind and path parameters.
// An invalid route is reported by Build.
func NewRequest(kind RouteKind, params ...string) *RequestBuilder {
	route, err := NewRoute(kind, params...)
	if err != nil {
		return &RequestBuilder{err: err, contentType: ContentTypeJSON, accept: ContentTypeJSON}
	}

	return NewRequestFor(route)
}

// NewRequestFor starts a request for an already resolved route.
func NewRequestFor(route Route) *RequestBuilder {
	endpoint := route.Resolve()

	return &RequestBuilder{
		route:       route.kind.String(),
		method:      endpoint.Method,
		path:        endpoint.Path,
		contentType: ContentTypeJSON,
		accept:      ContentTypeJSON,
	}
}

// WithMethod overrides the method inherited from the route.
func (b *RequestBuilder) WithMethod(method string) *RequestBuilder {
	b.method = strings.ToUpper(strings.TrimSpace(method))

	return b
}

// WithQueryParam appends a query parameter. Duplicate keys are kept in order.
func (b *RequestBuilder) WithQueryParam(key, value string) *RequestBuilder {
	if key == "" {
		if b.err == nil {
			b.err = ErrEmptyQueryKey
		}

		return b
	}

	b.query = append(b.query, QueryParam{Key: key, Value: value})

	return b
}

// WithInclude adds relation names to the include directive. Names already
// present are ignored, so the directive lists each relation once.
func (b *RequestBuilder) WithInclude(names ...string) *RequestBuilder {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(b.includes, name) {
			continue
		}

		b.includes = append(b.includes, name)
	}

	return b
}

// WithJSONBody serializes value as the request body. A marshal failure is
// returned by Build unless a later body call replaces it.
func (b *RequestBuilder) WithJSONBody(value any) *RequestBuilder {
	data, err := json.Marshal(value)
	if err != nil {
		b.body = nil
		b.bodyErr = fmt.Errorf("encoding request body: %w", err)

		return b
	}

	b.body = data
	b.bodyErr = nil
	b.contentType = ContentTypeJSON

	return b
}

// WithRawBody sets the body bytes verbatim with the given content type.
func (b *RequestBuilder) WithRawBody(data []byte, contentType string) *RequestBuilder {
	b.body = append([]byte(nil), data...)
	b.bodyErr = nil

	if contentType != "" {
		b.contentType = contentType
	}

	return b
}

// WithAccept sets the Accept header value.
func (b *RequestBuilder) WithAccept(accept string) *RequestBuilder {
	if accept != "" {
		b.accept = accept
	}

	return b
}

// Build validates the accumulated state and freezes it.
func (b *RequestBuilder) Build() (*RequestSpec, error) {
	if b.err != nil {
		return nil, fmt.Errorf("building request: %w", b.err)
	}

	if b.bodyErr != nil {
		return nil, fmt.Errorf("building request: %w", b.bodyErr)
	}

	if b.method == "" {
		return nil, ErrEmptyMethod
	}

	return &RequestSpec{
		route:       b.route,
		method:      b.method,
		path:        b.path,
		query:       append([]QueryParam(nil), b.query...),
		includes:    append([]string(nil), b.includes...),
		body:        append([]byte(nil), b.body...),
		hasBody:     b.body != nil,
		contentType: b.contentType,
		accept:      b.accept,
	}, nil
}

// RequestSpec is an immutable request description.
type RequestSpec struct {
	route       string
	method      string
	path        string
	query       []QueryParam
	includes    []string
	body        []byte
	hasBody     bool
	contentType string
	accept      string
}

// Route returns the route name, e.g. "GetUser".
func (s *RequestSpec) Route() string { return s.route }

// Method returns the HTTP method.
func (s *RequestSpec) Method() string { return s.method }

// Path returns the resolved path without query string.
func (s *RequestSpec) Path() string { return s.path }

// ContentType returns the Content-Type header value.
func (s *RequestSpec) ContentType() string { return s.contentType }

// Accept returns the Accept header value.
func (s *RequestSpec) Accept() string { return s.accept }

// Includes returns the deduplicated include directive names.
func (s *RequestSpec) Includes() []string {
	return append([]string(nil), s.includes...)
}

// Body returns a copy of the body bytes, or nil when no body was set.
func (s *RequestSpec) Body() []byte {
	if !s.hasBody {
		return nil
	}

	return append([]byte(nil), s.body...)
}

// Query returns the query parameters in order with the include directive
// folded in last.
func (s *RequestSpec) Query() []QueryParam {
	params := append([]QueryParam(nil), s.query...)
	if len(s.includes) > 0 {
		params = append(params, QueryParam{Key: "include", Value: strings.Join(s.includes, ",")})
	}

	return params
}

// FinalizeURI joins base and path and appends the encoded query string.
func (s *RequestSpec) FinalizeURI(base string) string {
	var uri strings.Builder

	uri.WriteString(strings.TrimRight(base, "/"))
	uri.WriteString(s.path)

	if len(s.query) == 0 && len(s.includes) == 0 {
		return uri.String()
	}

	uri.WriteByte('?')

	for i, param := range s.query {
		if i > 0 {
			uri.WriteByte('&')
		}

		uri.WriteString(url.QueryEscape(param.Key))
		uri.WriteByte('=')
		uri.WriteString(url.QueryEscape(param.Value))
	}

	if len(s.includes) > 0 {
		if len(s.query) > 0 {
			uri.WriteByte('&')
		}

		escaped := make([]string, len(s.includes))
		for i, name := range s.includes {
			escaped[i] = url.QueryEscape(name)
		}

		uri.WriteString("include=")
		uri.WriteString(strings.Join(escaped, ","))
	}

	return uri.String()
}
