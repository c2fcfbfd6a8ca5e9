package ptero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
)

// Transport sends a built request and returns the raw response. Implementations
// report failures that happened before a status code was available as errors;
// any status code, including 4xx and 5xx, is returned as a RawResponse.
type Transport interface {
	Send(ctx context.Context, spec *RequestSpec) (*RawResponse, error)
}

// CredentialChecker is implemented by transports that hold an API key.
type CredentialChecker interface {
	CheckCredentials(ctx context.Context) error
}

// CheckCredentials asks transport for its key when it implements
// CredentialChecker, so a missing key fails before a request is built.
func CheckCredentials(ctx context.Context, transport Transport) error {
	checker, ok := transport.(CredentialChecker)
	if !ok {
		return nil
	}

	err := checker.CheckCredentials(ctx)
	if err == nil {
		return nil
	}

	if _, ok := AsError(err); ok {
		return err
	}

	return NewValidationError(err)
}

// RawResponse is a fully read HTTP response.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NoContent is the payload type of operations whose response body is ignored.
type NoContent struct{}

// Raw is the payload type of operations returning a non-JSON body.
type Raw []byte

// String returns the body as text.
func (r Raw) String() string {
	return string(r)
}

// StatusClass is the dispatch category of an HTTP status code.
type StatusClass int

const (
	// StatusClassTransport covers 1xx, 3xx and codes outside 100-599.
	StatusClassTransport StatusClass = iota
	// StatusClassDecode covers 2xx codes that carry a body.
	StatusClassDecode
	// StatusClassEmpty covers 202, 204 and 205.
	StatusClassEmpty
	// StatusClassRateLimited is 429.
	StatusClassRateLimited
	// StatusClassDomain covers every other 4xx and 5xx.
	StatusClassDomain
)

// String returns the class name.
func (c StatusClass) String() string {
	switch c {
	case StatusClassDecode:
		return "decode"
	case StatusClassEmpty:
		return "empty"
	case StatusClassRateLimited:
		return "rate_limited"
	case StatusClassDomain:
		return "domain"
	default:
		return "transport"
	}
}

// ClassifyStatus maps every status code to exactly one class.
func ClassifyStatus(status int) StatusClass {
	switch {
	case status == http.StatusAccepted, status == http.StatusNoContent, status == http.StatusResetContent:
		return StatusClassEmpty
	case status >= 200 && status < 300:
		return StatusClassDecode
	case status == http.StatusTooManyRequests:
		return StatusClassRateLimited
	case status >= 400 && status < 600:
		return StatusClassDomain
	default:
		return StatusClassTransport
	}
}

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind int

const (
	// OutcomeSuccess holds a decoded value.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeEmpty is a success without a body.
	OutcomeEmpty
	// OutcomeDomainError holds errors reported by the panel.
	OutcomeDomainError
	// OutcomeTransportError holds a failure detected on this side, including
	// a success body that could not be decoded.
	OutcomeTransportError
)

// String returns the variant name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeDomainError:
		return "domain_error"
	default:
		return "transport_error"
	}
}

// Outcome is the result of one dispatched request.
type Outcome[T any] struct {
	kind  OutcomeKind
	value T
	err   *Error
}

// Kind returns the variant.
func (o Outcome[T]) Kind() OutcomeKind {
	return o.kind
}

// Value returns the decoded value. It is the zero value unless Kind is
// OutcomeSuccess.
func (o Outcome[T]) Value() T {
	return o.value
}

// Err returns the error of the two error variants, nil otherwise.
func (o Outcome[T]) Err() *Error {
	return o.err
}

// Result flattens the outcome into Go's value/error pair. OutcomeEmpty yields
// the zero value and a nil error.
func (o Outcome[T]) Result() (T, error) {
	if o.err != nil {
		var zero T

		return zero, o.err
	}

	return o.value, nil
}

// Dispatch sends spec through transport and classifies the response.
func Dispatch[T any](ctx context.Context, transport Transport, spec *RequestSpec) Outcome[T] {
	resp, err := transport.Send(ctx, spec)
	if err != nil {
		pteroErr, ok := AsError(err)
		if !ok {
			pteroErr = NewTransportError(err)
		}

		return failed[T](pteroErr)
	}

	if resp == nil {
		return failed[T](NewTransportError(ErrNilResponse))
	}

	return Classify[T](resp)
}

// Do dispatches spec and returns the flattened result.
func Do[T any](ctx context.Context, transport Transport, spec *RequestSpec) (T, error) {
	return Dispatch[T](ctx, transport, spec).Result()
}

// Classify turns a raw response into an Outcome. It never panics.
func Classify[T any](resp *RawResponse) Outcome[T] {
	switch ClassifyStatus(resp.StatusCode) {
	case StatusClassEmpty:
		return Outcome[T]{kind: OutcomeEmpty}
	case StatusClassDecode:
		return decodeSuccess[T](resp)
	case StatusClassRateLimited, StatusClassDomain:
		return failed[T](newDomainError(resp.StatusCode, resp.Header, resp.Body))
	default:
		return failed[T](&Error{
			Kind:       KindTransport,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode),
		})
	}
}

func decodeSuccess[T any](resp *RawResponse) Outcome[T] {
	var value T

	switch target := any(&value).(type) {
	case *NoContent:
		return Outcome[T]{kind: OutcomeSuccess, value: value}
	case *Raw:
		*target = append(Raw(nil), resp.Body...)

		return Outcome[T]{kind: OutcomeSuccess, value: value}
	}

	if len(resp.Body) == 0 {
		return failed[T](&Error{Kind: KindDeserialize, StatusCode: resp.StatusCode, Cause: ErrEmptyBody})
	}

	err := json.Unmarshal(resp.Body, &value)
	if err != nil {
		return failed[T](&Error{
			Kind:       KindDeserialize,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("decoding %s: %w", reflect.TypeFor[T](), err),
		})
	}

	return Outcome[T]{kind: OutcomeSuccess, value: value}
}

func failed[T any](err *Error) Outcome[T] {
	kind := OutcomeTransportError
	if err.IsDomain() {
		kind = OutcomeDomainError
	}

	return Outcome[T]{kind: kind, err: err}
}
