package ptero

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies a failed operation.
type ErrorKind int

const (
	// KindTransport is a failure before any status code was available:
	// connection refused, timeout, TLS failure or an unreadable response.
	KindTransport ErrorKind = iota + 1
	// KindDeserialize is a success status whose body did not match the
	// expected shape.
	KindDeserialize
	// KindDomain is an error reported by the panel in an errors envelope.
	KindDomain
	// KindRateLimited is a domain error returned with HTTP 429.
	KindRateLimited
	// KindValidation is a local failure raised before any request was sent.
	KindValidation
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDeserialize:
		return "deserialize"
	case KindDomain:
		return "domain"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// APIError is one entry of the panel's errors envelope.
type APIError struct {
	Code   string `json:"code"   yaml:"code"`
	Status string `json:"status" yaml:"status"`
	Detail string `json:"detail" yaml:"detail"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status: %s)", e.Code, e.Detail, e.Status)
}

// ResponseError is the errors envelope returned by the panel.
type ResponseError struct {
	Errors []APIError `json:"errors"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	if len(e.Errors) == 0 {
		return "unknown error"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	details := make([]string, len(e.Errors))
	for i := range e.Errors {
		details[i] = e.Errors[i].Error()
	}

	return "multiple errors: " + strings.Join(details, "; ")
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// ParseResponseError parses an errors envelope from JSON.
func ParseResponseError(data []byte) (*ResponseError, error) {
	var errResp ResponseError

	err := json.Unmarshal(data, &errResp)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response error: %w", err)
	}

	if len(errResp.Errors) == 0 {
		return nil, ErrEmptyErrorEnvelope
	}

	return &errResp, nil
}

// Common remote error codes.
const (
	ErrorCodeValidation     = "ValidationException"
	ErrorCodeNotFound       = "NotFoundHttpException"
	ErrorCodeModelNotFound  = "ModelNotFoundException"
	ErrorCodeAuthentication = "AuthenticationException"
	ErrorCodeAccessDenied   = "AccessDeniedHttpException"
	ErrorCodeTooManyRequest = "TooManyRequestsHttpException"
)

// Static errors for err113 compliance.
var (
	ErrEmptyErrorEnvelope = errors.New("errors envelope is empty")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
	ErrEmptyBody          = errors.New("response body is empty")
	ErrNilResponse        = errors.New("transport returned no response")
	ErrConfigRequired     = errors.New("config is required")
	ErrBaseURLRequired    = errors.New("base URL is required")
)

// RateLimit holds the rate limit headers of a response.
type RateLimit struct {
	Limit      *int
	Remaining  *int
	RetryAfter time.Duration
}

// Error is the error model of every failed operation.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	// Remote is set for KindDomain and KindRateLimited only.
	Remote    []APIError
	RateLimit *RateLimit
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindDomain, KindRateLimited:
		prefix := "panel returned an error"
		if e.Kind == KindRateLimited {
			prefix = "rate limited by panel"
		}

		if len(e.Remote) == 0 {
			return fmt.Sprintf("%s (HTTP %d)", prefix, e.StatusCode)
		}

		return fmt.Sprintf("%s (HTTP %d): %s", prefix, e.StatusCode, (&ResponseError{Errors: e.Remote}).Error())
	case KindDeserialize:
		return fmt.Sprintf("decoding response (HTTP %d): %v", e.StatusCode, e.Cause)
	case KindValidation:
		return fmt.Sprintf("invalid request: %v", e.Cause)
	default:
		if e.StatusCode != 0 {
			return fmt.Sprintf("request failed (HTTP %d): %v", e.StatusCode, e.Cause)
		}

		return fmt.Sprintf("request failed: %v", e.Cause)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// FirstRemote returns the first remote error or nil.
func (e *Error) FirstRemote() *APIError {
	if len(e.Remote) > 0 {
		return &e.Remote[0]
	}

	return nil
}

// IsDomain reports whether the kind carries remote errors.
func (e *Error) IsDomain() bool {
	return e.Kind == KindDomain || e.Kind == KindRateLimited
}

// NewTransportError wraps a failure that happened before a status was known.
func NewTransportError(cause error) *Error {
	return &Error{Kind: KindTransport, Cause: cause}
}

// NewValidationError wraps a local validation failure.
func NewValidationError(cause error) *Error {
	return &Error{Kind: KindValidation, Cause: cause}
}

// newDomainError builds a domain error from an error response. A body that is
// not an errors envelope is kept as the detail of a single synthesized entry.
func newDomainError(statusCode int, header http.Header, body []byte) *Error {
	kind := KindDomain
	if statusCode == http.StatusTooManyRequests {
		kind = KindRateLimited
	}

	domainErr := &Error{Kind: kind, StatusCode: statusCode}

	parsed, err := ParseResponseError(body)
	if err != nil {
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = http.StatusText(statusCode)
		}

		parsed = &ResponseError{Errors: []APIError{{
			Code:   strings.ReplaceAll(http.StatusText(statusCode), " ", ""),
			Status: strconv.Itoa(statusCode),
			Detail: detail,
		}}}
	}

	domainErr.Remote = parsed.Errors
	domainErr.Cause = parsed

	if kind == KindRateLimited || header.Get("X-RateLimit-Limit") != "" {
		domainErr.RateLimit = parseRateLimit(header)
	}

	return domainErr
}

func parseRateLimit(header http.Header) *RateLimit {
	limit := &RateLimit{}

	if value, err := strconv.Atoi(header.Get("X-RateLimit-Limit")); err == nil {
		limit.Limit = &value
	}

	if value, err := strconv.Atoi(header.Get("X-RateLimit-Remaining")); err == nil {
		limit.Remaining = &value
	}

	if seconds, err := strconv.Atoi(header.Get("Retry-After")); err == nil && seconds > 0 {
		limit.RetryAfter = time.Duration(seconds) * time.Second
	}

	return limit
}

// AsError returns the *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var pteroErr *Error
	if errors.As(err, &pteroErr) {
		return pteroErr, true
	}

	return nil, false
}

// IsKind checks whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	pteroErr, ok := AsError(err)

	return ok && pteroErr.Kind == kind
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatusOrCode(err, http.StatusNotFound, ErrorCodeNotFound, ErrorCodeModelNotFound)
}

// IsUnauthorized checks if the error is an unauthenticated error.
func IsUnauthorized(err error) bool {
	return hasStatusOrCode(err, http.StatusUnauthorized, ErrorCodeAuthentication)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatusOrCode(err, http.StatusForbidden, ErrorCodeAccessDenied)
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	return IsKind(err, KindRateLimited)
}

// IsValidation checks if the error is a local validation error.
func IsValidation(err error) bool {
	return IsKind(err, KindValidation)
}

func hasStatusOrCode(err error, status int, codes ...string) bool {
	pteroErr, ok := AsError(err)
	if !ok || !pteroErr.IsDomain() {
		return false
	}

	if pteroErr.StatusCode == status {
		return true
	}

	first := pteroErr.FirstRemote()

	return first != nil && containsCode(codes, first.Code)
}

func containsCode(codes []string, code string) bool {
	for _, candidate := range codes {
		if candidate == code {
			return true
		}
	}

	return false
}
