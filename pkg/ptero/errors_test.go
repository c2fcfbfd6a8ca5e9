package ptero_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyError(t *testing.T, status int, body string) *ptero.Error {
	t.Helper()

	outcome := ptero.Classify[ptero.NoContent](&ptero.RawResponse{StatusCode: status, Header: http.Header{}, Body: []byte(body)})
	require.NotNil(t, outcome.Err())

	return outcome.Err()
}

func TestResponseError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown error", (&ptero.ResponseError{}).Error())

	single := &ptero.ResponseError{Errors: []ptero.APIError{{Code: "NotFoundHttpException", Status: "404", Detail: "missing"}}}
	assert.Equal(t, "NotFoundHttpException: missing (status: 404)", single.Error())

	multiple := &ptero.ResponseError{Errors: []ptero.APIError{
		{Code: "ValidationException", Status: "422", Detail: "a"},
		{Code: "ValidationException", Status: "422", Detail: "b"},
	}}
	assert.Equal(t,
		"multiple errors: ValidationException: a (status: 422); ValidationException: b (status: 422)",
		multiple.Error())
	assert.Nil(t, (&ptero.ResponseError{}).FirstError())
}

func TestParseResponseError(t *testing.T) {
	t.Parallel()

	parsed, err := ptero.ParseResponseError([]byte(`{"errors":[{"code":"X","status":"400","detail":"d"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "X", parsed.FirstError().Code)

	_, err = ptero.ParseResponseError([]byte(`{"errors":[]}`))
	require.ErrorIs(t, err, ptero.ErrEmptyErrorEnvelope)

	_, err = ptero.ParseResponseError([]byte(`nope`))
	require.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	notFound := classifyError(t, http.StatusNotFound,
		`{"errors":[{"code":"NotFoundHttpException","status":"404","detail":"The requested resource could not be found."}]}`)
	wrapped := fmt.Errorf("getting server: %w", notFound)

	assert.True(t, ptero.IsNotFound(wrapped))
	assert.False(t, ptero.IsUnauthorized(wrapped))
	assert.True(t, ptero.IsKind(wrapped, ptero.KindDomain))

	modelMissing := classifyError(t, http.StatusBadRequest,
		`{"errors":[{"code":"ModelNotFoundException","status":"400","detail":"gone"}]}`)
	assert.True(t, ptero.IsNotFound(modelMissing))

	assert.True(t, ptero.IsUnauthorized(classifyError(t, http.StatusUnauthorized, "")))
	assert.True(t, ptero.IsForbidden(classifyError(t, http.StatusForbidden, "")))

	validation := ptero.NewValidationError(errors.New("description: cannot be blank"))
	assert.True(t, ptero.IsValidation(validation))
	assert.False(t, ptero.IsNotFound(validation))
	assert.Equal(t, "invalid request: description: cannot be blank", validation.Error())

	assert.False(t, ptero.IsNotFound(errors.New("plain")))
}

func TestError_Messages(t *testing.T) {
	t.Parallel()

	domain := classifyError(t, http.StatusInternalServerError, "")
	assert.Equal(t, ptero.KindDomain, domain.Kind)
	assert.Equal(t, "InternalServerError", domain.FirstRemote().Code)
	assert.Equal(t, "Internal Server Error", domain.FirstRemote().Detail)
	assert.Contains(t, domain.Error(), "panel returned an error (HTTP 500)")
	assert.Nil(t, domain.RateLimit)

	limited := classifyError(t, http.StatusTooManyRequests, "")
	assert.Equal(t, ptero.KindRateLimited, limited.Kind)
	assert.Contains(t, limited.Error(), "rate limited by panel (HTTP 429)")
	require.NotNil(t, limited.RateLimit)
	assert.Nil(t, limited.RateLimit.Limit)

	redirect := classifyError(t, http.StatusFound, "")
	assert.Equal(t, ptero.KindTransport, redirect.Kind)
	require.ErrorIs(t, redirect, ptero.ErrUnexpectedStatus)
	assert.Equal(t, "request failed (HTTP 302): unexpected response status: 302", redirect.Error())

	transport := ptero.NewTransportError(errors.New("dial tcp: refused"))
	assert.Equal(t, "request failed: dial tcp: refused", transport.Error())
	assert.Nil(t, transport.FirstRemote())

	assert.Equal(t, "rate_limited", ptero.KindRateLimited.String())
	assert.Equal(t, "unknown", ptero.ErrorKind(0).String())
}
