package ptero_test

import (
	"encoding/json"
	"math"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBuilder_Defaults(t *testing.T) {
	t.Parallel()

	spec, err := ptero.NewRequest(ptero.RouteGetUser, "4").Build()
	require.NoError(t, err)

	assert.Equal(t, "GetUser", spec.Route())
	assert.Equal(t, http.MethodGet, spec.Method())
	assert.Equal(t, "/api/application/users/4", spec.Path())
	assert.Equal(t, ptero.ContentTypeJSON, spec.ContentType())
	assert.Equal(t, ptero.ContentTypeJSON, spec.Accept())
	assert.Nil(t, spec.Body())
	assert.Empty(t, spec.Query())
	assert.Equal(t, "https://panel.example.com/api/application/users/4", spec.FinalizeURI("https://panel.example.com/"))
}

func TestRequestBuilder_IncludeDeduplicated(t *testing.T) {
	t.Parallel()

	spec, err := ptero.NewRequest(ptero.RouteGetUser, "4").
		WithInclude("servers").
		WithInclude("servers").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"servers"}, spec.Includes())
	assert.Equal(t, "https://p.test/api/application/users/4?include=servers", spec.FinalizeURI("https://p.test"))
}

func TestRequestBuilder_FinalizeURI(t *testing.T) {
	t.Parallel()

	builder := ptero.NewRequest(ptero.RouteListServers).
		WithInclude("user", "allocations").
		WithQueryParam("page", "2").
		WithQueryParam("filter[name]", "my server").
		WithQueryParam("page", "3").
		WithInclude("node", "user")

	spec, err := builder.Build()
	require.NoError(t, err)

	expected := "https://p.test/api/application/servers" +
		"?page=2&filter%5Bname%5D=my+server&page=3&include=user,allocations,node"

	first := spec.FinalizeURI("https://p.test")
	second := spec.FinalizeURI("https://p.test")

	assert.Equal(t, expected, first)
	assert.Equal(t, first, second)

	assert.Equal(t, []ptero.QueryParam{
		{Key: "page", Value: "2"},
		{Key: "filter[name]", Value: "my server"},
		{Key: "page", Value: "3"},
		{Key: "include", Value: "user,allocations,node"},
	}, spec.Query())
}

func TestRequestBuilder_SpecIsFrozen(t *testing.T) {
	t.Parallel()

	builder := ptero.NewRequest(ptero.RouteListUsers).WithQueryParam("a", "1")

	spec, err := builder.Build()
	require.NoError(t, err)

	builder.WithQueryParam("b", "2").WithInclude("servers")

	assert.Equal(t, "/x/api/application/users?a=1", spec.FinalizeURI("/x"))
}

func TestRequestBuilder_JSONBodyRoundTrip(t *testing.T) {
	t.Parallel()

	request := ptero.CreateAPIKeyRequest{Description: "deploy key", AllowedIPs: []string{"10.0.0.1", "10.1.0.0/16"}}

	spec, err := ptero.NewRequest(ptero.RouteCreateAPIKey).WithJSONBody(request).Build()
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, spec.Method())
	assert.Equal(t, ptero.ContentTypeJSON, spec.ContentType())

	var decoded ptero.CreateAPIKeyRequest

	require.NoError(t, json.Unmarshal(spec.Body(), &decoded))
	assert.Equal(t, request, decoded)
}

func TestRequestBuilder_BodyErrors(t *testing.T) {
	t.Parallel()

	_, err := ptero.NewRequest(ptero.RouteCreateUser).WithJSONBody(math.Inf(1)).Build()
	require.Error(t, err)

	spec, err := ptero.NewRequest(ptero.RouteCreateUser).
		WithJSONBody(math.Inf(1)).
		WithJSONBody(map[string]string{"email": "a@b.c"}).
		Build()
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.c"}`, string(spec.Body()))
}

func TestRequestBuilder_RawBodyAndAccept(t *testing.T) {
	t.Parallel()

	spec, err := ptero.NewRequest(ptero.RouteGetFileContents, "1a7ce997").
		WithQueryParam("file", "/server.properties").
		WithAccept(ptero.ContentTypeText).
		WithRawBody([]byte("hello"), ptero.ContentTypeText).
		Build()
	require.NoError(t, err)

	assert.Equal(t, ptero.ContentTypeText, spec.Accept())
	assert.Equal(t, ptero.ContentTypeText, spec.ContentType())
	assert.Equal(t, []byte("hello"), spec.Body())
	assert.Equal(t, "/api/client/servers/1a7ce997/files/contents?file=%2Fserver.properties", spec.FinalizeURI(""))
}

func TestRequestBuilder_Errors(t *testing.T) {
	t.Parallel()

	_, err := ptero.NewRequest(ptero.RouteGetUser).Build()
	require.ErrorIs(t, err, ptero.ErrRouteParamCount)

	_, err = ptero.NewRequest(ptero.RouteListUsers).WithQueryParam("", "x").Build()
	require.ErrorIs(t, err, ptero.ErrEmptyQueryKey)

	_, err = ptero.NewRequest(ptero.RouteListUsers).WithMethod("  ").Build()
	require.ErrorIs(t, err, ptero.ErrEmptyMethod)

	spec, err := ptero.NewRequest(ptero.RouteListUsers).WithMethod(" head ").Build()
	require.NoError(t, err)
	assert.Equal(t, http.MethodHead, spec.Method())
}

func TestRequestBuilder_IncludeEscaping(t *testing.T) {
	t.Parallel()

	spec, err := ptero.NewRequest(ptero.RouteListUsers).WithInclude("a b", "c,d").Build()
	require.NoError(t, err)

	assert.Equal(t, "/api/application/users?include=a+b,c%2Cd", spec.FinalizeURI(""))
}
