package ptero_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramsFor(kind ptero.RouteKind) []string {
	params := make([]string, kind.ParamCount())
	for i := range params {
		params[i] = "p" + string(rune('a'+i))
	}

	return params
}

func TestRoute_ResolveAllKinds(t *testing.T) {
	t.Parallel()

	kinds := ptero.RouteKinds()
	require.NotEmpty(t, kinds)

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			route, err := ptero.NewRoute(kind, paramsFor(kind)...)
			require.NoError(t, err)

			endpoint := route.Resolve()
			assert.NotEmpty(t, endpoint.Method)
			assert.True(t, strings.HasPrefix(endpoint.Path, "/api/application") ||
				strings.HasPrefix(endpoint.Path, "/api/client"), endpoint.Path)
			assert.NotContains(t, endpoint.Path, "{")
			assert.NotContains(t, endpoint.Path, "}")

			for _, param := range paramsFor(kind) {
				assert.Contains(t, endpoint.Path, "/"+param)
			}
		})
	}
}

func TestRoute_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		kind   ptero.RouteKind
		params []string
		method string
		path   string
	}{
		{"get server", ptero.RouteGetServer, []string{"7"}, http.MethodGet, "/api/application/servers/7"},
		{"list users", ptero.RouteListUsers, nil, http.MethodGet, "/api/application/users"},
		{"update user", ptero.RouteUpdateUser, []string{"4"}, http.MethodPatch, "/api/application/users/4"},
		{"force delete", ptero.RouteForceDeleteServer, []string{"9"}, http.MethodDelete, "/api/application/servers/9/force"},
		{"get egg", ptero.RouteGetEgg, []string{"1", "5"}, http.MethodGet, "/api/application/nests/1/eggs/5"},
		{"delete allocation", ptero.RouteDeleteAllocation, []string{"2", "30"}, http.MethodDelete, "/api/application/nodes/2/allocations/30"},
		{"client servers", ptero.RouteListClientServers, nil, http.MethodGet, "/api/client"},
		{"power", ptero.RouteSetServerPowerState, []string{"1a7ce997"}, http.MethodPost, "/api/client/servers/1a7ce997/power"},
		{"update email", ptero.RouteUpdateEmail, nil, http.MethodPut, "/api/client/account/email"},
		{"rotate password", ptero.RouteRotateDatabasePassword, []string{"1a7ce997", "bEY4yAD5"}, http.MethodPost,
			"/api/client/servers/1a7ce997/databases/bEY4yAD5/rotate-password"},
		{"escaped", ptero.RouteGetUserByExternalID, []string{"a b/c"}, http.MethodGet, "/api/application/users/external/a%20b%2Fc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			route, err := ptero.NewRoute(tt.kind, tt.params...)
			require.NoError(t, err)

			endpoint := route.Resolve()
			assert.Equal(t, tt.method, endpoint.Method)
			assert.Equal(t, tt.path, endpoint.Path)
			assert.Equal(t, tt.method+" "+tt.path, route.String())
			assert.Equal(t, tt.kind, route.Kind())
		})
	}
}

func TestNewRoute_Errors(t *testing.T) {
	t.Parallel()

	_, err := ptero.NewRoute(ptero.RouteGetServer)
	require.ErrorIs(t, err, ptero.ErrRouteParamCount)

	_, err = ptero.NewRoute(ptero.RouteListUsers, "extra")
	require.ErrorIs(t, err, ptero.ErrRouteParamCount)

	_, err = ptero.NewRoute(ptero.RouteGetServer, "")
	require.ErrorIs(t, err, ptero.ErrEmptyRouteParam)

	_, err = ptero.NewRoute(ptero.RouteKind(-1))
	require.ErrorIs(t, err, ptero.ErrUnknownRoute)

	assert.Equal(t, "RouteKind(-1)", ptero.RouteKind(-1).String())
}

func TestRoute_ZeroValue(t *testing.T) {
	t.Parallel()

	var route ptero.Route

	assert.Equal(t, ptero.RouteListUsers, route.Kind())
	assert.Equal(t, "GET /api/application/users", route.String())
}
