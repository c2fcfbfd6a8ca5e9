package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientServerAttributes(identifier string) map[string]any {
	return map[string]any{
		"server_owner": true,
		"identifier":   identifier,
		"internal_id":  8,
		"uuid":         identifier + "-259b-452e-8b4e-cecc464142ca",
		"name":         "lobby",
		"node":         "node-1",
		"is_suspended": false,
		"status":       nil,
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClientServersClient(t *testing.T) {
	t.Parallel()

	t.Run("list access types", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			access ptero.ClientServerType
			query  string
		}{
			{ptero.ClientServersOwned, "page=2&per_page=10"},
			{ptero.ClientServersAdmin, "page=2&per_page=10&type=admin"},
			{ptero.ClientServersAdminAll, "page=2&per_page=10&type=admin-all"},
			{ptero.ClientServersOwner, "page=2&per_page=10&type=owner"},
		}

		for _, testCase := range tests {
			panel := newFakePanel(t, respond(http.StatusOK, list("server", 2, 2, clientServerAttributes(testServerID))))

			servers, err := panel.client().ClientAPI().Servers().List(context.Background(), testCase.access, &ptero.ListOptions{Page: 2, PerPage: 10})
			require.NoError(t, err)
			require.Len(t, servers.Data, 1)
			assert.Equal(t, "/api/client", panel.last(t).Path)
			assert.Equal(t, testCase.query, panel.last(t).Query, string(testCase.access))
		}
	})

	t.Run("unknown access type", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, nil))

		_, err := panel.client().ClientAPI().Servers().List(context.Background(), "everyone", nil)
		require.ErrorIs(t, err, ErrInvalidAccessType)
		assert.True(t, ptero.IsValidation(err))
		assert.Empty(t, panel.calls())
	})

	t.Run("cursor keeps the access type", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, list("server", 1, 1, clientServerAttributes(testServerID))))

		cursor := panel.client().ClientAPI().Servers().Cursor(ptero.ClientServersAdmin, nil)

		_, err := cursor.FetchCurrentPage(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "page=1&per_page=50&type=admin", panel.last(t).Query)
		assert.False(t, cursor.HasNext())
	})

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, item("server", clientServerAttributes(testServerID))))

		server, err := panel.client().ClientAPI().Servers().Get(context.Background(), testServerID, &ptero.GetOptions{Include: []string{"egg"}})
		require.NoError(t, err)
		assert.Equal(t, 8, server.InternalID)
		assert.Equal(t, "/api/client/servers/1a7ce997", panel.last(t).Path)
		assert.Equal(t, "include=egg", panel.last(t).Query)
	})

	t.Run("websocket credentials", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, map[string]any{
			"data": map[string]any{"token": "jwt", "socket": "wss://node1.example.com:8080/api/servers/x/ws"},
		}))

		creds, err := panel.client().ClientAPI().Servers().WebSocket(context.Background(), testServerID)
		require.NoError(t, err)
		assert.Equal(t, "jwt", creds.Token)
		assert.Equal(t, "/api/client/servers/1a7ce997/websocket", panel.last(t).Path)
	})

	t.Run("resources", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, item("stats", map[string]any{
			"current_state": "running",
			"is_suspended":  false,
			"resources":     map[string]any{"memory_bytes": 1024, "cpu_absolute": 12.5},
		})))

		resources, err := panel.client().ClientAPI().Servers().Resources(context.Background(), testServerID)
		require.NoError(t, err)
		assert.Equal(t, ptero.ServerStateRunning, resources.CurrentState)
	})

	t.Run("send command", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusNoContent, nil))
		servers := panel.client().ClientAPI().Servers()

		require.NoError(t, servers.SendCommand(context.Background(), testServerID, "say hello"))

		request := panel.last(t)
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/api/client/servers/1a7ce997/command", request.Path)
		assert.Equal(t, map[string]any{"command": "say hello"}, request.decode(t))

		assert.True(t, ptero.IsValidation(servers.SendCommand(context.Background(), testServerID, "")))
		assert.Len(t, panel.calls(), 1)
	})

	t.Run("power", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusNoContent, nil))
		servers := panel.client().ClientAPI().Servers()

		for _, signal := range ptero.PowerSignals() {
			require.NoError(t, servers.SetPowerState(context.Background(), testServerID, signal))
			assert.Equal(t, string(signal), panel.last(t).decode(t)["signal"])
		}

		assert.True(t, ptero.IsValidation(servers.SetPowerState(context.Background(), testServerID, "explode")))
		assert.Len(t, panel.calls(), len(ptero.PowerSignals()))
	})

	t.Run("conflict is a domain error", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusConflict, errorEnvelope("ConflictHttpException", "409", "Server is busy.")))

		err := panel.client().ClientAPI().Servers().SetPowerState(context.Background(), testServerID, ptero.PowerStart)
		require.Error(t, err)

		pteroErr, ok := ptero.AsError(err)
		require.True(t, ok)
		assert.Equal(t, ptero.KindDomain, pteroErr.Kind)
		assert.Equal(t, "Server is busy.", pteroErr.FirstRemote().Detail)
	})

	t.Run("invalid identifiers are rejected locally", func(t *testing.T) {
		t.Parallel()

		panel := newFakePanel(t, respond(http.StatusOK, nil))
		servers := panel.client().ClientAPI().Servers()

		for _, identifier := range []string{"", "1A7CE997", "1a7ce99", "../admin"} {
			_, err := servers.Get(context.Background(), identifier, nil)
			require.ErrorIs(t, err, ptero.ErrInvalidServerIdentifier, identifier)

			_, err = servers.WebSocket(context.Background(), identifier)
			assert.True(t, ptero.IsValidation(err), identifier)
		}

		assert.Empty(t, panel.calls())
	})
}
