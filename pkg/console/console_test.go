package console_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/ptero/pkg/console"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://panel.example.com"

// fakeWings upgrades every request and runs script on the socket. Frames
// read by the script are forwarded to frames.
type fakeWings struct {
	server  *httptest.Server
	frames  chan console.Event
	origins chan string
}

func newFakeWings(t *testing.T, script func(ws *websocket.Conn, read func() console.Event)) *fakeWings {
	t.Helper()

	wings := &fakeWings{
		frames:  make(chan console.Event, 32),
		origins: make(chan string, 4),
	}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	wings.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		wings.origins <- request.Header.Get("Origin")

		ws, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			return
		}

		defer func() { _ = ws.Close() }()

		script(ws, func() console.Event {
			var event console.Event

			if ws.ReadJSON(&event) == nil {
				wings.frames <- event
			}

			return event
		})
	}))
	t.Cleanup(wings.server.Close)

	return wings
}

func (w *fakeWings) credentials(token string) *ptero.WebSocketCredentials {
	return &ptero.WebSocketCredentials{
		Token:  token,
		Socket: "ws" + strings.TrimPrefix(w.server.URL, "http") + "/api/servers/1a7ce997/ws",
	}
}

func emit(ws *websocket.Conn, name string, args ...string) {
	_ = ws.WriteJSON(console.Event{Event: name, Args: args})
}

func closeNormally(ws *websocket.Conn) {
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": expiry.Unix(),
	}).SignedString([]byte("wings-secret"))
	require.NoError(t, err)

	return token
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestStream(t *testing.T) {
	t.Parallel()

	t.Run("refreshes the token on the same connection", func(t *testing.T) {
		t.Parallel()

		wings := newFakeWings(t, func(ws *websocket.Conn, read func() console.Event) {
			read()
			emit(ws, console.EventAuthSuccess)
			emit(ws, console.EventConsoleOutput, "Done (2.1s)! For help, type \"help\"")
			emit(ws, console.EventTokenExpiring)
			read()
			emit(ws, console.EventStatus, ptero.ServerStateRunning)
			closeNormally(ws)
		})

		conn, err := console.Dial(context.Background(), wings.credentials("first"), testOrigin)
		require.NoError(t, err)

		defer func() { _ = conn.Close() }()

		refreshes := 0
		refresher := func(context.Context) (*ptero.WebSocketCredentials, error) {
			refreshes++

			return wings.credentials("second"), nil
		}

		var events []string

		err = conn.Stream(context.Background(), func(event console.Event) error {
			events = append(events, event.Event)

			return nil
		}, refresher)
		require.NoError(t, err)

		assert.Equal(t, []string{
			console.EventAuthSuccess, console.EventConsoleOutput, console.EventTokenExpiring, console.EventStatus,
		}, events)
		assert.Equal(t, 1, refreshes)
		assert.Equal(t, testOrigin, <-wings.origins)
		assert.Equal(t, console.Event{Event: console.EventAuth, Args: []string{"first"}}, <-wings.frames)
		assert.Equal(t, console.Event{Event: console.EventAuth, Args: []string{"second"}}, <-wings.frames)
	})

	t.Run("expired token without refresher", func(t *testing.T) {
		t.Parallel()

		wings := newFakeWings(t, func(ws *websocket.Conn, read func() console.Event) {
			read()
			emit(ws, console.EventTokenExpiring)
			emit(ws, console.EventTokenExpired)
			read()
		})

		conn, err := console.Dial(context.Background(), wings.credentials("first"), testOrigin)
		require.NoError(t, err)

		defer func() { _ = conn.Close() }()

		err = conn.Stream(context.Background(), nil, nil)
		require.ErrorIs(t, err, console.ErrNoRefresher)
	})

	t.Run("refresher failure ends the stream", func(t *testing.T) {
		t.Parallel()

		wings := newFakeWings(t, func(ws *websocket.Conn, read func() console.Event) {
			read()
			emit(ws, console.EventTokenExpired)
			read()
		})

		conn, err := console.Dial(context.Background(), wings.credentials("first"), testOrigin)
		require.NoError(t, err)

		defer func() { _ = conn.Close() }()

		refreshErr := ptero.NewTransportError(errors.New("panel unreachable"))
		err = conn.Stream(context.Background(), nil, func(context.Context) (*ptero.WebSocketCredentials, error) {
			return nil, refreshErr
		})
		require.ErrorIs(t, err, refreshErr)
	})

	t.Run("jwt error", func(t *testing.T) {
		t.Parallel()

		wings := newFakeWings(t, func(ws *websocket.Conn, read func() console.Event) {
			read()
			emit(ws, console.EventJWTError, "jwt: exp claim is invalid")
			read()
		})

		conn, err := console.Dial(context.Background(), wings.credentials("stale"), testOrigin)
		require.NoError(t, err)

		defer func() { _ = conn.Close() }()

		err = conn.Stream(context.Background(), nil, nil)
		require.ErrorIs(t, err, console.ErrJWT)
		assert.Contains(t, err.Error(), "exp claim is invalid")
	})

	t.Run("handler can stop", func(t *testing.T) {
		t.Parallel()

		wings := newFakeWings(t, func(ws *websocket.Conn, read func() console.Event) {
			read()
			emit(ws, console.EventConsoleOutput, "one")
			emit(ws, console.EventConsoleOutput, "two")
			read()
		})

		conn, err := console.Dial(context.Background(), wings.credentials("token"), testOrigin)
		require.NoError(t, err)

		defer func() { _ = conn.Close() }()

		var lines []string

		err = conn.Stream(context.Background(), func(event console.Event) error {
			lines = append(lines, event.Arg())

			return console.ErrStop
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"one"}, lines)
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		wings := newFakeWings(t, func(_ *websocket.Conn, read func() console.Event) {
			read()
			read()
		})

		conn, err := console.Dial(context.Background(), wings.credentials("token"), testOrigin)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = conn.Stream(ctx, nil, nil)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestConnCommands(t *testing.T) {
	t.Parallel()

	wings := newFakeWings(t, func(_ *websocket.Conn, read func() console.Event) {
		for range 5 {
			read()
		}
	})

	conn, err := console.Dial(context.Background(), wings.credentials("token"), testOrigin)
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SendCommand("say hello"))
	require.NoError(t, conn.SetState(ptero.PowerRestart))
	require.NoError(t, conn.RequestLogs())
	require.NoError(t, conn.RequestStats())

	require.ErrorIs(t, conn.SendCommand(""), console.ErrEmptyCommand)
	require.ErrorIs(t, conn.SetState("explode"), console.ErrInvalidSignal)

	expected := []console.Event{
		{Event: console.EventAuth, Args: []string{"token"}},
		{Event: console.EventSendCommand, Args: []string{"say hello"}},
		{Event: console.EventSetState, Args: []string{"restart"}},
		{Event: console.EventSendLogs},
		{Event: console.EventSendStats},
	}

	for _, want := range expected {
		select {
		case got := <-wings.frames:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", want.Event)
		}
	}
}

func TestDial(t *testing.T) {
	t.Parallel()

	_, err := console.Dial(context.Background(), nil, testOrigin)
	require.ErrorIs(t, err, console.ErrNoCredentials)

	_, err = console.Dial(context.Background(), &ptero.WebSocketCredentials{Token: "x"}, testOrigin)
	require.ErrorIs(t, err, console.ErrNoCredentials)

	wings := newFakeWings(t, func(_ *websocket.Conn, read func() console.Event) { read() })

	_, err = console.Dial(context.Background(), wings.credentials(""), testOrigin)
	require.ErrorIs(t, err, console.ErrEmptyToken)
}

func TestExpiresAt(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	token := signedToken(t, expiry)

	wings := newFakeWings(t, func(_ *websocket.Conn, read func() console.Event) { read() })

	conn, err := console.Dial(context.Background(), wings.credentials(token), testOrigin)
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	assert.True(t, expiry.Equal(conn.ExpiresAt()))
}

func TestEventStats(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(map[string]any{
		"memory_bytes":       536870912,
		"memory_limit_bytes": 1073741824,
		"cpu_absolute":       37.5,
		"disk_bytes":         1024,
		"uptime":             60000,
		"state":              "running",
		"network":            map[string]any{"rx_bytes": 10, "tx_bytes": 20},
	})
	require.NoError(t, err)

	stats, err := console.Event{Event: console.EventStats, Args: []string{string(payload)}}.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(536870912), stats.MemoryBytes)
	assert.InDelta(t, 37.5, stats.CPUAbsolute, 0.001)
	assert.Equal(t, int64(20), stats.Network.TxBytes)
	assert.Equal(t, ptero.ServerStateRunning, stats.State)

	_, err = console.Event{Event: console.EventStatus, Args: []string{"running"}}.Stats()
	require.ErrorIs(t, err, console.ErrEventHasNoStats)
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	messages []console.RelayMessage
	fail     error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	if p.fail != nil {
		return p.fail
	}

	var message console.RelayMessage

	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.subjects = append(p.subjects, subject)
	p.messages = append(p.messages, message)

	return nil
}

func TestRelay(t *testing.T) {
	t.Parallel()

	t.Run("publishes every event", func(t *testing.T) {
		t.Parallel()

		wings := newFakeWings(t, func(ws *websocket.Conn, read func() console.Event) {
			read()
			emit(ws, console.EventAuthSuccess)
			emit(ws, console.EventConsoleOutput, "[INFO] Starting")
			closeNormally(ws)
		})

		conn, err := console.Dial(context.Background(), wings.credentials("token"), testOrigin)
		require.NoError(t, err)

		defer func() { _ = conn.Close() }()

		publisher := &recordingPublisher{}

		require.NoError(t, console.Relay(context.Background(), conn, publisher, "ptero.console.1a7ce997", nil))
		require.Len(t, publisher.messages, 2)
		assert.Equal(t, []string{"ptero.console.1a7ce997", "ptero.console.1a7ce997"}, publisher.subjects)
		assert.Equal(t, console.EventConsoleOutput, publisher.messages[1].Event)
		assert.Equal(t, []string{"[INFO] Starting"}, publisher.messages[1].Args)
		assert.False(t, publisher.messages[1].ReceivedAt.IsZero())
	})

	t.Run("publish failure ends the relay", func(t *testing.T) {
		t.Parallel()

		wings := newFakeWings(t, func(ws *websocket.Conn, read func() console.Event) {
			read()
			emit(ws, console.EventAuthSuccess)
			read()
		})

		conn, err := console.Dial(context.Background(), wings.credentials("token"), testOrigin)
		require.NoError(t, err)

		defer func() { _ = conn.Close() }()

		failure := errors.New("nats: connection closed")

		err = console.Relay(context.Background(), conn, &recordingPublisher{fail: failure}, "subject", nil)
		require.ErrorIs(t, err, failure)
	})

	t.Run("requires publisher and subject", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, console.Relay(context.Background(), nil, nil, "subject", nil), console.ErrNoPublisher)
		require.ErrorIs(t, console.Relay(context.Background(), nil, &recordingPublisher{}, "", nil), console.ErrNoSubject)
	})
}
