// Package console talks to the Wings websocket of a server: it authenticates
// with the short-lived token from ptero.ClientServersClient.WebSocket, sends
// commands and power actions, and streams console events.
//
// Wings closes the socket once the token expires. Stream answers the
// "token expiring" and "token expired" events by fetching fresh credentials
// through a Refresher and authenticating again on the same connection.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/gorilla/websocket"
)

// Events sent to Wings.
const (
	EventAuth        = "auth"
	EventSendCommand = "send command"
	EventSetState    = "set state"
	EventSendLogs    = "send logs"
	EventSendStats   = "send stats"
)

// Events received from Wings.
const (
	EventAuthSuccess       = "auth success"
	EventConsoleOutput     = "console output"
	EventStatus            = "status"
	EventStats             = "stats"
	EventTokenExpiring     = "token expiring"
	EventTokenExpired      = "token expired"
	EventJWTError          = "jwt error"
	EventDaemonError       = "daemon error"
	EventDaemonMessage     = "daemon message"
	EventInstallOutput     = "install output"
	EventInstallStarted    = "install started"
	EventInstallCompleted  = "install completed"
	EventBackupCompleted   = "backup completed"
	EventTransferLogs      = "transfer logs"
	EventTransferStatus    = "transfer status"
	EventBackupRestoreDone = "backup restore completed"
)

// Static errors for err113 compliance.
var (
	ErrNoCredentials   = errors.New("websocket credentials are required")
	ErrEmptyToken      = errors.New("websocket token is empty")
	ErrEmptyCommand    = errors.New("command is empty")
	ErrInvalidSignal   = errors.New("invalid power signal")
	ErrJWT             = errors.New("wings rejected the websocket token")
	ErrNoRefresher     = errors.New("token expired and no refresher is configured")
	ErrEventHasNoStats = errors.New("event carries no stats")
)

// Event is one websocket frame of the Wings protocol.
type Event struct {
	Event string   `json:"event"`
	Args  []string `json:"args,omitempty"`
}

// Arg returns the first argument, or "".
func (e Event) Arg() string {
	if len(e.Args) == 0 {
		return ""
	}

	return e.Args[0]
}

// Stats is the payload of a "stats" event.
type Stats struct {
	MemoryBytes      int64   `json:"memory_bytes"`
	MemoryLimitBytes int64   `json:"memory_limit_bytes"`
	CPUAbsolute      float64 `json:"cpu_absolute"`
	DiskBytes        int64   `json:"disk_bytes"`
	Uptime           int64   `json:"uptime"`
	State            string  `json:"state"`
	Network          struct {
		RxBytes int64 `json:"rx_bytes"`
		TxBytes int64 `json:"tx_bytes"`
	} `json:"network"`
}

// Stats decodes the argument of a "stats" event.
func (e Event) Stats() (*Stats, error) {
	if e.Event != EventStats || len(e.Args) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEventHasNoStats, e.Event)
	}

	var stats Stats

	err := json.Unmarshal([]byte(e.Args[0]), &stats)
	if err != nil {
		return nil, fmt.Errorf("decoding stats: %w", err)
	}

	return &stats, nil
}

// Refresher returns fresh websocket credentials, usually by calling
// ClientServersClient.WebSocket again.
type Refresher func(ctx context.Context) (*ptero.WebSocketCredentials, error)

// ServerRefresher refreshes the credentials of one server.
func ServerRefresher(servers ptero.ClientServersClient, identifier string) Refresher {
	return func(ctx context.Context) (*ptero.WebSocketCredentials, error) {
		return servers.WebSocket(ctx, identifier)
	}
}

// Handler is called for every event read by Stream. Returning ErrStop ends
// the stream without an error.
type Handler func(event Event) error

// ErrStop is returned by a Handler to end Stream cleanly.
var ErrStop = errors.New("stop streaming")

type options struct {
	dialer       *websocket.Dialer
	logger       ptero.Logger
	writeTimeout time.Duration
}

// Option configures Dial.
type Option func(*options)

// WithDialer replaces the websocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// WithLogger logs protocol events at debug level.
func WithLogger(logger ptero.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWriteTimeout bounds each write.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = timeout
	}
}

// Conn is an authenticated Wings websocket. Writes are safe for concurrent
// use; reads are not.
type Conn struct {
	ws           *websocket.Conn
	logger       ptero.Logger
	writeTimeout time.Duration

	mu        sync.Mutex
	expiresAt time.Time
}

// Dial connects to creds.Socket and authenticates with creds.Token. Wings
// rejects upgrades whose Origin is not the panel URL, so origin should be
// the panel address.
func Dial(ctx context.Context, creds *ptero.WebSocketCredentials, origin string, opts ...Option) (*Conn, error) {
	if creds == nil || creds.Socket == "" {
		return nil, ErrNoCredentials
	}

	if creds.Token == "" {
		return nil, ErrEmptyToken
	}

	cfg := options{
		dialer:       &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: constants.ConsoleHandshakeTimeout},
		writeTimeout: constants.ConsoleWriteTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	header := make(http.Header)
	if origin != "" {
		header.Set("Origin", origin)
	}

	ws, resp, err := cfg.dialer.DialContext(ctx, creds.Socket, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", creds.Socket, err)
	}

	conn := &Conn{
		ws:           ws,
		logger:       cfg.logger,
		writeTimeout: cfg.writeTimeout,
	}

	err = conn.Authenticate(creds.Token)
	if err != nil {
		_ = ws.Close()

		return nil, err
	}

	return conn, nil
}

// Authenticate sends an auth event. Wings answers with "auth success" or
// "jwt error".
func (c *Conn) Authenticate(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	err := c.send(EventAuth, token)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	expiry, err := (&ptero.WebSocketCredentials{Token: token}).ExpiresAt()

	c.mu.Lock()
	if err == nil {
		c.expiresAt = expiry
	} else {
		c.expiresAt = time.Time{}
	}
	c.mu.Unlock()

	return nil
}

// ExpiresAt is the expiry of the last token sent, or zero when it carried
// none.
func (c *Conn) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.expiresAt
}

// SendCommand runs a console command.
func (c *Conn) SendCommand(command string) error {
	if command == "" {
		return ErrEmptyCommand
	}

	return c.send(EventSendCommand, command)
}

// SetState sends a power action.
func (c *Conn) SetState(signal ptero.PowerSignal) error {
	if !slices.Contains(ptero.PowerSignals(), signal) {
		return fmt.Errorf("%w: %q", ErrInvalidSignal, signal)
	}

	return c.send(EventSetState, string(signal))
}

// RequestLogs asks Wings to replay recent console output.
func (c *Conn) RequestLogs() error {
	return c.send(EventSendLogs)
}

// RequestStats asks Wings for a stats event.
func (c *Conn) RequestStats() error {
	return c.send(EventSendStats)
}

// ReadEvent blocks until the next event arrives.
func (c *Conn) ReadEvent() (Event, error) {
	var event Event

	err := c.ws.ReadJSON(&event)
	if err != nil {
		return Event{}, fmt.Errorf("reading event: %w", err)
	}

	c.debug("console event received", event)

	return event, nil
}

// Stream reads events until ctx is done, the socket closes, or handler
// returns an error. Expiring tokens are replaced through refresher; a nil
// refresher ends the stream with ErrNoRefresher once the token expires.
func (c *Conn) Stream(ctx context.Context, handler Handler, refresher Refresher) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = c.ws.Close()
		case <-done:
		}
	}()

	for {
		event, err := c.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if isNormalClose(err) {
				return nil
			}

			return err
		}

		err = c.handleProtocol(ctx, event, refresher)
		if err != nil {
			return err
		}

		if handler == nil {
			continue
		}

		err = handler(event)
		if errors.Is(err, ErrStop) {
			return nil
		}

		if err != nil {
			return err
		}
	}
}

func (c *Conn) handleProtocol(ctx context.Context, event Event, refresher Refresher) error {
	switch event.Event {
	case EventTokenExpiring, EventTokenExpired:
		if refresher == nil {
			if event.Event == EventTokenExpired {
				return ErrNoRefresher
			}

			return nil
		}

		creds, err := refresher(ctx)
		if err != nil {
			return fmt.Errorf("refreshing websocket token: %w", err)
		}

		if creds == nil {
			return fmt.Errorf("refreshing websocket token: %w", ErrNoCredentials)
		}

		return c.Authenticate(creds.Token)
	case EventJWTError:
		return fmt.Errorf("%w: %s", ErrJWT, event.Arg())
	}

	return nil
}

func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}

	return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
}

// Close sends a close frame and closes the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.writeTimeout))
	c.mu.Unlock()

	err := c.ws.Close()
	if err != nil {
		return fmt.Errorf("closing console: %w", err)
	}

	return nil
}

func (c *Conn) send(name string, args ...string) error {
	event := Event{Event: name, Args: args}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}

	err := c.ws.WriteJSON(event)
	if err != nil {
		return fmt.Errorf("sending %s: %w", name, err)
	}

	if name != EventAuth {
		c.debug("console event sent", event)
	}

	return nil
}

func (c *Conn) debug(msg string, event Event) {
	if c.logger == nil {
		return
	}

	c.logger.Debug(msg, map[string]interface{}{
		"event": event.Event,
		"args":  len(event.Args),
	})
}
