package client

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// Static errors for err113 compliance.
var (
	ErrInvalidAccessType = errors.New("invalid server access type")
)

var accessTypes = []ptero.ClientServerType{
	ptero.ClientServersOwned,
	ptero.ClientServersAdmin,
	ptero.ClientServersAdminAll,
	ptero.ClientServersOwner,
}

// ClientServersClient implements ptero.ClientServersClient.
type ClientServersClient struct {
	transport ptero.Transport
}

// NewClientServersClient creates a new client servers client.
func NewClientServersClient(transport ptero.Transport) *ClientServersClient {
	return &ClientServersClient{
		transport: transport,
	}
}

// List implements ptero.ClientServersClient.List. An empty access type lists
// the servers the key owner can access.
func (c *ClientServersClient) List(
	ctx context.Context,
	access ptero.ClientServerType,
	opts *ptero.ListOptions,
) (*ptero.ListResponse[ptero.ClientServer], error) {
	err := checkAccess(access)
	if err == nil {
		err = checkIncludes(clientServerIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}

	builder := opts.Apply(ptero.NewRequest(ptero.RouteListClientServers))
	if access != ptero.ClientServersOwned {
		builder.WithQueryParam("type", string(access))
	}

	list, err := execute[ptero.List[ptero.ClientServer]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Cursor implements ptero.ClientServersClient.Cursor.
func (c *ClientServersClient) Cursor(access ptero.ClientServerType, opts *ptero.ListOptions) *ptero.Cursor[ptero.ClientServer] {
	cursorOpts := []ptero.CursorOption{ptero.CursorListOptions(opts)}
	if access != ptero.ClientServersOwned {
		cursorOpts = append(cursorOpts, ptero.CursorParam("type", string(access)))
	}

	return ptero.NewCursor[ptero.ClientServer](c.transport, listRoute(ptero.RouteListClientServers), cursorOpts...)
}

// Get implements ptero.ClientServersClient.Get.
func (c *ClientServersClient) Get(ctx context.Context, identifier string, opts *ptero.GetOptions) (*ptero.ClientServer, error) {
	err := checkServer(identifier)
	if err == nil {
		err = checkIncludes(clientServerIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting server: %w", err)
	}

	builder := opts.Apply(ptero.NewRequest(ptero.RouteGetClientServer, identifier))

	item, err := execute[ptero.Item[ptero.ClientServer]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("getting server: %w", err)
	}

	return &item.Attributes, nil
}

// WebSocket implements ptero.ClientServersClient.WebSocket.
func (c *ClientServersClient) WebSocket(ctx context.Context, identifier string) (*ptero.WebSocketCredentials, error) {
	err := checkServer(identifier)
	if err != nil {
		return nil, fmt.Errorf("getting websocket credentials: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteGetServerWebSocket, identifier)

	envelope, err := execute[ptero.DataEnvelope[ptero.WebSocketCredentials]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("getting websocket credentials: %w", err)
	}

	return &envelope.Data, nil
}

// Resources implements ptero.ClientServersClient.Resources.
func (c *ClientServersClient) Resources(ctx context.Context, identifier string) (*ptero.ServerResources, error) {
	err := checkServer(identifier)
	if err != nil {
		return nil, fmt.Errorf("getting server resources: %w", err)
	}

	item, err := execute[ptero.Item[ptero.ServerResources]](ctx, c.transport, ptero.NewRequest(ptero.RouteGetServerResources, identifier))
	if err != nil {
		return nil, fmt.Errorf("getting server resources: %w", err)
	}

	return &item.Attributes, nil
}

// SendCommand implements ptero.ClientServersClient.SendCommand.
func (c *ClientServersClient) SendCommand(ctx context.Context, identifier, command string) error {
	request := &ptero.SendCommandRequest{Command: command}

	err := checkServer(identifier)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return fmt.Errorf("sending command: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteSendServerCommand, identifier).WithJSONBody(request)

	_, err = execute[ptero.NoContent](ctx, c.transport, builder)
	if err != nil {
		return fmt.Errorf("sending command: %w", err)
	}

	return nil
}

// SetPowerState implements ptero.ClientServersClient.SetPowerState.
func (c *ClientServersClient) SetPowerState(ctx context.Context, identifier string, signal ptero.PowerSignal) error {
	request := &ptero.PowerRequest{Signal: signal}

	err := checkServer(identifier)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return fmt.Errorf("setting power state: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteSetServerPowerState, identifier).WithJSONBody(request)

	_, err = execute[ptero.NoContent](ctx, c.transport, builder)
	if err != nil {
		return fmt.Errorf("setting power state: %w", err)
	}

	return nil
}

func checkAccess(access ptero.ClientServerType) error {
	if !slices.Contains(accessTypes, access) {
		return ptero.NewValidationError(fmt.Errorf("%w %q", ErrInvalidAccessType, access))
	}

	return nil
}
