package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// ServersClient implements ptero.ServersClient.
type ServersClient struct {
	transport ptero.Transport
}

// NewServersClient creates a new servers client.
func NewServersClient(transport ptero.Transport) *ServersClient {
	return &ServersClient{
		transport: transport,
	}
}

// List implements ptero.ServersClient.List.
func (c *ServersClient) List(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Server], error) {
	err := checkIncludes(serverIncludes, opts.Includes())
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}

	list, err := execute[ptero.List[ptero.Server]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteListServers)))
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Cursor implements ptero.ServersClient.Cursor.
func (c *ServersClient) Cursor(opts *ptero.ListOptions) *ptero.Cursor[ptero.Server] {
	return ptero.NewCursor[ptero.Server](c.transport, listRoute(ptero.RouteListServers), ptero.CursorListOptions(opts))
}

// Get implements ptero.ServersClient.Get.
func (c *ServersClient) Get(ctx context.Context, id int, opts *ptero.GetOptions) (*ptero.Server, error) {
	param, err := checkID("server", id)
	if err == nil {
		err = checkIncludes(serverIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting server: %w", err)
	}

	item, err := execute[ptero.Item[ptero.Server]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteGetServer, param)))
	if err != nil {
		return nil, fmt.Errorf("getting server: %w", err)
	}

	return &item.Attributes, nil
}

// GetByExternalID implements ptero.ServersClient.GetByExternalID.
func (c *ServersClient) GetByExternalID(ctx context.Context, externalID string, opts *ptero.GetOptions) (*ptero.Server, error) {
	err := checkNotEmpty("external id", externalID)
	if err == nil {
		err = checkIncludes(serverIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting server by external id: %w", err)
	}

	builder := opts.Apply(ptero.NewRequest(ptero.RouteGetServerByExternalID, externalID))

	item, err := execute[ptero.Item[ptero.Server]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("getting server by external id: %w", err)
	}

	return &item.Attributes, nil
}

// Create implements ptero.ServersClient.Create.
func (c *ServersClient) Create(ctx context.Context, request *ptero.CreateServerRequest) (*ptero.Server, error) {
	err := validate(request)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	body := *request
	if body.Environment == nil {
		body.Environment = map[string]string{}
	}

	item, err := execute[ptero.Item[ptero.Server]](ctx, c.transport, ptero.NewRequest(ptero.RouteCreateServer).WithJSONBody(body))
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	return &item.Attributes, nil
}

// UpdateDetails implements ptero.ServersClient.UpdateDetails. The name, owner,
// external id and description left empty are taken from the current server.
func (c *ServersClient) UpdateDetails(ctx context.Context, id int, request *ptero.UpdateServerDetailsRequest) (*ptero.Server, error) {
	param, err := checkID("server", id)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return nil, fmt.Errorf("updating server details: %w", err)
	}

	current, err := c.Get(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("updating server details: %w", err)
	}

	body := *request
	if body.Name == "" {
		body.Name = current.Name
	}

	if body.User == 0 {
		body.User = current.User
	}

	if body.ExternalID == nil {
		body.ExternalID = current.ExternalID
	}

	if body.Description == nil {
		description := current.Description
		body.Description = &description
	}

	builder := ptero.NewRequest(ptero.RouteUpdateServerDetails, param).WithJSONBody(body)

	item, err := execute[ptero.Item[ptero.Server]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("updating server details: %w", err)
	}

	return &item.Attributes, nil
}

// UpdateBuild implements ptero.ServersClient.UpdateBuild.
func (c *ServersClient) UpdateBuild(ctx context.Context, id int, request *ptero.UpdateServerBuildRequest) (*ptero.Server, error) {
	param, err := checkID("server", id)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return nil, fmt.Errorf("updating server build: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteUpdateServerBuild, param).WithJSONBody(request)

	item, err := execute[ptero.Item[ptero.Server]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("updating server build: %w", err)
	}

	return &item.Attributes, nil
}

// UpdateStartup implements ptero.ServersClient.UpdateStartup. The startup
// command, egg and image left empty are taken from the current server; the
// environment is sent as given.
func (c *ServersClient) UpdateStartup(ctx context.Context, id int, request *ptero.UpdateServerStartupRequest) (*ptero.Server, error) {
	param, err := checkID("server", id)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return nil, fmt.Errorf("updating server startup: %w", err)
	}

	current, err := c.Get(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("updating server startup: %w", err)
	}

	body := *request
	if body.Startup == "" {
		body.Startup = current.Container.StartupCommand
	}

	if body.Egg == 0 {
		body.Egg = current.Egg
	}

	if body.Image == "" {
		body.Image = current.Container.Image
	}

	if body.Environment == nil {
		body.Environment = map[string]string{}
	}

	builder := ptero.NewRequest(ptero.RouteUpdateServerStartup, param).WithJSONBody(body)

	item, err := execute[ptero.Item[ptero.Server]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("updating server startup: %w", err)
	}

	return &item.Attributes, nil
}

// Suspend implements ptero.ServersClient.Suspend.
func (c *ServersClient) Suspend(ctx context.Context, id int) error {
	return c.action(ctx, "suspending server", ptero.RouteSuspendServer, id)
}

// Unsuspend implements ptero.ServersClient.Unsuspend.
func (c *ServersClient) Unsuspend(ctx context.Context, id int) error {
	return c.action(ctx, "unsuspending server", ptero.RouteUnsuspendServer, id)
}

// Reinstall implements ptero.ServersClient.Reinstall.
func (c *ServersClient) Reinstall(ctx context.Context, id int) error {
	return c.action(ctx, "reinstalling server", ptero.RouteReinstallServer, id)
}

// Delete implements ptero.ServersClient.Delete. Force removes the server even
// when its node cannot be reached.
func (c *ServersClient) Delete(ctx context.Context, id int, force bool) error {
	kind := ptero.RouteDeleteServer
	if force {
		kind = ptero.RouteForceDeleteServer
	}

	return c.action(ctx, "deleting server", kind, id)
}

func (c *ServersClient) action(ctx context.Context, verb string, kind ptero.RouteKind, id int) error {
	param, err := checkID("server", id)
	if err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(kind, param))
	if err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}

	return nil
}
