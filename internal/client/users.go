package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// UsersClient implements ptero.UsersClient.
type UsersClient struct {
	transport ptero.Transport
}

// NewUsersClient creates a new users client.
func NewUsersClient(transport ptero.Transport) *UsersClient {
	return &UsersClient{
		transport: transport,
	}
}

// List implements ptero.UsersClient.List.
func (c *UsersClient) List(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.User], error) {
	err := checkIncludes(userIncludes, opts.Includes())
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	list, err := execute[ptero.List[ptero.User]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteListUsers)))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Cursor implements ptero.UsersClient.Cursor.
func (c *UsersClient) Cursor(opts *ptero.ListOptions) *ptero.Cursor[ptero.User] {
	return ptero.NewCursor[ptero.User](c.transport, listRoute(ptero.RouteListUsers), ptero.CursorListOptions(opts))
}

// Get implements ptero.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, id int, opts *ptero.GetOptions) (*ptero.User, error) {
	param, err := checkID("user", id)
	if err == nil {
		err = checkIncludes(userIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	item, err := execute[ptero.Item[ptero.User]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteGetUser, param)))
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &item.Attributes, nil
}

// GetByExternalID implements ptero.UsersClient.GetByExternalID.
func (c *UsersClient) GetByExternalID(ctx context.Context, externalID string, opts *ptero.GetOptions) (*ptero.User, error) {
	err := checkNotEmpty("external id", externalID)
	if err == nil {
		err = checkIncludes(userIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting user by external id: %w", err)
	}

	builder := opts.Apply(ptero.NewRequest(ptero.RouteGetUserByExternalID, externalID))

	item, err := execute[ptero.Item[ptero.User]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("getting user by external id: %w", err)
	}

	return &item.Attributes, nil
}

// Create implements ptero.UsersClient.Create.
func (c *UsersClient) Create(ctx context.Context, request *ptero.UserRequest) (*ptero.User, error) {
	err := validate(request)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	item, err := execute[ptero.Item[ptero.User]](ctx, c.transport, ptero.NewRequest(ptero.RouteCreateUser).WithJSONBody(request))
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &item.Attributes, nil
}

// Update implements ptero.UsersClient.Update.
func (c *UsersClient) Update(ctx context.Context, id int, request *ptero.UserRequest) (*ptero.User, error) {
	param, err := checkID("user", id)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	item, err := execute[ptero.Item[ptero.User]](ctx, c.transport, ptero.NewRequest(ptero.RouteUpdateUser, param).WithJSONBody(request))
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return &item.Attributes, nil
}

// Delete implements ptero.UsersClient.Delete.
func (c *UsersClient) Delete(ctx context.Context, id int) error {
	param, err := checkID("user", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteDeleteUser, param))
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}
