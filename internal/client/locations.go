package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// LocationsClient implements ptero.LocationsClient.
type LocationsClient struct {
	transport ptero.Transport
}

// NewLocationsClient creates a new locations client.
func NewLocationsClient(transport ptero.Transport) *LocationsClient {
	return &LocationsClient{
		transport: transport,
	}
}

// List implements ptero.LocationsClient.List.
func (c *LocationsClient) List(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Location], error) {
	err := checkIncludes(locationIncludes, opts.Includes())
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}

	list, err := execute[ptero.List[ptero.Location]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteListLocations)))
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Cursor implements ptero.LocationsClient.Cursor.
func (c *LocationsClient) Cursor(opts *ptero.ListOptions) *ptero.Cursor[ptero.Location] {
	return ptero.NewCursor[ptero.Location](c.transport, listRoute(ptero.RouteListLocations), ptero.CursorListOptions(opts))
}

// Get implements ptero.LocationsClient.Get.
func (c *LocationsClient) Get(ctx context.Context, id int, opts *ptero.GetOptions) (*ptero.Location, error) {
	param, err := checkID("location", id)
	if err == nil {
		err = checkIncludes(locationIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}

	item, err := execute[ptero.Item[ptero.Location]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteGetLocation, param)))
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}

	return &item.Attributes, nil
}

// Create implements ptero.LocationsClient.Create.
func (c *LocationsClient) Create(ctx context.Context, request *ptero.LocationRequest) (*ptero.Location, error) {
	err := validate(request)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	item, err := execute[ptero.Item[ptero.Location]](ctx, c.transport, ptero.NewRequest(ptero.RouteCreateLocation).WithJSONBody(request))
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	return &item.Attributes, nil
}

// Update implements ptero.LocationsClient.Update.
func (c *LocationsClient) Update(ctx context.Context, id int, request *ptero.LocationRequest) (*ptero.Location, error) {
	param, err := checkID("location", id)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return nil, fmt.Errorf("updating location: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteUpdateLocation, param).WithJSONBody(request)

	item, err := execute[ptero.Item[ptero.Location]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("updating location: %w", err)
	}

	return &item.Attributes, nil
}

// Delete implements ptero.LocationsClient.Delete.
func (c *LocationsClient) Delete(ctx context.Context, id int) error {
	param, err := checkID("location", id)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteDeleteLocation, param))
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}

	return nil
}
