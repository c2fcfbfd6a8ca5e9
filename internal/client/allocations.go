package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// AllocationsClient implements ptero.AllocationsClient.
type AllocationsClient struct {
	transport ptero.Transport
}

// NewAllocationsClient creates a new allocations client.
func NewAllocationsClient(transport ptero.Transport) *AllocationsClient {
	return &AllocationsClient{
		transport: transport,
	}
}

// List implements ptero.AllocationsClient.List.
func (c *AllocationsClient) List(ctx context.Context, node int, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Allocation], error) {
	param, err := checkID("node", node)
	if err == nil {
		err = checkIncludes(allocationIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("listing allocations: %w", err)
	}

	builder := opts.Apply(ptero.NewRequest(ptero.RouteListAllocations, param))

	list, err := execute[ptero.List[ptero.Allocation]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("listing allocations: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Cursor implements ptero.AllocationsClient.Cursor.
func (c *AllocationsClient) Cursor(node int, opts *ptero.ListOptions) *ptero.Cursor[ptero.Allocation] {
	route := listRoute(ptero.RouteListAllocations, strconv.Itoa(node))

	return ptero.NewCursor[ptero.Allocation](c.transport, route, ptero.CursorListOptions(opts))
}

// Create implements ptero.AllocationsClient.Create. The panel answers with no
// content; list the node allocations to see the result.
func (c *AllocationsClient) Create(ctx context.Context, node int, request *ptero.CreateAllocationsRequest) error {
	param, err := checkID("node", node)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return fmt.Errorf("creating allocations: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteCreateAllocations, param).WithJSONBody(request)

	_, err = execute[ptero.NoContent](ctx, c.transport, builder)
	if err != nil {
		return fmt.Errorf("creating allocations: %w", err)
	}

	return nil
}

// Delete implements ptero.AllocationsClient.Delete.
func (c *AllocationsClient) Delete(ctx context.Context, node, id int) error {
	nodeParam, err := checkID("node", node)
	if err != nil {
		return fmt.Errorf("deleting allocation: %w", err)
	}

	allocationParam, err := checkID("allocation", id)
	if err != nil {
		return fmt.Errorf("deleting allocation: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteDeleteAllocation, nodeParam, allocationParam))
	if err != nil {
		return fmt.Errorf("deleting allocation: %w", err)
	}

	return nil
}
