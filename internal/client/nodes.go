package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// NodesClient implements ptero.NodesClient.
type NodesClient struct {
	transport ptero.Transport
}

// NewNodesClient creates a new nodes client.
func NewNodesClient(transport ptero.Transport) *NodesClient {
	return &NodesClient{
		transport: transport,
	}
}

// List implements ptero.NodesClient.List.
func (c *NodesClient) List(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Node], error) {
	err := checkIncludes(nodeIncludes, opts.Includes())
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}

	list, err := execute[ptero.List[ptero.Node]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteListNodes)))
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Cursor implements ptero.NodesClient.Cursor.
func (c *NodesClient) Cursor(opts *ptero.ListOptions) *ptero.Cursor[ptero.Node] {
	return ptero.NewCursor[ptero.Node](c.transport, listRoute(ptero.RouteListNodes), ptero.CursorListOptions(opts))
}

// Get implements ptero.NodesClient.Get.
func (c *NodesClient) Get(ctx context.Context, id int, opts *ptero.GetOptions) (*ptero.Node, error) {
	param, err := checkID("node", id)
	if err == nil {
		err = checkIncludes(nodeIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}

	item, err := execute[ptero.Item[ptero.Node]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteGetNode, param)))
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}

	return &item.Attributes, nil
}

// GetConfiguration implements ptero.NodesClient.GetConfiguration. The panel
// returns the Wings configuration without an envelope.
func (c *NodesClient) GetConfiguration(ctx context.Context, id int) (*ptero.NodeConfiguration, error) {
	param, err := checkID("node", id)
	if err != nil {
		return nil, fmt.Errorf("getting node configuration: %w", err)
	}

	config, err := execute[ptero.NodeConfiguration](ctx, c.transport, ptero.NewRequest(ptero.RouteGetNodeConfiguration, param))
	if err != nil {
		return nil, fmt.Errorf("getting node configuration: %w", err)
	}

	return &config, nil
}

// Create implements ptero.NodesClient.Create.
func (c *NodesClient) Create(ctx context.Context, request *ptero.NodeRequest) (*ptero.Node, error) {
	err := validate(request)
	if err != nil {
		return nil, fmt.Errorf("creating node: %w", err)
	}

	item, err := execute[ptero.Item[ptero.Node]](ctx, c.transport, ptero.NewRequest(ptero.RouteCreateNode).WithJSONBody(request))
	if err != nil {
		return nil, fmt.Errorf("creating node: %w", err)
	}

	return &item.Attributes, nil
}

// Update implements ptero.NodesClient.Update.
func (c *NodesClient) Update(ctx context.Context, id int, request *ptero.NodeRequest) (*ptero.Node, error) {
	param, err := checkID("node", id)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return nil, fmt.Errorf("updating node: %w", err)
	}

	item, err := execute[ptero.Item[ptero.Node]](ctx, c.transport, ptero.NewRequest(ptero.RouteUpdateNode, param).WithJSONBody(request))
	if err != nil {
		return nil, fmt.Errorf("updating node: %w", err)
	}

	return &item.Attributes, nil
}

// Delete implements ptero.NodesClient.Delete.
func (c *NodesClient) Delete(ctx context.Context, id int) error {
	param, err := checkID("node", id)
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteDeleteNode, param))
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}

	return nil
}
