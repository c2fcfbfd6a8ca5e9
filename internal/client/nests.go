package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// NestsClient implements ptero.NestsClient.
type NestsClient struct {
	transport ptero.Transport
}

// NewNestsClient creates a new nests client.
func NewNestsClient(transport ptero.Transport) *NestsClient {
	return &NestsClient{
		transport: transport,
	}
}

// List implements ptero.NestsClient.List.
func (c *NestsClient) List(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Nest], error) {
	err := checkIncludes(nestIncludes, opts.Includes())
	if err != nil {
		return nil, fmt.Errorf("listing nests: %w", err)
	}

	list, err := execute[ptero.List[ptero.Nest]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteListNests)))
	if err != nil {
		return nil, fmt.Errorf("listing nests: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Cursor implements ptero.NestsClient.Cursor.
func (c *NestsClient) Cursor(opts *ptero.ListOptions) *ptero.Cursor[ptero.Nest] {
	return ptero.NewCursor[ptero.Nest](c.transport, listRoute(ptero.RouteListNests), ptero.CursorListOptions(opts))
}

// Get implements ptero.NestsClient.Get.
func (c *NestsClient) Get(ctx context.Context, id int, opts *ptero.GetOptions) (*ptero.Nest, error) {
	param, err := checkID("nest", id)
	if err == nil {
		err = checkIncludes(nestIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting nest: %w", err)
	}

	item, err := execute[ptero.Item[ptero.Nest]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteGetNest, param)))
	if err != nil {
		return nil, fmt.Errorf("getting nest: %w", err)
	}

	return &item.Attributes, nil
}

// EggsClient implements ptero.EggsClient.
type EggsClient struct {
	transport ptero.Transport
}

// NewEggsClient creates a new eggs client.
func NewEggsClient(transport ptero.Transport) *EggsClient {
	return &EggsClient{
		transport: transport,
	}
}

// List implements ptero.EggsClient.List.
func (c *EggsClient) List(ctx context.Context, nest int, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Egg], error) {
	param, err := checkID("nest", nest)
	if err == nil {
		err = checkIncludes(eggIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("listing eggs: %w", err)
	}

	list, err := execute[ptero.List[ptero.Egg]](ctx, c.transport, opts.Apply(ptero.NewRequest(ptero.RouteListEggs, param)))
	if err != nil {
		return nil, fmt.Errorf("listing eggs: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Get implements ptero.EggsClient.Get.
func (c *EggsClient) Get(ctx context.Context, nest, egg int, opts *ptero.GetOptions) (*ptero.Egg, error) {
	nestParam, err := checkID("nest", nest)
	if err != nil {
		return nil, fmt.Errorf("getting egg: %w", err)
	}

	eggParam, err := checkID("egg", egg)
	if err == nil {
		err = checkIncludes(eggIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("getting egg: %w", err)
	}

	builder := opts.Apply(ptero.NewRequest(ptero.RouteGetEgg, nestParam, eggParam))

	item, err := execute[ptero.Item[ptero.Egg]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("getting egg: %w", err)
	}

	return &item.Attributes, nil
}
