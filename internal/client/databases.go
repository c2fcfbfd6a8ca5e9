package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// DatabasesClient implements ptero.DatabasesClient.
type DatabasesClient struct {
	transport ptero.Transport
}

// NewDatabasesClient creates a new databases client.
func NewDatabasesClient(transport ptero.Transport) *DatabasesClient {
	return &DatabasesClient{
		transport: transport,
	}
}

// List implements ptero.DatabasesClient.List. Include "password" to read the
// passwords with Database.Password.
func (c *DatabasesClient) List(ctx context.Context, identifier string, opts *ptero.GetOptions) ([]ptero.Database, error) {
	err := checkServer(identifier)
	if err == nil {
		err = checkIncludes(databaseIncludes, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}

	builder := opts.Apply(ptero.NewRequest(ptero.RouteListDatabases, identifier))

	list, err := execute[ptero.List[ptero.Database]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}

	return list.Values(), nil
}

// Create implements ptero.DatabasesClient.Create. The new password is
// included in the result.
func (c *DatabasesClient) Create(ctx context.Context, identifier string, request *ptero.CreateDatabaseRequest) (*ptero.Database, error) {
	err := checkServer(identifier)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteCreateDatabase, identifier).
		WithInclude("password").
		WithJSONBody(request)

	item, err := execute[ptero.Item[ptero.Database]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	return &item.Attributes, nil
}

// RotatePassword implements ptero.DatabasesClient.RotatePassword.
func (c *DatabasesClient) RotatePassword(ctx context.Context, identifier, database string) (*ptero.Database, error) {
	err := checkServer(identifier)
	if err == nil {
		err = checkNotEmpty("database", database)
	}

	if err != nil {
		return nil, fmt.Errorf("rotating database password: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteRotateDatabasePassword, identifier, database)

	item, err := execute[ptero.Item[ptero.Database]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("rotating database password: %w", err)
	}

	return &item.Attributes, nil
}

// Delete implements ptero.DatabasesClient.Delete.
func (c *DatabasesClient) Delete(ctx context.Context, identifier, database string) error {
	err := checkServer(identifier)
	if err == nil {
		err = checkNotEmpty("database", database)
	}

	if err != nil {
		return fmt.Errorf("deleting database: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteDeleteDatabase, identifier, database))
	if err != nil {
		return fmt.Errorf("deleting database: %w", err)
	}

	return nil
}
