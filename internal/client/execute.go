package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// Static errors for err113 compliance.
var (
	ErrUnknownInclude = errors.New("unknown include")
	ErrInvalidID      = errors.New("id must be a positive integer")
	ErrNilRequest     = errors.New("request is required")
	ErrEmptyArgument  = errors.New("argument is required")
)

// Allowed include names per resource.
var (
	userIncludes         = []string{"servers"}
	serverIncludes       = []string{"allocations", "user", "subusers", "nest", "egg", "variables", "location", "node", "databases"}
	nodeIncludes         = []string{"allocations", "location", "servers"}
	allocationIncludes   = []string{"node", "server"}
	locationIncludes     = []string{"nodes", "servers"}
	nestIncludes         = []string{"eggs", "servers"}
	eggIncludes          = []string{"nest", "servers", "config", "script", "variables"}
	clientServerIncludes = []string{"egg", "subusers"}
	databaseIncludes     = []string{"password"}
)

type validatable interface {
	Validate() error
}

// execute builds the request and dispatches it. A missing key and build
// failures are local and reported as validation errors.
func execute[T any](ctx context.Context, transport ptero.Transport, builder *ptero.RequestBuilder) (T, error) {
	var zero T

	err := ptero.CheckCredentials(ctx, transport)
	if err != nil {
		return zero, err
	}

	spec, err := builder.Build()
	if err != nil {
		return zero, ptero.NewValidationError(err)
	}

	return ptero.Do[T](ctx, transport, spec)
}

// checkIncludes rejects relation names the resource does not define.
func checkIncludes(allowed, requested []string) error {
	for _, name := range requested {
		if !slices.Contains(allowed, name) {
			return ptero.NewValidationError(fmt.Errorf("%w %q, expected one of %v", ErrUnknownInclude, name, allowed))
		}
	}

	return nil
}

// validate runs the local checks of a request.
func validate[R validatable](request *R) error {
	if request == nil {
		return ptero.NewValidationError(ErrNilRequest)
	}

	err := (*request).Validate()
	if err != nil {
		return ptero.NewValidationError(err)
	}

	return nil
}

func checkID(name string, id int) (string, error) {
	if id < 1 {
		return "", ptero.NewValidationError(fmt.Errorf("%s %w, got %d", name, ErrInvalidID, id))
	}

	return strconv.Itoa(id), nil
}

func checkServer(identifier string) error {
	err := ptero.ValidateServerIdentifier(identifier)
	if err != nil {
		return ptero.NewValidationError(err)
	}

	return nil
}

func checkNotEmpty(name, value string) error {
	if value == "" {
		return ptero.NewValidationError(fmt.Errorf("%s: %w", name, ErrEmptyArgument))
	}

	return nil
}

// listRoute resolves a list route for a cursor. Invalid parameters surface on
// the first fetch as a 404 from the panel.
func listRoute(kind ptero.RouteKind, params ...string) ptero.Route {
	route, err := ptero.NewRoute(kind, params...)
	if err != nil {
		route, _ = ptero.NewRoute(kind, slices.Repeat([]string{"0"}, kind.ParamCount())...)
	}

	return route
}
