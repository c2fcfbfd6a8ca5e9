package ptero

import (
	"context"
	"strconv"
)

// Cursor walks a paginated list route one page at a time. A cursor is not safe
// for concurrent use.
type Cursor[T any] struct {
	transport  Transport
	route      Route
	params     []QueryParam
	includes   []string
	page       int
	perPage    int
	pagination *Pagination
}

// CursorOption configures a Cursor.
type CursorOption func(*cursorConfig)

type cursorConfig struct {
	page     int
	perPage  int
	params   []QueryParam
	includes []string
}

// CursorPage sets the starting page. Values below 1 are ignored.
func CursorPage(page int) CursorOption {
	return func(c *cursorConfig) {
		if page >= 1 {
			c.page = page
		}
	}
}

// CursorPerPage sets the page size. Values below 1 select DefaultPerPage.
func CursorPerPage(perPage int) CursorOption {
	return func(c *cursorConfig) {
		c.perPage = perPage
	}
}

// CursorParam adds an extra query parameter sent with every page.
func CursorParam(key, value string) CursorOption {
	return func(c *cursorConfig) {
		c.params = append(c.params, QueryParam{Key: key, Value: value})
	}
}

// CursorInclude adds relations to include on every page.
func CursorInclude(names ...string) CursorOption {
	return func(c *cursorConfig) {
		c.includes = append(c.includes, names...)
	}
}

// CursorListOptions copies page, size, filters, sort and includes from opts.
func CursorListOptions(opts *ListOptions) CursorOption {
	return func(c *cursorConfig) {
		if opts == nil {
			return
		}

		if opts.Page >= 1 {
			c.page = opts.Page
		}

		if opts.PerPage > 0 {
			c.perPage = opts.PerPage
		}

		c.params = append(c.params, opts.Params()...)
		c.includes = append(c.includes, opts.Include...)
	}
}

// NewCursor creates a cursor positioned on page 1 unless CursorPage says
// otherwise.
func NewCursor[T any](transport Transport, route Route, opts ...CursorOption) *Cursor[T] {
	cfg := &cursorConfig{page: 1}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.perPage < 1 {
		cfg.perPage = DefaultPerPage
	}

	return &Cursor[T]{
		transport: transport,
		route:     route,
		params:    cfg.params,
		includes:  cfg.includes,
		page:      cfg.page,
		perPage:   cfg.perPage,
	}
}

// Page returns the current page number.
func (c *Cursor[T]) Page() int {
	return c.page
}

// PerPage returns the page size.
func (c *Cursor[T]) PerPage() int {
	return c.perPage
}

// Pagination returns the pagination block of the last fetched page, or nil
// before the first successful fetch.
func (c *Cursor[T]) Pagination() *Pagination {
	return c.pagination
}

// HasNext reports whether the last fetched page announced a following page.
// It is true before the first fetch.
func (c *Cursor[T]) HasNext() bool {
	if c.pagination == nil {
		return true
	}

	return c.pagination.HasNext()
}

// FetchCurrentPage requests the current page. The page number is unchanged.
func (c *Cursor[T]) FetchCurrentPage(ctx context.Context) ([]T, error) {
	err := CheckCredentials(ctx, c.transport)
	if err != nil {
		return nil, err
	}

	builder := NewRequestFor(c.route).
		WithQueryParam("page", strconv.Itoa(c.page)).
		WithQueryParam("per_page", strconv.Itoa(c.perPage))

	for _, param := range c.params {
		builder.WithQueryParam(param.Key, param.Value)
	}

	spec, err := builder.WithInclude(c.includes...).Build()
	if err != nil {
		return nil, NewValidationError(err)
	}

	list, err := Do[List[T]](ctx, c.transport, spec)
	if err != nil {
		return nil, err
	}

	pagination := list.Meta.Pagination
	c.pagination = &pagination

	return list.Values(), nil
}

// AdvanceAndFetch moves to the next page and fetches it.
func (c *Cursor[T]) AdvanceAndFetch(ctx context.Context) ([]T, error) {
	c.page++

	return c.FetchCurrentPage(ctx)
}
