package ptero

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is the envelope of a single resource.
type Item[T any] struct {
	Object     string         `json:"object"         yaml:"object"`
	Attributes T              `json:"attributes"     yaml:"attributes"`
	Meta       map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// List is the envelope of a resource collection.
type List[T any] struct {
	Object string    `json:"object" yaml:"object"`
	Data   []Item[T] `json:"data"   yaml:"data"`
	Meta   ListMeta  `json:"meta"   yaml:"meta"`
}

// ListMeta carries the pagination block of a list envelope.
type ListMeta struct {
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// Values returns the attributes of every item in order.
func (l *List[T]) Values() []T {
	values := make([]T, 0, len(l.Data))
	for _, item := range l.Data {
		values = append(values, item.Attributes)
	}

	return values
}

// Pagination represents pagination information.
type Pagination struct {
	Total       int             `json:"total"        yaml:"total"`
	Count       int             `json:"count"        yaml:"count"`
	PerPage     int             `json:"per_page"     yaml:"per_page"`
	CurrentPage int             `json:"current_page" yaml:"current_page"`
	TotalPages  int             `json:"total_pages"  yaml:"total_pages"`
	Links       PaginationLinks `json:"links"        yaml:"links"`
}

// HasNext reports whether a page follows the current one.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// PaginationLinks holds the neighbouring page URLs. The panel encodes an
// empty set of links as a JSON array.
type PaginationLinks struct {
	Previous string `json:"previous,omitempty" yaml:"previous,omitempty"`
	Next     string `json:"next,omitempty"     yaml:"next,omitempty"`
}

// UnmarshalJSON accepts both an object and the empty array form.
func (l *PaginationLinks) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		*l = PaginationLinks{}

		return nil
	}

	type plain PaginationLinks

	var decoded plain

	err := json.Unmarshal(trimmed, &decoded)
	if err != nil {
		return fmt.Errorf("decoding pagination links: %w", err)
	}

	*l = PaginationLinks(decoded)

	return nil
}

// ListResponse is a decoded page of resources.
type ListResponse[T any] struct {
	Data       []T        `json:"data"       yaml:"data"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// NewListResponse unwraps a list envelope.
func NewListResponse[T any](list *List[T]) *ListResponse[T] {
	return &ListResponse[T]{Data: list.Values(), Pagination: list.Meta.Pagination}
}

// DataEnvelope is the non-fractal `{"data": ...}` wrapper used by a few
// Client API endpoints.
type DataEnvelope[T any] struct {
	Data T `json:"data" yaml:"data"`
}
