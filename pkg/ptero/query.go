package ptero

import (
	"maps"
	"slices"
	"strconv"
)

// Page size bounds accepted by the panel.
const (
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// ListOptions controls list requests.
type ListOptions struct {
	Page    int
	PerPage int
	// Filters are sent as filter[key]=value, in key order.
	Filters map[string]string
	// Sort names a sort field; a leading "-" sorts descending.
	Sort    string
	Include []string
}

// NewListOptions creates list options for the first page.
func NewListOptions() *ListOptions {
	return &ListOptions{
		Page:    1,
		PerPage: DefaultPerPage,
		Filters: make(map[string]string),
	}
}

// WithFilter sets one filter and returns the options.
func (o *ListOptions) WithFilter(key, value string) *ListOptions {
	if o.Filters == nil {
		o.Filters = make(map[string]string)
	}

	o.Filters[key] = value

	return o
}

// WithInclude adds relations to include and returns the options.
func (o *ListOptions) WithInclude(names ...string) *ListOptions {
	o.Include = append(o.Include, names...)

	return o
}

// Params returns the filter and sort parameters. Page and size are not
// included; see Apply.
func (o *ListOptions) Params() []QueryParam {
	if o == nil {
		return nil
	}

	params := make([]QueryParam, 0, len(o.Filters)+1)

	for _, key := range slices.Sorted(maps.Keys(o.Filters)) {
		params = append(params, QueryParam{Key: "filter[" + key + "]", Value: o.Filters[key]})
	}

	if o.Sort != "" {
		params = append(params, QueryParam{Key: "sort", Value: o.Sort})
	}

	return params
}

// Apply writes page, size, filters, sort and includes to the builder.
func (o *ListOptions) Apply(builder *RequestBuilder) *RequestBuilder {
	if o == nil {
		return builder
	}

	if o.Page > 0 {
		builder.WithQueryParam("page", strconv.Itoa(o.Page))
	}

	if o.PerPage > 0 {
		builder.WithQueryParam("per_page", strconv.Itoa(o.PerPage))
	}

	for _, param := range o.Params() {
		builder.WithQueryParam(param.Key, param.Value)
	}

	return builder.WithInclude(o.Include...)
}

// GetOptions controls single-resource requests.
type GetOptions struct {
	Include []string
}

// Apply writes the include directive to the builder.
func (o *GetOptions) Apply(builder *RequestBuilder) *RequestBuilder {
	if o == nil {
		return builder
	}

	return builder.WithInclude(o.Include...)
}

// Includes returns the requested relation names.
func (o *GetOptions) Includes() []string {
	if o == nil {
		return nil
	}

	return o.Include
}

// Includes returns the requested relation names.
func (o *ListOptions) Includes() []string {
	if o == nil {
		return nil
	}

	return o.Include
}
