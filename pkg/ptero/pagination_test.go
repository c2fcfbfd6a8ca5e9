package ptero_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedServers serves total servers split into pages of the requested size.
func pagedServers(total int) *fakeTransport {
	return &fakeTransport{
		respond: func(spec *ptero.RequestSpec) (*ptero.RawResponse, error) {
			page, _ := strconv.Atoi(queryValue(spec, "page"))
			perPage, _ := strconv.Atoi(queryValue(spec, "per_page"))
			totalPages := (total + perPage - 1) / perPage

			items := make([]string, 0, perPage)
			for id := (page-1)*perPage + 1; id <= total && id <= page*perPage; id++ {
				items = append(items, fmt.Sprintf(`{"object":"server","attributes":{"id":%d,"name":"srv-%d"}}`, id, id))
			}

			body := fmt.Sprintf(`{"object":"list","data":[%s],"meta":{"pagination":`+
				`{"total":%d,"count":%d,"per_page":%d,"current_page":%d,"total_pages":%d,"links":[]}}}`,
				strings.Join(items, ","), total, len(items), perPage, page, totalPages)

			return &ptero.RawResponse{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(body)}, nil
		},
	}
}

func TestCursor_AdvanceAndFetch(t *testing.T) {
	t.Parallel()

	transport := pagedServers(5)
	route, err := ptero.NewRoute(ptero.RouteListServers)
	require.NoError(t, err)

	cursor := ptero.NewCursor[ptero.Server](transport, route, ptero.CursorPerPage(2))

	assert.Equal(t, 1, cursor.Page())
	assert.True(t, cursor.HasNext())
	assert.Nil(t, cursor.Pagination())

	first, err := cursor.FetchCurrentPage(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, first[0].ID)

	second, err := cursor.AdvanceAndFetch(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, 3, second[0].ID)
	assert.Equal(t, 2, cursor.Page())

	sent := transport.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "2", queryValue(sent[1], "page"))
	assert.Equal(t, "2", queryValue(sent[1], "per_page"))
	assert.Equal(t, "/api/application/servers?page=2&per_page=2", sent[1].FinalizeURI(""))

	require.NotNil(t, cursor.Pagination())
	assert.Equal(t, 5, cursor.Pagination().Total)
	assert.True(t, cursor.HasNext())

	third, err := cursor.AdvanceAndFetch(context.Background())
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Equal(t, "srv-5", third[0].Name)
	assert.False(t, cursor.HasNext())
}

func TestCursor_RefetchKeepsPage(t *testing.T) {
	t.Parallel()

	transport := pagedServers(3)
	route, err := ptero.NewRoute(ptero.RouteListServers)
	require.NoError(t, err)

	cursor := ptero.NewCursor[ptero.Server](transport, route, ptero.CursorPage(2), ptero.CursorPerPage(1))

	for range 2 {
		page, err := cursor.FetchCurrentPage(context.Background())
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, 2, page[0].ID)
	}

	assert.Equal(t, 2, cursor.Page())
}

func TestCursor_ListOptions(t *testing.T) {
	t.Parallel()

	transport := pagedServers(1)
	route, err := ptero.NewRoute(ptero.RouteListServers)
	require.NoError(t, err)

	opts := ptero.NewListOptions().WithFilter("name", "lobby").WithInclude("user")
	opts.Sort = "-id"

	cursor := ptero.NewCursor[ptero.Server](transport, route, ptero.CursorListOptions(opts))
	assert.Equal(t, ptero.DefaultPerPage, cursor.PerPage())

	_, err = cursor.FetchCurrentPage(context.Background())
	require.NoError(t, err)

	sent := transport.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "/api/application/servers?page=1&per_page=50&filter%5Bname%5D=lobby&sort=-id&include=user",
		sent[0].FinalizeURI(""))
}

func TestCursor_ErrorLeavesPagination(t *testing.T) {
	t.Parallel()

	transport := staticTransport(http.StatusForbidden,
		`{"errors":[{"code":"AccessDeniedHttpException","status":"403","detail":"This action is unauthorized."}]}`)
	route, err := ptero.NewRoute(ptero.RouteListUsers)
	require.NoError(t, err)

	cursor := ptero.NewCursor[ptero.User](transport, route, ptero.CursorPerPage(0))
	assert.Equal(t, ptero.DefaultPerPage, cursor.PerPage())

	_, err = cursor.FetchCurrentPage(context.Background())
	require.Error(t, err)
	assert.True(t, ptero.IsForbidden(err))
	assert.Nil(t, cursor.Pagination())
}

// keylessTransport reports a missing API key.
type keylessTransport struct {
	*fakeTransport
}

func (keylessTransport) CheckCredentials(context.Context) error {
	return errors.New("no API key available")
}

func TestCursor_MissingKeySendsNothing(t *testing.T) {
	t.Parallel()

	transport := keylessTransport{fakeTransport: pagedServers(3)}
	route, err := ptero.NewRoute(ptero.RouteListServers)
	require.NoError(t, err)

	cursor := ptero.NewCursor[ptero.Server](transport, route)

	_, err = cursor.FetchCurrentPage(context.Background())
	require.Error(t, err)
	assert.True(t, ptero.IsValidation(err))
	assert.Empty(t, transport.sent())
	assert.Nil(t, cursor.Pagination())

	require.NoError(t, ptero.CheckCredentials(context.Background(), staticTransport(http.StatusOK, "")))
}
