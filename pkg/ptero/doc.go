// Package ptero provides types, interfaces, and helpers for working with the
// Pterodactyl panel API.
//
// # Overview
//
// The panel exposes two surfaces: the Application API under /api/application
// (administration of users, servers, nodes, allocations, locations, nests and
// eggs) and the Client API under /api/client (what a user can do with their
// own servers). This package defines the domain types, the resource client
// interfaces and the request engine they share. A concrete implementation is
// provided by the pteroclient package:
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/ptero/pkg/ptero"
//	  "github.com/fivetwenty-io/ptero/pkg/pteroclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := pteroclient.NewWithToken("https://panel.example.com", "ptla_...")
//	  if err != nil { log.Fatal(err) }
//
//	  users, err := cli.Application().Users().List(ctx, ptero.NewListOptions())
//	  if err != nil { log.Fatal(err) }
//	  _ = users
//	}
//
// # Requests
//
// Every operation is a RouteKind from a closed table. NewRequest binds path
// parameters, and the RequestBuilder collects query parameters, include
// directives and a body before Build freezes them into a RequestSpec:
//
//	spec, err := ptero.NewRequest(ptero.RouteGetServer, "7").
//	  WithInclude("allocations", "user").
//	  Build()
//
// Dispatch sends a spec through a Transport and classifies the response into
// an Outcome: a decoded value, an empty success, a domain error reported by
// the panel, or a transport error detected locally.
//
// # Pagination
//
// List endpoints return one page. A Cursor fetches the current page and
// advances explicitly; walking every page is left to the caller:
//
//	cursor := cli.Application().Servers().Cursor(ptero.NewListOptions())
//	page, err := cursor.FetchCurrentPage(ctx)
//	for err == nil && len(page) > 0 {
//	  // use page
//	  if !cursor.HasNext() { break }
//	  page, err = cursor.AdvanceAndFetch(ctx)
//	}
//
// # Errors
//
// All failures are *Error values carrying an ErrorKind. Domain errors keep the
// panel's error entries in Remote. Helpers such as IsNotFound, IsRateLimited
// and IsValidation branch on common cases.
//
// # Relationships
//
// Resources fetched with include directives carry the included resources in
// their Relationships map. Relation and RelationList decode one relation into
// a typed value; models expose typed accessors such as Server.Owner.
package ptero
