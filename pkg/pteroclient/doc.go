// Package pteroclient provides the primary entry point for constructing a
// Pterodactyl panel client that implements the ptero.Client interface.
//
// It normalizes the panel address and wires the HTTP transport and API keys
// under the resource interfaces defined in the ptero package. Most programs
// import pteroclient to build a client, then use the returned ptero.Client
// to reach the Application API (admin resources, "ptla_" keys) and the Client
// API (per-user resources, "ptlc_" keys).
//
// Quick start
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
//
//	  cli, err := pteroclient.New(&ptero.Config{
//	    BaseURL:     "panel.example.com",
//	    Token:       "ptla_...",
//	    ClientToken: "ptlc_...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  users, err := cli.Application().Users().List(ctx, &ptero.ListOptions{PerPage: 10})
//	  if err != nil { log.Fatal(err) }
//	  _ = users
//	}
//
// # Keys
//
// Token authenticates the Application API. ClientToken authenticates the
// Client API and defaults to Token, which works for admin accounts whose
// client key is used for both surfaces.
package pteroclient
