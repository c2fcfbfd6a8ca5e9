// Package client implements the Application and Client API resource clients
// on top of ptero.Transport.
package client

import (
	"github.com/fivetwenty-io/ptero/internal/auth"
	"github.com/fivetwenty-io/ptero/internal/http"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// Transport sends panel requests and fetches signed download URLs.
type Transport interface {
	ptero.Transport
	ptero.Downloader
}

// Client implements ptero.Client.
type Client struct {
	application *Application
	clientAPI   *ClientAPI
}

// New creates a client from config. Token authenticates the Application API
// and, unless ClientToken is set, the Client API. A missing key is reported
// by the first request that needs it.
func New(config *ptero.Config) (*Client, error) {
	if config == nil {
		return nil, ptero.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, ptero.ErrBaseURLRequired
	}

	clientToken := config.ClientToken
	if clientToken == "" {
		clientToken = config.Token
	}

	opts := createHTTPClientOptions(config)

	applicationHTTP := http.NewClient(config.BaseURL, auth.NewStaticTokenManager(config.Token), opts...)
	clientHTTP := http.NewClient(config.BaseURL, auth.NewStaticTokenManager(clientToken), opts...)

	return NewWithTransports(applicationHTTP, clientHTTP), nil
}

// NewWithTransports creates a client over prepared transports, one per API
// surface.
func NewWithTransports(application ptero.Transport, clientAPI Transport) *Client {
	return &Client{
		application: NewApplication(application),
		clientAPI:   NewClientAPI(clientAPI),
	}
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *ptero.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RequestsPerMinute > 0 {
		httpOpts = append(httpOpts, http.WithRequestsPerMinute(config.RequestsPerMinute))
	}

	return httpOpts
}

// Application implements ptero.Client.Application.
func (c *Client) Application() ptero.ApplicationAPI {
	return c.application
}

// ClientAPI implements ptero.Client.ClientAPI.
func (c *Client) ClientAPI() ptero.ClientAPI {
	return c.clientAPI
}

// Application implements ptero.ApplicationAPI.
type Application struct {
	users       *UsersClient
	servers     *ServersClient
	nodes       *NodesClient
	allocations *AllocationsClient
	locations   *LocationsClient
	nests       *NestsClient
	eggs        *EggsClient
}

// NewApplication creates the Application API resource clients.
func NewApplication(transport ptero.Transport) *Application {
	return &Application{
		users:       NewUsersClient(transport),
		servers:     NewServersClient(transport),
		nodes:       NewNodesClient(transport),
		allocations: NewAllocationsClient(transport),
		locations:   NewLocationsClient(transport),
		nests:       NewNestsClient(transport),
		eggs:        NewEggsClient(transport),
	}
}

func (a *Application) Users() ptero.UsersClient             { return a.users }
func (a *Application) Servers() ptero.ServersClient         { return a.servers }
func (a *Application) Nodes() ptero.NodesClient             { return a.nodes }
func (a *Application) Allocations() ptero.AllocationsClient { return a.allocations }
func (a *Application) Locations() ptero.LocationsClient     { return a.locations }
func (a *Application) Nests() ptero.NestsClient             { return a.nests }
func (a *Application) Eggs() ptero.EggsClient               { return a.eggs }

// ClientAPI implements ptero.ClientAPI.
type ClientAPI struct {
	servers   *ClientServersClient
	account   *AccountClient
	databases *DatabasesClient
	files     *FilesClient
	backups   *BackupsClient
}

// NewClientAPI creates the Client API resource clients.
func NewClientAPI(transport Transport) *ClientAPI {
	return &ClientAPI{
		servers:   NewClientServersClient(transport),
		account:   NewAccountClient(transport),
		databases: NewDatabasesClient(transport),
		files:     NewFilesClient(transport, transport),
		backups:   NewBackupsClient(transport, transport),
	}
}

func (a *ClientAPI) Servers() ptero.ClientServersClient { return a.servers }
func (a *ClientAPI) Account() ptero.AccountClient       { return a.account }
func (a *ClientAPI) Databases() ptero.DatabasesClient   { return a.databases }
func (a *ClientAPI) Files() ptero.FilesClient           { return a.files }
func (a *ClientAPI) Backups() ptero.BackupsClient       { return a.backups }

var (
	_ ptero.Client         = (*Client)(nil)
	_ ptero.ApplicationAPI = (*Application)(nil)
	_ ptero.ClientAPI      = (*ClientAPI)(nil)
)
