package ptero

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/spf13/afero"
)

// Client gives access to both API surfaces of a panel.
type Client interface {
	// Application returns the administrative API, authenticated with an
	// application key.
	Application() ApplicationAPI
	// ClientAPI returns the per-user API, authenticated with a client key.
	ClientAPI() ClientAPI
}

// ApplicationAPI groups the /api/application resource clients.
type ApplicationAPI interface {
	Users() UsersClient
	Servers() ServersClient
	Nodes() NodesClient
	Allocations() AllocationsClient
	Locations() LocationsClient
	Nests() NestsClient
	Eggs() EggsClient
}

// ClientAPI groups the /api/client resource clients.
type ClientAPI interface {
	Servers() ClientServersClient
	Account() AccountClient
	Databases() DatabasesClient
	Files() FilesClient
	Backups() BackupsClient
}

// UsersClient manages panel users.
type UsersClient interface {
	List(ctx context.Context, opts *ListOptions) (*ListResponse[User], error)
	Cursor(opts *ListOptions) *Cursor[User]
	Get(ctx context.Context, id int, opts *GetOptions) (*User, error)
	GetByExternalID(ctx context.Context, externalID string, opts *GetOptions) (*User, error)
	Create(ctx context.Context, request *UserRequest) (*User, error)
	Update(ctx context.Context, id int, request *UserRequest) (*User, error)
	Delete(ctx context.Context, id int) error
}

// ServersClient manages servers through the Application API.
type ServersClient interface {
	List(ctx context.Context, opts *ListOptions) (*ListResponse[Server], error)
	Cursor(opts *ListOptions) *Cursor[Server]
	Get(ctx context.Context, id int, opts *GetOptions) (*Server, error)
	GetByExternalID(ctx context.Context, externalID string, opts *GetOptions) (*Server, error)
	Create(ctx context.Context, request *CreateServerRequest) (*Server, error)
	UpdateDetails(ctx context.Context, id int, request *UpdateServerDetailsRequest) (*Server, error)
	UpdateBuild(ctx context.Context, id int, request *UpdateServerBuildRequest) (*Server, error)
	UpdateStartup(ctx context.Context, id int, request *UpdateServerStartupRequest) (*Server, error)
	Suspend(ctx context.Context, id int) error
	Unsuspend(ctx context.Context, id int) error
	Reinstall(ctx context.Context, id int) error
	Delete(ctx context.Context, id int, force bool) error
}

// NodesClient manages nodes.
type NodesClient interface {
	List(ctx context.Context, opts *ListOptions) (*ListResponse[Node], error)
	Cursor(opts *ListOptions) *Cursor[Node]
	Get(ctx context.Context, id int, opts *GetOptions) (*Node, error)
	GetConfiguration(ctx context.Context, id int) (*NodeConfiguration, error)
	Create(ctx context.Context, request *NodeRequest) (*Node, error)
	Update(ctx context.Context, id int, request *NodeRequest) (*Node, error)
	Delete(ctx context.Context, id int) error
}

// AllocationsClient manages the allocations of a node.
type AllocationsClient interface {
	List(ctx context.Context, node int, opts *ListOptions) (*ListResponse[Allocation], error)
	Cursor(node int, opts *ListOptions) *Cursor[Allocation]
	Create(ctx context.Context, node int, request *CreateAllocationsRequest) error
	Delete(ctx context.Context, node, id int) error
}

// LocationsClient manages locations.
type LocationsClient interface {
	List(ctx context.Context, opts *ListOptions) (*ListResponse[Location], error)
	Cursor(opts *ListOptions) *Cursor[Location]
	Get(ctx context.Context, id int, opts *GetOptions) (*Location, error)
	Create(ctx context.Context, request *LocationRequest) (*Location, error)
	Update(ctx context.Context, id int, request *LocationRequest) (*Location, error)
	Delete(ctx context.Context, id int) error
}

// NestsClient reads nests.
type NestsClient interface {
	List(ctx context.Context, opts *ListOptions) (*ListResponse[Nest], error)
	Cursor(opts *ListOptions) *Cursor[Nest]
	Get(ctx context.Context, id int, opts *GetOptions) (*Nest, error)
}

// EggsClient reads the eggs of a nest.
type EggsClient interface {
	List(ctx context.Context, nest int, opts *ListOptions) (*ListResponse[Egg], error)
	Get(ctx context.Context, nest, egg int, opts *GetOptions) (*Egg, error)
}

// ClientServersClient operates servers through the Client API. Server
// identifiers are a UUID or the 8 character short identifier.
type ClientServersClient interface {
	List(ctx context.Context, access ClientServerType, opts *ListOptions) (*ListResponse[ClientServer], error)
	Cursor(access ClientServerType, opts *ListOptions) *Cursor[ClientServer]
	Get(ctx context.Context, identifier string, opts *GetOptions) (*ClientServer, error)
	WebSocket(ctx context.Context, identifier string) (*WebSocketCredentials, error)
	Resources(ctx context.Context, identifier string) (*ServerResources, error)
	SendCommand(ctx context.Context, identifier, command string) error
	SetPowerState(ctx context.Context, identifier string, signal PowerSignal) error
}

// AccountClient manages the account owning the client key.
type AccountClient interface {
	Get(ctx context.Context) (*Account, error)
	ListAPIKeys(ctx context.Context) ([]APIKey, error)
	CreateAPIKey(ctx context.Context, request *CreateAPIKeyRequest) (*APIKey, error)
	DeleteAPIKey(ctx context.Context, identifier string) error
	GetTwoFactorSetup(ctx context.Context) (*TwoFactorSetup, error)
	// UpdateTwoFactor enables or disables two-factor authentication. Recovery
	// tokens are returned when enabling.
	UpdateTwoFactor(ctx context.Context, request *TwoFactorRequest) ([]string, error)
	UpdateEmail(ctx context.Context, request *UpdateEmailRequest) error
	UpdatePassword(ctx context.Context, request *UpdatePasswordRequest) error
	Update(ctx context.Context, request *UpdateAccountRequest) error
}

// DatabasesClient manages the databases of a server.
type DatabasesClient interface {
	List(ctx context.Context, identifier string, opts *GetOptions) ([]Database, error)
	Create(ctx context.Context, identifier string, request *CreateDatabaseRequest) (*Database, error)
	RotatePassword(ctx context.Context, identifier, database string) (*Database, error)
	Delete(ctx context.Context, identifier, database string) error
}

// FilesClient reads the files of a server.
type FilesClient interface {
	List(ctx context.Context, identifier, directory string) ([]FileObject, error)
	Contents(ctx context.Context, identifier, file string) ([]byte, error)
	DownloadURL(ctx context.Context, identifier, file string) (string, error)
	Download(ctx context.Context, identifier, file string, fs afero.Fs, destination string) (int64, error)
}

// BackupsClient manages the backups of a server.
type BackupsClient interface {
	List(ctx context.Context, identifier string, opts *ListOptions) (*ListResponse[Backup], error)
	Get(ctx context.Context, identifier, backup string) (*Backup, error)
	Create(ctx context.Context, identifier string, request *CreateBackupRequest) (*Backup, error)
	DownloadURL(ctx context.Context, identifier, backup string) (string, error)
	Download(ctx context.Context, identifier, backup string, fs afero.Fs, destination string) (int64, error)
	Delete(ctx context.Context, identifier, backup string) error
}

// Downloader fetches a signed URL into w.
type Downloader interface {
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a ptero.Client.
//
// One panel key authenticates one surface: application keys ("ptla_") are
// accepted by /api/application and client keys ("ptlc_") by /api/client.
// Token is used for both; the facade in pkg/pteroclient can set a separate
// ClientToken.
type Config struct {
	// BaseURL is the panel address (e.g., "https://panel.example.com").
	// pteroclient.New trims a trailing slash and adds "https://" when no
	// scheme is present.
	BaseURL string
	// Token is the API key. A "Bearer " prefix is accepted and normalized.
	Token string
	// ClientToken overrides Token for the Client API when set.
	ClientToken string
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// HTTPTimeout bounds each request. Zero keeps the default.
	HTTPTimeout time.Duration
	// HTTPClient replaces the pooled HTTP client. Its Timeout is kept.
	HTTPClient *http.Client
	// Debug enables request/response logging when a Logger is set.
	Debug bool
	// Logger receives transport logs.
	Logger Logger
	// Interceptors run around every request.
	Interceptors *InterceptorChain
	// RequestsPerMinute throttles each API key client-side. Zero disables it.
	RequestsPerMinute int
}
