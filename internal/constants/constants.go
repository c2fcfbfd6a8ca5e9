package constants

import "time"

// Version is reported in the User-Agent header and by `ptero version`.
const Version = "0.4.0"

// DefaultUserAgent is sent when no User-Agent is configured.
const DefaultUserAgent = "ptero-go/" + Version

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// DownloadFilePerm is the permission of downloaded files.
	DownloadFilePerm = 0640
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DownloadTimeout bounds signed URL downloads, which may be large.
	DownloadTimeout = 30 * time.Minute

	// ConsoleHandshakeTimeout bounds the websocket handshake with Wings.
	ConsoleHandshakeTimeout = 10 * time.Second

	// ConsoleWriteTimeout bounds a single websocket write.
	ConsoleWriteTimeout = 5 * time.Second
)

// Caller-side retry of rate limited operations.
const (
	// RateLimitInitialInterval is the first backoff interval.
	RateLimitInitialInterval = 2 * time.Second

	// RateLimitMaxInterval caps a single backoff interval.
	RateLimitMaxInterval = 30 * time.Second
)

// DefaultConcurrencyLimit limits concurrent batch operations in the CLI.
const DefaultConcurrencyLimit = 3

// API key prefixes issued by the panel.
const (
	ApplicationKeyPrefix = "ptla_"
	ClientKeyPrefix      = "ptlc_"
)

// Output formats of the CLI.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Table column widths.
const (
	// MaxDescriptionWidth truncates long descriptions in tables.
	MaxDescriptionWidth = 48
)

// Environment variables.
const (
	EnvPrefix      = "PTERO"
	EnvURL         = "PTERO_URL"
	EnvToken       = "PTERO_TOKEN"
	EnvClientToken = "PTERO_CLIENT_TOKEN"
)
