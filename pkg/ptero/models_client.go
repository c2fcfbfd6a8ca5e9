package ptero

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Static errors for err113 compliance.
var (
	ErrTokenNoExpiry = errors.New("websocket token carries no expiry")
)

// SFTPDetails is the SFTP endpoint of a server.
type SFTPDetails struct {
	IP   string `json:"ip"   yaml:"ip"`
	Port int    `json:"port" yaml:"port"`
}

// ClientServer is a server as seen by the Client API.
type ClientServer struct {
	ServerOwner    bool          `json:"server_owner"    yaml:"server_owner"`
	Identifier     string        `json:"identifier"      yaml:"identifier"`
	InternalID     int           `json:"internal_id"     yaml:"internal_id"`
	UUID           string        `json:"uuid"            yaml:"uuid"`
	Name           string        `json:"name"            yaml:"name"`
	Node           string        `json:"node"            yaml:"node"`
	SFTPDetails    SFTPDetails   `json:"sftp_details"    yaml:"sftp_details"`
	Description    string        `json:"description"     yaml:"description"`
	Limits         Limits        `json:"limits"          yaml:"limits"`
	Invocation     string        `json:"invocation"      yaml:"invocation"`
	DockerImage    string        `json:"docker_image"    yaml:"docker_image"`
	EggFeatures    []string      `json:"egg_features"    yaml:"egg_features"`
	FeatureLimits  FeatureLimits `json:"feature_limits"  yaml:"feature_limits"`
	Status         *string       `json:"status"          yaml:"status"`
	IsSuspended    bool          `json:"is_suspended"    yaml:"is_suspended"`
	IsInstalling   bool          `json:"is_installing"   yaml:"is_installing"`
	IsTransferring bool          `json:"is_transferring" yaml:"is_transferring"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// Allocations returns the included allocations relation.
func (s *ClientServer) Allocations() ([]ClientAllocation, error) {
	return RelationList[ClientAllocation](s.Relationships, "allocations")
}

// Variables returns the included variables relation.
func (s *ClientServer) Variables() ([]EggVariable, error) {
	return RelationList[EggVariable](s.Relationships, "variables")
}

// ClientAllocation is an allocation as seen by the Client API.
type ClientAllocation struct {
	ID        int     `json:"id"         yaml:"id"`
	IP        string  `json:"ip"         yaml:"ip"`
	IPAlias   *string `json:"ip_alias"   yaml:"ip_alias"`
	Port      int     `json:"port"       yaml:"port"`
	Notes     *string `json:"notes"      yaml:"notes"`
	IsDefault bool    `json:"is_default" yaml:"is_default"`
}

// Server power states reported by Wings.
const (
	ServerStateOffline  = "offline"
	ServerStateStarting = "starting"
	ServerStateRunning  = "running"
	ServerStateStopping = "stopping"
)

// ServerResources is a resource usage snapshot.
type ServerResources struct {
	CurrentState string        `json:"current_state" yaml:"current_state"`
	IsSuspended  bool          `json:"is_suspended"  yaml:"is_suspended"`
	Resources    ResourceUsage `json:"resources"     yaml:"resources"`
}

// ResourceUsage is the live usage of a server.
type ResourceUsage struct {
	MemoryBytes    int64   `json:"memory_bytes"     yaml:"memory_bytes"`
	CPUAbsolute    float64 `json:"cpu_absolute"     yaml:"cpu_absolute"`
	DiskBytes      int64   `json:"disk_bytes"       yaml:"disk_bytes"`
	NetworkRxBytes int64   `json:"network_rx_bytes" yaml:"network_rx_bytes"`
	NetworkTxBytes int64   `json:"network_tx_bytes" yaml:"network_tx_bytes"`
	Uptime         int64   `json:"uptime"           yaml:"uptime"`
}

// PowerSignal is a server power action.
type PowerSignal string

// Power signals accepted by the panel.
const (
	PowerStart   PowerSignal = "start"
	PowerStop    PowerSignal = "stop"
	PowerRestart PowerSignal = "restart"
	PowerKill    PowerSignal = "kill"
)

// PowerSignals lists every power signal.
func PowerSignals() []PowerSignal {
	return []PowerSignal{PowerStart, PowerStop, PowerRestart, PowerKill}
}

// WebSocketCredentials are the console socket URL and its short-lived token.
type WebSocketCredentials struct {
	Token  string `json:"token"  yaml:"token"`
	Socket string `json:"socket" yaml:"socket"`
}

// ExpiresAt reads the exp claim of the token. The signature is not verified;
// only Wings holds the key.
func (c *WebSocketCredentials) ExpiresAt() (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(c.Token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing websocket token: %w", err)
	}

	expiry, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading websocket token expiry: %w", err)
	}

	if expiry == nil {
		return time.Time{}, ErrTokenNoExpiry
	}

	return expiry.Time, nil
}

// Account is the owner of a Client API key.
type Account struct {
	ID        int    `json:"id"         yaml:"id"`
	Admin     bool   `json:"admin"      yaml:"admin"`
	Username  string `json:"username"   yaml:"username"`
	Email     string `json:"email"      yaml:"email"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name"  yaml:"last_name"`
	Language  string `json:"language"   yaml:"language"`
}

// FullName joins the first and last name.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// APIKey is a Client API key. SecretToken is only set on creation.
type APIKey struct {
	Identifier  string   `json:"identifier"             yaml:"identifier"`
	Description string   `json:"description"            yaml:"description"`
	AllowedIPs  []string `json:"allowed_ips"            yaml:"allowed_ips"`
	LastUsedAt  *string  `json:"last_used_at"           yaml:"last_used_at"`
	CreatedAt   string   `json:"created_at"             yaml:"created_at"`
	SecretToken string   `json:"secret_token,omitempty" yaml:"secret_token,omitempty"`
}

// Token returns the full bearer token of a newly created key.
func (k *APIKey) Token() string {
	if k.SecretToken == "" {
		return ""
	}

	return k.Identifier + k.SecretToken
}

// TwoFactorSetup is the TOTP enrolment data of an account.
type TwoFactorSetup struct {
	ImageURLData string `json:"image_url_data" yaml:"image_url_data"`
	Secret       string `json:"secret"         yaml:"secret"`
}

// RecoveryTokens are returned when two-factor authentication is enabled.
type RecoveryTokens struct {
	Tokens []string `json:"tokens" yaml:"tokens"`
}

// DatabaseHost is the address of a database server.
type DatabaseHost struct {
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port"    yaml:"port"`
}

// Database is a server database.
type Database struct {
	ID              string       `json:"id"               yaml:"id"`
	Name            string       `json:"name"             yaml:"name"`
	Username        string       `json:"username"         yaml:"username"`
	Host            DatabaseHost `json:"host"             yaml:"host"`
	ConnectionsFrom string       `json:"connections_from" yaml:"connections_from"`
	MaxConnections  int          `json:"max_connections"  yaml:"max_connections"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// DatabasePassword is the password relation of a database.
type DatabasePassword struct {
	Password string `json:"password" yaml:"password"`
}

// Password returns the included password, or "" when it was not included.
func (d *Database) Password() (string, error) {
	password, err := Relation[DatabasePassword](d.Relationships, "password")
	if err != nil || password == nil {
		return "", err
	}

	return password.Password, nil
}

// FileObject is an entry of a server directory listing.
type FileObject struct {
	Name       string `json:"name"        yaml:"name"`
	Mode       string `json:"mode"        yaml:"mode"`
	ModeBits   string `json:"mode_bits"   yaml:"mode_bits"`
	Size       int64  `json:"size"        yaml:"size"`
	IsFile     bool   `json:"is_file"     yaml:"is_file"`
	IsSymlink  bool   `json:"is_symlink"  yaml:"is_symlink"`
	Mimetype   string `json:"mimetype"    yaml:"mimetype"`
	CreatedAt  string `json:"created_at"  yaml:"created_at"`
	ModifiedAt string `json:"modified_at" yaml:"modified_at"`
}

// ModifiedTime parses ModifiedAt.
func (f *FileObject) ModifiedTime() (time.Time, error) {
	return ParseTimestamp(f.ModifiedAt)
}

// Backup is a server backup.
type Backup struct {
	UUID         string   `json:"uuid"          yaml:"uuid"`
	Name         string   `json:"name"          yaml:"name"`
	IgnoredFiles []string `json:"ignored_files" yaml:"ignored_files"`
	Bytes        int64    `json:"bytes"         yaml:"bytes"`
	Checksum     *string  `json:"checksum"      yaml:"checksum"`
	IsSuccessful bool     `json:"is_successful" yaml:"is_successful"`
	IsLocked     bool     `json:"is_locked"     yaml:"is_locked"`
	CreatedAt    string   `json:"created_at"    yaml:"created_at"`
	CompletedAt  *string  `json:"completed_at"  yaml:"completed_at"`
}

// CreatedTime parses CreatedAt.
func (b *Backup) CreatedTime() (time.Time, error) {
	return ParseTimestamp(b.CreatedAt)
}

// CompletedTime parses CompletedAt; nil while the backup is running.
func (b *Backup) CompletedTime() (*time.Time, error) {
	return parseOptionalTimestamp(b.CompletedAt)
}

// SignedURL is a one-time download link.
type SignedURL struct {
	URL string `json:"url" yaml:"url"`
}
