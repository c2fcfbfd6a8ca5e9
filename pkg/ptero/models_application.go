package ptero

import (
	"time"
)

// Limits are the resource limits of a server.
type Limits struct {
	Memory      int64   `json:"memory"                 yaml:"memory"`
	Swap        int64   `json:"swap"                   yaml:"swap"`
	Disk        int64   `json:"disk"                   yaml:"disk"`
	IO          int64   `json:"io"                     yaml:"io"`
	CPU         int64   `json:"cpu"                    yaml:"cpu"`
	Threads     *string `json:"threads"                yaml:"threads"`
	OOMDisabled *bool   `json:"oom_disabled,omitempty" yaml:"oom_disabled,omitempty"`
}

// FeatureLimits cap the databases, allocations and backups of a server.
type FeatureLimits struct {
	Databases   int `json:"databases"   yaml:"databases"`
	Allocations int `json:"allocations" yaml:"allocations"`
	Backups     int `json:"backups"     yaml:"backups"`
}

// User is a panel account as seen by the Application API.
type User struct {
	ID         int     `json:"id"          yaml:"id"`
	ExternalID *string `json:"external_id" yaml:"external_id"`
	UUID       string  `json:"uuid"        yaml:"uuid"`
	Username   string  `json:"username"    yaml:"username"`
	Email      string  `json:"email"       yaml:"email"`
	FirstName  string  `json:"first_name"  yaml:"first_name"`
	LastName   string  `json:"last_name"   yaml:"last_name"`
	Language   string  `json:"language"    yaml:"language"`
	RootAdmin  bool    `json:"root_admin"  yaml:"root_admin"`
	TwoFactor  bool    `json:"2fa"         yaml:"2fa"`
	CreatedAt  string  `json:"created_at"  yaml:"created_at"`
	UpdatedAt  *string `json:"updated_at"  yaml:"updated_at"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// CreatedTime parses CreatedAt.
func (u *User) CreatedTime() (time.Time, error) {
	return ParseTimestamp(u.CreatedAt)
}

// UpdatedTime parses UpdatedAt; nil when the user was never updated.
func (u *User) UpdatedTime() (*time.Time, error) {
	return parseOptionalTimestamp(u.UpdatedAt)
}

// Servers returns the included servers relation.
func (u *User) Servers() ([]Server, error) {
	return RelationList[Server](u.Relationships, "servers")
}

// SubUser grants a user access to a server they do not own.
type SubUser struct {
	ID          int      `json:"id"          yaml:"id"`
	UserID      int      `json:"user_id"     yaml:"user_id"`
	ServerID    int      `json:"server_id"   yaml:"server_id"`
	Permissions []string `json:"permissions" yaml:"permissions"`
	CreatedAt   string   `json:"created_at"  yaml:"created_at"`
	UpdatedAt   *string  `json:"updated_at"  yaml:"updated_at"`
}

// Container is the runtime configuration of a server.
type Container struct {
	StartupCommand string         `json:"startup_command"       yaml:"startup_command"`
	Image          string         `json:"image"                 yaml:"image"`
	Installed      int            `json:"installed"             yaml:"installed"`
	Environment    map[string]any `json:"environment,omitempty" yaml:"environment,omitempty"`
}

// Server status values. A nil status means the server is ready.
const (
	ServerStatusInstalling      = "installing"
	ServerStatusInstallFailed   = "install_failed"
	ServerStatusSuspended       = "suspended"
	ServerStatusRestoringBackup = "restoring_backup"
)

// Server is a game server as seen by the Application API.
type Server struct {
	ID            int           `json:"id"             yaml:"id"`
	ExternalID    *string       `json:"external_id"    yaml:"external_id"`
	UUID          string        `json:"uuid"           yaml:"uuid"`
	Identifier    string        `json:"identifier"     yaml:"identifier"`
	Name          string        `json:"name"           yaml:"name"`
	Description   string        `json:"description"    yaml:"description"`
	Status        *string       `json:"status"         yaml:"status"`
	Suspended     bool          `json:"suspended"      yaml:"suspended"`
	Limits        Limits        `json:"limits"         yaml:"limits"`
	FeatureLimits FeatureLimits `json:"feature_limits" yaml:"feature_limits"`
	User          int           `json:"user"           yaml:"user"`
	Node          int           `json:"node"           yaml:"node"`
	Allocation    int           `json:"allocation"     yaml:"allocation"`
	Nest          int           `json:"nest"           yaml:"nest"`
	Egg           int           `json:"egg"            yaml:"egg"`
	Container     Container     `json:"container"      yaml:"container"`
	CreatedAt     string        `json:"created_at"     yaml:"created_at"`
	UpdatedAt     *string       `json:"updated_at"     yaml:"updated_at"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// CreatedTime parses CreatedAt.
func (s *Server) CreatedTime() (time.Time, error) {
	return ParseTimestamp(s.CreatedAt)
}

// UpdatedTime parses UpdatedAt; nil when the server was never updated.
func (s *Server) UpdatedTime() (*time.Time, error) {
	return parseOptionalTimestamp(s.UpdatedAt)
}

// StatusString returns the status or "ready" when none is set.
func (s *Server) StatusString() string {
	if s.Status == nil || *s.Status == "" {
		return "ready"
	}

	return *s.Status
}

// Owner returns the included user relation.
func (s *Server) Owner() (*User, error) {
	return Relation[User](s.Relationships, "user")
}

// Allocations returns the included allocations relation.
func (s *Server) Allocations() ([]Allocation, error) {
	return RelationList[Allocation](s.Relationships, "allocations")
}

// Subusers returns the included subusers relation.
func (s *Server) Subusers() ([]SubUser, error) {
	return RelationList[SubUser](s.Relationships, "subusers")
}

// NestRelation returns the included nest relation.
func (s *Server) NestRelation() (*Nest, error) {
	return Relation[Nest](s.Relationships, "nest")
}

// EggRelation returns the included egg relation.
func (s *Server) EggRelation() (*Egg, error) {
	return Relation[Egg](s.Relationships, "egg")
}

// LocationRelation returns the included location relation.
func (s *Server) LocationRelation() (*Location, error) {
	return Relation[Location](s.Relationships, "location")
}

// NodeRelation returns the included node relation.
func (s *Server) NodeRelation() (*Node, error) {
	return Relation[Node](s.Relationships, "node")
}

// Variables returns the included variables relation.
func (s *Server) Variables() ([]EggVariable, error) {
	return RelationList[EggVariable](s.Relationships, "variables")
}

// NodeResources is the memory and disk already allocated on a node.
type NodeResources struct {
	Memory int64 `json:"memory" yaml:"memory"`
	Disk   int64 `json:"disk"   yaml:"disk"`
}

// Node is a machine running the Wings daemon.
type Node struct {
	ID                 int           `json:"id"                  yaml:"id"`
	UUID               string        `json:"uuid"                yaml:"uuid"`
	Public             bool          `json:"public"              yaml:"public"`
	Name               string        `json:"name"                yaml:"name"`
	Description        string        `json:"description"         yaml:"description"`
	LocationID         int           `json:"location_id"         yaml:"location_id"`
	FQDN               string        `json:"fqdn"                yaml:"fqdn"`
	Scheme             string        `json:"scheme"              yaml:"scheme"`
	BehindProxy        bool          `json:"behind_proxy"        yaml:"behind_proxy"`
	MaintenanceMode    bool          `json:"maintenance_mode"    yaml:"maintenance_mode"`
	Memory             int64         `json:"memory"              yaml:"memory"`
	MemoryOverallocate int64         `json:"memory_overallocate" yaml:"memory_overallocate"`
	Disk               int64         `json:"disk"                yaml:"disk"`
	DiskOverallocate   int64         `json:"disk_overallocate"   yaml:"disk_overallocate"`
	UploadSize         int64         `json:"upload_size"         yaml:"upload_size"`
	DaemonListen       int           `json:"daemon_listen"       yaml:"daemon_listen"`
	DaemonSFTP         int           `json:"daemon_sftp"         yaml:"daemon_sftp"`
	DaemonBase         string        `json:"daemon_base"         yaml:"daemon_base"`
	AllocatedResources NodeResources `json:"allocated_resources" yaml:"allocated_resources"`
	CreatedAt          string        `json:"created_at"          yaml:"created_at"`
	UpdatedAt          *string       `json:"updated_at"          yaml:"updated_at"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// CreatedTime parses CreatedAt.
func (n *Node) CreatedTime() (time.Time, error) {
	return ParseTimestamp(n.CreatedAt)
}

// Allocations returns the included allocations relation.
func (n *Node) Allocations() ([]Allocation, error) {
	return RelationList[Allocation](n.Relationships, "allocations")
}

// Location returns the included location relation.
func (n *Node) Location() (*Location, error) {
	return Relation[Location](n.Relationships, "location")
}

// Servers returns the included servers relation.
func (n *Node) Servers() ([]Server, error) {
	return RelationList[Server](n.Relationships, "servers")
}

// NodeConfiguration is the Wings configuration document of a node.
type NodeConfiguration struct {
	Debug         bool                `json:"debug"          yaml:"debug"`
	UUID          string              `json:"uuid"           yaml:"uuid"`
	TokenID       string              `json:"token_id"       yaml:"token_id"`
	Token         string              `json:"token"          yaml:"token"`
	API           APIConfiguration    `json:"api"            yaml:"api"`
	System        SystemConfiguration `json:"system"         yaml:"system"`
	AllowedMounts []string            `json:"allowed_mounts" yaml:"allowed_mounts"`
	Remote        string              `json:"remote"         yaml:"remote"`
}

// APIConfiguration is the HTTP listener section of a node configuration.
type APIConfiguration struct {
	Host        string           `json:"host"         yaml:"host"`
	Port        int              `json:"port"         yaml:"port"`
	SSL         SSLConfiguration `json:"ssl"          yaml:"ssl"`
	UploadLimit int64            `json:"upload_limit" yaml:"upload_limit"`
}

// SSLConfiguration is the TLS section of a node configuration.
type SSLConfiguration struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Cert    string `json:"cert"    yaml:"cert"`
	Key     string `json:"key"     yaml:"key"`
}

// SystemConfiguration is the system section of a node configuration.
type SystemConfiguration struct {
	Data string            `json:"data" yaml:"data"`
	SFTP SFTPConfiguration `json:"sftp" yaml:"sftp"`
}

// SFTPConfiguration is the SFTP listener of a node configuration.
type SFTPConfiguration struct {
	BindPort int `json:"bind_port" yaml:"bind_port"`
}

// Allocation is an IP and port pair on a node.
type Allocation struct {
	ID       int     `json:"id"       yaml:"id"`
	IP       string  `json:"ip"       yaml:"ip"`
	Alias    *string `json:"alias"    yaml:"alias"`
	Port     int     `json:"port"     yaml:"port"`
	Notes    *string `json:"notes"    yaml:"notes"`
	Assigned bool    `json:"assigned" yaml:"assigned"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// Location groups nodes.
type Location struct {
	ID        int     `json:"id"         yaml:"id"`
	Short     string  `json:"short"      yaml:"short"`
	Long      string  `json:"long"       yaml:"long"`
	CreatedAt string  `json:"created_at" yaml:"created_at"`
	UpdatedAt *string `json:"updated_at" yaml:"updated_at"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// CreatedTime parses CreatedAt.
func (l *Location) CreatedTime() (time.Time, error) {
	return ParseTimestamp(l.CreatedAt)
}

// Nodes returns the included nodes relation.
func (l *Location) Nodes() ([]Node, error) {
	return RelationList[Node](l.Relationships, "nodes")
}

// Servers returns the included servers relation.
func (l *Location) Servers() ([]Server, error) {
	return RelationList[Server](l.Relationships, "servers")
}

// Nest groups eggs.
type Nest struct {
	ID          int     `json:"id"          yaml:"id"`
	UUID        string  `json:"uuid"        yaml:"uuid"`
	Author      string  `json:"author"      yaml:"author"`
	Name        string  `json:"name"        yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	CreatedAt   string  `json:"created_at"  yaml:"created_at"`
	UpdatedAt   *string `json:"updated_at"  yaml:"updated_at"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// CreatedTime parses CreatedAt.
func (n *Nest) CreatedTime() (time.Time, error) {
	return ParseTimestamp(n.CreatedAt)
}

// Eggs returns the included eggs relation.
func (n *Nest) Eggs() ([]Egg, error) {
	return RelationList[Egg](n.Relationships, "eggs")
}

// Egg is a server template.
type Egg struct {
	ID           int               `json:"id"            yaml:"id"`
	UUID         string            `json:"uuid"          yaml:"uuid"`
	Name         string            `json:"name"          yaml:"name"`
	Nest         int               `json:"nest"          yaml:"nest"`
	Author       string            `json:"author"        yaml:"author"`
	Description  string            `json:"description"   yaml:"description"`
	DockerImage  string            `json:"docker_image"  yaml:"docker_image"`
	DockerImages map[string]string `json:"docker_images" yaml:"docker_images"`
	Config       EggConfig         `json:"config"        yaml:"config"`
	Startup      string            `json:"startup"       yaml:"startup"`
	Script       EggScript         `json:"script"        yaml:"script"`
	CreatedAt    string            `json:"created_at"    yaml:"created_at"`
	UpdatedAt    *string           `json:"updated_at"    yaml:"updated_at"`

	Relationships map[string]any `json:"relationships,omitempty" yaml:"-"`
}

// CreatedTime parses CreatedAt.
func (e *Egg) CreatedTime() (time.Time, error) {
	return ParseTimestamp(e.CreatedAt)
}

// Variables returns the included variables relation.
func (e *Egg) Variables() ([]EggVariable, error) {
	return RelationList[EggVariable](e.Relationships, "variables")
}

// NestRelation returns the included nest relation.
func (e *Egg) NestRelation() (*Nest, error) {
	return Relation[Nest](e.Relationships, "nest")
}

// EggConfig is the process configuration of an egg.
type EggConfig struct {
	Files        map[string]any `json:"files"         yaml:"files"`
	Startup      map[string]any `json:"startup"       yaml:"startup"`
	Stop         string         `json:"stop"          yaml:"stop"`
	Logs         any            `json:"logs"          yaml:"logs"`
	FileDenylist []string       `json:"file_denylist" yaml:"file_denylist"`
	Extends      *int           `json:"extends"       yaml:"extends"`
}

// EggScript is the install script of an egg.
type EggScript struct {
	Privileged bool   `json:"privileged" yaml:"privileged"`
	Install    string `json:"install"    yaml:"install"`
	Entry      string `json:"entry"      yaml:"entry"`
	Container  string `json:"container"  yaml:"container"`
	Extends    *int   `json:"extends"    yaml:"extends"`
}

// EggVariable is a startup variable of an egg or server.
type EggVariable struct {
	ID           int    `json:"id"            yaml:"id"`
	EggID        int    `json:"egg_id"        yaml:"egg_id"`
	Name         string `json:"name"          yaml:"name"`
	Description  string `json:"description"   yaml:"description"`
	EnvVariable  string `json:"env_variable"  yaml:"env_variable"`
	DefaultValue string `json:"default_value" yaml:"default_value"`
	ServerValue  string `json:"server_value"  yaml:"server_value"`
	UserViewable bool   `json:"user_viewable" yaml:"user_viewable"`
	UserEditable bool   `json:"user_editable" yaml:"user_editable"`
	Rules        string `json:"rules"         yaml:"rules"`
}
