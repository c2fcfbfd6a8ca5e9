package ptero

import (
	"errors"
	"net"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Static errors for err113 compliance.
var (
	ErrAllocationOrDeploy   = errors.New("either allocation or deploy must be set")
	ErrPasswordUnchanged    = errors.New("new password must differ from the current password")
	ErrPasswordConfirmation = errors.New("password confirmation does not match")
	ErrNotIPOrCIDR          = errors.New("must be an IP address or CIDR range")
	ErrNothingToUpdate      = errors.New("at least one of email or password must be set")
)

var (
	portPattern         = regexp.MustCompile(`^\d{1,5}(-\d{1,5})?$`)
	databaseNamePattern = regexp.MustCompile(`^[\w\-]{1,48}$`)
	totpCodePattern     = regexp.MustCompile(`^\d{6}$`)
	languagePattern     = regexp.MustCompile(`^[a-z]{2}$`)
)

// UserRequest creates or updates a user.
type UserRequest struct {
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Email      string `json:"email"                 yaml:"email"`
	Username   string `json:"username"              yaml:"username"`
	FirstName  string `json:"first_name"            yaml:"first_name"`
	LastName   string `json:"last_name"             yaml:"last_name"`
	Password   string `json:"password,omitempty"    yaml:"password,omitempty"`
	Language   string `json:"language,omitempty"    yaml:"language,omitempty"`
	RootAdmin  bool   `json:"root_admin"            yaml:"root_admin"`
}

// Validate checks the request locally.
func (r UserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ExternalID, validation.Length(0, 191)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat, validation.Length(1, 191)),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 191)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 191)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 191)),
		validation.Field(&r.Password, validation.Length(8, 0)),
		validation.Field(&r.Language, validation.Match(languagePattern)),
	)
}

// AllocationSpec picks the allocations of a new server.
type AllocationSpec struct {
	Default    int   `json:"default"              yaml:"default"`
	Additional []int `json:"additional,omitempty" yaml:"additional,omitempty"`
}

// DeploySpec lets the panel pick a node and allocation for a new server.
type DeploySpec struct {
	Locations   []int    `json:"locations"    yaml:"locations"`
	DedicatedIP bool     `json:"dedicated_ip" yaml:"dedicated_ip"`
	PortRange   []string `json:"port_range"   yaml:"port_range"`
}

// CreateServerRequest creates a server.
type CreateServerRequest struct {
	ExternalID        string            `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Name              string            `json:"name"                  yaml:"name"`
	Description       string            `json:"description,omitempty" yaml:"description,omitempty"`
	User              int               `json:"user"                  yaml:"user"`
	Egg               int               `json:"egg"                   yaml:"egg"`
	DockerImage       string            `json:"docker_image"          yaml:"docker_image"`
	Startup           string            `json:"startup"               yaml:"startup"`
	Environment       map[string]string `json:"environment"           yaml:"environment"`
	Limits            Limits            `json:"limits"                yaml:"limits"`
	FeatureLimits     FeatureLimits     `json:"feature_limits"        yaml:"feature_limits"`
	Allocation        *AllocationSpec   `json:"allocation,omitempty"  yaml:"allocation,omitempty"`
	Deploy            *DeploySpec       `json:"deploy,omitempty"      yaml:"deploy,omitempty"`
	StartOnCompletion bool              `json:"start_on_completion"   yaml:"start_on_completion"`
	SkipScripts       bool              `json:"skip_scripts"          yaml:"skip_scripts"`
}

// Validate checks the request locally.
func (r CreateServerRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.ExternalID, validation.Length(0, 191)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 191)),
		validation.Field(&r.User, validation.Required, validation.Min(1)),
		validation.Field(&r.Egg, validation.Required, validation.Min(1)),
		validation.Field(&r.DockerImage, validation.Required, validation.Length(1, 191)),
		validation.Field(&r.Startup, validation.Required),
		validation.Field(&r.Allocation, validation.When(r.Deploy == nil, validation.Required.Error(ErrAllocationOrDeploy.Error()))),
		validation.Field(&r.Deploy, validation.When(r.Deploy != nil, validation.By(validateDeploy))),
	)
	if err != nil {
		return err
	}

	return validateLimits(r.Limits)
}

// Validate checks the allocation choice.
func (a AllocationSpec) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Default, validation.Required, validation.Min(1)),
		validation.Field(&a.Additional, validation.Each(validation.Min(1))),
	)
}

func validateDeploy(value any) error {
	deploy, _ := value.(*DeploySpec)
	if deploy == nil {
		return nil
	}

	return validation.ValidateStruct(deploy,
		validation.Field(&deploy.Locations, validation.Required, validation.Each(validation.Min(1))),
		validation.Field(&deploy.PortRange, validation.Each(validation.Match(portPattern))),
	)
}

func validateLimits(limits Limits) error {
	return validation.Errors{
		"limits": validation.ValidateStruct(&limits,
			validation.Field(&limits.Memory, validation.Min(int64(0))),
			validation.Field(&limits.Swap, validation.Min(int64(-1))),
			validation.Field(&limits.Disk, validation.Min(int64(0))),
			validation.Field(&limits.IO, validation.When(limits.IO != 0, validation.Min(int64(10)), validation.Max(int64(1000)))),
			validation.Field(&limits.CPU, validation.Min(int64(0))),
		),
	}.Filter()
}

// UpdateServerDetailsRequest updates the name, owner and description of a
// server. Empty fields keep their current value.
type UpdateServerDetailsRequest struct {
	Name        string  `json:"name"        yaml:"name"`
	User        int     `json:"user"        yaml:"user"`
	ExternalID  *string `json:"external_id" yaml:"external_id"`
	Description *string `json:"description" yaml:"description"`
}

// Validate checks the request locally.
func (r UpdateServerDetailsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 191)),
		validation.Field(&r.User, validation.Min(0)),
	)
}

// UpdateServerBuildRequest replaces the build configuration of a server.
type UpdateServerBuildRequest struct {
	Allocation        int           `json:"allocation"                   yaml:"allocation"`
	Memory            int64         `json:"memory"                       yaml:"memory"`
	Swap              int64         `json:"swap"                         yaml:"swap"`
	Disk              int64         `json:"disk"                         yaml:"disk"`
	IO                int64         `json:"io"                           yaml:"io"`
	CPU               int64         `json:"cpu"                          yaml:"cpu"`
	Threads           *string       `json:"threads"                      yaml:"threads"`
	OOMDisabled       *bool         `json:"oom_disabled,omitempty"       yaml:"oom_disabled,omitempty"`
	FeatureLimits     FeatureLimits `json:"feature_limits"               yaml:"feature_limits"`
	AddAllocations    []int         `json:"add_allocations,omitempty"    yaml:"add_allocations,omitempty"`
	RemoveAllocations []int         `json:"remove_allocations,omitempty" yaml:"remove_allocations,omitempty"`
}

// Validate checks the request locally.
func (r UpdateServerBuildRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Allocation, validation.Required, validation.Min(1)),
		validation.Field(&r.AddAllocations, validation.Each(validation.Min(1))),
		validation.Field(&r.RemoveAllocations, validation.Each(validation.Min(1))),
	)
	if err != nil {
		return err
	}

	return validateLimits(Limits{Memory: r.Memory, Swap: r.Swap, Disk: r.Disk, IO: r.IO, CPU: r.CPU})
}

// UpdateServerStartupRequest changes the startup command, egg and image of a
// server. Empty fields keep their current value.
type UpdateServerStartupRequest struct {
	Startup     string            `json:"startup"      yaml:"startup"`
	Environment map[string]string `json:"environment"  yaml:"environment"`
	Egg         int               `json:"egg"          yaml:"egg"`
	Image       string            `json:"image"        yaml:"image"`
	SkipScripts bool              `json:"skip_scripts" yaml:"skip_scripts"`
}

// Validate checks the request locally.
func (r UpdateServerStartupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Egg, validation.Min(0)),
		validation.Field(&r.Image, validation.Length(0, 191)),
	)
}

// NodeRequest creates or updates a node.
type NodeRequest struct {
	Name               string `json:"name"                  yaml:"name"`
	Description        string `json:"description"           yaml:"description"`
	LocationID         int    `json:"location_id"           yaml:"location_id"`
	Public             bool   `json:"public"                yaml:"public"`
	FQDN               string `json:"fqdn"                  yaml:"fqdn"`
	Scheme             string `json:"scheme"                yaml:"scheme"`
	BehindProxy        bool   `json:"behind_proxy"          yaml:"behind_proxy"`
	MaintenanceMode    bool   `json:"maintenance_mode"      yaml:"maintenance_mode"`
	Memory             int64  `json:"memory"                yaml:"memory"`
	MemoryOverallocate int64  `json:"memory_overallocate"   yaml:"memory_overallocate"`
	Disk               int64  `json:"disk"                  yaml:"disk"`
	DiskOverallocate   int64  `json:"disk_overallocate"     yaml:"disk_overallocate"`
	UploadSize         int64  `json:"upload_size"           yaml:"upload_size"`
	DaemonSFTP         int    `json:"daemon_sftp"           yaml:"daemon_sftp"`
	DaemonListen       int    `json:"daemon_listen"         yaml:"daemon_listen"`
	DaemonBase         string `json:"daemon_base,omitempty" yaml:"daemon_base,omitempty"`
}

// Validate checks the request locally.
func (r NodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LocationID, validation.Required, validation.Min(1)),
		validation.Field(&r.FQDN, validation.Required, is.Host),
		validation.Field(&r.Scheme, validation.Required, validation.In("http", "https")),
		validation.Field(&r.Memory, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.MemoryOverallocate, validation.Min(int64(-1))),
		validation.Field(&r.Disk, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.DiskOverallocate, validation.Min(int64(-1))),
		validation.Field(&r.UploadSize, validation.Min(int64(0)), validation.Max(int64(1024))),
		validation.Field(&r.DaemonSFTP, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&r.DaemonListen, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CreateAllocationsRequest adds ports on one IP of a node. Ports are single
// ports ("25565") or ranges ("25565-25570").
type CreateAllocationsRequest struct {
	IP    string   `json:"ip"              yaml:"ip"`
	Alias string   `json:"alias,omitempty" yaml:"alias,omitempty"`
	Ports []string `json:"ports"           yaml:"ports"`
}

// Validate checks the request locally.
func (r CreateAllocationsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IP, validation.Required, is.IP),
		validation.Field(&r.Alias, validation.Length(0, 191)),
		validation.Field(&r.Ports, validation.Required, validation.Each(validation.Match(portPattern))),
	)
}

// LocationRequest creates or updates a location.
type LocationRequest struct {
	Short string `json:"short"          yaml:"short"`
	Long  string `json:"long,omitempty" yaml:"long,omitempty"`
}

// Validate checks the request locally.
func (r LocationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Short, validation.Required, validation.Length(1, 60)),
		validation.Field(&r.Long, validation.Length(0, 191)),
	)
}

// ClientServerType filters the Client API server list.
type ClientServerType string

// Access types of the Client API server list.
const (
	ClientServersOwned    ClientServerType = ""
	ClientServersAdmin    ClientServerType = "admin"
	ClientServersAdminAll ClientServerType = "admin-all"
	ClientServersOwner    ClientServerType = "owner"
)

// SendCommandRequest sends a console command.
type SendCommandRequest struct {
	Command string `json:"command" yaml:"command"`
}

// Validate checks the request locally.
func (r SendCommandRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Command, validation.Required),
	)
}

// PowerRequest changes the power state of a server.
type PowerRequest struct {
	Signal PowerSignal `json:"signal" yaml:"signal"`
}

// Validate checks the request locally.
func (r PowerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Signal, validation.Required, validation.In(PowerStart, PowerStop, PowerRestart, PowerKill)),
	)
}

// CreateAPIKeyRequest creates a Client API key.
type CreateAPIKeyRequest struct {
	Description string   `json:"description" yaml:"description"`
	AllowedIPs  []string `json:"allowed_ips" yaml:"allowed_ips"`
}

// Validate checks the request locally.
func (r CreateAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.AllowedIPs, validation.Length(0, 50), validation.Each(validation.By(ipOrCIDR))),
	)
}

func ipOrCIDR(value any) error {
	address, _ := value.(string)
	if net.ParseIP(address) != nil {
		return nil
	}

	if _, _, err := net.ParseCIDR(address); err == nil {
		return nil
	}

	return ErrNotIPOrCIDR
}

// TwoFactorRequest enables two-factor authentication with a TOTP code, or
// disables it with the account password. Exactly one mode applies: a
// non-empty Code enables.
type TwoFactorRequest struct {
	Code     string `json:"code,omitempty"     yaml:"code,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Enables reports whether the request enables two-factor authentication.
func (r TwoFactorRequest) Enables() bool {
	return r.Code != ""
}

// Validate checks the request locally.
func (r TwoFactorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.When(r.Code != "", validation.Match(totpCodePattern))),
		validation.Field(&r.Password, validation.When(r.Code == "", validation.Required)),
	)
}

// UpdateEmailRequest changes the account email.
type UpdateEmailRequest struct {
	Email    string `json:"email"    yaml:"email"`
	Password string `json:"password" yaml:"password"`
}

// Validate checks the request locally.
func (r UpdateEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdatePasswordRequest changes the account password.
type UpdatePasswordRequest struct {
	CurrentPassword      string `json:"current_password"      yaml:"current_password"`
	Password             string `json:"password"              yaml:"password"`
	PasswordConfirmation string `json:"password_confirmation" yaml:"password_confirmation"`
}

// Validate checks the request locally. An empty confirmation is filled from
// Password by the client before validation.
func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 0), validation.By(func(any) error {
			if r.Password == r.CurrentPassword {
				return ErrPasswordUnchanged
			}

			return nil
		})),
		validation.Field(&r.PasswordConfirmation, validation.Required, validation.By(func(any) error {
			if r.PasswordConfirmation != r.Password {
				return ErrPasswordConfirmation
			}

			return nil
		})),
	)
}

// UpdateAccountRequest changes the email, the password, or both.
type UpdateAccountRequest struct {
	Email    *UpdateEmailRequest
	Password *UpdatePasswordRequest
}

// Validate checks the request locally.
func (r UpdateAccountRequest) Validate() error {
	if r.Email == nil && r.Password == nil {
		return ErrNothingToUpdate
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.Email),
		validation.Field(&r.Password),
	)
}

// CreateDatabaseRequest creates a server database.
type CreateDatabaseRequest struct {
	Database string `json:"database" yaml:"database"`
	Remote   string `json:"remote"   yaml:"remote"`
}

// Validate checks the request locally.
func (r CreateDatabaseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Database, validation.Required, validation.Match(databaseNamePattern)),
		validation.Field(&r.Remote, validation.Required, validation.Length(1, 255)),
	)
}

// CreateBackupRequest starts a backup. Ignored holds newline separated
// patterns.
type CreateBackupRequest struct {
	Name     string `json:"name,omitempty"    yaml:"name,omitempty"`
	Ignored  string `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	IsLocked bool   `json:"is_locked"         yaml:"is_locked"`
}

// Validate checks the request locally.
func (r CreateBackupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 191)),
	)
}
