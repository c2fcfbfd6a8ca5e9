package constants

import "errors"

// Configuration errors.
var (
	ErrNoPanelConfigured = errors.New("no panel configured, use 'ptero login' or set PTERO_URL")
	ErrNoTokenConfigured = errors.New("no API key configured, use 'ptero login' or set PTERO_TOKEN")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrEmptyToken        = errors.New("API key must not be empty")
	ErrUnknownKeyPrefix  = errors.New("API key must start with ptla_ or ptlc_")
	ErrNotATerminal      = errors.New("standard input is not a terminal, pass --token")
	ErrInvalidOutput     = errors.New("output must be one of table, json or yaml")
)

// Argument errors.
var (
	ErrInvalidID          = errors.New("ID must be a positive integer")
	ErrInvalidPowerSignal = errors.New("signal must be one of start, stop, restart or kill")
	ErrInvalidAccessType  = errors.New("type must be one of admin, admin-all or owner")
	ErrNoServersGiven     = errors.New("at least one server identifier is required")
	ErrConfirmDeletion    = errors.New("refusing to delete without --confirm")
	ErrInvalidEnvironment = errors.New("environment must be KEY=VALUE")
	ErrInvalidFilter      = errors.New("filter must be KEY=VALUE")
)
