package ptero

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// Static errors for err113 compliance.
var (
	ErrInvalidServerIdentifier = errors.New("server identifier must be a UUID or an 8 character short identifier")
	ErrEmptyTimestamp          = errors.New("timestamp is empty")
)

var shortIdentifierPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// ValidateServerIdentifier accepts a full server UUID or its 8 character
// short identifier.
func ValidateServerIdentifier(identifier string) error {
	if shortIdentifierPattern.MatchString(identifier) {
		return nil
	}

	if _, err := uuid.Parse(identifier); err == nil && len(identifier) == 36 {
		return nil
	}

	return fmt.Errorf("%w: %q", ErrInvalidServerIdentifier, identifier)
}

// ShortIdentifier returns the short identifier of a server UUID.
func ShortIdentifier(serverUUID string) string {
	parsed, err := uuid.Parse(serverUUID)
	if err != nil {
		return serverUUID
	}

	return parsed.String()[:8]
}

// ParseTimestamp parses the timestamp formats emitted by the panel
// (RFC 3339 with or without offset, and "2006-01-02 15:04:05"). Values
// without an offset are UTC.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrEmptyTimestamp
	}

	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
	}

	return parsed, nil
}

func parseOptionalTimestamp(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil //nolint:nilnil // absent timestamp
	}

	parsed, err := ParseTimestamp(*value)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

const bearerPrefix = "bearer "

// StripBearer trims token and removes any number of leading "Bearer "
// prefixes, case-insensitively.
func StripBearer(token string) string {
	token = strings.TrimSpace(token)

	for len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}

	return token
}

// NormalizeBearer returns the Authorization header value for token. Any
// number of leading "Bearer " prefixes is collapsed to exactly one.
func NormalizeBearer(token string) string {
	return "Bearer " + StripBearer(token)
}
