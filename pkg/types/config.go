// Package types defines the Store interface, the Item entity, notification
// events, and standard errors for the Freezer inventory system.
package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend    string       `json:"backend" yaml:"backend"`
	DataDir    string       `json:"data_dir" yaml:"data_dir"`
	Owner      string       `json:"owner" yaml:"owner"`
	OnDepleted string       `json:"on_depleted" yaml:"on_depleted"`
	Hosted     HostedConfig `json:"hosted" yaml:"hosted"`
}

// HostedConfig holds parameters for the hosted table-service backend.
// Token is the bearer credential issued by the identity provider; the
// store attaches it to every request but never refreshes it itself.
type HostedConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Token   string `json:"token" yaml:"token"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendHosted = "hosted"
)

// Depletion policies. Retain keeps a zero-quantity row alive until the
// user confirms deletion; Delete removes the row as soon as it hits zero.
const (
	OnDepletedRetain = "retain"
	OnDepletedDelete = "delete"
)

// DefaultOwner is the sentinel owner used by single-tenant deployments.
// Treating owner as always present keeps the controller uniform across
// single- and multi-tenant modes.
const DefaultOwner = "shared"

// Config validation errors.
var (
	ErrBackendEmpty      = errors.New("backend must not be empty")
	ErrBackendUnknown    = errors.New("unknown backend")
	ErrOwnerEmpty        = errors.New("owner must not be empty")
	ErrOnDepletedUnknown = errors.New("unknown on_depleted policy")
	ErrHostedBaseURL     = errors.New("hosted backend requires base_url")
	ErrHostedToken       = errors.New("hosted backend requires a token")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendHosted: true,
}

// knownPolicies lists the depletion policies that Validate accepts.
var knownPolicies = map[string]bool{
	OnDepletedRetain: true,
	OnDepletedDelete: true,
}

// Normalize fills in defaults for optional fields: owner defaults to
// DefaultOwner and on_depleted to retain.
func (c *Config) Normalize() {
	if c.Owner == "" {
		c.Owner = DefaultOwner
	}
	if c.OnDepleted == "" {
		c.OnDepleted = OnDepletedRetain
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Owner == "" {
		return ErrOwnerEmpty
	}
	if c.OnDepleted != "" && !knownPolicies[c.OnDepleted] {
		return ErrOnDepletedUnknown
	}
	if c.Backend == BackendHosted {
		if c.Hosted.BaseURL == "" {
			return ErrHostedBaseURL
		}
		if c.Hosted.Token == "" {
			return ErrHostedToken
		}
	}
	return nil
}
