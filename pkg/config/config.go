// Package config loads the client configuration file: named profiles with an
// endpoint, credentials, and a default data source.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location relative to the user home
// directory.
const DefaultPath = ".config/insights/config.yaml"

// Profile is one named backend to talk to. Token and username/password are
// alternative credentials; token wins when both are set.
type Profile struct {
	Endpoint   string `yaml:"endpoint"`
	Token      string `yaml:"token,omitempty"`
	Username   string `yaml:"username,omitempty"`
	Password   string `yaml:"password,omitempty"`
	DataSource string `yaml:"data_source,omitempty"`
}

// Config is the full file: a default profile name plus the profile set.
type Config struct {
	DefaultProfile string             `yaml:"default_profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Load reads and validates the config at path. An empty path means
// DefaultPath under the user home directory.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		path = filepath.Join(home, DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every profile and the default-profile reference.
func (c *Config) Validate() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("config has no profiles")
	}
	for name, p := range c.Profiles {
		if err := p.validate(); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}
	if c.DefaultProfile != "" {
		if _, ok := c.Profiles[c.DefaultProfile]; !ok {
			return fmt.Errorf("default profile %q is not defined", c.DefaultProfile)
		}
	}
	return nil
}

func (p Profile) validate() error {
	if p.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.ParseRequestURI(p.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	if p.Password != "" && p.Username == "" {
		return fmt.Errorf("password set without username")
	}
	return nil
}

// Environment variables overriding the resolved profile.
const (
	EnvEndpoint   = "INSIGHTS_ENDPOINT"
	EnvToken      = "INSIGHTS_TOKEN"
	EnvUsername   = "INSIGHTS_USERNAME"
	EnvPassword   = "INSIGHTS_PASSWORD"
	EnvDataSource = "INSIGHTS_DATA_SOURCE"
)

// withEnvOverrides applies the INSIGHTS_* environment variables over p. A
// set variable replaces the field; unset variables leave the file value.
func (p Profile) withEnvOverrides() Profile {
	if v, ok := os.LookupEnv(EnvEndpoint); ok {
		p.Endpoint = v
	}
	if v, ok := os.LookupEnv(EnvToken); ok {
		p.Token = v
	}
	if v, ok := os.LookupEnv(EnvUsername); ok {
		p.Username = v
	}
	if v, ok := os.LookupEnv(EnvPassword); ok {
		p.Password = v
	}
	if v, ok := os.LookupEnv(EnvDataSource); ok {
		p.DataSource = v
	}
	return p
}

// Profile resolves a profile by name and applies environment overrides. An
// empty name falls back to the default profile, or the sole profile when
// exactly one is defined.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	if name == "" && len(c.Profiles) == 1 {
		for only := range c.Profiles {
			name = only
		}
	}
	if name == "" {
		return Profile{}, fmt.Errorf("no profile named and no default_profile set")
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	p = p.withEnvOverrides()
	if err := p.validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return p, nil
}
