package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openhrv/openhrv"
)

const (
	// DefaultEndpoint is the public HRV web service.
	DefaultEndpoint = "https://hrvwebapi-flask-76wlsdg7yq-lm.a.run.app"

	// DefaultPlainPath handles whole-recording calculations.
	DefaultPlainPath = "/calculate"

	// DefaultSegmentedPath handles windowed calculations.
	DefaultSegmentedPath = "/calculate_segments"
)

// Profile holds saved endpoint settings under a name.
type Profile struct {
	Name          string `yaml:"name"`
	Endpoint      string `yaml:"endpoint"`
	PlainPath     string `yaml:"plain_path,omitempty"`
	SegmentedPath string `yaml:"segmented_path,omitempty"`
	Default       bool   `yaml:"default,omitempty"`
}

// ConfigFile holds the full profiles file structure.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// GetProfile returns the profile by name.
// If name is empty, returns the default profile.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		return c.GetDefaultProfile()
	}

	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefaultProfile returns the default profile.
// If no profile is marked as default, returns the first profile.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}

	return &c.Profiles[0], nil
}

// AddProfile adds a new profile. Returns ErrProfileExists if a profile
// with the same name already exists.
func (c *ConfigFile) AddProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces an existing profile with the same name.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
}

// RemoveProfile removes a profile by name.
func (c *ConfigFile) RemoveProfile(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// SetDefault marks name as the default profile and clears the flag elsewhere.
func (c *ConfigFile) SetDefault(name string) error {
	found := false
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles[i].Default = true
			found = true
		} else {
			c.Profiles[i].Default = false
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

// DefaultName returns the name GetDefaultProfile would pick, or "" when empty.
func (c *ConfigFile) DefaultName() string {
	p, err := c.GetDefaultProfile()
	if err != nil {
		return ""
	}
	return p.Name
}

// Save writes the profiles to path, creating the parent directory if needed.
func (c *ConfigFile) Save(path string) error {
	cleanPath := filepath.Clean(path)

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write profiles file: %w", err)
	}

	return nil
}

// LoadConfigFile loads the profiles file from path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse profiles file: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns the default profiles path (~/.openhrv/profiles.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".openhrv", "profiles.yaml")
}

// Config holds resolved settings for a single HRV service.
// A zero Timeout means requests never time out.
type Config struct {
	Endpoint      string
	PlainPath     string
	SegmentedPath string
	Timeout       time.Duration
}

// WithDefaults returns a copy of the config with empty fields defaulted.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.PlainPath == "" {
		cfg.PlainPath = DefaultPlainPath
	}
	if cfg.SegmentedPath == "" {
		cfg.SegmentedPath = DefaultSegmentedPath
	}
	return &cfg
}

// Validate checks that the endpoint is usable. Call it on a defaulted config.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint)
	}
	if !strings.HasPrefix(c.PlainPath, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, c.PlainPath)
	}
	if !strings.HasPrefix(c.SegmentedPath, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, c.SegmentedPath)
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// URL returns the full request URL for mode.
func (c *Config) URL(mode openhrv.Mode) string {
	path := c.PlainPath
	if mode == openhrv.ModeSegmented {
		path = c.SegmentedPath
	}
	return strings.TrimSuffix(c.Endpoint, "/") + path
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint:      p.Endpoint,
		PlainPath:     p.PlainPath,
		SegmentedPath: p.SegmentedPath,
	}
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Empty values in later configs do not override values set earlier.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.PlainPath != "" {
			result.PlainPath = cfg.PlainPath
		}
		if cfg.SegmentedPath != "" {
			result.SegmentedPath = cfg.SegmentedPath
		}
		if cfg.Timeout != 0 {
			result.Timeout = cfg.Timeout
		}
	}
	return result
}
