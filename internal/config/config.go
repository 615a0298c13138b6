package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Rorical/GhostDeck/internal/modal"
)

const (
	DefaultProfile   = "default"
	DefaultHTTPURL   = "http://localhost:8000/graphql"
	DefaultWSURL     = "ws://localhost:8000/graphql"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	envPrefix = "GHOSTDECK"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is one backend the console can talk to.
type Profile struct {
	HTTPURL string `mapstructure:"http_url" json:"http_url"`
	WSURL   string `mapstructure:"ws_url" json:"ws_url"`
}

type Config struct {
	Profiles      map[string]Profile `mapstructure:"profiles"`
	ActiveProfile string             `mapstructure:"active_profile"`
	LogLevel      string             `mapstructure:"log_level"`
	LogFormat     string             `mapstructure:"log_format"`
	ModalGrace    time.Duration      `mapstructure:"modal_grace"`

	// Endpoint overrides from GHOSTDECK_HTTP_URL / GHOSTDECK_WS_URL.
	HTTPOverride string `mapstructure:"http_url"`
	WSOverride   string `mapstructure:"ws_url"`

	path           string
	currentProfile *Profile
}

func DefaultProfileValue() Profile {
	return Profile{HTTPURL: DefaultHTTPURL, WSURL: DefaultWSURL}
}

// LoadConfig reads the config file, creating it with a default profile on
// first run. Env vars prefixed GHOSTDECK_ override file values.
func LoadConfig() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := createDefaultConfig(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	cfg, err := load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}
	return cfg, nil
}

func load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetDefault("active_profile", DefaultProfile)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("modal_grace", modal.DefaultGrace)

	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	_ = v.BindEnv("http_url")
	_ = v.BindEnv("ws_url")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{path: configPath}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return cfg, nil
}

func createDefaultConfig(configPath string) error {
	cfg := &Config{
		Profiles:      map[string]Profile{DefaultProfile: DefaultProfileValue()},
		ActiveProfile: DefaultProfile,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		ModalGrace:    modal.DefaultGrace,
		path:          configPath,
	}
	return cfg.Save()
}

// Path is $GHOSTDECK_HOME/.ghostdeck/config.json, falling back to the
// user's home directory.
func Path() (string, error) {
	configDir := os.Getenv("GHOSTDECK_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}
	return filepath.Join(configDir, ".ghostdeck", "config.json"), nil
}

// Dir is the directory holding the config file and the console log.
func Dir() (string, error) {
	p, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// Save writes profiles and settings back to the config file. Env overrides
// are not persisted.
func (c *Config) Save() error {
	if c.path == "" {
		p, err := Path()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		c.path = p
	}

	profiles := make(map[string]any, len(c.Profiles))
	for name, p := range c.Profiles {
		profiles[name] = map[string]any{"http_url": p.HTTPURL, "ws_url": p.WSURL}
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("profiles", profiles)
	v.Set("active_profile", c.ActiveProfile)
	v.Set("log_level", c.LogLevel)
	v.Set("log_format", c.LogFormat)
	v.Set("modal_grace", c.ModalGrace.String())

	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Chmod(c.path, 0o600)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile by name.
		name := c.ProfileNames()[0]
		c.ActiveProfile = name
		profile = c.Profiles[name]
	}
	c.currentProfile = &profile
	return nil
}

// ProfileNames returns profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Profile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return p, nil
}

// Use makes name the active profile.
func (c *Config) Use(name string) error {
	p, err := c.Profile(name)
	if err != nil {
		return err
	}
	c.ActiveProfile = name
	c.currentProfile = &p
	return nil
}

// RemoveProfile deletes name. Removing the active profile activates another
// one, or recreates the default profile when none are left.
func (c *Config) RemoveProfile(name string) error {
	if _, err := c.Profile(name); err != nil {
		return err
	}
	delete(c.Profiles, name)
	if len(c.Profiles) == 0 {
		c.Profiles[DefaultProfile] = DefaultProfileValue()
	}
	if c.ActiveProfile == name {
		c.ActiveProfile = c.ProfileNames()[0]
	}
	return c.setCurrentProfile()
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.HTTPURL() != "" && c.WSURL() != ""
}

// HTTPURL is the unary endpoint of the active profile.
func (c *Config) HTTPURL() string {
	if c.HTTPOverride != "" {
		return c.HTTPOverride
	}
	if c.currentProfile == nil {
		return DefaultHTTPURL
	}
	return c.currentProfile.HTTPURL
}

// WSURL is the streaming endpoint of the active profile.
func (c *Config) WSURL() string {
	if c.WSOverride != "" {
		return c.WSOverride
	}
	if c.currentProfile == nil {
		return DefaultWSURL
	}
	return c.currentProfile.WSURL
}

// ValidateEndpoint checks that raw is an absolute URL using one of schemes.
func ValidateEndpoint(raw string, schemes ...string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme must be one of %s", strings.Join(schemes, ", "))
}

// StreamURLFor derives the WebSocket endpoint that pairs with an HTTP one.
func StreamURLFor(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	}
	return httpURL
}

// NormalizeProfileName lower-cases name; profile keys are case-insensitive
// in the config file.
func NormalizeProfileName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
