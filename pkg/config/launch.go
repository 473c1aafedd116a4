package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/tangent/pkg/platform"
)

// DefaultListenAddr is the address the serve command binds by default.
const DefaultListenAddr = "127.0.0.1:7878"

// LaunchConfig holds process start-up options. It is read from a YAML file
// and then overridden by command-line flags.
type LaunchConfig struct {
	// Identifier names the application data subdirectory.
	Identifier string `yaml:"identifier" json:"identifier"`

	// AppDataDir overrides the platform application data directory.
	AppDataDir string `yaml:"app_data_dir" json:"app_data_dir"`

	// DocumentsDir overrides the platform documents directory.
	DocumentsDir string `yaml:"documents_dir" json:"documents_dir"`

	// SettingsPath overrides <app-data-dir>/settings.json.
	SettingsPath string `yaml:"settings_path" json:"settings_path"`

	// Listen is the host:port for the serve command.
	Listen string `yaml:"listen" json:"listen"`

	// AllowedOrigins lists the browser origins accepted on the WebSocket.
	// Empty means same-origin only.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// WatchRecentFiles enables recent_files_changed events in serve mode.
	WatchRecentFiles bool `yaml:"watch_recent_files" json:"watch_recent_files"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig configures the logging package.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Dir    string `yaml:"dir" json:"dir"`
}

// DefaultLaunchConfig returns the configuration used when no file is given.
func DefaultLaunchConfig() *LaunchConfig {
	return &LaunchConfig{
		Identifier:       platform.DefaultIdentifier,
		Listen:           DefaultListenAddr,
		WatchRecentFiles: true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadLaunchConfig reads a YAML file on top of DefaultLaunchConfig.
// An empty path returns the defaults.
func LoadLaunchConfig(path string) (*LaunchConfig, error) {
	cfg := DefaultLaunchConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the launch configuration.
func (c *LaunchConfig) Validate() error {
	if strings.TrimSpace(c.Identifier) == "" {
		return fmt.Errorf("identifier is required")
	}
	if strings.ContainsAny(c.Identifier, `/\`) {
		return fmt.Errorf("identifier must not contain path separators: %s", c.Identifier)
	}

	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid logging format: %s (must be 'console' or 'json')", c.Logging.Format)
	}

	return nil
}

// Resolver returns a platform resolver honouring the directory overrides.
func (c *LaunchConfig) Resolver() *platform.Resolver {
	r := platform.NewResolver(c.Identifier)
	r.AppDataOverride = c.AppDataDir
	r.DocumentsOverride = c.DocumentsDir
	return r
}
