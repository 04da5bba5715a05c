package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "sextant.json"

	// DefaultPort is the default host port.
	DefaultPort = 4200

	// DefaultHost is the default bind host.
	DefaultHost = "localhost"

	// DefaultRoutesFile is the default route file, relative to the config.
	DefaultRoutesFile = "routes.yaml"
)

// Config represents the complete sextant.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Host contains the control-plane server configuration.
	Host HostConfig `json:"host,omitempty"`

	// Routes contains the route source configuration.
	Routes RoutesConfig `json:"routes,omitempty"`

	// Journal contains the navigation journal configuration.
	Journal JournalConfig `json:"journal,omitempty"`

	// Metrics contains the Prometheus metrics configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Log contains the logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// HostConfig contains control-plane server settings.
type HostConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// RoutesConfig selects where the route configuration is loaded from. File
// and S3 are mutually exclusive; File wins when both are empty after
// defaulting.
type RoutesConfig struct {
	// File is the path to the route file, relative to the config directory.
	File string `json:"file,omitempty"`

	// S3 configures loading route files from an S3 bucket instead.
	S3 *S3Config `json:"s3,omitempty"`
}

// S3Config identifies an S3 location holding route files.
type S3Config struct {
	// Bucket is the bucket name.
	Bucket string `json:"bucket"`

	// Prefix is prepended to every route file key.
	Prefix string `json:"prefix,omitempty"`

	// Key is the key of the main route document, under Prefix.
	Key string `json:"key,omitempty"`

	// Region overrides the SDK's default region resolution.
	Region string `json:"region,omitempty"`
}

// JournalConfig contains navigation journal settings.
type JournalConfig struct {
	// Enabled turns the journal on.
	Enabled bool `json:"enabled,omitempty"`

	// Path is the journal database file, relative to the config directory.
	Path string `json:"path,omitempty"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled turns navigation metrics on.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is the log output format: text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Host: HostConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Routes: RoutesConfig{
			File: DefaultRoutesFile,
		},
		Journal: JournalConfig{
			Path: "sextant-journal.db",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "sextant",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for sextant.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", ConfigFileName, filepath.Dir(path))
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string { return c.configPath }

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Host.Host == "" {
		c.Host.Host = DefaultHost
	}
	if c.Host.Port == 0 {
		c.Host.Port = DefaultPort
	}
	if c.Routes.File == "" && c.Routes.S3 == nil {
		c.Routes.File = DefaultRoutesFile
	}
	if c.Routes.S3 != nil && c.Routes.S3.Key == "" {
		c.Routes.S3.Key = DefaultRoutesFile
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "sextant-journal.db"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "sextant"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Host.Port < 0 || c.Host.Port > 65535 {
		return fmt.Errorf("host port %d out of range", c.Host.Port)
	}
	if c.Routes.File != "" && c.Routes.S3 != nil {
		return fmt.Errorf("routes.file and routes.s3 are mutually exclusive")
	}
	if c.Routes.S3 != nil && c.Routes.S3.Bucket == "" {
		return fmt.Errorf("routes.s3 requires a bucket")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// HostAddress returns the listen address for the control-plane server.
func (c *Config) HostAddress() string {
	return fmt.Sprintf("%s:%d", c.Host.Host, c.Host.Port)
}

// RoutesPath returns the absolute path to the route file.
func (c *Config) RoutesPath() string {
	if filepath.IsAbs(c.Routes.File) {
		return c.Routes.File
	}
	return filepath.Join(c.Dir(), c.Routes.File)
}

// JournalPath returns the absolute path to the journal database.
func (c *Config) JournalPath() string {
	if filepath.IsAbs(c.Journal.Path) {
		return c.Journal.Path
	}
	return filepath.Join(c.Dir(), c.Journal.Path)
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch c.Log.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
}

// NewLogger builds a logger from the logging configuration.
func (c *Config) NewLogger(w *os.File) *slog.Logger {
	level, err := c.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing sextant.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory,
// walking up to the project root.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
