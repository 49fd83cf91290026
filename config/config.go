// ABOUTME: Application configuration stored at XDG paths with .env and environment overrides
// ABOUTME: Selects the record backend, remote credentials, export destination, and log level
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Backend names a record.Client implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendBadger Backend = "badger"
	BackendMemory Backend = "memory"
	BackendRemote Backend = "remote"
)

// Known reports whether b names a backend this build can open.
func (b Backend) Known() bool {
	switch b {
	case BackendSQLite, BackendBadger, BackendMemory, BackendRemote:
		return true
	}
	return false
}

// EnvPrefix starts every environment override.
const EnvPrefix = "DEALDESK_"

// RemoteConfig holds hosted platform credentials.
type RemoteConfig struct {
	BaseURL      string `json:"base_url,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	TokenURL     string `json:"token_url,omitempty"`
	Timeout      string `json:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. Empty or invalid values yield zero.
func (r RemoteConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// ExportConfig chooses where contact exports land. A non-empty S3Bucket
// sends them to object storage instead of Dir.
type ExportConfig struct {
	Dir         string `json:"dir,omitempty"`
	Overwrite   bool   `json:"overwrite,omitempty"`
	S3Bucket    string `json:"s3_bucket,omitempty"`
	S3Region    string `json:"s3_region,omitempty"`
	S3Endpoint  string `json:"s3_endpoint,omitempty"`
	S3Prefix    string `json:"s3_prefix,omitempty"`
	S3PathStyle bool   `json:"s3_path_style,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	Backend  Backend      `json:"backend"`
	DBPath   string       `json:"db_path,omitempty"`
	KVDir    string       `json:"kv_dir,omitempty"`
	Remote   RemoteConfig `json:"remote"`
	Export   ExportConfig `json:"export"`
	LogLevel string       `json:"log_level,omitempty"`
}

// Dir returns the XDG directory holding configuration and local data.
func Dir() string {
	return filepath.Join(xdg.DataHome, "dealdesk")
}

// Path returns the configuration file location.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Backend:  BackendSQLite,
		DBPath:   filepath.Join(Dir(), "dealdesk.db"),
		KVDir:    filepath.Join(Dir(), "kv"),
		Export:   ExportConfig{Dir: "."},
		LogLevel: "info",
	}
}

// Load reads Path(), then .env in the working directory, then DEALDESK_*
// environment variables. A missing file or .env is not an error.
func Load() (*Config, error) {
	return LoadFrom(Path(), ".env")
}

// ReadFile returns the defaults overlaid with the file at path, without
// consulting the environment.
func ReadFile(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer func() { _ = f.Close() }()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return cfg, nil
}

// LoadFrom is Load with explicit file locations.
func LoadFrom(path, dotenv string) (*Config, error) {
	cfg, err := Resolve(path, dotenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve layers the file, .env and environment like LoadFrom but skips
// Validate, so a half-configured backend can still be inspected and fixed.
func Resolve(path, dotenv string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	if dotenv != "" {
		// godotenv.Load never overrides variables already in the environment.
		if err := godotenv.Load(dotenv); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if !c.Backend.Known() {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == BackendRemote && c.Remote.BaseURL == "" {
		return fmt.Errorf("backend %q requires remote.base_url", c.Backend)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for key, target := range stringKeys(cfg) {
		if v := os.Getenv(EnvPrefix + envName(key)); v != "" {
			*target = v
		}
	}
	if v := os.Getenv(EnvPrefix + "BACKEND"); v != "" {
		cfg.Backend = Backend(strings.ToLower(v))
	}
	for key, target := range boolKeys(cfg) {
		if v := os.Getenv(EnvPrefix + envName(key)); v != "" {
			*target = v == "true" || v == "1"
		}
	}
}

// envName turns "remote.api_key" into "REMOTE_API_KEY".
func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func stringKeys(c *Config) map[string]*string {
	return map[string]*string{
		"db_path":              &c.DBPath,
		"kv_dir":               &c.KVDir,
		"log_level":            &c.LogLevel,
		"remote.base_url":      &c.Remote.BaseURL,
		"remote.project_id":    &c.Remote.ProjectID,
		"remote.api_key":       &c.Remote.APIKey,
		"remote.client_id":     &c.Remote.ClientID,
		"remote.client_secret": &c.Remote.ClientSecret,
		"remote.token_url":     &c.Remote.TokenURL,
		"remote.timeout":       &c.Remote.Timeout,
		"export.dir":           &c.Export.Dir,
		"export.s3_bucket":     &c.Export.S3Bucket,
		"export.s3_region":     &c.Export.S3Region,
		"export.s3_endpoint":   &c.Export.S3Endpoint,
		"export.s3_prefix":     &c.Export.S3Prefix,
	}
}

func boolKeys(c *Config) map[string]*bool {
	return map[string]*bool{
		"export.overwrite":     &c.Export.Overwrite,
		"export.s3_path_style": &c.Export.S3PathStyle,
	}
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	c := &Config{}
	keys := []string{"backend"}
	for k := range stringKeys(c) {
		keys = append(keys, k)
	}
	for k := range boolKeys(c) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one dotted key, e.g. "remote.base_url".
func (c *Config) Set(key, value string) error {
	if key == "backend" {
		b := Backend(strings.ToLower(value))
		if !b.Known() {
			return fmt.Errorf("unknown backend %q", value)
		}
		c.Backend = b
		return nil
	}
	if target, ok := stringKeys(c)[key]; ok {
		*target = value
		return nil
	}
	if target, ok := boolKeys(c)[key]; ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false: %w", key, err)
		}
		*target = b
		return nil
	}
	return fmt.Errorf("unknown config key %q", key)
}

// Save writes c to Path() with owner-only permissions.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes c to path with owner-only permissions.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	for _, s := range []*string{&out.Remote.APIKey, &out.Remote.ClientSecret} {
		if *s != "" {
			*s = "********"
		}
	}
	return &out
}
