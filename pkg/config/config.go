// Package config provides configuration management for addonctl.
// Settings are read from a YAML or TOML file chosen by extension, filled
// with defaults, overridden from ADDONCTL_* environment variables and
// validated before use.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/addonctl/pkg/errors"
	"github.com/glorpus-work/addonctl/pkg/fsutil"
)

// Format of a configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config represents the application configuration.
type Config struct {
	// DefaultRepository is always present in the catalog, even with no state file.
	DefaultRepository RepositoryConfig `yaml:"default_repository" toml:"default_repository"`

	Settings Settings `yaml:"settings" toml:"settings"`
}

// RepositoryConfig describes a repository the catalog should know about.
type RepositoryConfig struct {
	CodeName string   `yaml:"codename" toml:"codename"`
	Name     string   `yaml:"name" toml:"name"`
	URL      string   `yaml:"url" toml:"url"`
	TTL      Duration `yaml:"ttl" toml:"ttl"`
}

// InstallRoots are the destination directories per add-on list kind.
type InstallRoots struct {
	Themes     string `yaml:"themes,omitempty" toml:"themes,omitempty"`
	Apps       string `yaml:"apps,omitempty" toml:"apps,omitempty"`
	Extensions string `yaml:"extensions,omitempty" toml:"extensions,omitempty"`
	ExpPacks   string `yaml:"exppacks,omitempty" toml:"exppacks,omitempty"`
	Languages  string `yaml:"languages,omitempty" toml:"languages,omitempty"`
}

// HookSettings point at tengo scripts run around installs.
type HookSettings struct {
	PostInstall string `yaml:"post_install,omitempty" toml:"post_install,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	CacheDir  string `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty"`
	StateFile string `yaml:"state_file,omitempty" toml:"state_file,omitempty"`

	InstallRoots InstallRoots `yaml:"install_roots" toml:"install_roots"`

	// Network settings
	HTTPTimeout Duration `yaml:"http_timeout" toml:"http_timeout"`
	UserAgent   string   `yaml:"user_agent" toml:"user_agent"`

	// Channel is handed to the transfer agent when a session is created.
	Channel string `yaml:"channel" toml:"channel"`

	// RefreshSchedule is a cron expression used by `addonctl serve`.
	RefreshSchedule string `yaml:"refresh_schedule" toml:"refresh_schedule"`
	MetricsAddr     string `yaml:"metrics_addr,omitempty" toml:"metrics_addr,omitempty"`

	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`

	Hooks HookSettings `yaml:"hooks,omitempty" toml:"hooks,omitempty"`
}

// Default configuration values.
const (
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultRepositoryTTL   = time.Hour
	DefaultChannel         = "stable"
	DefaultRefreshSchedule = "@every 1h"
	DefaultUserAgent       = "addonctl/1.0"

	DefaultRepositoryCodeName = "official"
	DefaultRepositoryName     = "Official add-ons"
	DefaultRepositoryURL      = "https://addons.glorpus.work/repository.xml"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	s := &c.Settings
	if s.CacheDir == "" {
		if dir, err := fsutil.GetCacheDir(); err == nil {
			s.CacheDir = dir
		} else {
			s.CacheDir = filepath.Join(os.TempDir(), fsutil.AppName)
		}
	}
	dataDir, err := fsutil.GetDataDir()
	if err != nil {
		dataDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}
	if s.StateFile == "" {
		s.StateFile = filepath.Join(dataDir, "catalog.xml")
	}
	defaultRoot := func(dst *string, name string) {
		if *dst == "" {
			*dst = filepath.Join(dataDir, name)
		}
	}
	defaultRoot(&s.InstallRoots.Themes, "themes")
	defaultRoot(&s.InstallRoots.Apps, "apps")
	defaultRoot(&s.InstallRoots.Extensions, "extensions")
	defaultRoot(&s.InstallRoots.ExpPacks, "exppacks")
	defaultRoot(&s.InstallRoots.Languages, "languages")

	if s.HTTPTimeout == 0 {
		s.HTTPTimeout = Duration(DefaultHTTPTimeout)
	}
	if s.UserAgent == "" {
		s.UserAgent = DefaultUserAgent
	}
	if s.Channel == "" {
		s.Channel = DefaultChannel
	}
	if s.RefreshSchedule == "" {
		s.RefreshSchedule = DefaultRefreshSchedule
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "text"
	}

	r := &c.DefaultRepository
	if r.CodeName == "" {
		r.CodeName = DefaultRepositoryCodeName
	}
	if r.Name == "" {
		r.Name = DefaultRepositoryName
	}
	if r.URL == "" {
		r.URL = DefaultRepositoryURL
	}
	if r.TTL == 0 {
		r.TTL = Duration(DefaultRepositoryTTL)
	}
}

// FormatForPath picks the file format from the path's extension. Anything
// that is not .toml is read as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if err := cfg.ApplyEnv(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	cfg, err := LoadConfigFromReader(file, FormatForPath(path))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.validateWrapped()
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader, format Format) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &config)
	case FormatYAML:
		err = yaml.Unmarshal(data, &config)
	default:
		return nil, errors.Wrapf(errors.ErrConfigFormat, "%q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()
	if err := config.validateWrapped(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validateWrapped() error {
	if err := c.Validate(); err != nil {
		return errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	return nil
}

// Encode renders the configuration in the given format.
func (c *Config) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(c); err != nil {
			return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(YAMLIndent)
		if err := enc.Encode(c); err != nil {
			return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
		}
		_ = enc.Close()
	}
	return buf.Bytes(), nil
}

// SaveConfig writes the configuration atomically, in the format implied by
// the path's extension.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	data, err := c.Encode(FormatForPath(path))
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, fsutil.FileModeDefault)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	s := c.Settings
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s.LogLevel)
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (valid: text, json)", s.LogFormat)
	}
	if c.DefaultRepository.TTL < 0 {
		return fmt.Errorf("default repository ttl cannot be negative")
	}
	if strings.ContainsAny(c.DefaultRepository.CodeName, " /") {
		return fmt.Errorf("default repository codename %q must not contain spaces or slashes", c.DefaultRepository.CodeName)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
