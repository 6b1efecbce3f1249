package config

import (
	"fmt"
	"sort"
	"time"
)

// settingAccessors maps configuration keys to their fields.
func (c *Config) settingAccessors() map[string]*string {
	s := &c.Settings
	return map[string]*string{
		"cache_dir":             &s.CacheDir,
		"state_file":            &s.StateFile,
		"user_agent":            &s.UserAgent,
		"channel":               &s.Channel,
		"refresh_schedule":      &s.RefreshSchedule,
		"metrics_addr":          &s.MetricsAddr,
		"log_level":             &s.LogLevel,
		"log_format":            &s.LogFormat,
		"hooks.post_install":    &s.Hooks.PostInstall,
		"install_roots.themes":  &s.InstallRoots.Themes,
		"install_roots.apps":    &s.InstallRoots.Apps,
		"install_roots.exts":    &s.InstallRoots.Extensions,
		"install_roots.exppack": &s.InstallRoots.ExpPacks,
		"install_roots.langs":   &s.InstallRoots.Languages,
	}
}

// SetValue sets a configuration value by key and re-validates.
func (c *Config) SetValue(key, value string) error {
	if key == "http_timeout" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = Duration(d)
		return c.Validate()
	}
	field, ok := c.settingAccessors()[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	old := *field
	*field = value
	if err := c.Validate(); err != nil {
		*field = old
		return err
	}
	return nil
}

// GetValue returns the value of a configuration key as a string.
func (c *Config) GetValue(key string) (string, error) {
	if key == "http_timeout" {
		return c.Settings.HTTPTimeout.Std().String(), nil
	}
	field, ok := c.settingAccessors()[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return *field, nil
}

// Keys lists every key accepted by GetValue and SetValue, sorted.
func (c *Config) Keys() []string {
	keys := []string{"http_timeout"}
	for k := range c.settingAccessors() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
