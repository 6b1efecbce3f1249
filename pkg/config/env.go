package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/glorpus-work/addonctl/pkg/errors"
)

// EnvPrefix is the prefix of every environment override, e.g. ADDONCTL_LOG_LEVEL.
const EnvPrefix = "addonctl"

type envOverrides struct {
	CacheDir        string   `envconfig:"CACHE_DIR"`
	StateFile       string   `envconfig:"STATE_FILE"`
	HTTPTimeout     Duration `envconfig:"HTTP_TIMEOUT"`
	UserAgent       string   `envconfig:"USER_AGENT"`
	Channel         string   `envconfig:"CHANNEL"`
	RefreshSchedule string   `envconfig:"REFRESH_SCHEDULE"`
	MetricsAddr     string   `envconfig:"METRICS_ADDR"`
	LogLevel        string   `envconfig:"LOG_LEVEL"`
	LogFormat       string   `envconfig:"LOG_FORMAT"`
}

// ApplyEnv overrides settings from ADDONCTL_* environment variables.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	s := &c.Settings
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&s.CacheDir, env.CacheDir)
	override(&s.StateFile, env.StateFile)
	override(&s.UserAgent, env.UserAgent)
	override(&s.Channel, env.Channel)
	override(&s.RefreshSchedule, env.RefreshSchedule)
	override(&s.MetricsAddr, env.MetricsAddr)
	override(&s.LogLevel, env.LogLevel)
	override(&s.LogFormat, env.LogFormat)
	if env.HTTPTimeout > 0 {
		s.HTTPTimeout = env.HTTPTimeout
	}
	return nil
}
