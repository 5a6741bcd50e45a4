// Package engineconfig loads the simulator-wide tunables of spec.md §5 and
// §9 out of mutable globals and into an explicit, viper-backed struct.
package engineconfig

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/flatspace/worldline/scheduler"
)

// Config is the full set of engine tunables plus the ambient logging and
// telemetry settings that accompany it.
type Config struct {
	Scheduler scheduler.Config

	Log struct {
		Level   string
		Graylog struct {
			Enabled bool
			Address string
		}
	}

	Influx struct {
		Enabled  bool
		Host     string
		Port     string
		Protocol string
		Token    string
		Org      string
		Bucket   string
	}
}

// Load reads configuration from configName in configDir (any format viper
// supports — YAML, JSON, TOML), falling back to defaults for anything
// unset.
func Load(configDir, configName string) (Config, error) {
	v := viper.New()

	v.SetDefault("simulator.eps", 1e-8)
	v.SetDefault("simulator.maxRetries", 64)
	v.SetDefault("simulator.retryBisectFraction", 0.1)
	v.SetDefault("simulator.logActions", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.graylog.enabled", false)
	v.SetDefault("log.graylog.address", "localhost:12201")

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.host", "localhost")
	v.SetDefault("influx.port", "8086")
	v.SetDefault("influx.protocol", "http")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "worldline")
	v.SetDefault("influx.bucket", "events")

	v.SetConfigName(configName)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("engineconfig: reading config: %w", err)
		}
	}

	var cfg Config
	cfg.Scheduler.Eps = v.GetFloat64("simulator.eps")
	cfg.Scheduler.MaxRetries = v.GetInt("simulator.maxRetries")
	cfg.Scheduler.RetryBisectFraction = v.GetFloat64("simulator.retryBisectFraction")
	cfg.Scheduler.LogActions = v.GetBool("simulator.logActions")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Graylog.Enabled = v.GetBool("log.graylog.enabled")
	cfg.Log.Graylog.Address = v.GetString("log.graylog.address")

	cfg.Influx.Enabled = v.GetBool("influx.enabled")
	cfg.Influx.Host = v.GetString("influx.host")
	cfg.Influx.Port = v.GetString("influx.port")
	cfg.Influx.Protocol = v.GetString("influx.protocol")
	cfg.Influx.Token = v.GetString("influx.token")
	cfg.Influx.Org = v.GetString("influx.org")
	cfg.Influx.Bucket = v.GetString("influx.bucket")

	return cfg, nil
}

// Default returns the configuration that results from an empty config
// directory: every tunable at its documented default.
func Default() Config {
	cfg, _ := Load(".", "worldline-config-that-does-not-exist")
	return cfg
}
