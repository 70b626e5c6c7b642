package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ConnCacheTTL           time.Duration
	ScriptPoolSize         int
	ScriptDefaultTimeoutMs int64
}

func Default() Config {
	return Config{
		ConnCacheTTL:           5 * time.Minute,
		ScriptPoolSize:         8,
		ScriptDefaultTimeoutMs: 30_000,
	}
}

// Load reads configuration from the given file (optional) and the N3N_*
// environment, falling back to defaults.
func Load(configFile string) (Config, error) {
	v := viper.New()
	v.SetDefault("conn-cache-ttl", "5m")
	v.SetDefault("script-pool-size", 8)
	v.SetDefault("script-default-timeout-ms", 30_000)
	v.SetEnvPrefix("N3N")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, err
			}
		}
	}

	cfg := Default()
	cfg.ConnCacheTTL = v.GetDuration("conn-cache-ttl")
	cfg.ScriptPoolSize = v.GetInt("script-pool-size")
	cfg.ScriptDefaultTimeoutMs = v.GetInt64("script-default-timeout-ms")
	return cfg, nil
}
