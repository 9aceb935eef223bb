package server

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit_rps", 100)
	v.SetDefault("server.rate_limit_burst", 200)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/brandkit.db")
	v.SetDefault("remote.base_url", "http://localhost:3000/api")
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.jwt_secret", "")
	v.SetDefault("remote.jwt_ttl", "5m")
	v.SetDefault("remote.rate_limit_rps", 5)
	v.SetDefault("autosave.quiet_period", "1500ms")
	v.SetDefault("uploads.max_bytes", 2<<20)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("brandkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/brandkit")
	}

	// Environment variable support: BRANDKIT_SERVER_PORT=9090
	v.SetEnvPrefix("BRANDKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
