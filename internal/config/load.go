package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. ACODE_AUTH_JWT_SECRET for auth.jwt_secret.
const EnvPrefix = "ACODE"

// keys without a default still need binding so that Unmarshal sees them.
var boundKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"upstream.api_key",
}

// Load reads configuration from a .env file, an optional config.yaml in the
// working directory and ACODE_-prefixed environment variables, in increasing
// order of precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.access_token_lifetime_minutes", 5)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 24*60)
	v.SetDefault("auth.rotate_refresh_tokens", true)
	v.SetDefault("auth.blacklist_after_rotation", true)
	v.SetDefault("auth.clock_skew_seconds", 0)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.password_min_length", 8)
	v.SetDefault("auth.update_last_login", true)
	v.SetDefault("auth.protect_account_routes", false)

	v.SetDefault("upstream.verify_url", "https://nubapi.com/api/verify")
	v.SetDefault("upstream.bank_list_url", "https://nubapi.com/bank-json")
	v.SetDefault("upstream.timeout_seconds", 10)
}

// loadDotenv loads the nearest .env file, looking in the working directory
// and up to two parents. Variables already set in the environment win.
func loadDotenv() error {
	for _, p := range []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return fmt.Errorf("failed to load %s: %w", p, err)
			}
			return nil
		}
	}
	return nil
}
