package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads config.yaml (and config.<APP_ENVIRONMENT>.yaml when present) from
// ./configs or the working directory, then applies environment overrides.
// A missing config file is not an error; defaults and the environment suffice.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := v.GetString("environment")
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // per-environment file is optional

	return build(v)
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Names the chatbot has always been deployed with.
	_ = v.BindEnv("environment", "ENVIRONMENT", "APP_ENVIRONMENT")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("llm.api_key", "LLM_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.model", "LLM_MODEL", "GEMINI_MODEL")
	_ = v.BindEnv("catalog.base_url", "CATALOG_BASE_URL", "API_GATEWAY_URL")
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.port", "5000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 180*time.Second)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash-001")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.system_instruction", DefaultSystemInstruction)
	v.SetDefault("llm.store_name", "Tinh Tu Jewelry")

	v.SetDefault("catalog.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("catalog.timeout", 10*time.Second)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("tracing.enabled", false)
}

func build(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Catalog.BaseURL = strings.TrimRight(cfg.Catalog.BaseURL, "/")

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the struct tags on cfg, and that a non-zero write timeout
// outlasts the slowest request: two model calls and two catalog calls.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if cfg.Server.WriteTimeout > 0 && cfg.Server.WriteTimeout <= cfg.RequestBudget() {
		return fmt.Errorf("server.write_timeout %s must exceed %s (2*llm.timeout + 2*catalog.timeout)",
			cfg.Server.WriteTimeout, cfg.RequestBudget())
	}
	return nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
