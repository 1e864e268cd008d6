package config

import "time"

// Config is the process-wide configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	Environment string        `mapstructure:"environment"`
	Server      ServerConfig  `mapstructure:"server"`
	LLM         LLMConfig     `mapstructure:"llm"`
	Catalog     CatalogConfig `mapstructure:"catalog"`
	Auth        AuthConfig    `mapstructure:"auth"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// RequestBudget is the longest a single chat request can take: two model
// calls and at most two catalog calls.
func (c *Config) RequestBudget() time.Duration {
	return 2*c.LLM.Timeout + 2*c.Catalog.Timeout
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port" validate:"required,numeric"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LLMConfig selects and configures the model-invocation adapter.
type LLMConfig struct {
	Provider          string        `mapstructure:"provider" validate:"oneof=gemini openai"`
	APIKey            string        `mapstructure:"api_key" validate:"required"`
	Model             string        `mapstructure:"model" validate:"required"`
	BaseURL           string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	StoreName         string        `mapstructure:"store_name"`
}

// CatalogConfig points at the catalog backend (usually the API gateway).
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig controls the optional bearer-token gate.
type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultSystemInstruction scopes the assistant to the jewelry store.
const DefaultSystemInstruction = `You are the virtual assistant of Tinh Tu Jewelry, a premium jewelry brand.
Help customers with:
1. Finding and recommending jewelry that fits their needs
2. Materials, sizes and prices of products
3. Choosing jewelry by occasion, style and budget
4. The store's collections and product categories
5. Jewelry trends, new arrivals and bestsellers

Always answer politely, professionally and in the context of jewelry.
Never answer questions unrelated to jewelry or the store.`
