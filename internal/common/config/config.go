// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig               `mapstructure:"app"`
	Server      ServerConfig            `mapstructure:"server"`
	Camunda     CamundaConfig           `mapstructure:"camunda"`
	Database    DatabaseConfig          `mapstructure:"database"`
	Workers     map[string]WorkerConfig `mapstructure:"workers"`
	Explanation ExplanationConfig       `mapstructure:"explanation"`
	Catalog     CatalogConfig           `mapstructure:"catalog"`
	Session     SessionConfig           `mapstructure:"session"`
	Logging     LoggingConfig           `mapstructure:"logging"`
	Metrics     MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// CamundaConfig enables the job workers when BrokerAddress is set.
type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig enables the explanation cache when Address is set.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

const (
	ProviderGateway = "gateway"
	ProviderGemini  = "gemini"
)

// ExplanationConfig configures the explanation-generation collaborator.
type ExplanationConfig struct {
	Provider             string   `mapstructure:"provider"` // gateway | gemini
	BaseURL              string   `mapstructure:"base_url"`
	APIKey               string   `mapstructure:"api_key"`
	Model                string   `mapstructure:"model"`
	Timeout              int      `mapstructure:"timeout"` // milliseconds
	Temperature          float64  `mapstructure:"temperature"`
	MaxTokens            int      `mapstructure:"max_tokens"`
	MaxRetries           int      `mapstructure:"max_retries"`
	CacheTTL             int      `mapstructure:"cache_ttl"` // milliseconds, 0 disables caching
	FallbackAlternatives []string `mapstructure:"fallback_alternatives"`
}

// CatalogConfig points at an external catalog file; empty uses the embedded one.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type SessionConfig struct {
	IdleTTL       int `mapstructure:"idle_ttl"`       // milliseconds
	SweepInterval int `mapstructure:"sweep_interval"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
