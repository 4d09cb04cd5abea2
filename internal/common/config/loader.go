// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultGatewayURL   = "https://ai.gateway.lovable.dev"
	DefaultGatewayModel = "google/gemini-3-flash-preview"
	DefaultGeminiModel  = "gemini-2.5-flash"
)

// DefaultFallbackAlternatives are offered when an assessment is not eligible.
var DefaultFallbackAlternatives = []string{"pmay", "ayushman-bharat"}

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// bindEnvKeys makes AutomaticEnv see keys that may be absent from every
// config file, e.g. EXPLANATION_API_KEY.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.address",
		"camunda.broker_address",
		"database.redis.address",
		"database.redis.password",
		"explanation.provider",
		"explanation.base_url",
		"explanation.api_key",
		"explanation.model",
		"catalog.path",
		"logging.level",
		"logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional env names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Explanation.APIKey == "" {
		for _, name := range []string{"LOVABLE_API_KEY", "GENAI_API_KEY", "GEMINI_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.Explanation.APIKey = val
				break
			}
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "scheme-eligibility"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Explanation.Provider == "" {
		cfg.Explanation.Provider = ProviderGateway
	}
	if cfg.Explanation.BaseURL == "" && cfg.Explanation.Provider == ProviderGateway {
		cfg.Explanation.BaseURL = DefaultGatewayURL
	}
	if cfg.Explanation.Model == "" {
		if cfg.Explanation.Provider == ProviderGemini {
			cfg.Explanation.Model = DefaultGeminiModel
		} else {
			cfg.Explanation.Model = DefaultGatewayModel
		}
	}
	if cfg.Explanation.Timeout == 0 {
		cfg.Explanation.Timeout = 60000
	}
	if cfg.Explanation.Temperature == 0 {
		cfg.Explanation.Temperature = 0.7
	}
	if cfg.Explanation.MaxTokens == 0 {
		cfg.Explanation.MaxTokens = 1000
	}
	if cfg.Explanation.FallbackAlternatives == nil {
		cfg.Explanation.FallbackAlternatives = append([]string(nil), DefaultFallbackAlternatives...)
	}

	if cfg.Session.IdleTTL == 0 {
		cfg.Session.IdleTTL = 30 * 60 * 1000
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = 60 * 1000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Explanation.Provider {
	case ProviderGateway:
		if cfg.Explanation.BaseURL == "" {
			return fmt.Errorf("explanation.base_url is required for the gateway provider")
		}
	case ProviderGemini:
	default:
		return fmt.Errorf("explanation.provider must be %q or %q, got %q",
			ProviderGateway, ProviderGemini, cfg.Explanation.Provider)
	}

	if cfg.Explanation.Timeout < 0 || cfg.Explanation.CacheTTL < 0 {
		return fmt.Errorf("explanation timeouts must not be negative")
	}
	if cfg.Explanation.Temperature < 0 || cfg.Explanation.Temperature > 2 {
		return fmt.Errorf("explanation.temperature must be within [0, 2]")
	}
	if cfg.Explanation.MaxRetries < 0 {
		return fmt.Errorf("explanation.max_retries must not be negative")
	}
	if cfg.Session.IdleTTL < 0 {
		return fmt.Errorf("session.idle_ttl must not be negative")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
