package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Auth      AuthConfig      `yaml:"auth"`
	Credits   CreditsConfig   `yaml:"credits"`
	Generator GeneratorConfig `yaml:"generator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // snapshot file path
}

// HTTPConfig contains the REST listener settings.
type HTTPConfig struct {
	Address         string        `yaml:"address"`
	ClientURL       string        `yaml:"client_url"` // allowed CORS origin
	ShutdownTimeout time.Duration `yaml:"-"`

	ShutdownTimeoutRaw string `yaml:"shutdown_timeout"`
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string `yaml:"address"` // empty disables the listener
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"-"`

	TokenTTLRaw string `yaml:"token_ttl"`
}

// CreditsConfig controls the balance given to new accounts.
type CreditsConfig struct {
	Starting int64 `yaml:"starting"`
}

// GeneratorConfig selects and tunes the text generator.
type GeneratorConfig struct {
	Provider    string        `yaml:"provider"` // "openai" or "echo"
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"-"`

	TimeoutRaw string `yaml:"timeout"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

const devSecret = "dev-secret-change-me"

// Load loads configuration from environment variables with sensible defaults,
// then overlays the YAML file named by CONFIG_FILE when set.
func Load() (*Config, error) {
	cfg, err := load(getEnv("JWT_SECRET", ""))
	if err != nil {
		return nil, err
	}

	// Validate critical settings
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := load(getEnv("JWT_SECRET", devSecret))
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devSecret
	}
	return cfg, nil
}

func load(secret string) (*Config, error) {
	cfg, err := fromEnv(secret)
	if err != nil {
		return nil, err
	}
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func fromEnv(secret string) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "data/app.db"),
		},
		HTTP: HTTPConfig{
			Address:   getEnv("HTTP_ADDRESS", ":5000"),
			ClientURL: getEnv("CLIENT_URL", "http://localhost:3000"),
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ":50051"),
		},
		Auth: AuthConfig{
			JWTSecret: secret,
		},
		Generator: GeneratorConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.Generator.Provider = getEnv("GENERATOR_PROVIDER", defaultProvider(cfg.Generator.APIKey))

	var err error
	if cfg.HTTP.ShutdownTimeout, err = getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenTTL, err = getEnvDuration("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Generator.Timeout, err = getEnvDuration("GENERATOR_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.Generator.MaxTokens, err = getEnvInt("GENERATOR_MAX_TOKENS", 2000); err != nil {
		return nil, err
	}
	if cfg.Generator.Temperature, err = getEnvFloat("GENERATOR_TEMPERATURE", 0.7); err != nil {
		return nil, err
	}
	starting, err := getEnvInt("STARTING_CREDITS", 100)
	if err != nil {
		return nil, err
	}
	cfg.Credits.Starting = int64(starting)
	return cfg, nil
}

func defaultProvider(apiKey string) string {
	if apiKey == "" {
		return "echo"
	}
	return "openai"
}

// overlayFile applies the YAML file at path over cfg. Keys absent from the
// file keep their current values. ${VAR} references are expanded first.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if err := parseDurations(c); err != nil {
		return fmt.Errorf("parsing durations: %w", err)
	}
	return nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or the empty
// string when it is unset.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envRef.FindStringSubmatch(match)[1])
	})
}

// parseDurations converts raw duration strings from the file.
func parseDurations(c *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"http.shutdown_timeout", c.HTTP.ShutdownTimeoutRaw, &c.HTTP.ShutdownTimeout},
		{"auth.token_ttl", c.Auth.TokenTTLRaw, &c.Auth.TokenTTL},
		{"generator.timeout", c.Generator.TimeoutRaw, &c.Generator.Timeout},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

// Validate checks values that would otherwise fail much later at runtime.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return fmt.Errorf("http address is required")
	}
	switch c.Generator.Provider {
	case "echo":
	case "openai":
		if c.Generator.APIKey == "" {
			return fmt.Errorf("generator provider openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}
	if c.Credits.Starting < 0 {
		return fmt.Errorf("starting credits must not be negative")
	}
	if c.Auth.TokenTTL <= 0 || c.Generator.Timeout <= 0 {
		return fmt.Errorf("token ttl and generator timeout must be positive")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number for %s: %w", key, err)
		}
		return f, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, gRPC: %s, Generator: %s/%s, Auth: *** (masked) ***}",
		c.Database.Path, c.HTTP.Address, c.GRPC.Address, c.Generator.Provider, c.Generator.Model)
}
