package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort            = "8080"
	defaultRequestTimeout  = 30 * time.Second
	defaultFeedbackTimeout = 5 * time.Second
)

// Config represents the complete application configuration
type Config struct {
	Server   models.ServerConfig    `yaml:"server"`
	Database *models.DatabaseConfig `yaml:"database,omitempty"`
	Cache    *models.CacheConfig    `yaml:"cache,omitempty"`
	Auth     *models.AuthConfig     `yaml:"auth,omitempty"`
	Billing  *models.StripeConfig   `yaml:"billing,omitempty"`
	Feedback *models.FeedbackConfig `yaml:"feedback,omitempty"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration after substituting environment variables.
func Parse(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fiberlog.Infof("Loaded environment variables from %s", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}

	if c.Cache != nil {
		if c.Cache.Backend == "" {
			c.Cache.Backend = models.CacheBackendMemory
		}
		if c.Cache.Capacity <= 0 {
			c.Cache.Capacity = models.DefaultCacheCapacity
		}
		c.Cache.SoftTTL = c.Cache.SoftTTLOrDefault()
		c.Cache.HardTTL = c.Cache.HardTTLOrDefault()
	}

	if c.Feedback != nil {
		if c.Feedback.Workers <= 0 {
			c.Feedback.Workers = 2
		}
		if c.Feedback.BufferSize <= 0 {
			c.Feedback.BufferSize = 100
		}
		if c.Feedback.Timeout <= 0 {
			c.Feedback.Timeout = defaultFeedbackTimeout
		}
	}
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// RedisURL returns the redis address when the cache is redis-backed.
func (c *Config) RedisURL() string {
	if c.Cache == nil || c.Cache.Backend != models.CacheBackendRedis {
		return ""
	}
	return c.Cache.RedisURL
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.Server.AllowedOrigins == "" {
		missing = append(missing, "server.allowed_origins")
	}

	if c.Database == nil {
		missing = append(missing, "database")
	} else if c.Database.Type == "" {
		missing = append(missing, "database.type")
	}

	if c.Cache != nil && c.Cache.Backend == models.CacheBackendRedis && c.Cache.RedisURL == "" {
		missing = append(missing, "cache.redis_url")
	}

	if c.Auth == nil {
		missing = append(missing, "auth")
	} else {
		switch c.Auth.Provider {
		case models.AuthProviderClerk:
			if c.Auth.ClerkConfig == nil || c.Auth.ClerkConfig.SecretKey == "" {
				missing = append(missing, "auth.clerk.secret_key")
			}
		case models.AuthProviderJWT:
			if c.Auth.JWTConfig == nil || c.Auth.JWTConfig.Secret == "" {
				missing = append(missing, "auth.jwt.secret")
			}
		default:
			missing = append(missing, "auth.provider")
		}
	}

	if c.Billing != nil && c.Billing.SecretKey != "" {
		if c.Billing.WebhookSecret == "" {
			missing = append(missing, "billing.webhook_secret")
		}
		if c.Billing.ProPriceID == "" {
			missing = append(missing, "billing.pro_price_id")
		}
	}

	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}

	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration fields: " + strings.Join(e.MissingFields, ", ")
}
