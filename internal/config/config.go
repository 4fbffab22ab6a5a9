package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Dashboard DashboardConfig
	Logger    LoggerConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DataConfig struct {
	OrdersFile  string
	GeoFile     string
	LoadTimeout time.Duration
}

type DashboardConfig struct {
	Title          string
	Caption        string
	LogoURL        string
	BasemapURL     string
	BasemapTimeout time.Duration
	// ReviewWeights is passed through as written; services.ParseWeighting
	// owns the accepted values.
	ReviewWeights string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// Load reads an optional .env file from the working directory, then the
// process environment. Values already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8501),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			OrdersFile:  getEnvString("ORDERS_CSV", "all_data.csv"),
			GeoFile:     getEnvString("GEO_CSV", "geolocation.csv"),
			LoadTimeout: getEnvDuration("LOAD_TIMEOUT", 60*time.Second),
		},
		Dashboard: DashboardConfig{
			Title:          getEnvString("DASHBOARD_TITLE", "E-Commerce Dashboard"),
			Caption:        getEnvString("DASHBOARD_CAPTION", "E-Commerce Public Dataset"),
			LogoURL:        getEnvString("LOGO_URL", "https://cdn-icons-png.flaticon.com/128/2038/2038854.png"),
			BasemapURL:     getEnvString("BASEMAP_URL", "https://i.pinimg.com/originals/3a/0c/e1/3a0ce18b3c842748c255bc0aa445ad41.jpg"),
			BasemapTimeout: getEnvDuration("BASEMAP_TIMEOUT", 10*time.Second),
			ReviewWeights:  getEnvString("REVIEW_WEIGHTING", "positional"),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 20),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8501"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate reports every invalid setting at once.
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Port >= 1 && c.Server.Port <= 65535, "server port must be between 1 and 65535, got %d", c.Server.Port)
	check(c.Server.ReadTimeout > 0, "server read timeout must be positive")
	check(c.Server.WriteTimeout > 0, "server write timeout must be positive")
	check(c.Data.OrdersFile != "", "orders CSV path cannot be empty")
	check(c.Data.GeoFile != "", "geolocation CSV path cannot be empty")
	check(c.Data.LoadTimeout > 0, "load timeout must be positive")
	check(c.Dashboard.BasemapTimeout > 0, "basemap timeout must be positive")
	check(c.Security.RateLimitRPS > 0, "rate limit RPS must be positive")
	check(c.Security.RateLimitBurst > 0, "rate limit burst must be positive")

	oneOf := func(name, value string, valid ...string) {
		check(slices.Contains(valid, value), "invalid %s %q, must be one of: %s", name, value, strings.Join(valid, ", "))
	}
	oneOf("log level", c.Logger.Level, "debug", "info", "warn", "error")
	oneOf("log format", c.Logger.Format, "json", "text")

	return errors.Join(errs...)
}

// getEnv returns the parsed value of key, or defaultValue when the variable is
// unset or does not parse.
func getEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	if value := os.Getenv(key); value != "" {
		if parsed, err := parse(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvString(key, defaultValue string) string {
	return getEnv(key, defaultValue, func(s string) (string, error) { return s, nil })
}

func getEnvInt(key string, defaultValue int) int {
	return getEnv(key, defaultValue, strconv.Atoi)
}

func getEnvBool(key string, defaultValue bool) bool {
	return getEnv(key, defaultValue, strconv.ParseBool)
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return getEnv(key, defaultValue, time.ParseDuration)
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	return getEnv(key, defaultValue, func(s string) ([]string, error) {
		var parts []string
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		return parts, nil
	})
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
