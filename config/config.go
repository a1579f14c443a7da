package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Pagination modes
const (
	PaginationOffset = "offset"
	PaginationCursor = "cursor"
)

// Config holds application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Pagination PaginationConfig
	App        AppConfig
	Auth       AuthConfig
	Security   SecurityConfig
	CORS       CORSConfig
	Firebase   FirebaseConfig
	Scheduler  SchedulerConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Addresses or CIDR ranges of proxies whose X-Forwarded-For is believed.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DatabaseConfig selects the storage driver. Path is used by sqlite3, URL by postgres.
type DatabaseConfig struct {
	Driver string
	Path   string
	URL    string
}

// PaginationConfig selects the listing strategy for transactions.
type PaginationConfig struct {
	Mode            string
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// AppConfig holds presentation settings shared by date filters and reports.
type AppConfig struct {
	Timezone string
}

// AuthConfig holds session and one-time-code settings.
type AuthConfig struct {
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	OTPTTL        time.Duration `mapstructure:"otp_ttl"`
	DevUser       string        `mapstructure:"dev_user"`
}

// SecurityConfig holds the key used to seal cursor tokens.
type SecurityConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// FirebaseConfig holds service account credentials for third-party sign-in.
type FirebaseConfig struct {
	ProjectID         string `mapstructure:"project_id"`
	CredentialsJSON   string `mapstructure:"credentials_json"`
	CredentialsBase64 string `mapstructure:"credentials_base64"`
}

// SchedulerConfig controls background maintenance.
type SchedulerConfig struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Location resolves the configured timezone.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from file and env. Env var overrides use prefix EXPENSES_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("EXPENSES_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("EXPENSES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by existing deployments
	_ = v.BindEnv("server.port", "EXPENSES_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.url", "EXPENSES_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("security.encryption_key", "EXPENSES_SECURITY_ENCRYPTION_KEY", "ENCRYPTION_KEY")
	_ = v.BindEnv("cors.allowed_origins", "EXPENSES_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("firebase.credentials_json", "EXPENSES_FIREBASE_CREDENTIALS_JSON", "FIREBASE_SERVICE_ACCOUNT_JSON")
	_ = v.BindEnv("firebase.credentials_base64", "EXPENSES_FIREBASE_CREDENTIALS_BASE64", "FIREBASE_SERVICE_ACCOUNT_BASE64")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.CORS.AllowedOrigins = splitList(c.CORS.AllowedOrigins)
	c.Server.TrustedProxies = splitList(c.Server.TrustedProxies)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", "./database.db")
	v.SetDefault("database.url", "")
	v.SetDefault("pagination.mode", PaginationOffset)
	v.SetDefault("pagination.default_page_size", 10)
	v.SetDefault("pagination.max_page_size", 100)
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.session_ttl", 720*time.Hour)
	v.SetDefault("auth.otp_ttl", 5*time.Minute)
	v.SetDefault("auth.dev_user", "")
	v.SetDefault("security.encryption_key", "")
	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"http://localhost:8080",
	})
	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.credentials_json", "")
	v.SetDefault("firebase.credentials_base64", "")
	v.SetDefault("scheduler.cleanup_interval", time.Hour)
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite3")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	for _, proxy := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("invalid server.trusted_proxies entry %q", proxy)
		}
	}

	if c.Pagination.Mode != PaginationOffset && c.Pagination.Mode != PaginationCursor {
		return fmt.Errorf("unsupported pagination.mode %q", c.Pagination.Mode)
	}
	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.MaxPageSize <= 0 {
		return fmt.Errorf("pagination page sizes must be positive")
	}
	if c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("pagination.default_page_size exceeds pagination.max_page_size")
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid app.timezone: %w", err)
	}
	return nil
}

// splitList accepts both a list and a single comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, origin := range strings.Split(entry, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
