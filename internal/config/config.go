package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// Store backends
const (
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreKeyring  = "keyring"
)

// ErrInvalidConfig indicates the configuration cannot be used
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process configuration
type Config struct {
	LogLevel string         `yaml:"log_level"`
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Provider ProviderConfig `yaml:"provider"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // empty means same-origin only
	AdminToken     string   `yaml:"admin_token"`     // guards the database settings routes
}

// StoreConfig selects where provider credentials are persisted
type StoreConfig struct {
	Backend        string `yaml:"backend"`
	Path           string `yaml:"path"` // sqlite file
	Prefix         string `yaml:"prefix"`
	Passphrase     string `yaml:"passphrase"` // enables the sealed codec
	RedisURL       string `yaml:"redis_url"`
	DatabaseURL    string `yaml:"database_url"`
	KeyringService string `yaml:"keyring_service"`
}

// ProviderConfig is the deploy-time provider selection.
// An empty Kind means the provider is chosen at runtime and read from the store.
type ProviderConfig struct {
	Kind     string                     `yaml:"kind"`
	Supabase domain.SupabaseCredentials `yaml:"supabase"`
	Firebase domain.FirebaseCredentials `yaml:"firebase"`
	MySQL    domain.MySQLCredentials    `yaml:"mysql"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Store: StoreConfig{
			Backend:        StoreSQLite,
			Path:           defaultStorePath(),
			Prefix:         "fh_",
			KeyringService: "freelancer-hub",
		},
		Provider: ProviderConfig{
			MySQL: domain.MySQLCredentials{Port: domain.DefaultMySQLPort},
		},
	}
}

// Load reads the optional YAML file at path, then applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FH_CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.HTTP.Host = getEnv("HOST", c.HTTP.Host)
	c.HTTP.Port = getEnvInt("PORT", c.HTTP.Port)
	c.HTTP.AdminToken = getEnv("FH_ADMIN_TOKEN", c.HTTP.AdminToken)

	c.Store.Backend = getEnv("FH_STORE_BACKEND", c.Store.Backend)
	c.Store.Path = getEnv("FH_STORE_PATH", c.Store.Path)
	c.Store.Prefix = getEnv("FH_STORE_PREFIX", c.Store.Prefix)
	c.Store.Passphrase = getEnv("FH_STORE_PASSPHRASE", c.Store.Passphrase)
	c.Store.RedisURL = getEnv("REDIS_URL", c.Store.RedisURL)
	c.Store.DatabaseURL = getEnv("DATABASE_URL", c.Store.DatabaseURL)
	c.Store.KeyringService = getEnv("FH_KEYRING_SERVICE", c.Store.KeyringService)

	p := &c.Provider
	p.Kind = getEnv("DATABASE_PROVIDER", p.Kind)

	p.Supabase.URL = getEnv("SUPABASE_URL", p.Supabase.URL)
	p.Supabase.AnonKey = getEnv("SUPABASE_ANON_KEY", p.Supabase.AnonKey)
	p.Supabase.ServiceRoleKey = getEnv("SUPABASE_SERVICE_ROLE_KEY", p.Supabase.ServiceRoleKey)

	p.Firebase.APIKey = getEnv("FIREBASE_API_KEY", p.Firebase.APIKey)
	p.Firebase.AuthDomain = getEnv("FIREBASE_AUTH_DOMAIN", p.Firebase.AuthDomain)
	p.Firebase.ProjectID = getEnv("FIREBASE_PROJECT_ID", p.Firebase.ProjectID)
	p.Firebase.StorageBucket = getEnv("FIREBASE_STORAGE_BUCKET", p.Firebase.StorageBucket)
	p.Firebase.MessagingSenderID = getEnv("FIREBASE_MESSAGING_SENDER_ID", p.Firebase.MessagingSenderID)
	p.Firebase.AppID = getEnv("FIREBASE_APP_ID", p.Firebase.AppID)

	p.MySQL.Host = getEnv("MYSQL_HOST", p.MySQL.Host)
	p.MySQL.Port = getEnvInt("MYSQL_PORT", p.MySQL.Port)
	p.MySQL.Database = getEnv("MYSQL_DATABASE", p.MySQL.Database)
	p.MySQL.Username = getEnv("MYSQL_USERNAME", p.MySQL.Username)
	p.MySQL.Password = getEnv("MYSQL_PASSWORD", p.MySQL.Password)
	p.MySQL.SSL = getEnvBool("MYSQL_SSL", p.MySQL.SSL)
}

// Validate checks the store selection and, when a provider is selected,
// that every required variable for it is present.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: FH_STORE_PATH is required for the sqlite store", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for the redis store", ErrInvalidConfig)
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres store", ErrInvalidConfig)
		}
	case StoreMemory, StoreKeyring:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.HTTP.Port)
	}

	_, _, err := c.Provider.Credentials()
	return err
}

// Credentials returns the deploy-time credentials. ok is false when no provider is selected.
func (p ProviderConfig) Credentials() (creds domain.ProviderCredentials, ok bool, err error) {
	if strings.TrimSpace(p.Kind) == "" {
		return domain.ProviderCredentials{}, false, nil
	}

	kind, err := domain.ParseProviderKind(p.Kind)
	if err != nil {
		return domain.ProviderCredentials{}, true, fmt.Errorf("DATABASE_PROVIDER: %w", err)
	}

	var missing []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	creds.Kind = kind
	switch kind {
	case domain.ProviderKindSupabase:
		sb := p.Supabase
		require("SUPABASE_URL", sb.URL)
		require("SUPABASE_ANON_KEY", sb.AnonKey)
		creds.Supabase = &sb
	case domain.ProviderKindFirebase:
		fb := p.Firebase
		require("FIREBASE_API_KEY", fb.APIKey)
		require("FIREBASE_AUTH_DOMAIN", fb.AuthDomain)
		require("FIREBASE_PROJECT_ID", fb.ProjectID)
		require("FIREBASE_APP_ID", fb.AppID)
		creds.Firebase = &fb
	case domain.ProviderKindMySQL:
		my := p.MySQL
		require("MYSQL_HOST", my.Host)
		require("MYSQL_DATABASE", my.Database)
		require("MYSQL_USERNAME", my.Username)
		if my.Port == 0 {
			my.Port = domain.DefaultMySQLPort
		}
		creds.MySQL = &my
	}

	if len(missing) > 0 {
		return domain.ProviderCredentials{}, true, fmt.Errorf("%w: missing %s",
			domain.ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return creds, true, nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "freelancer-hub", "credentials.db")
}
