package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

var envKeys = []string{
	"FH_CONFIG_FILE", "LOG_LEVEL", "HOST", "PORT", "FH_ADMIN_TOKEN",
	"FH_STORE_BACKEND", "FH_STORE_PATH", "FH_STORE_PREFIX", "FH_STORE_PASSPHRASE",
	"REDIS_URL", "DATABASE_URL", "FH_KEYRING_SERVICE",
	"DATABASE_PROVIDER", "SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_SERVICE_ROLE_KEY",
	"FIREBASE_API_KEY", "FIREBASE_AUTH_DOMAIN", "FIREBASE_PROJECT_ID",
	"FIREBASE_STORAGE_BUCKET", "FIREBASE_MESSAGING_SENDER_ID", "FIREBASE_APP_ID",
	"MYSQL_HOST", "MYSQL_PORT", "MYSQL_DATABASE", "MYSQL_USERNAME", "MYSQL_PASSWORD", "MYSQL_SSL",
}

// clearEnv blanks every variable Load reads; getEnv treats empty as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host, "loopback unless told otherwise")
	assert.Empty(t, cfg.HTTP.AllowedOrigins)
	assert.Empty(t, cfg.HTTP.AdminToken)
	assert.Equal(t, StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, "fh_", cfg.Store.Prefix)
	assert.NotEmpty(t, cfg.Store.Path)

	_, ok, err := cfg.Provider.Credentials()
	require.NoError(t, err)
	assert.False(t, ok, "no provider selected by default")
}

func TestLoad_SupabaseFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_PROVIDER", "supabase")
	t.Setenv("SUPABASE_URL", "https://x.example/")
	t.Setenv("SUPABASE_ANON_KEY", "abc123")

	cfg, err := Load("")
	require.NoError(t, err)

	creds, ok, err := cfg.Provider.Credentials()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.ProviderKindSupabase, creds.Kind)
	assert.Equal(t, "abc123", creds.Supabase.AnonKey)
	assert.False(t, creds.HasElevated())
	assert.NoError(t, creds.Validate())
}

func TestLoad_MissingVariablesAreListed(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_PROVIDER", "supabase")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_ANON_KEY")
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_PROVIDER", "oracle")

	_, err := Load("")
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
}

func TestLoad_MySQLDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_PROVIDER", "mysql")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_DATABASE", "hub")
	t.Setenv("MYSQL_USERNAME", "root")
	t.Setenv("MYSQL_SSL", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	creds, _, err := cfg.Provider.Credentials()
	require.NoError(t, err)
	assert.Equal(t, 3306, creds.MySQL.Port)
	assert.True(t, creds.MySQL.SSL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
http:
  port: 9090
store:
  backend: memory
provider:
  kind: supabase
  supabase:
    url: https://file.example/
    anon_key: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("SUPABASE_ANON_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "https://file.example/", cfg.Provider.Supabase.URL)
	assert.Equal(t, "from-env", cfg.Provider.Supabase.AnonKey, "env wins over file")
	assert.Equal(t, "fh_", cfg.Store.Prefix, "defaults survive a partial file")
}

func TestLoad_StoreValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"redis without url", map[string]string{"FH_STORE_BACKEND": "redis"}, true},
		{"redis with url", map[string]string{"FH_STORE_BACKEND": "redis", "REDIS_URL": "redis://localhost:6379"}, false},
		{"postgres without url", map[string]string{"FH_STORE_BACKEND": "postgres"}, true},
		{"keyring", map[string]string{"FH_STORE_BACKEND": "keyring"}, false},
		{"unknown", map[string]string{"FH_STORE_BACKEND": "etcd"}, true},
		{"bad port", map[string]string{"PORT": "70000"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_AdminTokenFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FH_ADMIN_TOKEN", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.HTTP.AdminToken)
}
