package postgres

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN_URL(t *testing.T) {
	cfg := DefaultConfig("postgres://hub:secret@db:5432/hub?sslmode=disable")

	u, err := url.Parse(cfg.dsn())
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "disable", q.Get("sslmode"))
	assert.Equal(t, "freelancer-hub", q.Get("application_name"))
	assert.Equal(t, "10", q.Get("connect_timeout"))
	assert.Equal(t, "secret", func() string { p, _ := u.User.Password(); return p }())
}

func TestConfig_DSN_KeepsExplicitParams(t *testing.T) {
	cfg := DefaultConfig("postgresql://db/hub?application_name=ops")

	u, err := url.Parse(cfg.dsn())
	require.NoError(t, err)
	assert.Equal(t, "ops", u.Query().Get("application_name"))
}

func TestConfig_DSN_KeyValue(t *testing.T) {
	cfg := Config{
		URL:             "host=db dbname=hub connect_timeout=3",
		ApplicationName: "freelancer-hub",
		ConnectTimeout:  500 * time.Millisecond,
	}

	dsn := cfg.dsn()
	assert.True(t, strings.HasPrefix(dsn, "host=db dbname=hub"))
	assert.Contains(t, dsn, "application_name='freelancer-hub'")
	assert.Equal(t, 1, strings.Count(dsn, "connect_timeout="), "explicit timeout wins")
}
