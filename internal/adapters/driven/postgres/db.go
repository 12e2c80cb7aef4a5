package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// DB is the pool behind the postgres secret backend and advisory lock
type DB struct {
	*sql.DB
}

// Config holds database connection configuration
type Config struct {
	// URL is a postgres:// connection URL or a key=value DSN
	URL string

	// ApplicationName is reported in pg_stat_activity
	ApplicationName string

	// ConnectTimeout bounds the initial ping
	ConnectTimeout time.Duration

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a small pool. Credentials are read rarely; the
// advisory lock pins one extra connection while a switch runs.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		ApplicationName: "freelancer-hub",
		ConnectTimeout:  10 * time.Second,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: 10 * time.Minute,
	}
}

// dsn adds application_name and connect_timeout unless the caller set them
func (c Config) dsn() string {
	params := map[string]string{}
	if c.ApplicationName != "" {
		params["application_name"] = c.ApplicationName
	}
	if c.ConnectTimeout > 0 {
		params["connect_timeout"] = strconv.Itoa(max(1, int(c.ConnectTimeout.Seconds())))
	}

	if u, err := url.Parse(c.URL); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		q := u.Query()
		for k, v := range params {
			if q.Get(k) == "" {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	dsn := c.URL
	for k, v := range params {
		if !strings.Contains(dsn, k+"=") {
			dsn += fmt.Sprintf(" %s='%s'", k, v)
		}
	}
	return strings.TrimSpace(dsn)
}

// Connect opens the pool and pings it within ConnectTimeout
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	db, err := sql.Open("postgres", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// InitSchema creates the credential table if missing
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
