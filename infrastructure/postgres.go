package infrastructure

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgresFromEnv creates a *sql.DB for the results database.
//
// Env vars:
//
//	PG_HOST                  (default: "localhost")
//	PG_PORT                  (default: 5432)
//	PG_USER                  (default: "postgres")
//	PG_PASSWORD              (default: "postgres")
//	PG_DATABASE              (default: "suitea")
//	PG_SSLMODE               (default: "disable")
//	PG_MAX_OPEN_CONNS        (default: 0 -> driver default)
//	PG_MAX_IDLE_CONNS        (default: 0 -> driver default)
//	PG_CONN_MAX_LIFETIME_SEC (default: 0 -> no limit)
//	PG_CONNECT_TIMEOUT_SEC   (default: 5)
func NewPostgresFromEnv(parentCtx context.Context) (*sql.DB, func(), error) {
	cfg := loadPostgresConfigFromEnv()
	return openSQL(parentCtx, "postgres", "postgres", buildPostgresDSN(cfg), cfg)
}

func loadPostgresConfigFromEnv() SQLConfig {
	return loadSQLConfigFromEnv("PG", SQLConfig{
		Host:           "localhost",
		Port:           5432,
		User:           "postgres",
		Password:       "postgres",
		Database:       "suitea",
		SSLMode:        "disable",
		ConnectTimeout: 5 * time.Second,
	})
}

// buildPostgresDSN is shared with CockroachDB, which speaks the same wire
// protocol.
func buildPostgresDSN(cfg SQLConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Database,
	}

	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout/time.Second)))
	}
	u.RawQuery = q.Encode()

	return u.String()
}
