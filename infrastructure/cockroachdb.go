package infrastructure

import (
	"context"
	"database/sql"
	"time"
)

// NewCockroachFromEnv creates a *sql.DB for a CockroachDB results database.
// CockroachDB speaks the PostgreSQL wire protocol, so lib/pq is used.
//
// Env vars:
//
//	CRDB_HOST                  (default: "localhost")
//	CRDB_PORT                  (default: 26257)
//	CRDB_USER                  (default: "root")
//	CRDB_PASSWORD              (default: "")
//	CRDB_DATABASE              (default: "defaultdb")
//	CRDB_SSLMODE               (default: "disable")      // for --insecure
//	CRDB_MAX_OPEN_CONNS        (default: 0 -> driver default)
//	CRDB_MAX_IDLE_CONNS        (default: 0 -> driver default)
//	CRDB_CONN_MAX_LIFETIME_SEC (default: 0 -> no limit)
//	CRDB_CONNECT_TIMEOUT_SEC   (default: 5)
func NewCockroachFromEnv(parentCtx context.Context) (*sql.DB, func(), error) {
	cfg := loadCockroachConfigFromEnv()
	return openSQL(parentCtx, "cockroachdb", "postgres", buildPostgresDSN(cfg), cfg)
}

func loadCockroachConfigFromEnv() SQLConfig {
	return loadSQLConfigFromEnv("CRDB", SQLConfig{
		Host:           "localhost",
		Port:           26257,
		User:           "root",
		Database:       "defaultdb",
		SSLMode:        "disable",
		ConnectTimeout: 5 * time.Second,
	})
}
