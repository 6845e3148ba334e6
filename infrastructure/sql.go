package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"suitea/utils"

	log "github.com/sirupsen/logrus"
)

// SQLConfig holds the connection + pool configuration shared by the
// database/sql backends (PostgreSQL, CockroachDB, ClickHouse).
type SQLConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// loadSQLConfigFromEnv reads <prefix>_HOST, <prefix>_PORT, <prefix>_USER,
// <prefix>_PASSWORD, <prefix>_DATABASE, <prefix>_SSLMODE,
// <prefix>_MAX_OPEN_CONNS, <prefix>_MAX_IDLE_CONNS,
// <prefix>_CONN_MAX_LIFETIME_SEC and <prefix>_CONNECT_TIMEOUT_SEC.
func loadSQLConfigFromEnv(prefix string, def SQLConfig) SQLConfig {
	env := func(name string) string { return prefix + "_" + name }

	connectTimeoutSec := utils.MustEnvIntWithDefault(env("CONNECT_TIMEOUT_SEC"), int(def.ConnectTimeout/time.Second))
	connMaxLifetimeSec := utils.MustEnvIntWithDefault(env("CONN_MAX_LIFETIME_SEC"), 0)

	return SQLConfig{
		Host:            utils.GetEnvWithDefault(env("HOST"), def.Host),
		Port:            utils.MustEnvIntWithDefault(env("PORT"), def.Port),
		User:            utils.GetEnvWithDefault(env("USER"), def.User),
		Password:        utils.GetEnvWithDefault(env("PASSWORD"), def.Password),
		Database:        utils.GetEnvWithDefault(env("DATABASE"), def.Database),
		SSLMode:         utils.GetEnvWithDefault(env("SSLMODE"), def.SSLMode),
		MaxOpenConns:    utils.MustEnvIntWithDefault(env("MAX_OPEN_CONNS"), 0),
		MaxIdleConns:    utils.MustEnvIntWithDefault(env("MAX_IDLE_CONNS"), 0),
		ConnMaxLifetime: time.Duration(connMaxLifetimeSec) * time.Second,
		ConnectTimeout:  time.Duration(connectTimeoutSec) * time.Second,
	}
}

// openSQL opens driver with dsn, applies pool settings and pings it with
// cfg.ConnectTimeout so a bad config fails fast.
func openSQL(parentCtx context.Context, name, driver, dsn string, cfg SQLConfig) (*sql.DB, func(), error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, func() {}, fmt.Errorf("sql.Open %s: %w", name, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(parentCtx, cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, func() {}, fmt.Errorf("%s ping failed: %w", name, err)
	}

	log.Printf("[%s] Connected host=%s port=%d db=%q user=%q", name, cfg.Host, cfg.Port, cfg.Database, cfg.User)

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Printf("[%s] close error: %v", name, err)
		}
	}

	return db, cleanup, nil
}
