package infrastructure

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"suitea/utils"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig holds the connection configuration for MongoDB.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// NewMongoFromEnv connects to MongoDB and pings the primary.
//
// Env vars:
//
//	MONGO_URI                 (optional; if set, overrides host/user/pass/port)
//	MONGO_HOST                (default: "localhost")
//	MONGO_PORT                (default: 27017)
//	MONGO_USER                (default: "")
//	MONGO_PASSWORD            (default: "")
//	MONGO_DATABASE            (default: "suitea")
//	MONGO_AUTH_SOURCE         (default: "admin", only with MONGO_USER)
//	MONGO_CONNECT_TIMEOUT_SEC (default: 5)
func NewMongoFromEnv(parentCtx context.Context) (*mongo.Database, func(), error) {
	cfg := loadMongoConfigFromEnv()

	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		clientOpts = clientOpts.
			SetConnectTimeout(cfg.ConnectTimeout).
			SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	ctx, cancel := context.WithTimeout(parentCtx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, func() {}, fmt.Errorf("mongodb: connect failed: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, func() {}, fmt.Errorf("mongodb: ping failed: %w", err)
	}

	log.Printf("[mongodb] Connected db=%q", cfg.Database)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("[mongodb] disconnect error: %v", err)
		}
	}

	return client.Database(cfg.Database), cleanup, nil
}

func loadMongoConfigFromEnv() MongoConfig {
	dbName := utils.GetEnvWithDefault("MONGO_DATABASE", "suitea")
	timeout := time.Duration(utils.MustEnvIntWithDefault("MONGO_CONNECT_TIMEOUT_SEC", 5)) * time.Second

	if uri := utils.GetEnvWithDefault("MONGO_URI", ""); uri != "" {
		return MongoConfig{URI: uri, Database: dbName, ConnectTimeout: timeout}
	}

	host := utils.GetEnvWithDefault("MONGO_HOST", "localhost")
	port := utils.MustEnvIntWithDefault("MONGO_PORT", 27017)
	user := utils.GetEnvWithDefault("MONGO_USER", "")
	password := utils.GetEnvWithDefault("MONGO_PASSWORD", "")

	u := &url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/",
	}
	if user != "" {
		u.User = url.UserPassword(user, password)
		q := url.Values{}
		q.Set("authSource", utils.GetEnvWithDefault("MONGO_AUTH_SOURCE", "admin"))
		u.RawQuery = q.Encode()
	}

	return MongoConfig{URI: u.String(), Database: dbName, ConnectTimeout: timeout}
}
