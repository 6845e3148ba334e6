package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"suitea/utils"

	"github.com/gocql/gocql"
	log "github.com/sirupsen/logrus"
)

// NewScyllaFromEnv opens a session on the results keyspace, creating it
// (SimpleStrategy, replication_factor 1) when missing.
//
// Env vars:
//
//	SCYLLA_HOSTS / SCYLLA_HOST   (comma-separated, default: "localhost")
//	SCYLLA_PORT                  (default: 9042)
//	SCYLLA_KEYSPACE              (default: "suitea")
//	SCYLLA_USER, SCYLLA_PASSWORD (optional)
//	SCYLLA_CONSISTENCY           (any CQL level name; default: LOCAL_QUORUM)
//	SCYLLA_TIMEOUT_SEC           (default: 5)
//	SCYLLA_CONNECT_TIMEOUT_SEC   (default: SCYLLA_TIMEOUT_SEC)
func NewScyllaFromEnv(parentCtx context.Context) (*gocql.Session, func(), error) {
	cluster := scyllaClusterFromEnv()
	keyspace := cluster.Keyspace
	if keyspace == "" {
		return nil, func() {}, fmt.Errorf("scylladb: keyspace is empty")
	}

	// CreateSession copies the config, so the same cluster serves both sessions.
	cluster.Keyspace = ""
	bootstrap, err := cluster.CreateSession()
	if err != nil {
		return nil, func() {}, fmt.Errorf("scylladb: bootstrap session on %v: %w", cluster.Hosts, err)
	}
	err = createKeyspace(parentCtx, bootstrap, keyspace, cluster.Timeout)
	bootstrap.Close()
	if err != nil {
		return nil, func() {}, err
	}

	cluster.Keyspace = keyspace
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, func() {}, fmt.Errorf("scylladb: session on %s: %w", keyspace, err)
	}

	log.Printf("[scylladb] Connected hosts=%v keyspace=%q consistency=%v", cluster.Hosts, keyspace, cluster.Consistency)
	return session, session.Close, nil
}

func createKeyspace(ctx context.Context, session *gocql.Session, keyspace string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stmt := "CREATE KEYSPACE IF NOT EXISTS " + keyspace +
		" WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}"
	if err := session.Query(stmt).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("scylladb: create keyspace %s: %w", keyspace, err)
	}
	return nil
}

func scyllaClusterFromEnv() *gocql.ClusterConfig {
	hosts := utils.SplitList(utils.GetEnvWithDefault("SCYLLA_HOSTS", utils.GetEnvWithDefault("SCYLLA_HOST", "")))
	if len(hosts) == 0 {
		hosts = []string{"localhost"}
	}
	timeout := utils.MustEnvIntWithDefault("SCYLLA_TIMEOUT_SEC", 5)

	cluster := gocql.NewCluster(hosts...)
	cluster.Port = utils.MustEnvIntWithDefault("SCYLLA_PORT", 9042)
	cluster.Keyspace = utils.GetEnvWithDefault("SCYLLA_KEYSPACE", "suitea")
	cluster.Consistency = scyllaConsistency(utils.GetEnvWithDefault("SCYLLA_CONSISTENCY", "LOCAL_QUORUM"))
	cluster.Timeout = time.Duration(timeout) * time.Second
	cluster.ConnectTimeout = time.Duration(utils.MustEnvIntWithDefault("SCYLLA_CONNECT_TIMEOUT_SEC", timeout)) * time.Second

	if user := utils.GetEnvWithDefault("SCYLLA_USER", ""); user != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: user,
			Password: utils.GetEnvWithDefault("SCYLLA_PASSWORD", ""),
		}
	}
	return cluster
}

func scyllaConsistency(s string) gocql.Consistency {
	c, err := gocql.ParseConsistencyWrapper(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		log.Warnf("[scylladb] SCYLLA_CONSISTENCY=%q: %v, using LOCAL_QUORUM", s, err)
		return gocql.LocalQuorum
	}
	return c
}
