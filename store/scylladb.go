package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"suitea/infrastructure"
	"suitea/suite"

	"github.com/gocql/gocql"
	log "github.com/sirupsen/logrus"
)

// ScyllaSink stores results in CQL tables. CQL INSERT is an upsert.
type ScyllaSink struct {
	session *gocql.Session
	timeout time.Duration
}

func OpenScylla(ctx context.Context) (Sink, func(), error) {
	session, cleanup, err := infrastructure.NewScyllaFromEnv(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return &ScyllaSink{session: session, timeout: 30 * time.Second}, cleanup, nil
}

var scyllaSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + RunsTable + ` (
		id text,
		suite text,
		file text,
		n int,
		w int,
		h int,
		mode text,
		p int,
		run int,
		mean_sim_ms double,
		mean_shade_ms double,
		mean_fps double,
		PRIMARY KEY (id)
	)`,
	`CREATE TABLE IF NOT EXISTS ` + SpeedupTable + ` (
		id text,
		n int,
		p int,
		tseq_ms double,
		tpar_ms double,
		speedup double,
		efficiency double,
		fps_seq double,
		fps_omp double,
		PRIMARY KEY (id)
	)`,
}

func cqlInsert(table string, cols []string) string {
	return "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
}

func (s *ScyllaSink) CreateSchema(ctx context.Context) error {
	for _, q := range scyllaSchema {
		if err := s.exec(ctx, q); err != nil {
			return err
		}
	}
	log.Printf("[scylladb] created tables %s, %s", RunsTable, SpeedupTable)
	return nil
}

func (s *ScyllaSink) Drop(ctx context.Context) error {
	for _, t := range []string{RunsTable, SpeedupTable} {
		if err := s.exec(ctx, "DROP TABLE IF EXISTS "+t); err != nil {
			return err
		}
	}
	log.Printf("[scylladb] dropped tables %s, %s", RunsTable, SpeedupTable)
	return nil
}

func (s *ScyllaSink) exec(ctx context.Context, q string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.session.Query(q, args...).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("[scylladb] exec %q: %w", firstLine(q), err)
	}
	return nil
}

func (s *ScyllaSink) Load(ctx context.Context, runs []suite.LogRecord, speedup []suite.SpeedupRow) error {
	insertRun := cqlInsert(RunsTable, runColumns)
	for _, r := range runs {
		if err := s.exec(ctx, insertRun, toRunDoc(r).args()...); err != nil {
			return err
		}
	}

	insertSpeedup := cqlInsert(SpeedupTable, speedupColumns)
	for _, r := range speedup {
		if err := s.exec(ctx, insertSpeedup, toSpeedupDoc(r).args()...); err != nil {
			return err
		}
	}

	log.Printf("[scylladb] loaded %d runs, %d speedup rows", len(runs), len(speedup))
	return nil
}
