package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"suitea/infrastructure"
	"suitea/suite"

	log "github.com/sirupsen/logrus"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	name string

	createRuns    string
	createSpeedup string

	// insertVerb starts an insert; upsertSuffix follows VALUES (...) and is
	// given the conflict key and the non-key columns.
	insertVerb   string
	upsertSuffix func(key []string, cols []string) string
	placeholder  func(i int) string
}

var postgresDialect = dialect{
	name: "postgres",
	createRuns: `CREATE TABLE IF NOT EXISTS ` + RunsTable + ` (
		id            TEXT PRIMARY KEY,
		suite         TEXT NOT NULL,
		file          TEXT NOT NULL,
		n             INTEGER NOT NULL,
		w             INTEGER NOT NULL,
		h             INTEGER NOT NULL,
		mode          TEXT NOT NULL,
		p             INTEGER NOT NULL,
		run           INTEGER NOT NULL,
		mean_sim_ms   DOUBLE PRECISION,
		mean_shade_ms DOUBLE PRECISION,
		mean_fps      DOUBLE PRECISION
	)`,
	createSpeedup: `CREATE TABLE IF NOT EXISTS ` + SpeedupTable + ` (
		id         TEXT PRIMARY KEY,
		n          INTEGER NOT NULL,
		p          INTEGER NOT NULL,
		tseq_ms    DOUBLE PRECISION,
		tpar_ms    DOUBLE PRECISION,
		speedup    DOUBLE PRECISION,
		efficiency DOUBLE PRECISION,
		fps_seq    DOUBLE PRECISION,
		fps_omp    DOUBLE PRECISION
	)`,
	insertVerb: "INSERT INTO",
	upsertSuffix: func(key []string, cols []string) string {
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = c + " = EXCLUDED." + c
		}
		return " ON CONFLICT (" + strings.Join(key, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
	},
	placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
}

// cockroachDialect shares the PostgreSQL DDL and uses UPSERT.
var cockroachDialect = dialect{
	name:          "cockroachdb",
	createRuns:    postgresDialect.createRuns,
	createSpeedup: postgresDialect.createSpeedup,
	insertVerb:    "UPSERT INTO",
	upsertSuffix:  func([]string, []string) string { return "" },
	placeholder:   postgresDialect.placeholder,
}

// clickhouseDialect deduplicates by id on merge (ReplacingMergeTree).
var clickhouseDialect = dialect{
	name: "clickhouse",
	createRuns: `CREATE TABLE IF NOT EXISTS ` + RunsTable + ` (
		id            String,
		suite         LowCardinality(String),
		file          String,
		n             Int32,
		w             Int32,
		h             Int32,
		mode          LowCardinality(String),
		p             Int32,
		run           Int32,
		mean_sim_ms   Nullable(Float64),
		mean_shade_ms Nullable(Float64),
		mean_fps      Nullable(Float64)
	) ENGINE = ReplacingMergeTree ORDER BY id`,
	createSpeedup: `CREATE TABLE IF NOT EXISTS ` + SpeedupTable + ` (
		id         String,
		n          Int32,
		p          Int32,
		tseq_ms    Nullable(Float64),
		tpar_ms    Nullable(Float64),
		speedup    Nullable(Float64),
		efficiency Nullable(Float64),
		fps_seq    Nullable(Float64),
		fps_omp    Nullable(Float64)
	) ENGINE = ReplacingMergeTree ORDER BY id`,
	insertVerb:   "INSERT INTO",
	upsertSuffix: func([]string, []string) string { return "" },
	placeholder:  func(int) string { return "?" },
}

func (d dialect) insert(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = d.placeholder(i + 1)
	}
	return d.insertVerb + " " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")" +
		d.upsertSuffix([]string{cols[0]}, cols[1:])
}

func (d dialect) drop(table string) string {
	return "DROP TABLE IF EXISTS " + table
}

// SQLSink stores results through database/sql.
type SQLSink struct {
	db      *sql.DB
	dialect dialect
	timeout time.Duration
}

func newSQLSink(db *sql.DB, d dialect) *SQLSink {
	return &SQLSink{db: db, dialect: d, timeout: 60 * time.Second}
}

func OpenPostgres(ctx context.Context) (Sink, func(), error) {
	db, cleanup, err := infrastructure.NewPostgresFromEnv(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return newSQLSink(db, postgresDialect), cleanup, nil
}

func OpenCockroach(ctx context.Context) (Sink, func(), error) {
	db, cleanup, err := infrastructure.NewCockroachFromEnv(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return newSQLSink(db, cockroachDialect), cleanup, nil
}

func OpenClickhouse(ctx context.Context) (Sink, func(), error) {
	db, cleanup, err := infrastructure.NewClickhouseFromEnv(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return newSQLSink(db, clickhouseDialect), cleanup, nil
}

func (s *SQLSink) CreateSchema(ctx context.Context) error {
	for _, q := range []string{s.dialect.createRuns, s.dialect.createSpeedup} {
		if err := s.exec(ctx, q); err != nil {
			return err
		}
	}
	log.Printf("[%s] created tables %s, %s", s.dialect.name, RunsTable, SpeedupTable)
	return nil
}

func (s *SQLSink) Drop(ctx context.Context) error {
	for _, t := range []string{RunsTable, SpeedupTable} {
		if err := s.exec(ctx, s.dialect.drop(t)); err != nil {
			return err
		}
	}
	log.Printf("[%s] dropped tables %s, %s", s.dialect.name, RunsTable, SpeedupTable)
	return nil
}

func (s *SQLSink) exec(ctx context.Context, q string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("[%s] exec %q: %w", s.dialect.name, firstLine(q), err)
	}
	return nil
}

// Load writes both tables in one transaction per table.
func (s *SQLSink) Load(ctx context.Context, runs []suite.LogRecord, speedup []suite.SpeedupRow) error {
	runArgs := make([][]any, len(runs))
	for i, r := range runs {
		runArgs[i] = toRunDoc(r).args()
	}
	if err := s.insertAll(ctx, RunsTable, runColumns, runArgs); err != nil {
		return err
	}

	speedupArgs := make([][]any, len(speedup))
	for i, r := range speedup {
		speedupArgs[i] = toSpeedupDoc(r).args()
	}
	if err := s.insertAll(ctx, SpeedupTable, speedupColumns, speedupArgs); err != nil {
		return err
	}

	log.Printf("[%s] loaded %d runs, %d speedup rows", s.dialect.name, len(runs), len(speedup))
	return nil
}

func (s *SQLSink) insertAll(ctx context.Context, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[%s] begin: %w", s.dialect.name, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.insert(table, cols))
	if err != nil {
		return fmt.Errorf("[%s] prepare insert %s: %w", s.dialect.name, table, err)
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("[%s] insert %s: %w", s.dialect.name, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[%s] commit %s: %w", s.dialect.name, table, err)
	}
	return nil
}

func firstLine(q string) string {
	q = strings.TrimSpace(q)
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		return q[:i]
	}
	return q
}
