// Package store persists analyzer results into the supported backends.
//
// Every backend holds two tables (or collections, or indices):
//
//	suitea_runs     one row per log file, keyed by RunID
//	suitea_speedup  one row per (N, p)
//
// Loading is an upsert, so loading the same logs twice leaves one copy.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"suitea/suite"
)

const (
	RunsTable    = "suitea_runs"
	SpeedupTable = "suitea_speedup"
)

// Sink is one results backend.
type Sink interface {
	CreateSchema(ctx context.Context) error
	Load(ctx context.Context, runs []suite.LogRecord, speedup []suite.SpeedupRow) error
	Drop(ctx context.Context) error
}

// Opener connects to a backend using its environment configuration.
// The returned cleanup must be called when done.
type Opener func(ctx context.Context) (Sink, func(), error)

// Openers maps backend names, as used on the command line, to constructors.
var Openers = map[string]Opener{
	"postgres":      OpenPostgres,
	"cockroachdb":   OpenCockroach,
	"clickhouse":    OpenClickhouse,
	"mongodb":       OpenMongo,
	"elasticsearch": OpenElasticsearch,
	"scylladb":      OpenScylla,
}

// Names lists the backend names in order.
func Names() []string {
	names := make([]string, 0, len(Openers))
	for n := range Openers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open looks up name in Openers and connects.
func Open(ctx context.Context, name string) (Sink, func(), error) {
	open, ok := Openers[name]
	if !ok {
		return nil, func() {}, fmt.Errorf("unknown store %q (expected one of: %s)", name, strings.Join(Names(), ", "))
	}
	return open(ctx)
}
