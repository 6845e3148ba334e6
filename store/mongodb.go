package store

import (
	"context"
	"fmt"
	"time"

	"suitea/infrastructure"
	"suitea/suite"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSink stores results as documents keyed by _id.
type MongoSink struct {
	db      *mongo.Database
	timeout time.Duration
}

func OpenMongo(ctx context.Context) (Sink, func(), error) {
	db, cleanup, err := infrastructure.NewMongoFromEnv(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return &MongoSink{db: db, timeout: 30 * time.Second}, cleanup, nil
}

// mongoIndexes are the secondary indexes; _id covers lookups by key.
var mongoIndexes = map[string][]mongo.IndexModel{
	RunsTable: {
		{
			Keys:    bson.D{{Key: "n", Value: 1}, {Key: "mode", Value: 1}, {Key: "p", Value: 1}},
			Options: options.Index().SetName("ix_runs_config"),
		},
	},
	SpeedupTable: {
		{
			Keys:    bson.D{{Key: "n", Value: 1}, {Key: "p", Value: 1}},
			Options: options.Index().SetName("ix_speedup_n_p").SetUnique(true),
		},
	},
}

func (s *MongoSink) CreateSchema(ctx context.Context) error {
	for _, name := range []string{RunsTable, SpeedupTable} {
		ctxCreate, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.db.CreateCollection(ctxCreate, name)
		cancel()
		if err != nil {
			// most likely NamespaceExists
			log.Printf("[mongodb] CreateCollection %s: %v (continuing)", name, err)
		}

		ctxIdx, cancel := context.WithTimeout(ctx, s.timeout)
		_, err = s.db.Collection(name).Indexes().CreateMany(ctxIdx, mongoIndexes[name])
		cancel()
		if err != nil {
			return fmt.Errorf("[mongodb] create indexes on %s: %w", name, err)
		}
	}
	log.Printf("[mongodb] created collections %s, %s", RunsTable, SpeedupTable)
	return nil
}

func (s *MongoSink) Drop(ctx context.Context) error {
	for _, name := range []string{RunsTable, SpeedupTable} {
		ctxDrop, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.db.Collection(name).Drop(ctxDrop)
		cancel()
		if err != nil {
			return fmt.Errorf("[mongodb] drop %s: %w", name, err)
		}
	}
	log.Printf("[mongodb] dropped collections %s, %s", RunsTable, SpeedupTable)
	return nil
}

func (s *MongoSink) Load(ctx context.Context, runs []suite.LogRecord, speedup []suite.SpeedupRow) error {
	if err := s.replaceAll(ctx, RunsTable, runModels(runs)); err != nil {
		return err
	}
	if err := s.replaceAll(ctx, SpeedupTable, speedupModels(speedup)); err != nil {
		return err
	}
	log.Printf("[mongodb] loaded %d runs, %d speedup rows", len(runs), len(speedup))
	return nil
}

func (s *MongoSink) replaceAll(ctx context.Context, coll string, writes []mongo.WriteModel) error {
	if len(writes) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := s.db.Collection(coll).BulkWrite(ctx, writes, opts); err != nil {
		return fmt.Errorf("[mongodb] bulk write %s: %w", coll, err)
	}
	return nil
}

func runModels(runs []suite.LogRecord) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(runs))
	for _, r := range runs {
		doc := toRunDoc(r)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: doc.ID}}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	return writes
}

func speedupModels(rows []suite.SpeedupRow) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(rows))
	for _, r := range rows {
		doc := toSpeedupDoc(r)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: doc.ID}}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	return writes
}
