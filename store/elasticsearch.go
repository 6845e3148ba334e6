package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"suitea/infrastructure"
	"suitea/suite"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	log "github.com/sirupsen/logrus"
)

// ElasticsearchSink stores one document per row, with _id set so bulk
// indexing overwrites earlier loads.
type ElasticsearchSink struct {
	es      *elasticsearch.Client
	timeout time.Duration
}

func OpenElasticsearch(ctx context.Context) (Sink, func(), error) {
	es, timeout, err := infrastructure.NewElasticsearchFromEnv(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	if timeout < 30*time.Second {
		timeout = 30 * time.Second
	}
	// go-elasticsearch does not expose Close.
	return &ElasticsearchSink{es: es, timeout: timeout}, func() {}, nil
}

var esMappings = map[string]string{
	RunsTable: `{
  "settings": {"number_of_shards": 1, "number_of_replicas": 0},
  "mappings": {
    "dynamic": "strict",
    "properties": {
      "id":            {"type": "keyword"},
      "suite":         {"type": "keyword"},
      "file":          {"type": "keyword"},
      "n":             {"type": "integer"},
      "w":             {"type": "integer"},
      "h":             {"type": "integer"},
      "mode":          {"type": "keyword"},
      "p":             {"type": "integer"},
      "run":           {"type": "integer"},
      "mean_sim_ms":   {"type": "double"},
      "mean_shade_ms": {"type": "double"},
      "mean_fps":      {"type": "double"}
    }
  }
}`,
	SpeedupTable: `{
  "settings": {"number_of_shards": 1, "number_of_replicas": 0},
  "mappings": {
    "dynamic": "strict",
    "properties": {
      "id":         {"type": "keyword"},
      "n":          {"type": "integer"},
      "p":          {"type": "integer"},
      "tseq_ms":    {"type": "double"},
      "tpar_ms":    {"type": "double"},
      "speedup":    {"type": "double"},
      "efficiency": {"type": "double"},
      "fps_seq":    {"type": "double"},
      "fps_omp":    {"type": "double"}
    }
  }
}`,
}

func (s *ElasticsearchSink) CreateSchema(ctx context.Context) error {
	for _, index := range []string{RunsTable, SpeedupTable} {
		ctxCreate, cancel := context.WithTimeout(ctx, s.timeout)
		res, err := s.es.Indices.Create(
			index,
			s.es.Indices.Create.WithBody(strings.NewReader(esMappings[index])),
			s.es.Indices.Create.WithContext(ctxCreate),
		)
		cancel()
		if err != nil {
			return fmt.Errorf("[elasticsearch] indices.create %q failed: %w", index, err)
		}
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()

		if res.IsError() {
			if strings.Contains(string(body), "resource_already_exists_exception") {
				log.Printf("[elasticsearch] index %q already exists (continuing)", index)
				continue
			}
			return fmt.Errorf("[elasticsearch] indices.create %q returned error: %s", index, res.Status())
		}
	}
	log.Printf("[elasticsearch] created indices %s, %s", RunsTable, SpeedupTable)
	return nil
}

func (s *ElasticsearchSink) Drop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.es.Indices.Delete(
		[]string{RunsTable, SpeedupTable},
		s.es.Indices.Delete.WithIgnoreUnavailable(true),
		s.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("[elasticsearch] indices.delete failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("[elasticsearch] indices.delete returned error: %s", res.Status())
	}
	log.Printf("[elasticsearch] dropped indices %s, %s", RunsTable, SpeedupTable)
	return nil
}

func (s *ElasticsearchSink) Load(ctx context.Context, runs []suite.LogRecord, speedup []suite.SpeedupRow) error {
	body, n, err := bulkBody(runs, speedup)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.es.Bulk(bytes.NewReader(body), s.es.Bulk.WithContext(ctx), s.es.Bulk.WithRefresh("true"))
	if err != nil {
		return fmt.Errorf("[elasticsearch] bulk index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("[elasticsearch] bulk index returned error: %s", res.Status())
	}

	var summary struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		return fmt.Errorf("[elasticsearch] decode bulk response: %w", err)
	}
	if summary.Errors {
		return fmt.Errorf("[elasticsearch] bulk index reported item errors")
	}

	log.Printf("[elasticsearch] loaded %d runs, %d speedup rows", len(runs), len(speedup))
	return nil
}

// bulkBody builds the NDJSON bulk payload and returns the number of documents.
func bulkBody(runs []suite.LogRecord, speedup []suite.SpeedupRow) ([]byte, int, error) {
	var buf bytes.Buffer
	n := 0

	add := func(index, id string, doc any) error {
		meta := map[string]map[string]string{"index": {"_index": index, "_id": id}}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return fmt.Errorf("[elasticsearch] encode bulk meta: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return fmt.Errorf("[elasticsearch] encode %s doc %s: %w", index, id, err)
		}
		n++
		return nil
	}

	for _, r := range runs {
		doc := toRunDoc(r)
		if err := add(RunsTable, doc.ID, doc); err != nil {
			return nil, 0, err
		}
	}
	for _, r := range speedup {
		doc := toSpeedupDoc(r)
		if err := add(SpeedupTable, doc.ID, doc); err != nil {
			return nil, 0, err
		}
	}

	return buf.Bytes(), n, nil
}
