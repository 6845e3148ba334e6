package infrastructure

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"suitea/utils"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	log "github.com/sirupsen/logrus"
)

// ElasticsearchConfig holds connection configuration for Elasticsearch.
type ElasticsearchConfig struct {
	Addresses          []string
	Username           string
	Password           string
	APIKey             string
	CloudID            string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// NewElasticsearchFromEnv creates a client and checks connectivity with an
// Info call.
//
// Env vars:
//
//	ELASTICSEARCH_URLS               (comma-separated, default: "http://localhost:9200")
//	ELASTICSEARCH_URL                (fallback if ELASTICSEARCH_URLS not set)
//	ELASTICSEARCH_USERNAME           (optional)
//	ELASTICSEARCH_PASSWORD           (optional)
//	ELASTICSEARCH_API_KEY            (optional)
//	ELASTICSEARCH_CLOUD_ID           (optional; for Elastic Cloud)
//	ELASTICSEARCH_TIMEOUT_SEC        (default: 5)
//	ELASTICSEARCH_INSECURE_SKIP_TLS  (true/false; default: false)
func NewElasticsearchFromEnv(parentCtx context.Context) (*elasticsearch.Client, time.Duration, error) {
	cfg := loadElasticsearchConfigFromEnv()

	if len(cfg.Addresses) == 0 && cfg.CloudID == "" {
		return nil, 0, fmt.Errorf("elasticsearch: no addresses or cloud ID configured")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		CloudID:   cfg.CloudID,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		Transport: buildElasticsearchTransport(cfg),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(parentCtx, cfg.Timeout)
	defer cancel()

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, 0, fmt.Errorf("elasticsearch: info call failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("elasticsearch: info call returned error status: %s", res.Status())
	}

	log.Printf("[elasticsearch] Connected addresses=%v cloud_id_set=%v", cfg.Addresses, cfg.CloudID != "")

	return client, cfg.Timeout, nil
}

func loadElasticsearchConfigFromEnv() ElasticsearchConfig {
	addresses := utils.SplitList(utils.GetEnvWithDefault(
		"ELASTICSEARCH_URLS",
		utils.GetEnvWithDefault("ELASTICSEARCH_URL", "http://localhost:9200"),
	))
	if len(addresses) == 0 {
		addresses = []string{"http://localhost:9200"}
	}

	return ElasticsearchConfig{
		Addresses:          addresses,
		Username:           utils.GetEnvWithDefault("ELASTICSEARCH_USERNAME", ""),
		Password:           utils.GetEnvWithDefault("ELASTICSEARCH_PASSWORD", ""),
		APIKey:             utils.GetEnvWithDefault("ELASTICSEARCH_API_KEY", ""),
		CloudID:            utils.GetEnvWithDefault("ELASTICSEARCH_CLOUD_ID", ""),
		Timeout:            time.Duration(utils.MustEnvIntWithDefault("ELASTICSEARCH_TIMEOUT_SEC", 5)) * time.Second,
		InsecureSkipVerify: utils.GetEnvBool("ELASTICSEARCH_INSECURE_SKIP_TLS", false),
	}
}

func buildElasticsearchTransport(cfg ElasticsearchConfig) http.RoundTripper {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, // local clusters with self-signed certs
		}
	}

	return transport
}
