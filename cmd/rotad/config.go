package main

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	rota "github.com/rotad/rota"
	"github.com/rotad/rota/ingest"
	"github.com/rotad/rota/internal/envcfg"
	"github.com/rotad/rota/store"
)

// daemonConfig is the rotad configuration, loaded from an optional YAML file
// and overridable per field through ROTA_* environment variables.
type daemonConfig struct {
	// HTTPAddr is the listen address of the REST API.
	HTTPAddr string `yaml:"httpAddr"`

	// NATSURL points at the JetStream deployment backing the stores. Empty
	// selects the in-memory store (single-process, non-durable).
	NATSURL string `yaml:"natsUrl"`

	// EmbeddedNATS starts an in-process JetStream server and connects the
	// stores to it, for single-binary durable deployments. Overrides NATSURL.
	EmbeddedNATS bool `yaml:"embeddedNats"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `yaml:"storeDir"`

	// ShutdownTimeout bounds graceful drain of in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// Allocator configures the allocator core.
	Allocator rota.Config `yaml:"allocator"`

	// Buckets names the KV buckets when a NATS store is selected.
	Buckets store.NATSKVConfig `yaml:"buckets"`

	// Upload is the CSV column mapping for POST /upload-items.
	Upload ingest.ColumnMapping `yaml:"upload"`
}

func defaultDaemonConfig() daemonConfig {
	return daemonConfig{
		HTTPAddr:        ":8080",
		StoreDir:        "./rotad-data",
		ShutdownTimeout: 10 * time.Second,
		Allocator:       *rota.DefaultConfig(),
	}
}

// loadConfig resolves the effective configuration: defaults, then the YAML
// file at url (any afs scheme, skipped when empty), then ROTA_* environment
// overrides.
func loadConfig(ctx context.Context, url string) (daemonConfig, error) {
	cfg := defaultDaemonConfig()

	if url != "" {
		data, err := afs.New().DownloadWithURL(ctx, url)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", url, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", url, err)
		}
	}

	env := envcfg.NewLoader("ROTA")
	cfg.HTTPAddr = env.String("HTTP_ADDR", cfg.HTTPAddr)
	cfg.NATSURL = env.String("NATS_URL", cfg.NATSURL)
	cfg.EmbeddedNATS = env.Bool("EMBEDDED_NATS", cfg.EmbeddedNATS)
	cfg.StoreDir = env.String("STORE_DIR", cfg.StoreDir)
	cfg.ShutdownTimeout = env.Duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.Allocator.Policy = env.String("POLICY", cfg.Allocator.Policy)
	cfg.Allocator.DefaultAgentCapacity = env.Int("DEFAULT_AGENT_CAPACITY", cfg.Allocator.DefaultAgentCapacity)

	if err := cfg.Allocator.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
