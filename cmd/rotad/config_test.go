package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	rota "github.com/rotad/rota"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(t.Context(), "")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, rota.PolicyRequeue, cfg.Allocator.Policy)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.False(t, cfg.EmbeddedNATS)
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotad.yaml")
	doc := `
httpAddr: ":9090"
natsUrl: "nats://kv:4222"
allocator:
  policy: priority
  defaultAgentCapacity: 5
buckets:
  itemsBucket: custom-items
upload:
  id: ticket
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	// Environment wins over the file.
	t.Setenv("ROTA_HTTP_ADDR", ":7070")

	cfg, err := loadConfig(t.Context(), path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTPAddr)
	require.Equal(t, "nats://kv:4222", cfg.NATSURL)
	require.Equal(t, rota.PolicyPriority, cfg.Allocator.Policy)
	require.Equal(t, 5, cfg.Allocator.DefaultAgentCapacity)
	require.Equal(t, "custom-items", cfg.Buckets.ItemsBucket)
	require.Equal(t, "ticket", cfg.Upload.ID)
}

func TestLoadConfig_RejectsBadPolicy(t *testing.T) {
	t.Setenv("ROTA_POLICY", "fifo")

	_, err := loadConfig(t.Context(), "")
	require.Error(t, err)
}
