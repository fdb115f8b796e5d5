package rota

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, PolicyRequeue, cfg.Policy)
	require.Equal(t, 3, cfg.DefaultAgentCapacity)
	require.NoError(t, cfg.Validate())
}

func TestConfig_ValidateFillsDefaults(t *testing.T) {
	cfg := &Config{}

	require.NoError(t, cfg.Validate())
	require.Equal(t, PolicyRequeue, cfg.Policy)
	require.Equal(t, 3, cfg.DefaultAgentCapacity)
}

func TestConfig_ValidateRejectsUnknownPolicy(t *testing.T) {
	cfg := &Config{Policy: "fifo"}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Contains(t, err.Error(), "fifo")
}

func TestConfig_ValidateRejectsNegativeCapacity(t *testing.T) {
	cfg := &Config{DefaultAgentCapacity: -1}

	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
