package envcfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	t.Setenv("ROTA_HTTP_ADDR", ":9000")
	t.Setenv("ROTA_CAPACITY", "5")
	t.Setenv("ROTA_EMBEDDED", "true")
	t.Setenv("ROTA_TIMEOUT", "30s")
	t.Setenv("ROTA_BAD_INT", "five")

	l := NewLoader("ROTA")
	require.Equal(t, ":9000", l.String("HTTP_ADDR", ":8080"))
	require.Equal(t, ":8080", l.String("UNSET", ":8080"))
	require.Equal(t, 5, l.Int("CAPACITY", 3))
	require.Equal(t, 3, l.Int("BAD_INT", 3))
	require.True(t, l.Bool("EMBEDDED", false))
	require.Equal(t, 30*time.Second, l.Duration("TIMEOUT", time.Second))
	require.Equal(t, time.Second, l.Duration("UNSET", time.Second))
}

func TestNewLoader_PrefixNormalization(t *testing.T) {
	t.Setenv("X_KEY", "v")

	require.Equal(t, "v", NewLoader("X").String("KEY", ""))
	require.Equal(t, "v", NewLoader("X_").String("KEY", ""))
}
