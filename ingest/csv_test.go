package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rotad/rota/types"
)

func TestCSVSource_ReadItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	doc := strings.Join([]string{
		"id,priority,created_at,available",
		"itm-1,P1,2025-06-01T09:00:00Z,true",
		"itm-2,P3,2025-06-01T09:05:00Z,false",
		"itm-3,,,",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	src := NewCSVSource(path)
	items, err := src.ReadItems(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "itm-1", items[0].ID)
	require.Equal(t, types.PriorityP1, items[0].Priority)
	require.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), items[0].CreatedAt)
	require.True(t, items[0].Available)

	require.False(t, items[1].Available)

	// Blank cells: priority defaults to P3, availability to true, time to zero.
	require.Equal(t, types.PriorityP3, items[2].Priority)
	require.True(t, items[2].Available)
	require.True(t, items[2].CreatedAt.IsZero())
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"))

	_, err := src.ReadItems(t.Context())
	require.Error(t, err)
}

func TestReaderSource_CustomMapping(t *testing.T) {
	doc := strings.Join([]string{
		"ticket,urgency,opened",
		"T-9,p2,2025-05-30 08:00",
	}, "\n")

	src := NewReaderSource(strings.NewReader(doc), ColumnMapping{
		ID:         "ticket",
		Priority:   "urgency",
		CreatedAt:  "opened",
		TimeLayout: "2006-01-02 15:04",
	})
	items, err := src.ReadItems(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "T-9", items[0].ID)
	require.Equal(t, types.PriorityP2, items[0].Priority)
	require.Equal(t, time.Date(2025, 5, 30, 8, 0, 0, 0, time.UTC), items[0].CreatedAt)
	require.True(t, items[0].Available, "no availability column means available")
}

func TestReaderSource_HeaderIsCaseInsensitive(t *testing.T) {
	src := NewReaderSource(strings.NewReader("ID,Priority\nitm-1,P1\n"), ColumnMapping{})

	items, err := src.ReadItems(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, types.PriorityP1, items[0].Priority)
}

func TestReaderSource_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty document", doc: ""},
		{name: "missing id column", doc: "name,priority\na,P1\n"},
		{name: "bad available cell", doc: "id,available\nitm-1,maybe\n"},
		{name: "bad timestamp", doc: "id,created_at\nitm-1,yesterday\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := NewReaderSource(strings.NewReader(tc.doc), ColumnMapping{})
			_, err := src.ReadItems(t.Context())
			require.ErrorIs(t, err, types.ErrInvalidArgument)
		})
	}
}
