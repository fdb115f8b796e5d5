package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/viant/afs"

	"github.com/rotad/rota/types"
)

// ColumnMapping names the CSV columns a source reads item fields from.
// Header matching is case-insensitive. Only the ID column is required; rows
// without a priority column default to P3, rows without an availability
// column default to available.
type ColumnMapping struct {
	// ID is the header of the item identifier column.
	ID string `yaml:"id"`

	// Priority is the header of the priority-class column ("P1".."P3").
	Priority string `yaml:"priority"`

	// CreatedAt is the header of the enqueue-time column.
	CreatedAt string `yaml:"createdAt"`

	// Available is the header of the availability column.
	Available string `yaml:"available"`

	// TimeLayout is the time.Parse layout for CreatedAt values.
	TimeLayout string `yaml:"timeLayout"`
}

// DefaultColumnMapping returns the mapping for the canonical export layout.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		ID:         "id",
		Priority:   "priority",
		CreatedAt:  "created_at",
		Available:  "available",
		TimeLayout: time.RFC3339,
	}
}

func (m *ColumnMapping) applyDefaults() {
	def := DefaultColumnMapping()
	if m.ID == "" {
		m.ID = def.ID
	}
	if m.Priority == "" {
		m.Priority = def.Priority
	}
	if m.CreatedAt == "" {
		m.CreatedAt = def.CreatedAt
	}
	if m.Available == "" {
		m.Available = def.Available
	}
	if m.TimeLayout == "" {
		m.TimeLayout = def.TimeLayout
	}
}

// CSVSource reads work items from a CSV document addressed by an afs URL.
type CSVSource struct {
	fs      afs.Service
	url     string
	mapping ColumnMapping
}

// Compile-time interface check.
var _ types.ImportSource = (*CSVSource)(nil)

// CSVOption configures a CSVSource.
type CSVOption func(*CSVSource)

// WithMapping overrides the default column mapping.
func WithMapping(m ColumnMapping) CSVOption {
	return func(s *CSVSource) {
		s.mapping = m
	}
}

// WithFS overrides the afs service, mainly for tests using the mem scheme.
func WithFS(fs afs.Service) CSVOption {
	return func(s *CSVSource) {
		s.fs = fs
	}
}

// NewCSVSource creates a source reading the CSV document at the given URL.
//
// Parameters:
//   - url: afs URL of the document (file, s3, gs, mem, embed schemes)
//   - opts: Optional mapping and file-system overrides
//
// Returns:
//   - *CSVSource: The configured source
func NewCSVSource(url string, opts ...CSVOption) *CSVSource {
	s := &CSVSource{
		fs:      afs.New(),
		url:     url,
		mapping: DefaultColumnMapping(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mapping.applyDefaults()

	return s
}

// ReadItems downloads the document and decodes every row into a work item.
//
// Returns:
//   - []types.WorkItem: Parsed items in document order
//   - error: Download failure, or ErrInvalidArgument for malformed content
func (s *CSVSource) ReadItems(ctx context.Context) ([]types.WorkItem, error) {
	data, err := s.fs.DownloadWithURL(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", s.url, err)
	}

	return decodeItems(bytes.NewReader(data), s.mapping)
}

// ReaderSource reads work items from an in-memory CSV stream, typically an
// HTTP upload body.
type ReaderSource struct {
	r       io.Reader
	mapping ColumnMapping
}

var _ types.ImportSource = (*ReaderSource)(nil)

// NewReaderSource wraps a CSV stream as an import source. A zero mapping
// takes the defaults.
func NewReaderSource(r io.Reader, mapping ColumnMapping) *ReaderSource {
	mapping.applyDefaults()

	return &ReaderSource{r: r, mapping: mapping}
}

// ReadItems decodes every row of the stream into a work item.
func (s *ReaderSource) ReadItems(_ context.Context) ([]types.WorkItem, error) {
	return decodeItems(s.r, s.mapping)
}

func decodeItems(r io.Reader, m ColumnMapping) ([]types.WorkItem, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: document is empty", types.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idCol, ok := index[strings.ToLower(m.ID)]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", types.ErrInvalidArgument, m.ID)
	}
	prioCol, hasPrio := index[strings.ToLower(m.Priority)]
	createdCol, hasCreated := index[strings.ToLower(m.CreatedAt)]
	availCol, hasAvail := index[strings.ToLower(m.Available)]

	var items []types.WorkItem
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", types.ErrInvalidArgument, row, err)
		}

		item := types.WorkItem{
			ID:        strings.TrimSpace(record[idCol]),
			Priority:  types.PriorityP3,
			Available: true,
		}
		if hasPrio && prioCol < len(record) {
			item.Priority = types.ParsePriorityClass(strings.TrimSpace(record[prioCol]))
		}
		if hasCreated && createdCol < len(record) {
			if cell := strings.TrimSpace(record[createdCol]); cell != "" {
				ts, err := time.Parse(m.TimeLayout, cell)
				if err != nil {
					return nil, fmt.Errorf("%w: row %d: created_at %q: %v",
						types.ErrInvalidArgument, row, cell, err)
				}
				item.CreatedAt = ts
			}
		}
		if hasAvail && availCol < len(record) {
			if cell := strings.TrimSpace(record[availCol]); cell != "" {
				avail, err := strconv.ParseBool(cell)
				if err != nil {
					return nil, fmt.Errorf("%w: row %d: available %q: %v",
						types.ErrInvalidArgument, row, cell, err)
				}
				item.Available = avail
			}
		}

		items = append(items, item)
	}

	return items, nil
}
