package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/rotad/rota/types"
)

// WriteItemsCSV streams every work item to w in the canonical import layout
// (id, priority, created_at, available, last_unassigned_at).
func WriteItemsCSV(w io.Writer, items []types.WorkItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "priority", "created_at", "available", "last_unassigned_at"}); err != nil {
		return fmt.Errorf("write items header: %w", err)
	}
	for _, item := range items {
		record := []string{
			item.ID,
			item.Priority.String(),
			formatTime(item.CreatedAt),
			strconv.FormatBool(item.Available),
			formatTime(item.LastUnassignedAt),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write item %s: %w", item.ID, err)
		}
	}
	cw.Flush()

	return cw.Error()
}

// WriteAgentsCSV streams every agent snapshot to w
// (id, name, capacity, active_count).
func WriteAgentsCSV(w io.Writer, snapshots []types.AgentSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "capacity", "active_count"}); err != nil {
		return fmt.Errorf("write agents header: %w", err)
	}
	for _, snap := range snapshots {
		record := []string{
			snap.ID,
			snap.Name,
			strconv.Itoa(snap.Capacity),
			strconv.Itoa(snap.ActiveCount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write agent %s: %w", snap.ID, err)
		}
	}
	cw.Flush()

	return cw.Error()
}

// WriteAssignmentsCSV streams the assignment ledger to w
// (id, agent_id, item_id, status, assigned_at, completed_at, unassigned_at,
// unassigned_by).
func WriteAssignmentsCSV(w io.Writer, assignments []types.Assignment) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "agent_id", "item_id", "status",
		"assigned_at", "completed_at", "unassigned_at", "unassigned_by",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write assignments header: %w", err)
	}
	for _, rec := range assignments {
		record := []string{
			rec.ID,
			rec.AgentID,
			rec.ItemID,
			rec.Status.String(),
			formatTime(rec.AssignedAt),
			formatTime(rec.CompletedAt),
			formatTime(rec.UnassignedAt),
			rec.UnassignedBy,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write assignment %s: %w", rec.ID, err)
		}
	}
	cw.Flush()

	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}

// Exporter uploads CSV reports to afs destinations.
type Exporter struct {
	fs afs.Service
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithFS overrides the afs service, mainly for tests using the mem scheme.
func WithFS(fs afs.Service) ExporterOption {
	return func(e *Exporter) {
		e.fs = fs
	}
}

// NewExporter creates an exporter writing through viant/afs.
func NewExporter(opts ...ExporterOption) *Exporter {
	e := &Exporter{fs: afs.New()}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ExportItems uploads the items projection to the given afs URL.
func (e *Exporter) ExportItems(ctx context.Context, url string, items []types.WorkItem) error {
	return e.upload(ctx, url, func(w io.Writer) error {
		return WriteItemsCSV(w, items)
	})
}

// ExportAgents uploads the agents projection to the given afs URL.
func (e *Exporter) ExportAgents(ctx context.Context, url string, snapshots []types.AgentSnapshot) error {
	return e.upload(ctx, url, func(w io.Writer) error {
		return WriteAgentsCSV(w, snapshots)
	})
}

// ExportAssignments uploads the ledger projection to the given afs URL.
func (e *Exporter) ExportAssignments(ctx context.Context, url string, assignments []types.Assignment) error {
	return e.upload(ctx, url, func(w io.Writer) error {
		return WriteAssignmentsCSV(w, assignments)
	})
}

func (e *Exporter) upload(ctx context.Context, url string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := e.fs.Upload(ctx, url, file.DefaultFileOsMode, &buf); err != nil {
		return fmt.Errorf("upload %s: %w", url, err)
	}

	return nil
}
