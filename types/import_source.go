package types

import "context"

// ImportSource supplies work items for bulk ingestion.
//
// Sources only read and map external data (CSV columns, spreadsheet rows,
// database tables) into WorkItem records; the availability-recompute merge
// is applied by the allocator, never by the source. Variant-specific column
// mapping is configuration on the source, not logic.
type ImportSource interface {
	// ReadItems returns every item the source provides.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//
	// Returns:
	//   - []WorkItem: Parsed items; CreatedAt may be zero for sources
	//     without a creation column (the merge keeps the stored value or
	//     stamps the import time)
	//   - error: Read or parse failure
	ReadItems(ctx context.Context) ([]WorkItem, error)
}
