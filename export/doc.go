// Package export renders read-only CSV projections of work items, agents,
// and the assignment ledger for reporting.
//
// The Write* functions stream to any io.Writer (the HTTP report endpoints use
// them directly); Exporter uploads the same projections to an afs URL, so
// reports can land on local disk or object storage alike. The items layout
// matches ingest.DefaultColumnMapping, so an exported items report can be
// re-imported unchanged.
package export
