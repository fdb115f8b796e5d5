// Package ingest provides bulk work-item sources for the allocator's import
// merge.
//
// A source only reads and maps external data into work items; deciding how
// incoming rows merge with assignment state is the allocator's job. Column
// layout differences between upstream systems are handled by ColumnMapping
// configuration, not by per-variant code.
//
// CSVSource reads through viant/afs, so the source URL may use any registered
// scheme (file, s3, gs, mem, embed). ReaderSource wraps an io.Reader for
// request-body uploads.
package ingest
