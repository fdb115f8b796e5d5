// Package httpapi exposes the allocator over a small JSON/CSV REST surface.
//
// Mutations are POSTs taking JSON bodies; snapshots are GETs returning JSON
// arrays; reports are GETs returning CSV downloads. Errors come back as a
// JSON object carrying the message, a machine-readable kind, and a retryable
// flag. Guard contention maps to 409 so callers can retry; a missing agent
// and a drained queue both map to 404, told apart by the kind; a capacity
// refusal maps to 422.
package httpapi
