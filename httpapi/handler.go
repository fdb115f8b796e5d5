package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	rota "github.com/rotad/rota"
	"github.com/rotad/rota/export"
	"github.com/rotad/rota/ingest"
	"github.com/rotad/rota/internal/logger"
	"github.com/rotad/rota/types"
)

// Handler serves the allocator REST surface.
type Handler struct {
	alloc   *rota.Allocator
	logger  types.Logger
	metrics http.Handler
	mapping ingest.ColumnMapping
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request logger. Defaults to a nop logger.
func WithLogger(l types.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithMetricsHandler mounts the given handler at GET /metrics, typically
// promhttp.Handler().
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithUploadMapping sets the CSV column mapping used by POST /upload-items.
func WithUploadMapping(m ingest.ColumnMapping) Option {
	return func(h *Handler) {
		h.mapping = m
	}
}

// New creates a Handler around the allocator.
func New(alloc *rota.Allocator, opts ...Option) *Handler {
	h := &Handler{
		alloc:   alloc,
		logger:  logger.NewNop(),
		mapping: ingest.DefaultColumnMapping(),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Router returns the HTTP handler with every route mounted.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /assign", h.handleAssign)
	mux.HandleFunc("POST /complete", h.handleComplete)
	mux.HandleFunc("POST /complete-all", h.handleCompleteAll)
	mux.HandleFunc("POST /unassign-item", h.handleUnassignItem)
	mux.HandleFunc("POST /unassign-agent", h.handleUnassignAgent)
	mux.HandleFunc("POST /unassign-all", h.handleUnassignAll)
	mux.HandleFunc("POST /upload-items", h.handleUploadItems)

	mux.HandleFunc("PUT /agents", h.handleUpsertAgent)
	mux.HandleFunc("DELETE /agents/{id}", h.handleRemoveAgent)

	mux.HandleFunc("GET /items", h.handleItems)
	mux.HandleFunc("GET /agents", h.handleAgents)
	mux.HandleFunc("GET /assignments", h.handleAssignments)

	mux.HandleFunc("GET /reports/items.csv", h.handleItemsReport)
	mux.HandleFunc("GET /reports/agents.csv", h.handleAgentsReport)
	mux.HandleFunc("GET /reports/assignments.csv", h.handleAssignmentsReport)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}

	return mux
}

type agentPayload struct {
	AgentID string `json:"agentId"`
}

type completePayload struct {
	AgentID string `json:"agentId"`
	ItemID  string `json:"itemId"`
}

type itemPayload struct {
	ItemID string `json:"itemId"`
}

type countResponse struct {
	Count int `json:"count"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var payload agentPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	assignment, err := h.alloc.Assign(r.Context(), payload.AgentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	var payload completePayload
	if !decodeBody(w, r, &payload) {
		return
	}
	assignment, err := h.alloc.Complete(r.Context(), payload.AgentID, payload.ItemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (h *Handler) handleCompleteAll(w http.ResponseWriter, r *http.Request) {
	var payload agentPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	count, err := h.alloc.CompleteAll(r.Context(), payload.AgentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) handleUnassignItem(w http.ResponseWriter, r *http.Request) {
	var payload itemPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	count, err := h.alloc.UnassignItem(r.Context(), payload.ItemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) handleUnassignAgent(w http.ResponseWriter, r *http.Request) {
	var payload agentPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	count, err := h.alloc.UnassignAgent(r.Context(), payload.AgentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) handleUnassignAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.alloc.UnassignAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

// handleUploadItems accepts either a multipart form with a "file" field or a
// raw CSV request body and feeds it through the import merge.
func (h *Handler) handleUploadItems(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body := io.Reader(r.Body)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		part, _, err := r.FormFile("file")
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: multipart field \"file\": %v",
				types.ErrInvalidArgument, err))
			return
		}
		defer part.Close()
		body = part
	}

	stats, err := h.alloc.ImportItems(r.Context(), ingest.NewReaderSource(body, h.mapping))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleUpsertAgent(w http.ResponseWriter, r *http.Request) {
	var agent types.Agent
	if !decodeBody(w, r, &agent) {
		return
	}
	stored, err := h.alloc.UpsertAgent(r.Context(), agent)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (h *Handler) handleRemoveAgent(w http.ResponseWriter, r *http.Request) {
	if err := h.alloc.RemoveAgent(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.alloc.Items(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.alloc.Agents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func (h *Handler) handleAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.alloc.Assignments(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *Handler) handleItemsReport(w http.ResponseWriter, r *http.Request) {
	items, err := h.alloc.Items(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	csvHeaders(w, "items.csv")
	if err := export.WriteItemsCSV(w, items); err != nil {
		h.logger.Error("write items report", "error", err)
	}
}

func (h *Handler) handleAgentsReport(w http.ResponseWriter, r *http.Request) {
	agents, err := h.alloc.Agents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	csvHeaders(w, "agents.csv")
	if err := export.WriteAgentsCSV(w, agents); err != nil {
		h.logger.Error("write agents report", "error", err)
	}
}

func (h *Handler) handleAssignmentsReport(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.alloc.Assignments(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	csvHeaders(w, "assignments.csv")
	if err := export.WriteAssignmentsCSV(w, assignments); err != nil {
		h.logger.Error("write assignments report", "error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "invalid json payload",
			Kind:  types.KindInvalidArgument.String(),
		})
		return false
	}

	return true
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := types.KindOf(err)
	status := statusOf(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Kind:      kind.String(),
		Retryable: types.Retryable(err),
	})
}

func statusOf(kind types.Kind) int {
	switch kind {
	case types.KindInvalidArgument:
		return http.StatusBadRequest
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindNoAvailableWork:
		// A drained queue reads as "nothing to find", same as a missing
		// agent; the kind field disambiguates the two for clients.
		return http.StatusNotFound
	case types.KindAllocationInProgress, types.KindConflict:
		return http.StatusConflict
	case types.KindCapacityExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func csvHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
