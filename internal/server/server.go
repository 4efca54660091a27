// Package server provides the HTTP API for async log upload operations.
//
// Endpoints:
//
//	POST /logs        — enqueue a dashboard log upload; returns operation ID immediately
//	GET  /logs/{id}   — poll operation status and retrieve the signed URL
//	POST /breadcrumbs — append diagnostic events to the in-process buffer
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tomasbasham/dashlog/internal/breadcrumb"
	"github.com/tomasbasham/dashlog/internal/dashlog"
	"github.com/tomasbasham/dashlog/internal/operation"
)

// Server holds the dependencies shared across HTTP handlers.
type Server struct {
	store    operation.Store
	uploader *dashlog.Uploader
	buffer   *breadcrumb.Buffer
	mux      *http.ServeMux
}

// New creates a Server wired to the given store, uploader and breadcrumb
// buffer. The buffer is the primary source the uploader reads from; handlers
// feed it through POST /breadcrumbs.
func New(store operation.Store, uploader *dashlog.Uploader, buffer *breadcrumb.Buffer) *Server {
	s := &Server{
		store:    store,
		uploader: uploader,
		buffer:   buffer,
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /logs", s.handleCreateUpload)
	s.mux.HandleFunc("GET /logs/{id}", s.handleGetUpload)
	s.mux.HandleFunc("POST /breadcrumbs", s.handleAppendBreadcrumbs)

	return s
}

// Handler exposes the route table for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv.ListenAndServe()
}

// createUploadRequest is the JSON body for POST /logs.
type createUploadRequest struct {
	// ScopeHint associates the artifact with a caller context such as a
	// project ID. Optional; blank means no associated context.
	ScopeHint string `json:"scope_hint,omitempty"`
}

// createUploadResponse is returned immediately from POST /logs.
type createUploadResponse struct {
	OperationID string `json:"operation_id"`
	Status      string `json:"status"`
}

func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	var req createUploadRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	scope := dashlog.ScopeFromHint(req.ScopeHint)

	op, err := s.store.Create(scope.PathSegment())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create operation: "+err.Error())
		return
	}

	// Run the upload in the background. The request context is intentionally
	// not used here — we do not want the upload to be cancelled when the HTTP
	// connection closes.
	go operation.Run(context.Background(), operation.WorkerOptions{
		OperationID: op.ID,
		Scope:       scope,
		Store:       s.store,
		Uploader:    s.uploader,
	})

	writeJSON(w, http.StatusAccepted, createUploadResponse{
		OperationID: op.ID,
		Status:      string(operation.StatusPending),
	})
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "operation id is required")
		return
	}

	op, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("operation %q not found", id))
		return
	}

	writeJSON(w, http.StatusOK, op)
}

// appendBreadcrumbsRequest is the JSON body for POST /breadcrumbs.
type appendBreadcrumbsRequest struct {
	Events []breadcrumb.Record `json:"events"`
}

func (s *Server) handleAppendBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	var req appendBreadcrumbsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Events) == 0 {
		writeError(w, http.StatusBadRequest, "events is required")
		return
	}

	for _, ev := range req.Events {
		s.buffer.Append(ev)
	}

	writeJSON(w, http.StatusAccepted, map[string]int{"buffered": s.buffer.Len()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
