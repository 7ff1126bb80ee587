package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ajitpratap0/canvas-engine/internal/engine"
	"github.com/ajitpratap0/canvas-engine/internal/generate"
	"github.com/ajitpratap0/canvas-engine/internal/metrics"
	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// maxBodyBytes caps request bodies; record batches can be large but bounded.
const maxBodyBytes = 4 << 20 // 4 MB

// Server is an HTTP API server that exposes canvas operations.
type Server struct {
	engine    *engine.Engine
	generator *generate.Generator // nil = generation endpoint disabled
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(eng *engine.Engine, gen *generate.Generator, logger *slog.Logger, authToken string) *Server {
	return &Server{
		engine:    eng,
		generator: gen,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Batch lifecycle and projection endpoints — wrapped with auth middleware.
	mux.HandleFunc("POST /v1/load", s.auth(s.handleLoad))
	mux.HandleFunc("POST /v1/reset", s.auth(s.handleReset))
	mux.HandleFunc("GET /v1/export", s.auth(s.handleExport))
	mux.HandleFunc("GET /v1/views/{kind}", s.auth(s.handleView))
	mux.HandleFunc("POST /v1/reconcile/move", s.auth(s.handleMove))
	mux.HandleFunc("POST /v1/reconcile/edit", s.auth(s.handleEdit))
	mux.HandleFunc("POST /v1/reconcile/add", s.auth(s.handleAdd))
	mux.HandleFunc("POST /v1/reconcile/delete", s.auth(s.handleDelete))
	mux.HandleFunc("GET /v1/selection", s.auth(s.handleGetSelection))
	mux.HandleFunc("PUT /v1/selection", s.auth(s.handleSetSelection))
	mux.HandleFunc("POST /v1/search", s.auth(s.handleSearch))
	mux.HandleFunc("POST /v1/generate", s.auth(s.handleGenerate))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLoad accepts a raw record batch in any supported envelope and makes
// it the session state.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.LoadJSON(body); err != nil {
		s.logger.Warn("failed to load batch", "error", err)
		s.writeError(w, http.StatusBadRequest, "invalid record batch")
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Stats())
}

// handleReset clears the session for a document switch.
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.engine.Reset()
	s.writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	out, err := s.engine.ExportJSON()
	if err != nil {
		s.logger.Error("failed to export batch", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to export batch")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.logger.Error("failed to write export", "error", err)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	kind := models.ViewKind(r.PathValue("kind"))
	view, err := s.engine.View(kind)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// moveRequest is the body accepted by POST /v1/reconcile/move. A single move
// uses id+column; a drag commit with several cards uses moves.
type moveRequest struct {
	ID     string            `json:"id"`
	Column string            `json:"column"`
	Moves  map[string]string `json:"moves"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Moves) > 0 {
		s.writeJSON(w, http.StatusOK, map[string]bool{"applied": s.engine.ApplyMoves(req.Moves)})
		return
	}
	if req.ID == "" || req.Column == "" {
		s.writeError(w, http.StatusBadRequest, "id and column are required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"applied": s.engine.MoveCard(req.ID, req.Column)})
}

// editRequest is the body accepted by POST /v1/reconcile/edit.
type editRequest struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ID == "" || req.Field == "" {
		s.writeError(w, http.StatusBadRequest, "id and field are required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"applied": s.engine.EditCell(req.ID, req.Field, req.Value)})
}

func (s *Server) handleAdd(w http.ResponseWriter, _ *http.Request) {
	id := s.engine.AddRecord()
	if id == "" {
		s.writeError(w, http.StatusConflict, "no template record to clone")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// deleteRequest is the body accepted by POST /v1/reconcile/delete.
type deleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"applied": s.engine.DeleteRecords(req.IDs)})
}

func (s *Server) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"ids": s.engine.Selection()})
}

// selectionRequest is the body accepted by PUT /v1/selection.
type selectionRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.engine.SetSelection(req.IDs)
	s.writeJSON(w, http.StatusOK, map[string]int{"selected": len(req.IDs)})
}

// searchRequest is the body accepted by POST /v1/search.
type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// searchResponse is returned by POST /v1/search.
type searchResponse struct {
	Rows []models.TableRow `json:"rows"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	rows := s.engine.Search(req.Query)
	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	s.writeJSON(w, http.StatusOK, searchResponse{Rows: rows})
}

// generateRequest is the body accepted by POST /v1/generate.
type generateRequest struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "generator is unavailable")
		return
	}
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.Count <= 0 {
		req.Count = 8
	}

	batch, err := s.generator.Generate(r.Context(), req.Prompt, req.Count)
	if err != nil {
		s.logger.Error("failed to generate records", "error", err)
		s.writeError(w, http.StatusBadGateway, "failed to generate records")
		return
	}
	s.engine.SetRecords(batch.Records)
	if batch.Metadata != nil {
		s.engine.Session().SetMetadata(batch.Metadata)
	}
	metrics.Inc(metrics.GenerateTotal)
	s.writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Stats())
}

// --- helpers ---

// decode reads a JSON request body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
