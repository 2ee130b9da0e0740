package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/processor"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/store"
)

// ConversationReader serves the read endpoints. Satisfied by store.Store;
// nil disables database-backed routes.
type ConversationReader interface {
	ListConversations(ctx context.Context, limit int) ([]store.ConversationRow, error)
	GetConversation(ctx context.Context, id uuid.UUID) (extractor.Conversation, error)
}

type Server struct {
	router *chi.Mux
	port   int
	proc   *processor.Processor
	db     ConversationReader
	logger *slog.Logger
}

func NewServer(port int, proc *processor.Processor, db ConversationReader, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		proc:   proc,
		db:     db,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Post("/api/v1/extract", s.extract)
	router.Get("/api/v1/conversations", s.listConversations)
	router.Get("/api/v1/conversations/{id}", s.getConversation)
	router.Post("/api/v1/analyze", s.analyze)
	router.Get("/api/v1/search", s.search)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "gemctx",
	})
}

type extractBody struct {
	URL   string `json:"url"`
	HTML  string `json:"html,omitempty"`
	Title string `json:"title,omitempty"`
}

type extractReply struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	MessageCount int    `json:"message_count"`
	ArchivePath  string `json:"archive_path"`
	StoredID     string `json:"stored_id,omitempty"`
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var body extractBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.URL == "" && body.HTML == "" {
		writeError(w, http.StatusBadRequest, "url or html is required")
		return
	}

	// Inline HTML skips the snapshot provider entirely.
	var res processor.ExtractResult
	var err error
	if body.HTML != "" {
		res, err = s.proc.ExtractHTML(r.Context(), body.HTML, body.Title, body.URL)
	} else {
		res, err = s.proc.ExtractOne(r.Context(), body.URL, body.Title)
	}
	if err != nil {
		s.logger.Error("extract failed", "url", body.URL, "error", err)
		writeError(w, http.StatusBadGateway, "extraction failed")
		return
	}

	reply := extractReply{
		Title:        res.Conversation.Title,
		URL:          res.Conversation.URL,
		MessageCount: res.Conversation.MessageCount,
		ArchivePath:  res.ArchivePath,
	}
	if res.StoredID != uuid.Nil {
		reply.StoredID = res.StoredID.String()
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rows, err := s.db.ListConversations(r.Context(), limit)
	if err != nil {
		s.logger.Error("list conversations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": rows})
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	conv, err := s.db.GetConversation(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.logger.Error("get conversation failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	summary, analyses, reportPath, err := s.proc.AnalyzeArchive(r.Context())
	if err != nil {
		s.logger.Error("analyze failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":     summary,
		"analyses":    analyses,
		"report_path": reportPath,
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := s.proc.SearchArchive(q)
	if err != nil {
		s.logger.Error("search failed", "query", q, "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
