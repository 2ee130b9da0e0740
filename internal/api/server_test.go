package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/analyzer"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/archive"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/browser"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/processor"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/store"
)

const snapshotHTML = `
<div class="chat-history">
  <div class="conversation-container" id="c_1">
    <user-query><div class="message-content">What is Docker?</div></user-query>
  </div>
  <div class="conversation-container" id="c_2">
    <model-response><div class="message-content">Docker is a container runtime built on Linux namespaces.</div></model-response>
  </div>
</div>`

type fakeBrowser struct {
	pages map[string]string // url -> html
}

func (f *fakeBrowser) Snapshot(ctx context.Context, url string) (string, string, error) {
	html, ok := f.pages[url]
	if !ok {
		return "", "", errors.New("unknown url")
	}
	return "Docker basics", html, nil
}

func (f *fakeBrowser) ListConversations(ctx context.Context) ([]browser.ConversationRef, error) {
	return nil, nil
}

type stubReader struct{}

func (stubReader) ListConversations(ctx context.Context, limit int) ([]store.ConversationRow, error) {
	return []store.ConversationRow{}, nil
}

func (stubReader) GetConversation(ctx context.Context, id uuid.UUID) (extractor.Conversation, error) {
	return extractor.Conversation{}, pgx.ErrNoRows
}

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	arc, err := archive.New(t.TempDir())
	if err != nil {
		t.Fatalf("archive.New: %v", err)
	}
	fb := &fakeBrowser{pages: map[string]string{
		"https://gemini.google.com/app/abc": snapshotHTML,
	}}
	proc := processor.New(fb, extractor.New(logger), analyzer.New(), arc, nil, nil, 1, logger)
	return NewServer(8760, proc, nil, logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
	if body["service"] != "gemctx" {
		t.Errorf("expected service gemctx, got %q", body["service"])
	}
}

func TestExtractEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/v1/extract",
		strings.NewReader(`{"url":"https://gemini.google.com/app/abc"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reply extractReply
	if err := json.NewDecoder(w.Body).Decode(&reply); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if reply.Title != "Docker basics" {
		t.Errorf("expected title, got %q", reply.Title)
	}
	if reply.MessageCount != 2 {
		t.Errorf("expected 2 messages, got %d", reply.MessageCount)
	}
	if reply.ArchivePath == "" {
		t.Error("expected archive path")
	}
}

func TestExtractEndpoint_MissingURL(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/v1/extract", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExtractEndpoint_InlineHTML(t *testing.T) {
	srv := testServer(t)

	body, err := json.Marshal(extractBody{HTML: snapshotHTML, Title: "Pasted snapshot"})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	// The fake provider knows no URL for this; inline HTML must bypass it.
	req := httptest.NewRequest("POST", "/api/v1/extract", strings.NewReader(string(body)))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reply extractReply
	if err := json.NewDecoder(w.Body).Decode(&reply); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if reply.Title != "Pasted snapshot" {
		t.Errorf("expected title, got %q", reply.Title)
	}
	if reply.MessageCount != 2 {
		t.Errorf("expected 2 messages, got %d", reply.MessageCount)
	}
}

func TestExtractEndpoint_SnapshotFailure(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/v1/extract",
		strings.NewReader(`{"url":"https://gemini.google.com/app/unknown"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := testServer(t)

	// Extract first so the archive has content to analyze.
	req := httptest.NewRequest("POST", "/api/v1/extract",
		strings.NewReader(`{"url":"https://gemini.google.com/app/abc"}`))
	srv.router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("POST", "/api/v1/analyze", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Summary    analyzer.CorpusSummary `json:"summary"`
		ReportPath string                 `json:"report_path"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Summary.ConversationCount != 1 {
		t.Errorf("expected 1 conversation, got %d", body.Summary.ConversationCount)
	}
	if body.ReportPath == "" {
		t.Error("expected report path")
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv := testServer(t)

	// Extract first so the archive has a searchable conversation.
	req := httptest.NewRequest("POST", "/api/v1/extract",
		strings.NewReader(`{"url":"https://gemini.google.com/app/abc"}`))
	srv.router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/api/v1/search?q=docker", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Query   string                `json:"query"`
		Results []archive.SearchMatch `json:"results"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Query != "docker" {
		t.Errorf("query = %q", body.Query)
	}
	if len(body.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(body.Results))
	}
	if body.Results[0].Title != "Docker basics" {
		t.Errorf("result title = %q", body.Results[0].Title)
	}
	if body.Results[0].Matches == 0 && !body.Results[0].TitleMatch {
		t.Error("expected a content or title match")
	}
}

func TestSearchEndpoint_MissingQuery(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/v1/search", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestConversationsEndpoint_NoDatabase(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/v1/conversations", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestGetConversationEndpoint_InvalidID(t *testing.T) {
	srv := testServer(t)
	srv.db = stubReader{}

	req := httptest.NewRequest("GET", "/api/v1/conversations/not-a-uuid", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetConversationEndpoint_NoRows(t *testing.T) {
	srv := testServer(t)
	srv.db = stubReader{}

	req := httptest.NewRequest("GET", "/api/v1/conversations/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
