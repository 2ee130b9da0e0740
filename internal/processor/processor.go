package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/analyzer"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/archive"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/browser"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/events"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
)

// SnapshotProvider supplies rendered DOM snapshots and the conversation
// listing. Satisfied by browser.Client.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, conversationURL string) (string, string, error)
	ListConversations(ctx context.Context) ([]browser.ConversationRef, error)
}

// Publisher emits pipeline events. Satisfied by events.Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// Storer persists conversations and analyses. Satisfied by store.Store.
type Storer interface {
	WriteConversation(ctx context.Context, conv extractor.Conversation) (uuid.UUID, error)
	WriteAnalysis(ctx context.Context, conversationID uuid.UUID, a analyzer.Analysis) (uuid.UUID, error)
}

// Processor orchestrates the snapshot, extraction and analysis pipeline.
// Store and events are optional; a nil value disables that sink.
type Processor struct {
	browser   SnapshotProvider
	extractor *extractor.Extractor
	analyzer  *analyzer.Analyzer
	archive   *archive.Archive
	store     Storer
	events    Publisher
	workers   int
	logger    *slog.Logger
}

func New(b SnapshotProvider, ext *extractor.Extractor, an *analyzer.Analyzer, arc *archive.Archive, st Storer, ev Publisher, workers int, logger *slog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		browser:   b,
		extractor: ext,
		analyzer:  an,
		archive:   arc,
		store:     st,
		events:    ev,
		workers:   workers,
		logger:    logger,
	}
}

// ExtractResult is the outcome of extracting one conversation URL.
type ExtractResult struct {
	URL          string
	Conversation extractor.Conversation
	ArchivePath  string
	StoredID     uuid.UUID
}

// ExtractOne snapshots a conversation URL, extracts the structured
// conversation and writes it to every configured sink. The raw HTML is
// archived alongside the structured form so extractions can be replayed
// after selector changes.
func (p *Processor) ExtractOne(ctx context.Context, conversationURL, titleHint string) (ExtractResult, error) {
	title, html, err := p.browser.Snapshot(ctx, conversationURL)
	if err != nil {
		return ExtractResult{URL: conversationURL}, fmt.Errorf("snapshot %s: %w", conversationURL, err)
	}
	if title == "" {
		title = titleHint
	}
	return p.process(ctx, html, title, conversationURL)
}

// ExtractHTML runs the pipeline over an already-captured DOM snapshot,
// bypassing the snapshot provider.
func (p *Processor) ExtractHTML(ctx context.Context, html, title, sourceURL string) (ExtractResult, error) {
	return p.process(ctx, html, title, sourceURL)
}

func (p *Processor) process(ctx context.Context, html, title, conversationURL string) (ExtractResult, error) {
	res := ExtractResult{URL: conversationURL}

	conv, err := p.extractor.Extract(html, title, conversationURL)
	if err != nil {
		return res, fmt.Errorf("extract %s: %w", conversationURL, err)
	}
	res.Conversation = conv

	if _, err := p.archive.SaveRawHTML(conv.Title, html); err != nil {
		return res, fmt.Errorf("archive raw html: %w", err)
	}
	path, err := p.archive.SaveConversation(conv)
	if err != nil {
		return res, fmt.Errorf("archive conversation: %w", err)
	}
	res.ArchivePath = path

	if p.store != nil {
		id, err := p.store.WriteConversation(ctx, conv)
		if err != nil {
			return res, fmt.Errorf("store conversation: %w", err)
		}
		res.StoredID = id
		if _, err := p.store.WriteAnalysis(ctx, id, p.analyzer.Analyze(conv)); err != nil {
			return res, fmt.Errorf("store analysis: %w", err)
		}
	}

	if p.events != nil {
		evt := events.ConversationExtracted{
			Title:        conv.Title,
			URL:          conv.URL,
			MessageCount: conv.MessageCount,
			ExtractedAt:  conv.ExtractedAt,
			ArchivePath:  path,
		}
		if res.StoredID != uuid.Nil {
			evt.ConversationID = res.StoredID.String()
		}
		if err := p.events.Publish(events.SubjectConversationExtracted, evt); err != nil {
			p.logger.Warn("publish extracted event failed", "url", conversationURL, "error", err)
		}
	}

	p.logger.Info("conversation extracted",
		"url", conversationURL,
		"title", conv.Title,
		"messages", conv.MessageCount,
		"archive_path", path,
	)
	return res, nil
}

// ExtractAll lists every conversation the snapshot provider can see and
// extracts them with a bounded worker pool. Results come back in listing
// order; per-conversation failures are logged and skipped rather than
// aborting the batch.
func (p *Processor) ExtractAll(ctx context.Context) ([]ExtractResult, error) {
	refs, err := p.browser.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	results := make([]*ExtractResult, len(refs))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref browser.ConversationRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := p.ExtractOne(ctx, ref.URL, ref.Title)
			if err != nil {
				p.logger.Error("extraction failed", "url", ref.URL, "error", err)
				return
			}
			results[i] = &res
		}(i, ref)
	}
	wg.Wait()

	out := []ExtractResult{}
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// AnalyzeArchive loads every archived conversation, analyzes each one,
// aggregates the corpus summary and writes the combined report.
func (p *Processor) AnalyzeArchive(ctx context.Context) (analyzer.CorpusSummary, []analyzer.Analysis, string, error) {
	paths, err := p.archive.ListConversations()
	if err != nil {
		return analyzer.CorpusSummary{}, nil, "", fmt.Errorf("list archive: %w", err)
	}

	analyses := []analyzer.Analysis{}
	for _, path := range paths {
		conv, err := p.archive.LoadConversation(path)
		if err != nil {
			p.logger.Warn("skipping unreadable archive file", "path", path, "error", err)
			continue
		}
		analyses = append(analyses, p.analyzer.Analyze(conv))
	}

	summary := analyzer.Aggregate(analyses)
	reportPath, err := p.archive.SaveReport(summary, analyses)
	if err != nil {
		return analyzer.CorpusSummary{}, nil, "", fmt.Errorf("save report: %w", err)
	}

	if p.events != nil {
		err := p.events.Publish(events.SubjectCorpusAnalyzed, events.CorpusAnalyzed{
			ConversationCount: summary.ConversationCount,
			TotalMessages:     summary.TotalMessages,
			ReportPath:        reportPath,
		})
		if err != nil {
			p.logger.Warn("publish corpus event failed", "error", err)
		}
	}

	p.logger.Info("corpus analyzed",
		"conversations", summary.ConversationCount,
		"messages", summary.TotalMessages,
		"report_path", reportPath,
	)
	return summary, analyses, reportPath, nil
}

// SearchArchive runs a keyword query over the archived conversations.
func (p *Processor) SearchArchive(query string) ([]archive.SearchMatch, error) {
	return p.archive.Search(query)
}

// HandleExtractRequest is the NATS handler for gemctx.extract.request.
func (p *Processor) HandleExtractRequest(subject string, data []byte) {
	ctx := context.Background()

	var req events.ExtractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		p.logger.Error("failed to parse extract request", "error", err)
		return
	}
	if req.URL == "" {
		p.logger.Error("extract request missing url")
		return
	}

	if _, err := p.ExtractOne(ctx, req.URL, req.Title); err != nil {
		p.logger.Error("extract request failed", "url", req.URL, "error", err)
	}
}
