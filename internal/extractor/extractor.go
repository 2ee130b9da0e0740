package extractor

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns DOM snapshots into Conversations. It holds no mutable
// state between calls; one Extractor can serve concurrent extractions.
type Extractor struct {
	chain  []Strategy
	cfg    ClassifierConfig
	logger *slog.Logger
	now    func() time.Time
}

// New returns an Extractor with the default strategy chain and classifier
// configuration.
func New(logger *slog.Logger) *Extractor {
	return NewWithChain(DefaultChain(), DefaultClassifierConfig(), logger)
}

// NewWithChain returns an Extractor with a caller-supplied strategy chain
// and classifier configuration.
func NewWithChain(chain []Strategy, cfg ClassifierConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		chain:  chain,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Extract parses a DOM snapshot and assembles the ordered Conversation.
// Missing messages are not an error: an empty or unrecognizable snapshot
// yields an empty Conversation. The only failure is a snapshot the HTML
// reader itself rejects.
func (e *Extractor) Extract(domSnapshot, title, sourceURL string) (Conversation, error) {
	extractedAt := e.now().UTC().Format(time.RFC3339)
	conv := Conversation{
		Title:       title,
		URL:         sourceURL,
		ExtractedAt: extractedAt,
		Messages:    []Message{},
	}

	if strings.TrimSpace(domSnapshot) == "" {
		return conv, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(domSnapshot))
	if err != nil {
		return Conversation{}, fmt.Errorf("parse snapshot: %w", err)
	}

	strategy, frags := e.runChain(doc)
	if len(frags) == 0 {
		e.logger.Warn("no messages found", "title", title)
		return conv, nil
	}
	e.logger.Info("selector strategy matched",
		"strategy", strategy,
		"fragments", len(frags),
		"title", title,
	)

	conv.Messages = e.build(frags, extractedAt)
	conv.MessageCount = len(conv.Messages)
	return conv, nil
}

// runChain tries each strategy in priority order and returns the fragments
// of the first one producing at least one non-trivial fragment. A strategy
// whose fragments are all below the length threshold counts as no match.
func (e *Extractor) runChain(doc *goquery.Document) (string, []RawFragment) {
	for _, st := range e.chain {
		var keep []RawFragment
		for _, f := range st.Attempt(doc) {
			if nontrivial(f) {
				keep = append(keep, f)
			}
		}
		if len(keep) > 0 {
			return st.Name, keep
		}
	}
	return "", nil
}

// build classifies and normalizes fragments into messages in document
// order. Ids come from the originating container when present, otherwise
// from the positional index; duplicates get a deterministic suffix so ids
// stay unique within the conversation.
func (e *Extractor) build(frags []RawFragment, extractedAt string) []Message {
	msgs := make([]Message, 0, len(frags))
	seen := make(map[string]int, len(frags))

	for i, frag := range frags {
		content := Normalize(frag.ContentHTML)
		sender := ClassifySender(frag, content, e.cfg)

		id := frag.ContainerID
		if id == "" {
			id = fmt.Sprintf("msg-%d", i)
		}
		if n := seen[id]; n > 0 {
			base := id
			for ; seen[id] > 0; n++ {
				id = fmt.Sprintf("%s-%d", base, n)
			}
			seen[base] = n
		}
		seen[id] = 1

		ts := parseTimestamp(frag.TimestampHTML)
		if ts == "" {
			ts = extractedAt
		}

		msgs = append(msgs, Message{
			ID:        id,
			Sender:    sender,
			Content:   content,
			Timestamp: ts,
			Kind:      sender.Kind(),
		})
	}
	return msgs
}

// timestampFormats are tried in order against attribute and text candidates.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04",
}

// parseTimestamp extracts an ISO-8601 timestamp from timestamp markup.
// Returns "" when nothing parseable is present.
func parseTimestamp(markup string) string {
	if markup == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	node := doc.Find(timestampSelector).First()
	if node.Length() == 0 {
		return ""
	}

	candidates := []string{
		node.AttrOr("datetime", ""),
		node.AttrOr("data-timestamp", ""),
		strings.TrimSpace(node.Text()),
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, layout := range timestampFormats {
			if t, err := time.Parse(layout, c); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
		}
	}
	return ""
}
