package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode"

	"github.com/klauspost/compress/gzip"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/analyzer"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
)

// Archive persists extraction artifacts under one directory: structured
// conversation JSON, markdown transcripts, gzip-compressed raw HTML
// snapshots and corpus analysis reports. File naming keeps the
// structured_/conversation_raw_/conversation_analysis_ prefixes used by
// previously stored extracts, so existing files stay listable.
type Archive struct {
	dir string
	now func() time.Time
}

const stampLayout = "20060102_150405"

// New opens (creating if needed) an archive directory.
func New(dir string) (*Archive, error) {
	if dir == "" {
		return nil, errors.New("archive directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{dir: dir, now: time.Now}, nil
}

// Dir returns the archive root.
func (a *Archive) Dir() string { return a.dir }

// SaveConversation writes the structured conversation JSON and returns its
// path.
func (a *Archive) SaveConversation(conv extractor.Conversation) (string, error) {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal conversation: %w", err)
	}
	name := fmt.Sprintf("structured_%s_%s.json", safeTitle(conv.Title), a.stamp())
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write conversation: %w", err)
	}
	return path, nil
}

// LoadConversation reads a structured conversation file back.
func (a *Archive) LoadConversation(path string) (extractor.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extractor.Conversation{}, fmt.Errorf("read conversation: %w", err)
	}
	var conv extractor.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return extractor.Conversation{}, fmt.Errorf("parse conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns the structured conversation files in the
// archive, sorted by name (which sorts by title, then timestamp).
func (a *Archive) ListConversations() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(a.dir, "structured_*.json"))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ListRawSnapshots returns the compressed raw snapshot files in the archive,
// sorted by name.
func (a *Archive) ListRawSnapshots() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(a.dir, "conversation_raw_*.html.gz"))
	if err != nil {
		return nil, fmt.Errorf("list raw snapshots: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// SaveRawHTML stores the raw DOM snapshot gzip-compressed. Snapshots run to
// megabytes of markup; compressing them keeps the archive usable.
func (a *Archive) SaveRawHTML(title, html string) (string, error) {
	name := fmt.Sprintf("conversation_raw_%s_%s.html.gz", safeTitle(title), a.stamp())
	path := filepath.Join(a.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create raw snapshot: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(html)); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flush snapshot: %w", err)
	}
	return path, nil
}

// LoadRawHTML reads a compressed snapshot back.
func (a *Archive) LoadRawHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open raw snapshot: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("decompress snapshot: %w", err)
	}
	return string(data), nil
}

// SaveTranscript writes a rendered markdown transcript.
func (a *Archive) SaveTranscript(title, markdown string) (string, error) {
	name := fmt.Sprintf("conversation_%s_%s.md", safeTitle(title), a.stamp())
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// Report is the persisted corpus analysis document.
type Report struct {
	Summary            analyzer.CorpusSummary `json:"summary"`
	IndividualAnalyses []analyzer.Analysis    `json:"individual_analyses"`
	GeneratedAt        string                 `json:"generated_at"`
}

// SaveReport writes the corpus summary plus the per-conversation analyses.
func (a *Archive) SaveReport(summary analyzer.CorpusSummary, analyses []analyzer.Analysis) (string, error) {
	report := Report{
		Summary:            summary,
		IndividualAnalyses: analyses,
		GeneratedAt:        a.now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	name := fmt.Sprintf("conversation_analysis_%s.json", a.stamp())
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func (a *Archive) stamp() string {
	return a.now().UTC().Format(stampLayout)
}

// safeTitle reduces a conversation title to a filesystem-safe slug of at
// most 50 runes. Truncation counts runes, not bytes, so a multibyte title
// never splits into an invalid sequence.
func safeTitle(title string) string {
	runes := make([]rune, 0, 50)
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			runes = append(runes, r)
		case r == ' ':
			runes = append(runes, '_')
		}
		if len(runes) == 50 {
			break
		}
	}
	if len(runes) == 0 {
		return "untitled"
	}
	return string(runes)
}
