package replay

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/archive"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
)

// Config holds the replay run configuration.
type Config struct {
	DryRun     bool   // parse and report without writing new structured files
	Limit      int    // stop after this many snapshots (0 = no limit)
	SingleFile string // replay a single snapshot only
	StatePath  string // override the resume-state location
}

// Runner re-extracts archived raw snapshots through the current selector
// chain. Useful after selector or classifier changes: the original page no
// longer needs to be reachable, the compressed snapshot is the source.
type Runner struct {
	cfg       Config
	archive   *archive.Archive
	extractor *extractor.Extractor
	logger    *slog.Logger
}

func NewRunner(cfg Config, arc *archive.Archive, ext *extractor.Extractor, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		archive:   arc,
		extractor: ext,
		logger:    logger,
	}
}

// Summary reports what a replay run did.
type Summary struct {
	SnapshotsSeen     int      `json:"snapshots_seen"`
	Replayed          int      `json:"replayed"`
	Skipped           int      `json:"skipped"`
	MessagesRecovered int      `json:"messages_recovered"`
	Errors            []string `json:"errors,omitempty"`
}

// Run executes the replay over every archived snapshot not yet processed.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return Summary{}, fmt.Errorf("load state: %w", err)
	}

	paths, err := r.discoverSnapshots()
	if err != nil {
		return Summary{}, fmt.Errorf("discover snapshots: %w", err)
	}

	var sum Summary
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.SnapshotsSeen++

		if state.IsProcessed(path) {
			sum.Skipped++
			continue
		}
		if r.cfg.Limit > 0 && sum.Replayed >= r.cfg.Limit {
			break
		}

		conv, err := r.replayOne(path)
		if err != nil {
			msg := fmt.Sprintf("%s: %v", filepath.Base(path), err)
			r.logger.Error("replay failed", "path", path, "error", err)
			state.AddError(msg)
			sum.Errors = append(sum.Errors, msg)
			continue
		}

		sum.Replayed++
		sum.MessagesRecovered += conv.MessageCount
		state.MarkProcessed(path)

		if !r.cfg.DryRun {
			if err := state.Save(); err != nil {
				r.logger.Warn("failed to save replay state", "error", err)
			}
		}
	}

	r.logger.Info("replay complete",
		"seen", sum.SnapshotsSeen,
		"replayed", sum.Replayed,
		"skipped", sum.Skipped,
		"messages", sum.MessagesRecovered,
	)
	return sum, nil
}

func (r *Runner) discoverSnapshots() ([]string, error) {
	if r.cfg.SingleFile != "" {
		return []string{r.cfg.SingleFile}, nil
	}
	return r.archive.ListRawSnapshots()
}

func (r *Runner) replayOne(path string) (extractor.Conversation, error) {
	html, err := r.archive.LoadRawHTML(path)
	if err != nil {
		return extractor.Conversation{}, err
	}

	title := titleFromSnapshotName(path)
	conv, err := r.extractor.Extract(html, title, "")
	if err != nil {
		return extractor.Conversation{}, err
	}

	if r.cfg.DryRun {
		r.logger.Info("dry run, not writing",
			"path", path,
			"messages", conv.MessageCount,
		)
		return conv, nil
	}

	out, err := r.archive.SaveConversation(conv)
	if err != nil {
		return extractor.Conversation{}, err
	}
	r.logger.Info("snapshot replayed", "path", path, "out", out, "messages", conv.MessageCount)
	return conv, nil
}

var snapshotNameRe = regexp.MustCompile(`^conversation_raw_(.+)_\d{8}_\d{6}\.html\.gz$`)

// titleFromSnapshotName recovers the archived title from a snapshot
// filename. The sanitized form replaces spaces with underscores; replays
// keep the underscored form rather than guess at the original.
func titleFromSnapshotName(path string) string {
	base := filepath.Base(path)
	m := snapshotNameRe.FindStringSubmatch(base)
	if m == nil {
		return strings.TrimSuffix(base, ".html.gz")
	}
	return m[1]
}
