package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects for the extraction pipeline.
const (
	// SubjectExtractRequest asks the service to snapshot and extract one
	// conversation URL.
	SubjectExtractRequest = "gemctx.extract.request"
	// SubjectConversationExtracted announces a completed extraction.
	SubjectConversationExtracted = "gemctx.conversation.extracted"
	// SubjectCorpusAnalyzed announces a completed corpus analysis run.
	SubjectCorpusAnalyzed = "gemctx.corpus.analyzed"
)

// ExtractRequest is the payload on SubjectExtractRequest.
type ExtractRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// ConversationExtracted is the payload on SubjectConversationExtracted.
type ConversationExtracted struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	MessageCount   int    `json:"message_count"`
	ExtractedAt    string `json:"extracted_at"`
	ArchivePath    string `json:"archive_path,omitempty"`
}

// CorpusAnalyzed is the payload on SubjectCorpusAnalyzed.
type CorpusAnalyzed struct {
	ConversationCount int    `json:"conversation_count"`
	TotalMessages     int    `json:"total_messages"`
	ReportPath        string `json:"report_path,omitempty"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
