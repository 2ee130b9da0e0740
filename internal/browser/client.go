package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the remote snapshot provider: a sidecar driving a
// CDP-attached browser that opens a conversation, scrolls until the full
// history is loaded and returns the rendered DOM as one HTML string. All
// waiting, retry and pagination policy lives on that side; this client is
// a thin shell and the extraction core never imports it.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient returns a snapshot provider client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 90 * time.Second},
		logger:  logger,
	}
}

// ConversationRef identifies one conversation visible in the provider's
// sidebar listing.
type ConversationRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type snapshotRequest struct {
	URL string `json:"url"`
}

type snapshotResponse struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
	Error string `json:"error,omitempty"`
}

type listResponse struct {
	Conversations []ConversationRef `json:"conversations"`
	Error         string            `json:"error,omitempty"`
}

// Snapshot fetches the fully loaded DOM snapshot for a conversation URL.
// Returns the page title reported by the provider and the HTML.
func (c *Client) Snapshot(ctx context.Context, conversationURL string) (string, string, error) {
	body, err := json.Marshal(snapshotRequest{URL: conversationURL})
	if err != nil {
		return "", "", fmt.Errorf("marshal snapshot request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/snapshot", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("snapshot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("snapshot provider returned %d", resp.StatusCode)
	}

	var sr snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", "", fmt.Errorf("decode snapshot response: %w", err)
	}
	if sr.Error != "" {
		return "", "", fmt.Errorf("snapshot provider: %s", sr.Error)
	}

	c.logger.Debug("snapshot fetched",
		"url", conversationURL,
		"title", sr.Title,
		"html_len", len(sr.HTML),
	)
	return sr.Title, sr.HTML, nil
}

// ListConversations fetches the provider's sidebar listing.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/conversations", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot provider returned %d", resp.StatusCode)
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	if lr.Error != "" {
		return nil, fmt.Errorf("snapshot provider: %s", lr.Error)
	}
	return lr.Conversations, nil
}
