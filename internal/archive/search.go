package archive

import (
	"fmt"
	"strings"
)

// SearchMatch is one archived conversation matching a keyword query.
type SearchMatch struct {
	Path         string `json:"path"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
	TitleMatch   bool   `json:"title_match"`
	Matches      int    `json:"matches"`
	Snippet      string `json:"snippet,omitempty"`
}

const snippetLen = 160

// Search scans every archived conversation for the query, case-insensitive,
// over titles and message content. Results come back in archive listing
// order; the snippet is taken from the first matching message.
func (a *Archive) Search(query string) ([]SearchMatch, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, fmt.Errorf("empty search query")
	}

	paths, err := a.ListConversations()
	if err != nil {
		return nil, err
	}

	results := []SearchMatch{}
	for _, path := range paths {
		conv, err := a.LoadConversation(path)
		if err != nil {
			continue
		}

		m := SearchMatch{
			Path:         path,
			Title:        conv.Title,
			MessageCount: conv.MessageCount,
			TitleMatch:   strings.Contains(strings.ToLower(conv.Title), q),
		}
		for _, msg := range conv.Messages {
			if !strings.Contains(strings.ToLower(msg.Content), q) {
				continue
			}
			m.Matches++
			if m.Snippet == "" {
				m.Snippet = snippet(msg.Content)
			}
		}

		if m.TitleMatch || m.Matches > 0 {
			results = append(results, m)
		}
	}
	return results, nil
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLen {
		return content
	}
	return string(runes[:snippetLen]) + "..."
}
