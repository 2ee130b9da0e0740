package render

import (
	"strings"
	"testing"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/analyzer"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
)

func TestTranscript_AllMessagesInOrder(t *testing.T) {
	conv := extractor.Conversation{
		Title:        "Proxy setup",
		URL:          "https://gemini.google.com/app/abc",
		ExtractedAt:  "2026-03-01T12:00:00Z",
		MessageCount: 3,
		Messages: []extractor.Message{
			{ID: "m1", Sender: extractor.SenderUser, Content: "How do I set up the proxy?", Timestamp: "2026-03-01T11:58:00Z", Kind: extractor.KindUserMessage},
			{ID: "m2", Sender: extractor.SenderAssistant, Content: "Point it at port 8080.", Timestamp: "2026-03-01T11:59:00Z", Kind: extractor.KindAssistantMessage},
			{ID: "m3", Sender: extractor.SenderUnknown, Content: "stray fragment", Timestamp: "2026-03-01T12:00:00Z", Kind: extractor.KindUnclassified},
		},
	}

	md := Transcript(conv)

	if !strings.HasPrefix(md, "# Proxy setup\n") {
		t.Errorf("missing title heading: %q", md[:40])
	}

	// Every message appears exactly once, in order.
	wantInOrder := []string{
		"## User (Message 1)",
		"How do I set up the proxy?",
		"## Assistant (Message 2)",
		"Point it at port 8080.",
		"## Unknown (Message 3)",
		"stray fragment",
	}
	pos := 0
	for _, want := range wantInOrder {
		idx := strings.Index(md[pos:], want)
		if idx < 0 {
			t.Fatalf("missing %q after position %d in:\n%s", want, pos, md)
		}
		pos += idx + len(want)
	}

	for _, msg := range conv.Messages {
		if strings.Count(md, msg.Content) != 1 {
			t.Errorf("message %q must appear exactly once", msg.ID)
		}
	}
}

func TestTranscript_EmptyConversation(t *testing.T) {
	conv := extractor.Conversation{Title: "empty", ExtractedAt: "2026-03-01T12:00:00Z", Messages: []extractor.Message{}}

	md := Transcript(conv)

	if !strings.Contains(md, "# empty") || !strings.Contains(md, "**Messages:** 0") {
		t.Errorf("unexpected empty transcript:\n%s", md)
	}
	if strings.Contains(md, "## ") {
		t.Errorf("no message headings expected:\n%s", md)
	}
}

func TestCorpusReport(t *testing.T) {
	s := analyzer.CorpusSummary{
		ConversationCount:          2,
		TotalMessages:              10,
		TotalUserMessages:          6,
		TotalAssistantMessages:     4,
		AvgMessagesPerConversation: 5,
		MostCommonTechnicalTerms:   []analyzer.RankedCount{{Name: "PYTHON", Count: 2}},
		MostCommonTopics:           []analyzer.RankedCount{{Name: "deployment", Count: 1}},
		ConversationTitles:         []string{"first", "second"},
	}

	md := CorpusReport(s)

	for _, want := range []string{
		"# Conversation Analysis Summary",
		"Conversations: 2",
		"PYTHON: 2",
		"deployment: 1",
		"- first",
		"- second",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q:\n%s", want, md)
		}
	}
}
