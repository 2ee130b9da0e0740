package render

import (
	"fmt"
	"strings"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/analyzer"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
)

// Transcript renders a conversation as a markdown document: a metadata
// header followed by one heading block per message, in message order. It is
// a pure view over the structured record; every message appears exactly
// once and nothing is dropped.
func Transcript(conv extractor.Conversation) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", conv.Title))
	b.WriteString(fmt.Sprintf("**Extracted:** %s\n", conv.ExtractedAt))
	if conv.URL != "" {
		b.WriteString(fmt.Sprintf("**Source:** %s\n", conv.URL))
	}
	b.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", conv.MessageCount))

	for i, msg := range conv.Messages {
		b.WriteString(fmt.Sprintf("## %s (Message %d)\n\n", SenderLabel(msg.Sender), i+1))
		if msg.Timestamp != "" {
			b.WriteString(fmt.Sprintf("*%s*\n\n", msg.Timestamp))
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n---\n\n")
	}

	return b.String()
}

// SenderLabel is the display name for a sender.
func SenderLabel(s extractor.Sender) string {
	switch s {
	case extractor.SenderUser:
		return "User"
	case extractor.SenderAssistant:
		return "Assistant"
	default:
		return "Unknown"
	}
}

// CorpusReport renders an aggregated corpus summary as markdown.
func CorpusReport(s analyzer.CorpusSummary) string {
	var b strings.Builder

	b.WriteString("# Conversation Analysis Summary\n\n")
	b.WriteString(fmt.Sprintf("- Conversations: %d\n", s.ConversationCount))
	b.WriteString(fmt.Sprintf("- Messages: %d\n", s.TotalMessages))
	b.WriteString(fmt.Sprintf("- User messages: %d\n", s.TotalUserMessages))
	b.WriteString(fmt.Sprintf("- Assistant messages: %d\n", s.TotalAssistantMessages))
	b.WriteString(fmt.Sprintf("- Avg messages per conversation: %.1f\n", s.AvgMessagesPerConversation))

	writeRanking(&b, "Most Common Technical Terms", s.MostCommonTechnicalTerms)
	writeRanking(&b, "Most Common Topics", s.MostCommonTopics)
	writeRanking(&b, "Most Common Insights", s.MostCommonInsights)

	if len(s.ConversationTitles) > 0 {
		b.WriteString("\n## Conversations Analyzed\n\n")
		for _, title := range s.ConversationTitles {
			b.WriteString(fmt.Sprintf("- %s\n", title))
		}
	}

	return b.String()
}

func writeRanking(b *strings.Builder, heading string, ranked []analyzer.RankedCount) {
	if len(ranked) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n## %s\n\n", heading))
	for _, r := range ranked {
		b.WriteString(fmt.Sprintf("- %s: %d\n", r.Name, r.Count))
	}
}
