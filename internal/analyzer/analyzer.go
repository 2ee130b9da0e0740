package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
)

// codeBlockPatterns are counted independently per message: fenced blocks,
// inline backticks and HTML code tags.
var codeBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```.*?```"),
	regexp.MustCompile("`[^`]+`"),
	regexp.MustCompile(`(?s)<code>.*?</code>`),
}

// Analyzer derives statistics, tags and insights from conversations. It is
// stateless between calls; concurrent use is safe.
type Analyzer struct {
	tables TagTables
}

// New returns an Analyzer scanning with the default tag tables.
func New() *Analyzer {
	return &Analyzer{tables: DefaultTables()}
}

// NewWithTables returns an Analyzer scanning with caller-supplied tables.
func NewWithTables(tables TagTables) *Analyzer {
	return &Analyzer{tables: tables}
}

// Analyze derives the Analysis for one conversation. Pure function of its
// input: repeated calls yield identical results, slice ordering included.
// A conversation with no messages yields an all-zero Analysis.
func (a *Analyzer) Analyze(conv extractor.Conversation) Analysis {
	res := Analysis{
		ConversationTitle:    conv.Title,
		UniqueTechnicalTerms: []string{},
		UniqueTopics:         []string{},
		Insights:             []string{},
	}

	lengths := make([]int, 0, len(conv.Messages))
	termSeen := make(map[string]bool)
	topicSeen := make(map[string]bool)

	for _, msg := range conv.Messages {
		res.Totals.MessageCount++
		lengths = append(lengths, len(msg.Content))

		switch msg.Sender {
		case extractor.SenderUser:
			res.Totals.UserCount++
			res.QuestionCount += strings.Count(msg.Content, "?")
		case extractor.SenderAssistant:
			res.Totals.AssistantCount++
		}

		for _, p := range codeBlockPatterns {
			res.CodeBlockCount += len(p.FindAllStringIndex(msg.Content, -1))
		}

		for _, term := range a.tables.TermMatches(msg.Content) {
			if !termSeen[term] {
				termSeen[term] = true
				res.UniqueTechnicalTerms = append(res.UniqueTechnicalTerms, term)
			}
		}
		for _, topic := range a.tables.TopicMatches(msg.Content) {
			if !topicSeen[topic] {
				topicSeen[topic] = true
				res.UniqueTopics = append(res.UniqueTopics, topic)
			}
		}
	}

	res.LengthStats = lengthStats(lengths)
	res.Insights = generateInsights(res)
	return res
}

// lengthStats computes mean/median/min/max over content lengths. Empty
// input yields the zero value.
func lengthStats(lengths []int) LengthStats {
	if len(lengths) == 0 {
		return LengthStats{}
	}

	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	sum := 0
	for _, n := range sorted {
		sum += n
	}

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	} else {
		median = float64(sorted[mid])
	}

	return LengthStats{
		Mean:   float64(sum) / float64(len(sorted)),
		Median: median,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}
