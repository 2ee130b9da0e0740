package analyzer

import "sort"

// rankedTerms, rankedTopics and rankedInsights cap the top-N lists in the
// corpus summary.
const (
	rankedTerms    = 10
	rankedTopics   = 10
	rankedInsights = 5
)

// Aggregator folds analyses into a CorpusSummary. Construct one per run;
// there are no process-wide counters. Frequency counts are commutative over
// input order, and count ties rank by first-seen order, so results from
// parallel extraction can be folded in whatever order they arrive.
type Aggregator struct {
	conversationCount int
	totalMessages     int
	totalUser         int
	totalAssistant    int
	titles            []string

	termFreq    map[string]int
	topicFreq   map[string]int
	insightFreq map[string]int

	termOrder    []string
	topicOrder   []string
	insightOrder []string
}

// NewAggregator returns an empty Aggregator. Summarizing it without adding
// anything yields a defined zero-valued summary, not an error.
func NewAggregator() *Aggregator {
	return &Aggregator{
		titles:      []string{},
		termFreq:    make(map[string]int),
		topicFreq:   make(map[string]int),
		insightFreq: make(map[string]int),
	}
}

// Add folds one analysis into the aggregate. The per-conversation unique
// sets feed the frequency tables, so a term counts once per conversation
// no matter how often it appeared inside it.
func (g *Aggregator) Add(a Analysis) {
	g.conversationCount++
	g.totalMessages += a.Totals.MessageCount
	g.totalUser += a.Totals.UserCount
	g.totalAssistant += a.Totals.AssistantCount
	g.titles = append(g.titles, a.ConversationTitle)

	g.termOrder = countInto(g.termFreq, g.termOrder, a.UniqueTechnicalTerms)
	g.topicOrder = countInto(g.topicFreq, g.topicOrder, a.UniqueTopics)
	g.insightOrder = countInto(g.insightFreq, g.insightOrder, a.Insights)
}

// Summary materializes the aggregate. Safe to call repeatedly; it does not
// mutate the Aggregator.
func (g *Aggregator) Summary() CorpusSummary {
	avg := 0.0
	if g.conversationCount > 0 {
		avg = float64(g.totalMessages) / float64(g.conversationCount)
	}

	return CorpusSummary{
		ConversationCount:          g.conversationCount,
		TotalMessages:              g.totalMessages,
		TotalUserMessages:          g.totalUser,
		TotalAssistantMessages:     g.totalAssistant,
		AvgMessagesPerConversation: avg,
		TermFrequency:              copyFreq(g.termFreq),
		TopicFrequency:             copyFreq(g.topicFreq),
		InsightFrequency:           copyFreq(g.insightFreq),
		MostCommonTechnicalTerms:   rankTop(g.termFreq, g.termOrder, rankedTerms),
		MostCommonTopics:           rankTop(g.topicFreq, g.topicOrder, rankedTopics),
		MostCommonInsights:         rankTop(g.insightFreq, g.insightOrder, rankedInsights),
		ConversationTitles:         append([]string{}, g.titles...),
	}
}

// Aggregate folds a list of analyses into a CorpusSummary. An empty list
// yields a zero-valued summary with empty tables.
func Aggregate(analyses []Analysis) CorpusSummary {
	g := NewAggregator()
	for _, a := range analyses {
		g.Add(a)
	}
	return g.Summary()
}

// countInto increments freq for each value, appending values to order the
// first time they are seen. Returns the updated order slice.
func countInto(freq map[string]int, order []string, values []string) []string {
	for _, v := range values {
		if _, ok := freq[v]; !ok {
			order = append(order, v)
		}
		freq[v]++
	}
	return order
}

// rankTop ranks entries by count descending; the stable sort over first-seen
// order is the documented tie-break.
func rankTop(freq map[string]int, order []string, n int) []RankedCount {
	ranked := make([]RankedCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, RankedCount{Name: name, Count: freq[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func copyFreq(freq map[string]int) map[string]int {
	out := make(map[string]int, len(freq))
	for k, v := range freq {
		out[k] = v
	}
	return out
}
