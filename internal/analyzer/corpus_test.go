package analyzer

import (
	"reflect"
	"testing"
)

func termAnalysis(title string, terms ...string) Analysis {
	return Analysis{
		ConversationTitle:    title,
		Totals:               Totals{MessageCount: 4, UserCount: 2, AssistantCount: 2},
		UniqueTechnicalTerms: terms,
		UniqueTopics:         []string{},
		Insights:             []string{},
	}
}

func TestAggregate_TermFrequency(t *testing.T) {
	a1 := termAnalysis("first", "PYTHON", "DOCKER")
	a2 := termAnalysis("second", "PYTHON")

	s := Aggregate([]Analysis{a1, a2})

	want := map[string]int{"PYTHON": 2, "DOCKER": 1}
	if !reflect.DeepEqual(s.TermFrequency, want) {
		t.Errorf("term_frequency = %v, want %v", s.TermFrequency, want)
	}
	if s.ConversationCount != 2 || s.TotalMessages != 8 {
		t.Errorf("counts = %d conv / %d msgs", s.ConversationCount, s.TotalMessages)
	}
	if s.AvgMessagesPerConversation != 4 {
		t.Errorf("avg = %f, want 4", s.AvgMessagesPerConversation)
	}
}

func TestAggregate_CommutativeCounts(t *testing.T) {
	a1 := termAnalysis("first", "PYTHON", "DOCKER")
	a1.UniqueTopics = []string{"deployment"}
	a1.Insights = []string{insightBalanced}
	a2 := termAnalysis("second", "PYTHON", "RUST")
	a2.UniqueTopics = []string{"deployment", "testing"}
	a2.Insights = []string{insightBalanced}

	fwd := Aggregate([]Analysis{a1, a2})
	rev := Aggregate([]Analysis{a2, a1})

	if !reflect.DeepEqual(fwd.TermFrequency, rev.TermFrequency) {
		t.Errorf("term frequencies differ: %v vs %v", fwd.TermFrequency, rev.TermFrequency)
	}
	if !reflect.DeepEqual(fwd.TopicFrequency, rev.TopicFrequency) {
		t.Errorf("topic frequencies differ: %v vs %v", fwd.TopicFrequency, rev.TopicFrequency)
	}
	if !reflect.DeepEqual(fwd.InsightFrequency, rev.InsightFrequency) {
		t.Errorf("insight frequencies differ: %v vs %v", fwd.InsightFrequency, rev.InsightFrequency)
	}
	if fwd.TotalMessages != rev.TotalMessages || fwd.ConversationCount != rev.ConversationCount {
		t.Errorf("totals differ across input orders")
	}
}

func TestAggregate_TieBreakFirstSeen(t *testing.T) {
	// DOCKER and PYTHON both end up with count 1; DOCKER was seen first and
	// must rank first. RUST reaches count 2 and leads overall.
	a1 := termAnalysis("first", "DOCKER", "RUST")
	a2 := termAnalysis("second", "PYTHON", "RUST")

	s := Aggregate([]Analysis{a1, a2})

	want := []RankedCount{
		{Name: "RUST", Count: 2},
		{Name: "DOCKER", Count: 1},
		{Name: "PYTHON", Count: 1},
	}
	if !reflect.DeepEqual(s.MostCommonTechnicalTerms, want) {
		t.Errorf("ranking = %v, want %v", s.MostCommonTechnicalTerms, want)
	}
}

func TestAggregate_TopNCap(t *testing.T) {
	terms := make([]string, 15)
	for i := range terms {
		terms[i] = string(rune('A' + i))
	}
	s := Aggregate([]Analysis{termAnalysis("many", terms...)})

	if len(s.MostCommonTechnicalTerms) != rankedTerms {
		t.Errorf("ranked terms = %d, want capped at %d", len(s.MostCommonTechnicalTerms), rankedTerms)
	}
	if len(s.TermFrequency) != 15 {
		t.Errorf("frequency table must keep all %d terms, got %d", 15, len(s.TermFrequency))
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	s := Aggregate(nil)

	if s.ConversationCount != 0 || s.TotalMessages != 0 || s.AvgMessagesPerConversation != 0 {
		t.Errorf("expected zero totals, got %+v", s)
	}
	if s.TermFrequency == nil || s.TopicFrequency == nil || s.InsightFrequency == nil {
		t.Error("frequency tables must be empty maps, not nil")
	}
	if len(s.MostCommonTechnicalTerms) != 0 || len(s.MostCommonTopics) != 0 || len(s.MostCommonInsights) != 0 {
		t.Errorf("expected empty rankings, got %+v", s)
	}
}

func TestAggregator_SummaryRepeatable(t *testing.T) {
	g := NewAggregator()
	g.Add(termAnalysis("only", "PYTHON"))

	first := g.Summary()
	second := g.Summary()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Summary() differs:\n%+v\n%+v", first, second)
	}
}
