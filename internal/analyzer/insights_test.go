package analyzer

import (
	"reflect"
	"testing"
)

func analysisWith(total, user, assistant int) Analysis {
	return Analysis{
		Totals:               Totals{MessageCount: total, UserCount: user, AssistantCount: assistant},
		LengthStats:          LengthStats{Mean: 500},
		UniqueTechnicalTerms: []string{},
		UniqueTopics:         []string{},
	}
}

func TestGenerateInsights_UserRatio(t *testing.T) {
	tests := []struct {
		name string
		user int
		want string
	}{
		{"user driven above 0.6", 7, insightUserDriven},
		{"assistant heavy below 0.3", 2, insightAssistantHeavy},
		{"balanced in between", 5, insightBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analysisWith(10, tt.user, 10-tt.user)
			got := generateInsights(a)
			if len(got) == 0 || got[0] != tt.want {
				t.Errorf("first insight = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateInsights_TechnicalDepth(t *testing.T) {
	tests := []struct {
		name  string
		terms int
		want  string
	}{
		{"highly technical above 10", 11, insightHighlyTech},
		{"moderately technical above 5", 6, insightModeratelyTech},
		{"non-technical otherwise", 2, insightNonTech},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analysisWith(4, 2, 2)
			for i := 0; i < tt.terms; i++ {
				a.UniqueTechnicalTerms = append(a.UniqueTechnicalTerms, string(rune('A'+i)))
			}
			got := generateInsights(a)
			if got[1] != tt.want {
				t.Errorf("second insight = %q, want %q", got[1], tt.want)
			}
		})
	}
}

func TestGenerateInsights_CodeAndQuestions(t *testing.T) {
	a := analysisWith(4, 2, 2)
	a.CodeBlockCount = 6
	a.QuestionCount = 7

	got := generateInsights(a)

	assertContains(t, got, insightCodeHeavy)
	assertContains(t, got, insightExploratory)

	a.CodeBlockCount = 2
	got = generateInsights(a)
	assertContains(t, got, insightHasCode)
}

func TestGenerateInsights_AverageLength(t *testing.T) {
	a := analysisWith(4, 2, 2)

	a.LengthStats.Mean = 1500
	assertContains(t, generateInsights(a), insightDetailed)

	a.LengthStats.Mean = 50
	assertContains(t, generateInsights(a), insightConcise)

	a.LengthStats.Mean = 500
	got := generateInsights(a)
	for _, in := range got {
		if in == insightDetailed || in == insightConcise {
			t.Errorf("no length insight expected at mean 500, got %v", got)
		}
	}
}

func TestGenerateInsights_EmptyAnalysis(t *testing.T) {
	got := generateInsights(Analysis{})
	if got == nil || len(got) != 0 {
		t.Errorf("empty analysis insights = %v, want empty slice", got)
	}
}

func TestGenerateInsights_DeterministicOrder(t *testing.T) {
	a := analysisWith(10, 7, 3)
	a.UniqueTechnicalTerms = make([]string, 12)
	a.CodeBlockCount = 6
	a.QuestionCount = 7
	a.LengthStats.Mean = 1500

	want := []string{
		insightUserDriven,
		insightHighlyTech,
		insightCodeHeavy,
		insightExploratory,
		insightDetailed,
	}
	got := generateInsights(a)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("insights = %v, want fixed order %v", got, want)
	}
}

func assertContains(t *testing.T, list []string, want string) {
	t.Helper()
	for _, s := range list {
		if s == want {
			return
		}
	}
	t.Errorf("insights %v missing %q", list, want)
}
