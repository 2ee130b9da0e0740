package analyzer

// Insight strings are fixed: downstream frequency tables key on them.
const (
	insightUserDriven     = "User-driven conversation with many questions"
	insightAssistantHeavy = "Assistant-heavy conversation with detailed responses"
	insightBalanced       = "Balanced conversation between user and assistant"
	insightHighlyTech     = "Highly technical conversation with diverse technologies"
	insightModeratelyTech = "Moderately technical discussion"
	insightNonTech        = "General or non-technical conversation"
	insightCodeHeavy      = "Code-heavy conversation with examples and implementations"
	insightHasCode        = "Contains code examples and technical details"
	insightExploratory    = "Exploratory conversation with many questions"
	insightDetailed       = "Detailed conversation with comprehensive responses"
	insightConcise        = "Concise conversation with brief exchanges"
)

// generateInsights runs the threshold checks in a fixed order. Checks are
// independent, so several insights can fire for one conversation. An empty
// conversation produces no insights at all.
func generateInsights(a Analysis) []string {
	insights := []string{}
	if a.Totals.MessageCount == 0 {
		return insights
	}

	userRatio := float64(a.Totals.UserCount) / float64(a.Totals.MessageCount)
	switch {
	case userRatio > 0.6:
		insights = append(insights, insightUserDriven)
	case userRatio < 0.3:
		insights = append(insights, insightAssistantHeavy)
	default:
		insights = append(insights, insightBalanced)
	}

	switch terms := len(a.UniqueTechnicalTerms); {
	case terms > 10:
		insights = append(insights, insightHighlyTech)
	case terms > 5:
		insights = append(insights, insightModeratelyTech)
	default:
		insights = append(insights, insightNonTech)
	}

	switch {
	case a.CodeBlockCount > 5:
		insights = append(insights, insightCodeHeavy)
	case a.CodeBlockCount > 0:
		insights = append(insights, insightHasCode)
	}

	if a.QuestionCount > 5 {
		insights = append(insights, insightExploratory)
	}

	switch {
	case a.LengthStats.Mean > 1000:
		insights = append(insights, insightDetailed)
	case a.LengthStats.Mean < 200:
		insights = append(insights, insightConcise)
	}

	return insights
}
