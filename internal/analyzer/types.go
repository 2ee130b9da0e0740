package analyzer

// Totals holds the per-conversation message counts.
type Totals struct {
	MessageCount   int `json:"message_count"`
	UserCount      int `json:"user_count"`
	AssistantCount int `json:"assistant_count"`
}

// LengthStats summarizes message content lengths in characters.
type LengthStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Analysis is the derived record for one conversation. It is a pure
// function of the conversation: analyzing the same input twice yields an
// identical value, slice ordering included.
type Analysis struct {
	ConversationTitle    string      `json:"conversation_title"`
	Totals               Totals      `json:"totals"`
	LengthStats          LengthStats `json:"length_stats"`
	CodeBlockCount       int         `json:"code_block_count"`
	QuestionCount        int         `json:"question_count"`
	UniqueTechnicalTerms []string    `json:"unique_technical_terms"`
	UniqueTopics         []string    `json:"unique_topics"`
	Insights             []string    `json:"insights"`
}

// RankedCount is one row of a top-N ranking.
type RankedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CorpusSummary aggregates a set of analyses. Frequency counts are
// independent of input order; the ranked lists break count ties by
// first-seen order over the input sequence.
type CorpusSummary struct {
	ConversationCount          int            `json:"conversation_count"`
	TotalMessages              int            `json:"total_messages"`
	TotalUserMessages          int            `json:"total_user_messages"`
	TotalAssistantMessages     int            `json:"total_assistant_messages"`
	AvgMessagesPerConversation float64        `json:"avg_messages_per_conversation"`
	TermFrequency              map[string]int `json:"term_frequency"`
	TopicFrequency             map[string]int `json:"topic_frequency"`
	InsightFrequency           map[string]int `json:"insight_frequency"`
	MostCommonTechnicalTerms   []RankedCount  `json:"most_common_technical_terms"`
	MostCommonTopics           []RankedCount  `json:"most_common_topics"`
	MostCommonInsights         []RankedCount  `json:"most_common_insights"`
	ConversationTitles         []string       `json:"conversation_titles"`
}
