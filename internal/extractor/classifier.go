package extractor

import "strings"

// ClassifierConfig holds the lexical indicator term sets used by the sender
// classifier's second rule. The sets are data: callers and tests can swap
// them without touching the decision order.
type ClassifierConfig struct {
	UserIndicators      []string
	AssistantIndicators []string
}

// DefaultClassifierConfig returns the indicator sets chat UIs commonly use
// in their class naming.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		UserIndicators:      []string{"user", "human", "you"},
		AssistantIndicators: []string{"ai", "assistant", "gemini", "bot", "model"},
	}
}

// shortMessageLimit is the fallback heuristic's length cutoff: anything
// shorter reads as a user turn. Known to misclassify long user messages and
// terse assistant replies; kept for compatibility with stored extractions.
const shortMessageLimit = 100

// ClassifySender assigns a sender to a fragment given its normalized
// content. The rule order is contractual and must not be reordered:
//
//  1. structural container hint wins outright
//  2. lexical indicator terms among the fragment's class names
//  3. no content at all is unknown
//  4. fallback: a trailing question mark or short content reads as user,
//     anything else as assistant
func ClassifySender(frag RawFragment, content string, cfg ClassifierConfig) Sender {
	switch frag.Hint {
	case HintUserQuery:
		return SenderUser
	case HintModelResponse:
		return SenderAssistant
	}

	tokens := classTokens(frag.ClassAttr)
	if matchesAny(tokens, cfg.UserIndicators) {
		return SenderUser
	}
	if matchesAny(tokens, cfg.AssistantIndicators) {
		return SenderAssistant
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return SenderUnknown
	}
	if strings.HasSuffix(trimmed, "?") || len(trimmed) < shortMessageLimit {
		return SenderUser
	}
	return SenderAssistant
}

// classTokens splits a class attribute into lowercase tokens along the
// separators class naming conventions use ("user-message", "msg_user").
func classTokens(attr string) map[string]bool {
	tokens := make(map[string]bool)
	fields := strings.FieldsFunc(strings.ToLower(attr), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}

func matchesAny(tokens map[string]bool, indicators []string) bool {
	for _, ind := range indicators {
		if tokens[strings.ToLower(ind)] {
			return true
		}
	}
	return false
}
