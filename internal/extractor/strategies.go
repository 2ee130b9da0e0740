package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minFragmentLen is the minimum visible text length for a fragment to count
// as a message rather than stray chrome. Strategies whose fragments all fall
// below it are treated as "no match" and the chain falls through.
const minFragmentLen = 10

// timestampSelector matches the markup shapes chat UIs use for timestamps.
const timestampSelector = "time, [datetime], [data-timestamp], .timestamp, .message-time"

// Strategy locates message-bearing nodes in a parsed snapshot. Attempt
// returns candidate fragments in document order; an empty result means the
// strategy found nothing and the next one should be tried.
type Strategy struct {
	Name    string
	Attempt func(doc *goquery.Document) []RawFragment
}

// DefaultChain returns the selector strategies in priority order. Adding a
// strategy is a list insertion; the chain runner never special-cases names.
func DefaultChain() []Strategy {
	return []Strategy{
		{Name: "message-id-attribute", Attempt: messageIDStrategy},
		{Name: "semantic-article-tag", Attempt: selectorStrategy("article")},
		{Name: "role-article", Attempt: selectorStrategy(`[role="article"]`)},
		{Name: "generic-content-block", Attempt: selectorStrategy(`div.message, div.chat-message, div.conversation-turn, [data-testid*="message"]`)},
		{Name: "raw-fallback", Attempt: rawFallbackStrategy},
	}
}

// messageIDStrategy handles the versioned Gemini markup: conversation
// containers carrying explicit message ids, with <user-query> and
// <model-response> children identifying the author structurally.
func messageIDStrategy(doc *goquery.Document) []RawFragment {
	var frags []RawFragment

	doc.Find("div.conversation-container, [data-message-id]").Each(func(_ int, container *goquery.Selection) {
		id := container.AttrOr("id", container.AttrOr("data-message-id", ""))
		tsHTML := timestampMarkup(container)

		found := false
		container.Find("user-query").Each(func(_ int, q *goquery.Selection) {
			found = true
			frags = append(frags, RawFragment{
				ContainerID:   id,
				Hint:          HintUserQuery,
				ClassAttr:     classAttr(q),
				ContentHTML:   innerHTML(q),
				TimestampHTML: tsHTML,
			})
		})
		container.Find("model-response").Each(func(_ int, r *goquery.Selection) {
			found = true
			frags = append(frags, RawFragment{
				ContainerID:   id,
				Hint:          HintModelResponse,
				ClassAttr:     classAttr(r),
				ContentHTML:   innerHTML(responseContent(r)),
				TimestampHTML: tsHTML,
			})
		})

		// Container matched by id but without typed children: keep it as an
		// unhinted fragment so the classifier can fall back on lexical rules.
		if !found {
			frags = append(frags, RawFragment{
				ContainerID:   id,
				ClassAttr:     classAttr(container),
				ContentHTML:   innerHTML(container),
				TimestampHTML: tsHTML,
			})
		}
	})

	return frags
}

// selectorStrategy builds a strategy that emits one fragment per node
// matching the given selector.
func selectorStrategy(selector string) func(doc *goquery.Document) []RawFragment {
	return func(doc *goquery.Document) []RawFragment {
		var frags []RawFragment
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			frags = append(frags, RawFragment{
				ContainerID:   s.AttrOr("id", ""),
				Hint:          structuralHint(s),
				ClassAttr:     classAttr(s),
				ContentHTML:   innerHTML(s),
				TimestampHTML: timestampMarkup(s),
			})
		})
		return frags
	}
}

// rawFallbackStrategy treats the whole document body as a single fragment.
// Last resort when no message structure is recognizable.
func rawFallbackStrategy(doc *goquery.Document) []RawFragment {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	html := innerHTML(body)
	if html == "" {
		return nil
	}
	return []RawFragment{{
		ClassAttr:   classAttr(body),
		ContentHTML: html,
	}}
}

// responseContent narrows a model response to its message body, skipping
// avatar/toolbar wrappers when the inner markup is present.
func responseContent(r *goquery.Selection) *goquery.Selection {
	if md := r.Find("message-content div.markdown").First(); md.Length() > 0 {
		return md
	}
	if mc := r.Find("message-content").First(); mc.Length() > 0 {
		return mc
	}
	return r
}

// structuralHint reports whether the node sits inside a container type whose
// author is structurally known.
func structuralHint(s *goquery.Selection) SenderHint {
	if s.Closest("user-query").Length() > 0 {
		return HintUserQuery
	}
	if s.Closest("model-response").Length() > 0 {
		return HintModelResponse
	}
	return HintNone
}

// classAttr collects class names from the node and its parent for lexical
// sender matching.
func classAttr(s *goquery.Selection) string {
	own := s.AttrOr("class", "")
	parent := s.Parent().AttrOr("class", "")
	return strings.TrimSpace(strings.TrimSpace(own) + " " + strings.TrimSpace(parent))
}

// timestampMarkup returns the markup of the nearest timestamp sub-node.
func timestampMarkup(s *goquery.Selection) string {
	ts := s.Find(timestampSelector).First()
	if ts.Length() == 0 {
		return ""
	}
	html, err := goquery.OuterHtml(ts)
	if err != nil {
		return ""
	}
	return html
}

func innerHTML(s *goquery.Selection) string {
	html, err := s.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(html)
}

// nontrivial reports whether a fragment carries enough visible text to be a
// plausible message.
func nontrivial(f RawFragment) bool {
	return len(stripTags(f.ContentHTML)) >= minFragmentLen
}
