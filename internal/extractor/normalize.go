package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	spacePattern = regexp.MustCompile(`\s+`)
	fencePattern = regexp.MustCompile("(?s)```.*?```")
)

// chromeSelector matches the non-content wrapper elements stripped before
// text extraction: navigation, menus, buttons and script/style payloads.
const chromeSelector = `script, style, nav, aside, button, header, footer, [role="navigation"], [role="banner"], .menu, .toolbar, .header, .footer`

// Normalize converts a content markup fragment into normalized text. Code
// blocks (<pre>, <code> and literal fenced regions) are preserved verbatim;
// every other run of whitespace collapses to a single space. Total function:
// markup goquery cannot parse degrades to a stripped-tag plain-text fallback.
func Normalize(contentHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return stripTags(contentHTML)
	}
	doc.Find(chromeSelector).Remove()

	// Swap code elements for placeholders so their text survives the
	// whitespace collapse untouched, then restore them at the end.
	var blocks []string
	doc.Find("pre").Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, "```\n"+strings.Trim(s.Text(), "\n")+"\n```")
		s.ReplaceWithHtml(placeholder(len(blocks) - 1))
	})
	doc.Find("code").Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, "`"+s.Text()+"`")
		s.ReplaceWithHtml(placeholder(len(blocks) - 1))
	})

	text := collapseOutsideFences(doc.Text())
	for i, b := range blocks {
		text = strings.Replace(text, placeholder(i), b, 1)
	}
	return strings.TrimSpace(text)
}

// placeholder builds a marker that passes through the HTML parser and the
// whitespace collapse unchanged. Private-use runes keep it out of any real
// page text.
func placeholder(i int) string {
	return fmt.Sprintf("%d", i)
}

// collapseOutsideFences collapses whitespace runs everywhere except inside
// literal ``` fenced regions already present in the text.
func collapseOutsideFences(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range fencePattern.FindAllStringIndex(text, -1) {
		b.WriteString(collapseWhitespace(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(collapseWhitespace(text[last:]))
	return b.String()
}

func collapseWhitespace(s string) string {
	return spacePattern.ReplaceAllString(s, " ")
}

// stripTags is the degraded plain-text path for unparseable markup.
func stripTags(markup string) string {
	return strings.TrimSpace(collapseWhitespace(tagPattern.ReplaceAllString(markup, " ")))
}
