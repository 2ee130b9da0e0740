package analyzer

import (
	"regexp"
	"strings"
)

// TermPattern is one technical-term matcher. Every match contributes its
// uppercase canonical form.
type TermPattern struct {
	Category string
	Pattern  *regexp.Regexp
}

// TopicRule tags its topic when any of its keywords appears anywhere in a
// message (OR semantics).
type TopicRule struct {
	Name     string
	Keywords []string
}

// TagTables holds the pattern data the tagger scans with. The tables are
// configuration: replacing or extending them changes what gets tagged
// without touching the scanning code.
type TagTables struct {
	Terms  []TermPattern
	Topics []TopicRule
}

// DefaultTables returns the built-in technical-term and topic tables.
func DefaultTables() TagTables {
	return TagTables{
		Terms: []TermPattern{
			{Category: "protocols", Pattern: regexp.MustCompile(`(?i)\b(?:API|SDK|CLI|JWT|OAuth|HTTP|HTTPS|REST|GraphQL|JSON|XML|YAML|SQL|NoSQL)\b`)},
			{Category: "infrastructure", Pattern: regexp.MustCompile(`(?i)\b(?:Docker|Kubernetes|AWS|GCP|Azure|GitHub|GitLab|CI/CD)\b`)},
			{Category: "languages", Pattern: regexp.MustCompile(`(?i)\b(?:Python|JavaScript|TypeScript|Java|C\+\+|Rust|Go|Ruby|PHP)\b`)},
			{Category: "frameworks", Pattern: regexp.MustCompile(`(?i)\b(?:React|Vue|Angular|Node\.js|Express|Django|Flask|FastAPI)\b`)},
			{Category: "databases", Pattern: regexp.MustCompile(`(?i)\b(?:MongoDB|PostgreSQL|MySQL|Redis|Elasticsearch|Kafka)\b`)},
			{Category: "browser-automation", Pattern: regexp.MustCompile(`(?i)\b(?:Playwright|Selenium|Puppeteer|Cypress)\b`)},
			{Category: "ai-ml", Pattern: regexp.MustCompile(`(?i)\b(?:AI|ML|LLM|NLP|GPT|BERT|Transformer)\b`)},
			{Category: "design-principles", Pattern: regexp.MustCompile(`(?i)\b(?:IoC|DI|MVC|MVP|MVVM|SOLID|DRY|KISS)\b`)},
		},
		Topics: []TopicRule{
			{Name: "authentication", Keywords: []string{"auth", "login", "token", "jwt", "oauth", "credential"}},
			{Name: "automation", Keywords: []string{"playwright", "selenium", "automation", "script", "bot"}},
			{Name: "architecture", Keywords: []string{"architecture", "design", "pattern", "structure", "component"}},
			{Name: "deployment", Keywords: []string{"deploy", "deployment", "docker", "kubernetes", "container"}},
			{Name: "database", Keywords: []string{"database", "sql", "nosql", "mongodb", "postgresql", "redis"}},
			{Name: "api", Keywords: []string{"api", "endpoint", "rest", "graphql", "service", "microservice"}},
			{Name: "frontend", Keywords: []string{"frontend", "ui", "react", "vue", "angular", "javascript"}},
			{Name: "backend", Keywords: []string{"backend", "server", "node", "python", "django", "flask"}},
			{Name: "testing", Keywords: []string{"test", "testing", "unit", "integration", "e2e", "cypress"}},
			{Name: "security", Keywords: []string{"security", "encryption", "ssl", "tls", "vulnerability"}},
			{Name: "performance", Keywords: []string{"performance", "optimization", "cache", "speed", "latency"}},
			{Name: "monitoring", Keywords: []string{"monitoring", "logging", "metrics", "observability", "alert"}},
		},
	}
}

// TermMatches returns every technical-term occurrence in content, uppercase,
// in table-then-match order. Duplicates are kept for frequency counting.
func (t TagTables) TermMatches(content string) []string {
	var terms []string
	for _, tp := range t.Terms {
		for _, m := range tp.Pattern.FindAllString(content, -1) {
			terms = append(terms, strings.ToUpper(m))
		}
	}
	return terms
}

// TopicMatches returns the topics whose keywords appear in content, in
// table order.
func (t TagTables) TopicMatches(content string) []string {
	lower := strings.ToLower(content)
	var topics []string
	for _, rule := range t.Topics {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, rule.Name)
				break
			}
		}
	}
	return topics
}
