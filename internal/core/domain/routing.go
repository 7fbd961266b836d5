package domain

import "strings"

// Default keyword vocabularies for question classification.
var (
	DefaultSQLKeywords      = []string{"department", "salary", "employee", "hired", "reports to"}
	DefaultDocumentKeywords = []string{"skill", "python", "performance", "review", "resume", "experience"}
)

// KeywordMatch records which vocabularies a question touched
type KeywordMatch struct {
	SQL      bool
	Document bool
}

// RoutingRule maps a keyword match to a query type
type RoutingRule struct {
	Name  string
	Match func(KeywordMatch) bool
	Type  QueryType
}

// RoutingRules is an ordered rule table over two keyword vocabularies.
// The first rule whose predicate holds decides the type; Fallback is used
// when none does.
type RoutingRules struct {
	SQLKeywords      []string
	DocumentKeywords []string
	Rules            []RoutingRule
	Fallback         QueryType
}

// DefaultRoutingRules returns the built-in vocabulary and policy
func DefaultRoutingRules() *RoutingRules {
	return NewRoutingRules(DefaultSQLKeywords, DefaultDocumentKeywords)
}

// NewRoutingRules builds the standard policy over custom vocabularies.
// Keywords are lowercased and blank entries dropped.
func NewRoutingRules(sqlKeywords, documentKeywords []string) *RoutingRules {
	return &RoutingRules{
		SQLKeywords:      normaliseKeywords(sqlKeywords),
		DocumentKeywords: normaliseKeywords(documentKeywords),
		Rules: []RoutingRule{
			{Name: "both", Match: func(m KeywordMatch) bool { return m.SQL && m.Document }, Type: QueryTypeHybrid},
			{Name: "sql-only", Match: func(m KeywordMatch) bool { return m.SQL }, Type: QueryTypeSQL},
			{Name: "document-only", Match: func(m KeywordMatch) bool { return m.Document }, Type: QueryTypeDocument},
		},
		Fallback: QueryTypeSQL,
	}
}

// Scan reports which vocabularies occur in the question (case-insensitive substring).
func (r *RoutingRules) Scan(question string) KeywordMatch {
	lower := strings.ToLower(question)
	return KeywordMatch{
		SQL:      containsAny(lower, r.SQLKeywords),
		Document: containsAny(lower, r.DocumentKeywords),
	}
}

// Classify returns exactly one query type for any question
func (r *RoutingRules) Classify(question string) QueryType {
	match := r.Scan(question)
	for _, rule := range r.Rules {
		if rule.Match(match) {
			return rule.Type
		}
	}
	return r.Fallback
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func normaliseKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
