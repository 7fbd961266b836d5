package services

import (
	"strings"
)

const codeFence = "```"

// ParseQueryEnvelope extracts the SQL statement from an LLM reply.
// Replies are often wrapped in a markdown fence (```sql ... ```); the fence
// and any language tag are removed along with surrounding whitespace.
// Text outside the first fenced block is discarded.
func ParseQueryEnvelope(reply string) string {
	s := strings.TrimSpace(reply)

	open := strings.Index(s, codeFence)
	if open < 0 {
		return s
	}
	body := s[open+len(codeFence):]

	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if isLanguageTag(body[:nl]) {
			body = body[nl+1:]
		}
	} else {
		body = trimInlineTag(body)
	}

	if end := strings.Index(body, codeFence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// isLanguageTag reports whether the text after an opening fence is a tag
// such as "sql" or "postgresql" rather than the start of the statement.
func isLanguageTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

func trimInlineTag(s string) string {
	for _, tag := range []string{"sql", "SQL"} {
		if rest, ok := strings.CutPrefix(s, tag); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
			return rest
		}
	}
	return s
}
