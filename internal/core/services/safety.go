package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// Statement verbs and keywords refused anywhere in a statement
var defaultBannedWords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "TRUNCATE",
	"ALTER", "CREATE", "REPLACE", "GRANT", "REVOKE",
	"ATTACH", "DETACH", "PRAGMA", "VACUUM",
}

// Verbs a read-only statement may start with
var defaultLeadingVerbs = []string{"SELECT", "WITH", "VALUES", "EXPLAIN"}

// Words that are also scalar functions; they are allowed when called.
var functionWords = map[string]bool{"REPLACE": true}

// lexRules describes how a dialect quotes text. Anything not enabled here
// is scanned as ordinary punctuation.
type lexRules struct {
	backticks     bool // `identifier`
	brackets      bool // [identifier]
	dollarQuotes  bool // $tag$ body $tag$
	escapeStrings bool // E'...' with backslash escapes
	backslashAll  bool // backslash escapes in every '...' literal
}

var (
	sqliteRules   = lexRules{backticks: true, brackets: true}
	postgresRules = lexRules{dollarQuotes: true, escapeStrings: true}

	// standard_conforming_strings = off
	postgresLegacyRules = lexRules{dollarQuotes: true, escapeStrings: true, backslashAll: true}
)

// dialectRules returns every lexing a server of the dialect might apply.
// An unknown dialect is checked under all of them.
func dialectRules(dialect string) []lexRules {
	switch dialect {
	case domain.DialectSQLite:
		return []lexRules{sqliteRules}
	case domain.DialectPostgres:
		return []lexRules{postgresRules, postgresLegacyRules}
	default:
		return []lexRules{sqliteRules, postgresRules, postgresLegacyRules}
	}
}

// SafetyGate decides whether a generated statement may be executed.
// It works on tokens rather than raw text so that identifiers such as
// update_count and string literals such as 'DROP' are not mistaken for
// commands.
type SafetyGate struct {
	banned  map[string]bool
	leading map[string]bool
}

// NewSafetyGate creates a gate with the default read-only policy
func NewSafetyGate() *SafetyGate {
	g := &SafetyGate{
		banned:  make(map[string]bool, len(defaultBannedWords)),
		leading: make(map[string]bool, len(defaultLeadingVerbs)),
	}
	for _, w := range defaultBannedWords {
		g.banned[w] = true
	}
	for _, w := range defaultLeadingVerbs {
		g.leading[w] = true
	}
	return g
}

// Check returns nil when the statement is a single read-only query under
// every quoting rule of the dialect. Rejections wrap domain.ErrUnsafeQuery
// with the reason.
func (g *SafetyGate) Check(statement, dialect string) error {
	for _, rules := range dialectRules(dialect) {
		if err := g.check(scanStatement(statement, rules)); err != nil {
			return err
		}
	}
	return nil
}

func (g *SafetyGate) check(scan statementScan) error {
	switch {
	case scan.unterminated:
		return fmt.Errorf("%w: unterminated quote or comment", domain.ErrUnsafeQuery)
	case scan.statements == 0:
		return fmt.Errorf("%w: empty statement", domain.ErrUnsafeQuery)
	case scan.statements > 1:
		return fmt.Errorf("%w: %d statements", domain.ErrUnsafeQuery, scan.statements)
	}

	if len(scan.words) == 0 || !g.leading[scan.words[0].text] {
		return fmt.Errorf("%w: not a read-only statement", domain.ErrUnsafeQuery)
	}

	for _, w := range scan.words {
		if !g.banned[w.text] {
			continue
		}
		if w.call && functionWords[w.text] {
			continue
		}
		return fmt.Errorf("%w: keyword %s", domain.ErrUnsafeQuery, w.text)
	}
	return nil
}

type sqlWord struct {
	text string // uppercased
	call bool   // followed by "("
}

type statementScan struct {
	words        []sqlWord
	statements   int
	unterminated bool
}

// scanStatement tokenises SQL, skipping comments, string literals, quoted
// identifiers and dollar-quoted bodies as the rules define them. Only bare
// words are kept.
func scanStatement(sql string, rules lexRules) statementScan {
	var (
		scan    statementScan
		pending bool // current statement has at least one token
		i       int
	)

	// skipTo moves past the first occurrence of end at or after from
	skipTo := func(from int, end string) {
		if n := strings.Index(sql[from:], end); n >= 0 {
			i = from + n + len(end)
			return
		}
		i = len(sql)
		scan.unterminated = true
	}

	for i < len(sql) {
		c := sql[i]
		switch {
		case c == ';':
			if pending {
				scan.statements++
				pending = false
			}
			i++

		case c == '-' && strings.HasPrefix(sql[i:], "--"):
			// Either line break ends the comment
			if nl := strings.IndexAny(sql[i:], "\r\n"); nl >= 0 {
				i += nl + 1
			} else {
				i = len(sql)
			}

		case c == '/' && strings.HasPrefix(sql[i:], "/*"):
			skipTo(i+2, "*/")

		case c == '\'':
			i = skipQuoted(sql, i, c, rules.backslashAll, &scan)
			pending = true

		case c == '"' || (c == '`' && rules.backticks):
			i = skipQuoted(sql, i, c, false, &scan)
			pending = true

		case c == '[' && rules.brackets:
			skipTo(i+1, "]")
			pending = true

		case c == '$' && rules.dollarQuotes && dollarTag(sql[i:]) != "":
			tag := dollarTag(sql[i:])
			skipTo(i+len(tag), tag)
			pending = true

		case isWordStart(sql, i):
			start := i
			for i < len(sql) && isWordPart(sql, i) {
				_, size := utf8.DecodeRuneInString(sql[i:])
				i += size
			}
			word := strings.ToUpper(sql[start:i])
			pending = true

			if rules.escapeStrings && word == "E" && i < len(sql) && sql[i] == '\'' {
				i = skipQuoted(sql, i, '\'', true, &scan)
				continue
			}
			scan.words = append(scan.words, sqlWord{
				text: word,
				call: nextSignificant(sql, i) == '(',
			})

		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++

		default:
			_, size := utf8.DecodeRuneInString(sql[i:])
			i += size
			pending = true
		}
	}

	if pending {
		scan.statements++
	}
	return scan
}

// skipQuoted returns the index after a quoted section. Doubled quotes
// escape; so does a backslash when backslash is set.
func skipQuoted(sql string, i int, quote byte, backslash bool, scan *statementScan) int {
	i++
	for i < len(sql) {
		switch {
		case backslash && sql[i] == '\\':
			i += 2
			continue
		case sql[i] == quote:
			if i+1 < len(sql) && sql[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	scan.unterminated = true
	return len(sql)
}

// dollarTag returns "$tag$" or "$$" when s starts with a dollar quote.
func dollarTag(s string) string {
	if len(s) < 2 || s[0] != '$' {
		return ""
	}
	for j := 1; j < len(s); j++ {
		switch {
		case s[j] == '$':
			return s[:j+1]
		case s[j] == '_' || (s[j] >= 'a' && s[j] <= 'z') || (s[j] >= 'A' && s[j] <= 'Z'):
		case j > 1 && s[j] >= '0' && s[j] <= '9':
		default:
			return ""
		}
	}
	return ""
}

func isWordStart(sql string, i int) bool {
	r, _ := utf8.DecodeRuneInString(sql[i:])
	return r == '_' || unicode.IsLetter(r)
}

func isWordPart(sql string, i int) bool {
	r, _ := utf8.DecodeRuneInString(sql[i:])
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func nextSignificant(sql string, i int) byte {
	for i < len(sql) {
		switch sql[i] {
		case ' ', '\t', '\n', '\r', '\f':
			i++
		default:
			return sql[i]
		}
	}
	return 0
}
