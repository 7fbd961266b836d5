package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

func TestParseRoutingRules(t *testing.T) {
	rules, err := ParseRoutingRules([]byte(`
sql_keywords: [Invoice, " customer "]
document_keywords: [contract]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"invoice", "customer"}, rules.SQLKeywords)
	assert.Equal(t, []string{"contract"}, rules.DocumentKeywords)
	assert.Equal(t, domain.QueryTypeHybrid, rules.Classify("Which customer signed the contract?"))
	assert.Equal(t, domain.QueryTypeSQL, rules.Classify("What is the salary of Alice?"))
}

func TestParseRoutingRules_KeepsOmittedDefaults(t *testing.T) {
	rules, err := ParseRoutingRules([]byte("document_keywords: [contract]\n"))
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSQLKeywords, rules.SQLKeywords)
	assert.Equal(t, domain.QueryTypeDocument, rules.Classify("show the contract"))
}

func TestParseRoutingRules_Invalid(t *testing.T) {
	tests := map[string]string{
		"malformed": "sql_keywords: [unclosed",
		"no words":  "sql_keywords: []\ndocument_keywords: ['  ']\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRoutingRules([]byte(data))
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestLoadRoutingRules(t *testing.T) {
	rules, err := LoadRoutingRules("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRoutingRules().SQLKeywords, rules.SQLKeywords)

	path := filepath.Join(t.TempDir(), "routing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sql_keywords: [ticket]\n"), 0o600))

	rules, err = LoadRoutingRules(path)
	require.NoError(t, err)
	assert.Equal(t, domain.QueryTypeSQL, rules.Classify("open tickets"))

	_, err = LoadRoutingRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
