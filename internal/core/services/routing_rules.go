package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// routingRulesFile is the on-disk shape of a routing vocabulary override:
//
//	sql_keywords: [department, salary]
//	document_keywords: [resume, skill]
//
// An omitted list keeps the default vocabulary.
type routingRulesFile struct {
	SQLKeywords      []string `yaml:"sql_keywords"`
	DocumentKeywords []string `yaml:"document_keywords"`
}

// LoadRoutingRules reads keyword vocabularies from a YAML file.
// An empty path returns the default rules.
func LoadRoutingRules(path string) (*domain.RoutingRules, error) {
	if path == "" {
		return domain.DefaultRoutingRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routing rules: %w", err)
	}
	return ParseRoutingRules(data)
}

// ParseRoutingRules decodes a YAML routing vocabulary
func ParseRoutingRules(data []byte) (*domain.RoutingRules, error) {
	var file routingRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: routing rules: %v", domain.ErrInvalidInput, err)
	}

	sqlKeywords := file.SQLKeywords
	if sqlKeywords == nil {
		sqlKeywords = domain.DefaultSQLKeywords
	}
	documentKeywords := file.DocumentKeywords
	if documentKeywords == nil {
		documentKeywords = domain.DefaultDocumentKeywords
	}

	rules := domain.NewRoutingRules(sqlKeywords, documentKeywords)
	if len(rules.SQLKeywords) == 0 && len(rules.DocumentKeywords) == 0 {
		return nil, fmt.Errorf("%w: routing rules define no keywords", domain.ErrInvalidInput)
	}
	return rules, nil
}
