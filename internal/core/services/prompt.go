package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// BuildSQLPrompt renders the text-to-SQL instruction for one question.
// The schema is embedded as indented JSON and the question verbatim.
func BuildSQLPrompt(schema *domain.SchemaDescription, question, dialect string) (string, error) {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a powerful Text-to-SQL model. Your role is to generate a single, valid SQL query ")
	b.WriteString("based on the provided database schema and a user's question.\n")
	b.WriteString("Only extract information that can be found in the database schema. ")
	b.WriteString("Ignore parts of the question that refer to skills or document content.\n")
	if dialect != "" {
		fmt.Fprintf(&b, "Write the query for the %s SQL dialect.\n", dialect)
	}
	b.WriteString("Do not provide any explanations or conversational text; only output the SQL query.\n\n")
	b.WriteString("**Database Schema:**\n")
	b.Write(schemaJSON)
	b.WriteString("\n\n**User's Question:**\n")
	fmt.Fprintf(&b, "\"%s\"\n\n", question)
	b.WriteString("**Generated SQL Query:**\n")
	return b.String(), nil
}
