package domain

import "encoding/json"

// SQL dialects reported by relational stores
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Column describes one column of a table
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Relationship describes a foreign key between two tables
type Relationship struct {
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
}

// SchemaDescription is the discovered structure of a relational store.
// It is produced once per connection event and replaced wholesale,
// never mutated in place. A non-empty Error means discovery failed.
type SchemaDescription struct {
	Tables        []string            `json:"tables"`
	Columns       map[string][]Column `json:"columns"`
	Relationships []Relationship      `json:"relationships"`
	Error         string              `json:"error,omitempty"`
}

// NewSchemaDescription creates an empty, successful description
func NewSchemaDescription() *SchemaDescription {
	return &SchemaDescription{
		Tables:        []string{},
		Columns:       make(map[string][]Column),
		Relationships: []Relationship{},
	}
}

// SchemaError creates a description that records a discovery failure
func SchemaError(err error) *SchemaDescription {
	return &SchemaDescription{Error: err.Error()}
}

// Discovered returns true if the description can be used for query generation
func (s *SchemaDescription) Discovered() bool {
	return s != nil && s.Error == ""
}

// MarshalJSON encodes a failed discovery as {"error": "..."} only.
func (s SchemaDescription) MarshalJSON() ([]byte, error) {
	if s.Error != "" {
		return json.Marshal(map[string]string{"error": s.Error})
	}
	type plain SchemaDescription
	p := plain(s)
	if p.Tables == nil {
		p.Tables = []string{}
	}
	if p.Columns == nil {
		p.Columns = map[string][]Column{}
	}
	if p.Relationships == nil {
		p.Relationships = []Relationship{}
	}
	return json.Marshal(p)
}
