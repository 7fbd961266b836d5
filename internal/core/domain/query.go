package domain

import (
	"encoding/json"
	"time"
)

// QueryType is the retrieval path a question is routed to
type QueryType string

const (
	QueryTypeSQL      QueryType = "SQL"
	QueryTypeDocument QueryType = "DOCUMENT"
	QueryTypeHybrid   QueryType = "HYBRID"
)

// UsesSQL returns true if the type requires SQL generation
func (t QueryType) UsesSQL() bool {
	return t == QueryTypeSQL || t == QueryTypeHybrid
}

// UsesDocuments returns true if the type requires a document search
func (t QueryType) UsesDocuments() bool {
	return t == QueryTypeDocument || t == QueryTypeHybrid
}

// IsValid returns true for the three known types
func (t QueryType) IsValid() bool {
	switch t {
	case QueryTypeSQL, QueryTypeDocument, QueryTypeHybrid:
		return true
	default:
		return false
	}
}

// Row is one result row keyed by column name
type Row map[string]any

// SQLResult is the outcome of executing a generated statement.
// Exactly one of Rows or Error is meaningful.
type SQLResult struct {
	Rows  []Row  `json:"rows"`
	Error string `json:"error,omitempty"`
}

// SQLError creates a failed SQLResult
func SQLError(msg string) *SQLResult {
	return &SQLResult{Error: msg}
}

// Failed returns true if the statement was rejected or failed
func (r *SQLResult) Failed() bool {
	return r != nil && r.Error != ""
}

// MarshalJSON encodes rows as a bare array and failures as {"error": "..."}.
func (r SQLResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	rows := r.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(rows)
}

// HybridAnswer carries both sub-results of a HYBRID question
type HybridAnswer struct {
	SQLResults *SQLResult     `json:"sql_results"`
	DocResults []DocumentHit `json:"doc_results"`
}

// QueryResult is the response envelope for one question.
// It is never mutated after first computation except for Cached.
type QueryResult struct {
	Query        string        `json:"query"`
	Type         QueryType     `json:"type"`
	GeneratedSQL string        `json:"generated_sql,omitempty"`
	SQL          *SQLResult    `json:"-"`
	Documents    []DocumentHit `json:"-"`
	Cached       bool          `json:"cached"`
	Took         time.Duration `json:"took" swaggertype:"integer" example:"1500000"`
}

// Answer returns the union value exposed as "answer" in JSON
func (r *QueryResult) Answer() any {
	docs := r.Documents
	if docs == nil {
		docs = []DocumentHit{}
	}

	switch r.Type {
	case QueryTypeDocument:
		return docs
	case QueryTypeHybrid:
		return HybridAnswer{SQLResults: r.sqlOrEmpty(), DocResults: docs}
	default:
		return r.sqlOrEmpty()
	}
}

func (r *QueryResult) sqlOrEmpty() *SQLResult {
	if r.SQL == nil {
		return &SQLResult{Rows: []Row{}}
	}
	return r.SQL
}

// Clone returns a shallow copy; rows and hits are shared and treated as read-only.
func (r *QueryResult) Clone() *QueryResult {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// MarshalJSON adds the answer union to the envelope.
func (r QueryResult) MarshalJSON() ([]byte, error) {
	type envelope QueryResult
	return json.Marshal(struct {
		envelope
		Answer any `json:"answer"`
	}{
		envelope: envelope(r),
		Answer:   r.Answer(),
	})
}

// UnmarshalJSON restores a result previously encoded with MarshalJSON.
// It is used by out-of-process caches.
func (r *QueryResult) UnmarshalJSON(data []byte) error {
	type envelope QueryResult
	var raw struct {
		envelope
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = QueryResult(raw.envelope)

	if len(raw.Answer) == 0 || string(raw.Answer) == "null" {
		return nil
	}

	switch r.Type {
	case QueryTypeDocument:
		return json.Unmarshal(raw.Answer, &r.Documents)
	case QueryTypeHybrid:
		var h struct {
			SQLResults json.RawMessage `json:"sql_results"`
			DocResults []DocumentHit   `json:"doc_results"`
		}
		if err := json.Unmarshal(raw.Answer, &h); err != nil {
			return err
		}
		r.Documents = h.DocResults
		sql, err := decodeSQLResult(h.SQLResults)
		if err != nil {
			return err
		}
		r.SQL = sql
		return nil
	default:
		sql, err := decodeSQLResult(raw.Answer)
		if err != nil {
			return err
		}
		r.SQL = sql
		return nil
	}
}

func decodeSQLResult(data json.RawMessage) (*SQLResult, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	if data[0] == '{' {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return SQLError(e.Error), nil
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return &SQLResult{Rows: rows}, nil
}
