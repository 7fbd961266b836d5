package domain

import "testing"

func TestRoutingRules_Classify(t *testing.T) {
	rules := DefaultRoutingRules()

	tests := []struct {
		question string
		want     QueryType
	}{
		{"What is the average salary per department?", QueryTypeSQL},
		{"Who reports to Alice?", QueryTypeSQL},
		{"List employees hired in 2020", QueryTypeSQL},
		{"Which candidates know Python?", QueryTypeDocument},
		{"Summarise the last performance review", QueryTypeDocument},
		{"Employees with Python skills", QueryTypeHybrid},
		{"Which department has the most experience?", QueryTypeHybrid},
		{"show me everything", QueryTypeSQL},
		{"", QueryTypeSQL},
		{"DEPARTMENT", QueryTypeSQL},
		{"RESUME", QueryTypeDocument},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := rules.Classify(tt.question); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.question, got, tt.want)
			}
		})
	}
}

func TestRoutingRules_Scan(t *testing.T) {
	rules := DefaultRoutingRules()

	m := rules.Scan("Resume of the employee")
	if !m.SQL || !m.Document {
		t.Errorf("expected both vocabularies to match, got %+v", m)
	}

	m = rules.Scan("nothing relevant")
	if m.SQL || m.Document {
		t.Errorf("expected no match, got %+v", m)
	}
}

func TestRoutingRules_ClassifyIsTotal(t *testing.T) {
	rules := DefaultRoutingRules()
	inputs := []string{"", " ", "???", "salary", "skill", "salary skill", "ünïcödé", "reports\tto"}

	for _, in := range inputs {
		if got := rules.Classify(in); !got.IsValid() {
			t.Errorf("Classify(%q) returned invalid type %q", in, got)
		}
	}
}

func TestNewRoutingRules_CustomVocabulary(t *testing.T) {
	rules := NewRoutingRules([]string{" Invoice ", ""}, []string{"Contract"})

	if len(rules.SQLKeywords) != 1 || rules.SQLKeywords[0] != "invoice" {
		t.Fatalf("expected normalised sql keywords, got %v", rules.SQLKeywords)
	}
	if got := rules.Classify("unpaid INVOICE totals"); got != QueryTypeSQL {
		t.Errorf("expected SQL, got %s", got)
	}
	if got := rules.Classify("contract clauses"); got != QueryTypeDocument {
		t.Errorf("expected DOCUMENT, got %s", got)
	}
	if got := rules.Classify("salary"); got != QueryTypeSQL {
		t.Errorf("expected fallback SQL for unknown vocabulary, got %s", got)
	}
}

func TestQueryType_Paths(t *testing.T) {
	if !QueryTypeSQL.UsesSQL() || QueryTypeSQL.UsesDocuments() {
		t.Error("SQL should only use the SQL path")
	}
	if QueryTypeDocument.UsesSQL() || !QueryTypeDocument.UsesDocuments() {
		t.Error("DOCUMENT should only use the document path")
	}
	if !QueryTypeHybrid.UsesSQL() || !QueryTypeHybrid.UsesDocuments() {
		t.Error("HYBRID should use both paths")
	}
	if QueryType("OTHER").IsValid() {
		t.Error("unknown type should be invalid")
	}
}
