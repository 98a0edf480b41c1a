package acts

import (
	"testing"

	"github.com/wgamage/actextract/constants"
)

func TestValidateClauseDocument(t *testing.T) {
	schema := BuildClauseDocumentSchema()

	valid := []byte(`{
		"act_name": "Evidence Act",
		"act_number": "No. 14 of 1995",
		"clauses": [
			{"citation_path": ["Part I", "Section 1"], "full_citation_string": "Section 1", "content": "text"}
		]
	}`)
	if err := ValidateJSONAgainstSchema(schema, valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	cases := map[string]string{
		"missing act_number": `{"act_name": "Evidence Act", "clauses": []}`,
		"empty act_name":     `{"act_name": "", "act_number": "No. 14", "clauses": []}`,
		"clause not object":  `{"act_name": "A", "act_number": "B", "clauses": ["just a string"]}`,
		"clause missing content": `{"act_name": "A", "act_number": "B",
			"clauses": [{"citation_path": [], "full_citation_string": "Section 1"}]}`,
		"citation_path not array": `{"act_name": "A", "act_number": "B",
			"clauses": [{"citation_path": "Section 1", "full_citation_string": "Section 1", "content": "x"}]}`,
		"not json": `{{{`,
	}
	for name, payload := range cases {
		if err := ValidateJSONAgainstSchema(schema, []byte(payload)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestValidateGroupedSections(t *testing.T) {
	schema := BuildGroupedSectionsSchema()

	valid := []byte(`[
		{"act_title": "X Act", "act_id": "No. 5", "clause_number": "2", "full_citation": "Section 2", "content": "body"},
		{"act_title": "Unknown", "act_id": "Unknown", "clause_number": "3", "full_citation": "Section 3", "content": "body"}
	]`)
	if err := ValidateJSONAgainstSchema(schema, valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(`[]`)); err != nil {
		t.Fatalf("expected empty array to validate, got %v", err)
	}

	cases := map[string]string{
		"object instead of array": `{"act_title": "X Act"}`,
		"missing clause_number":   `[{"act_title": "X", "act_id": "Y", "full_citation": "Z", "content": "c"}]`,
		"numeric clause_number":   `[{"act_title": "X", "act_id": "Y", "clause_number": 3, "full_citation": "Z", "content": "c"}]`,
	}
	for name, payload := range cases {
		if err := ValidateJSONAgainstSchema(schema, []byte(payload)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestValidatorForMode(t *testing.T) {
	if ValidatorForMode(constants.ModeText) != nil {
		t.Error("expected no validator for text mode")
	}

	clauses := ValidatorForMode(constants.ModeClauses)
	if clauses == nil {
		t.Fatal("expected validator for clauses mode")
	}
	// A grouped-shape payload must not pass the clauses validator.
	if err := clauses([]byte(`[{"act_title": "X", "act_id": "Y", "clause_number": "1", "full_citation": "Z", "content": "c"}]`)); err == nil {
		t.Error("expected clauses validator to reject grouped payload")
	}

	grouped := ValidatorForMode(constants.ModeGrouped)
	if grouped == nil {
		t.Fatal("expected validator for grouped mode")
	}
	if err := grouped([]byte(`[]`)); err != nil {
		t.Errorf("expected grouped validator to accept empty array, got %v", err)
	}
}

func TestDecodeActDocument(t *testing.T) {
	doc, err := DecodeActDocument([]byte(`{
		"act_name": "Evidence Act",
		"act_number": "No. 14 of 1995",
		"clauses": [{"citation_path": ["Section 1"], "full_citation_string": "Section 1", "content": "text"}]
	}`))
	if err != nil {
		t.Fatalf("DecodeActDocument: %v", err)
	}
	if doc.ActName != "Evidence Act" || len(doc.Clauses) != 1 {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.Clauses[0].FullCitation != "Section 1" {
		t.Errorf("expected full citation %q, got %q", "Section 1", doc.Clauses[0].FullCitation)
	}

	if _, err := DecodeActDocument([]byte(`not json`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestDecodeGroupedSections(t *testing.T) {
	sections, err := DecodeGroupedSections([]byte(`[
		{"act_title": "X Act", "act_id": "No. 5", "clause_number": "2", "full_citation": "Section 2", "content": "body"}
	]`))
	if err != nil {
		t.Fatalf("DecodeGroupedSections: %v", err)
	}
	if len(sections) != 1 || sections[0].ActID != "No. 5" {
		t.Errorf("unexpected sections: %+v", sections)
	}

	if _, err := DecodeGroupedSections([]byte(`{"not": "an array"}`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestConcreteMetadata(t *testing.T) {
	cases := map[string]bool{
		"":                false,
		MetadataUnknown:   false,
		"Evidence Act":    true,
		"No. 14 of 1995":  true,
		"unknown but set": true,
	}
	for value, want := range cases {
		if got := ConcreteMetadata(value); got != want {
			t.Errorf("ConcreteMetadata(%q): expected %t, got %t", value, want, got)
		}
	}
}
