package acts

// BuildClauseDocumentSchema returns a JSON-Schema (draft 2020-12 subset)
// for a clauses-mode chunk payload as a generic map. Extracted payloads
// are validated against it before they are checkpointed.
func BuildClauseDocumentSchema() map[string]any {
	clause := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"citation_path":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"full_citation_string": map[string]any{"type": "string"},
			"content":              map[string]any{"type": "string"},
		},
		"required": []string{"citation_path", "full_citation_string", "content"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"act_name":   map[string]any{"type": "string", "minLength": 1},
			"act_number": map[string]any{"type": "string", "minLength": 1},
			"clauses":    map[string]any{"type": "array", "items": clause},
		},
		"required": []string{"act_name", "act_number", "clauses"},
	}
}

// BuildGroupedSectionsSchema returns the JSON-Schema for a grouped-mode
// chunk payload: a flat array of top-level section records.
func BuildGroupedSectionsSchema() map[string]any {
	section := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"act_title":     map[string]any{"type": "string"},
			"act_id":        map[string]any{"type": "string"},
			"clause_number": map[string]any{"type": "string"},
			"full_citation": map[string]any{"type": "string"},
			"content":       map[string]any{"type": "string"},
		},
		"required": []string{"act_title", "act_id", "clause_number", "full_citation", "content"},
	}
	return map[string]any{
		"type":  "array",
		"items": section,
	}
}
