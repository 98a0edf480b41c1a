package acts

import (
	"encoding/json"
	"fmt"
)

// DecodeActDocument parses a clauses-mode payload. Checkpoints can be
// edited or corrupted between runs, so assembly treats a failure here as
// a per-chunk drop, not a hard error.
func DecodeActDocument(data []byte) (*ActDocument, error) {
	var doc ActDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode act document: %w", err)
	}
	return &doc, nil
}

// DecodeGroupedSections parses a grouped-mode payload.
func DecodeGroupedSections(data []byte) ([]GroupedSection, error) {
	var sections []GroupedSection
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("decode grouped sections: %w", err)
	}
	return sections, nil
}
