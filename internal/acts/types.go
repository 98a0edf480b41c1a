package acts

// MetadataUnknown is the sentinel the model is instructed to use for
// document metadata it cannot find in a fragment.
const MetadataUnknown = "Unknown"

// ClauseRecord is one hierarchical unit of legal text: the hierarchy
// labels leading to it, the rendered citation, and the verbatim content.
type ClauseRecord struct {
	CitationPath []string `json:"citation_path"`
	FullCitation string   `json:"full_citation_string"`
	Content      string   `json:"content"`
}

// ActDocument is the clauses-mode payload for one chunk. The final
// artifact in that mode has the same shape, with the clause arrays of
// all chunks concatenated in canonical order.
type ActDocument struct {
	ActName   string         `json:"act_name"`
	ActNumber string         `json:"act_number"`
	Clauses   []ClauseRecord `json:"clauses"`
}

// GroupedSection is one top-level section record in grouped mode: the
// section plus the combined text of all of its nested subsections.
type GroupedSection struct {
	ActTitle     string `json:"act_title"`
	ActID        string `json:"act_id"`
	ClauseNumber string `json:"clause_number"`
	FullCitation string `json:"full_citation"`
	Content      string `json:"content"`
}

// ConcreteMetadata reports whether a metadata value should overwrite the
// sentinel. Empty strings are treated the same as the sentinel.
func ConcreteMetadata(v string) bool {
	return v != "" && v != MetadataUnknown
}
