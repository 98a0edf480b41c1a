package constants

import "strings"

// Mode selects the extraction variant for a run.
type Mode string

// Stable values (these exact strings appear in flags and env).
const (
	ModeText    Mode = "text"    // verbatim body text per chunk
	ModeClauses Mode = "clauses" // per-clause structured JSON
	ModeGrouped Mode = "grouped" // one record per top-level section
)

var allModes = []Mode{ModeText, ModeClauses, ModeGrouped}

// ParseMode canonicalizes a user-supplied mode string.
func ParseMode(input string) (Mode, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, m := range allModes {
		if normalized == string(m) {
			return m, true
		}
	}
	return ModeText, false
}

// Structured reports whether the mode produces JSON payloads.
func (m Mode) Structured() bool {
	return m == ModeClauses || m == ModeGrouped
}

// Ext returns the file extension (with dot) used for both checkpoints
// and final artifacts in this mode.
func (m Mode) Ext() string {
	if m.Structured() {
		return ".json"
	}
	return ".txt"
}
