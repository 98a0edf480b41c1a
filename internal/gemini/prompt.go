package gemini

import "github.com/wgamage/actextract/constants"

// Request describes one extraction task for the service: the instruction
// text plus, when the output format should be pinned server-side, a
// response MIME type and typed response schema.
type Request struct {
	Instructions   string
	MIMEType       string
	ResponseMIME   string
	ResponseSchema map[string]any
}

const textInstructions = "You are a high-precision data extraction tool. " +
	"Extract the full text from the PDF. IGNORE and OMIT all headers, footers, " +
	"page numbers, and marginal notes. Output only the clean, verbatim body text."

const clausesInstructions = `You are an expert legal document parser. The user has provided you with a PDF that is a SMALL FRAGMENT of a larger Sri Lankan legal act. Your task is to analyze ONLY this fragment and convert it into a structured JSON format.

Follow these rules precisely:
1.  The final output MUST be a single, valid JSON object and nothing else.
2.  The root of the JSON object must have three keys: "act_name", "act_number", and "clauses".
3.  From the text within this fragment, do your best to extract the "act_name" and "act_number". If they are not present, set them to "Unknown".
4.  The "clauses" key must contain a JSON array of objects, representing every piece of text in THIS FRAGMENT.
5.  For each piece of text, create an object with three keys: "citation_path", "full_citation_string", and "content".
6.  Build the "citation_path" by identifying the hierarchy ONLY within the text you can see. Example: ["Section 8", "Subsection (a)", "Clause (iv)"].
7.  The "content" must be the verbatim text for that specific citation.
8.  Ignore all page headers, footers, page numbers, and marginal notes.`

const groupedInstructions = "Analyze the provided legal document fragment. " +
	"For EACH top-level section number (e.g., Section 2, Section 3), create a single JSON object. " +
	"The 'content' for that object must contain the combined text of that section and ALL of its subsections ((1), (2), (a), (b), etc.). " +
	"Return a JSON array of these grouped objects, conforming strictly to the provided schema."

// RequestForMode returns the extraction request for a run mode.
func RequestForMode(mode constants.Mode) Request {
	switch mode {
	case constants.ModeClauses:
		return Request{Instructions: clausesInstructions, MIMEType: "application/pdf"}
	case constants.ModeGrouped:
		return Request{
			Instructions:   groupedInstructions,
			MIMEType:       "application/pdf",
			ResponseMIME:   "application/json",
			ResponseSchema: buildGroupedResponseSchema(),
		}
	default:
		return Request{Instructions: textInstructions, MIMEType: "application/pdf"}
	}
}

// buildGroupedResponseSchema is the service-side schema (service type
// names are uppercase) forcing one record per top-level section.
func buildGroupedResponseSchema() map[string]any {
	return map[string]any{
		"type":        "ARRAY",
		"description": "A list of all top-level legal sections found in this document chunk.",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"act_title": map[string]any{
					"type":        "STRING",
					"description": "The main title of the act, e.g., 'Consumer Affairs Authority Act'.",
				},
				"act_id": map[string]any{
					"type":        "STRING",
					"description": "The identifying number and year of the act, e.g., 'No. 9 of 2003'.",
				},
				"clause_number": map[string]any{
					"type":        "STRING",
					"description": "The top-level section number ONLY (e.g., '2', '3', 'Preamble'). Do not include subsection numbers like '(1)' or '(a)'.",
				},
				"full_citation": map[string]any{
					"type":        "STRING",
					"description": "The complete citation for the top-level section.",
				},
				"content": map[string]any{
					"type":        "STRING",
					"description": "The COMBINED verbatim text of the main section AND ALL of its nested subsections (e.g., for section '2', this should include the text of 2(1), 2(2), etc.).",
				},
			},
			"required": []string{"act_title", "act_id", "clause_number", "full_citation", "content"},
		},
	}
}
