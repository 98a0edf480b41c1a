package ingest

// Chunk is one PDF fragment of a document. Position is its canonical
// index, fixed at discovery time and never re-derived afterwards.
type Chunk struct {
	Document string
	Group    string
	Filename string
	Stem     string
	Path     string
	Position int
}

// Document is one act: its name plus its chunks in canonical order.
type Document struct {
	Name   string
	Chunks []Chunk
}

// DiscoverStats summarizes a discovery pass.
type DiscoverStats struct {
	Scanned  uint32 // candidate act folders under the root
	Matched  uint32 // documents with at least one chunk
	Chunks   uint32
	NoLayout uint32 // act folders missing the nested <act>/<act> folder
	Empty    uint32 // act folders with zero chunk files
}
