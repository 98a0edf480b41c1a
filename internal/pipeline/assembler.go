package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wgamage/actextract/constants"
	"github.com/wgamage/actextract/internal/acts"
)

// ChunkPayload pairs a checkpointed payload with the stem it came from.
// Callers hand these to the assembler already in canonical chunk order.
type ChunkPayload struct {
	Stem    string
	Payload []byte
}

// Assembler merges checkpointed chunk payloads into one document
// artifact. It is a pure transformation of its inputs: no I/O, no
// clock, so the same checkpoint set always yields byte-identical
// output no matter how the chunks were processed.
type Assembler struct {
	mode constants.Mode
	log  *slog.Logger
}

func NewAssembler(mode constants.Mode, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{mode: mode, log: logger}
}

// Assemble returns the artifact bytes for a document, or nil when no
// chunk contributed anything usable. Chunks without a checkpoint are
// simply absent from the input; in structured modes a payload that
// fails to decode is logged and dropped without aborting the rest.
func (a *Assembler) Assemble(document string, chunks []ChunkPayload) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	switch a.mode {
	case constants.ModeClauses:
		return a.assembleClauses(document, chunks)
	case constants.ModeGrouped:
		return a.assembleGrouped(document, chunks)
	default:
		return a.assembleText(chunks), nil
	}
}

func (a *Assembler) assembleText(chunks []ChunkPayload) []byte {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, string(c.Payload))
	}
	return []byte(strings.Join(parts, "\n\n"))
}

// assembleClauses merges per-chunk act documents into one. Metadata
// starts at the "Unknown" sentinel and is filled by the first chunk
// with a concrete value; later chunks never overwrite it.
func (a *Assembler) assembleClauses(document string, chunks []ChunkPayload) ([]byte, error) {
	merged := acts.ActDocument{
		ActName:   acts.MetadataUnknown,
		ActNumber: acts.MetadataUnknown,
		Clauses:   []acts.ClauseRecord{},
	}

	decoded := 0
	for _, c := range chunks {
		doc, err := acts.DecodeActDocument(c.Payload)
		if err != nil {
			a.log.Warn("assemble.chunk.malformed", "document", document, "stem", c.Stem, "err", err)
			continue
		}
		decoded++

		if !acts.ConcreteMetadata(merged.ActName) && acts.ConcreteMetadata(doc.ActName) {
			merged.ActName = doc.ActName
		}
		if !acts.ConcreteMetadata(merged.ActNumber) && acts.ConcreteMetadata(doc.ActNumber) {
			merged.ActNumber = doc.ActNumber
		}
		merged.Clauses = append(merged.Clauses, doc.Clauses...)
	}

	if decoded == 0 {
		return nil, nil
	}
	return marshalArtifact(merged)
}

// assembleGrouped flat-concatenates per-chunk section arrays in chunk
// order. Elements keep their own metadata; nothing is merged across
// them.
func (a *Assembler) assembleGrouped(document string, chunks []ChunkPayload) ([]byte, error) {
	sections := []acts.GroupedSection{}

	decoded := 0
	for _, c := range chunks {
		part, err := acts.DecodeGroupedSections(c.Payload)
		if err != nil {
			a.log.Warn("assemble.chunk.malformed", "document", document, "stem", c.Stem, "err", err)
			continue
		}
		decoded++
		sections = append(sections, part...)
	}

	if decoded == 0 {
		return nil, nil
	}
	return marshalArtifact(sections)
}

func marshalArtifact(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return out, nil
}
