package constants

// ChunkStatus is the canonical per-chunk outcome for a run.
type ChunkStatus string

// Stable values (these exact strings appear in logs and summaries).
const (
	ChunkSkipped   ChunkStatus = "SKIPPED"   // checkpoint already present, no remote call
	ChunkExtracted ChunkStatus = "EXTRACTED" // fresh extraction checkpointed this run
	ChunkFailed    ChunkStatus = "FAILED"    // attempt budget exhausted, no checkpoint
)

// DocumentStatus is the canonical per-document outcome for a run.
type DocumentStatus string

const (
	DocumentSkipped   DocumentStatus = "SKIPPED"   // final artifact already on disk
	DocumentAssembled DocumentStatus = "ASSEMBLED" // artifact written this run
	DocumentEmpty     DocumentStatus = "EMPTY"     // no checkpointed chunks, no artifact
)
