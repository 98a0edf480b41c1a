package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeChunk(t *testing.T, root, doc, group, name string) {
	t.Helper()
	dir := filepath.Join(root, doc, doc, group)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

var defaultGroups = []string{"Initial Chunk", "Overlap Chunk"}

func TestDiscover_CanonicalOrder(t *testing.T) {
	root := t.TempDir()
	// created out of order on purpose; order must come from the comparator
	writeChunk(t, root, "ActX", "Initial Chunk", "b.pdf")
	writeChunk(t, root, "ActX", "Overlap Chunk", "c.pdf")
	writeChunk(t, root, "ActX", "Initial Chunk", "a.pdf")

	d := NewDiscoverer(root, defaultGroups, nil, testLogger())
	docs, stats, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]
	if doc.Name != "ActX" {
		t.Errorf("expected document ActX, got %q", doc.Name)
	}

	wantNames := []string{"a.pdf", "b.pdf", "c.pdf"}
	wantGroups := []string{"Initial Chunk", "Initial Chunk", "Overlap Chunk"}
	if len(doc.Chunks) != len(wantNames) {
		t.Fatalf("expected %d chunks, got %d", len(wantNames), len(doc.Chunks))
	}
	for i, ch := range doc.Chunks {
		if ch.Filename != wantNames[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, wantNames[i], ch.Filename)
		}
		if ch.Group != wantGroups[i] {
			t.Errorf("chunk %d: expected group %q, got %q", i, wantGroups[i], ch.Group)
		}
		if ch.Position != i {
			t.Errorf("chunk %d: expected position %d, got %d", i, i, ch.Position)
		}
		if ch.Document != "ActX" {
			t.Errorf("chunk %d: expected document ActX, got %q", i, ch.Document)
		}
	}
	if doc.Chunks[0].Stem != "a" {
		t.Errorf("expected stem a, got %q", doc.Chunks[0].Stem)
	}

	if stats.Matched != 1 || stats.Chunks != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestDiscover_GroupOrderIsConfigurable(t *testing.T) {
	root := t.TempDir()
	writeChunk(t, root, "ActX", "Initial Chunk", "a.pdf")
	writeChunk(t, root, "ActX", "Overlap Chunk", "c.pdf")

	d := NewDiscoverer(root, []string{"Overlap Chunk", "Initial Chunk"}, nil, testLogger())
	docs, _, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(docs) != 1 || len(docs[0].Chunks) != 2 {
		t.Fatalf("unexpected discovery result: %+v", docs)
	}
	if docs[0].Chunks[0].Filename != "c.pdf" || docs[0].Chunks[1].Filename != "a.pdf" {
		t.Errorf("expected overlap group first, got %q then %q",
			docs[0].Chunks[0].Filename, docs[0].Chunks[1].Filename)
	}
}

func TestDiscover_SkipsExcludedHiddenAndBrokenLayouts(t *testing.T) {
	root := t.TempDir()
	writeChunk(t, root, "ActX", "Initial Chunk", "a.pdf")

	// excluded output folder, hidden folder, folder without nested layout
	for _, dir := range []string{"extracted_acts_final", ".git", "stray"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	d := NewDiscoverer(root, defaultGroups, []string{"extracted_acts_final"}, testLogger())
	docs, stats, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "ActX" {
		t.Fatalf("expected only ActX, got %+v", docs)
	}
	if stats.NoLayout != 1 {
		t.Errorf("expected 1 no-layout folder, got %d", stats.NoLayout)
	}
	if stats.Scanned != 2 {
		t.Errorf("expected 2 scanned folders (ActX, stray), got %d", stats.Scanned)
	}
}

func TestDiscover_IgnoresNonChunkFiles(t *testing.T) {
	root := t.TempDir()
	writeChunk(t, root, "ActX", "Initial Chunk", "a.pdf")
	notes := filepath.Join(root, "ActX", "ActX", "Initial Chunk", "notes.txt")
	if err := os.WriteFile(notes, []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	d := NewDiscoverer(root, defaultGroups, nil, testLogger())
	docs, _, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(docs) != 1 || len(docs[0].Chunks) != 1 {
		t.Fatalf("expected a single pdf chunk, got %+v", docs)
	}
	if docs[0].Chunks[0].Filename != "a.pdf" {
		t.Errorf("expected a.pdf, got %q", docs[0].Chunks[0].Filename)
	}
}

func TestDiscover_EmptyDocumentProducesNothing(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ActY", "ActY", "Initial Chunk"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	d := NewDiscoverer(root, defaultGroups, nil, testLogger())
	docs, stats, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %+v", docs)
	}
	if stats.Empty != 1 {
		t.Errorf("expected 1 empty document, got %d", stats.Empty)
	}
}

func TestDiscover_MissingGroupFolderIsTolerated(t *testing.T) {
	root := t.TempDir()
	writeChunk(t, root, "ActZ", "Initial Chunk", "a.pdf")
	// no Overlap Chunk folder at all

	d := NewDiscoverer(root, defaultGroups, nil, testLogger())
	docs, _, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(docs) != 1 || len(docs[0].Chunks) != 1 {
		t.Fatalf("expected one chunk from the present group, got %+v", docs)
	}
}
