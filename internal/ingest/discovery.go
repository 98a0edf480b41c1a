package ingest

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/wgamage/actextract/constants"
)

// Discoverer lists documents and their chunks beneath a root folder.
// The expected layout is <root>/<act>/<act>/<group>/<chunk>.pdf with one
// subfolder per chunk group.
type Discoverer struct {
	root       string
	groupOrder []string
	exclude    map[string]struct{}
	log        *slog.Logger
}

// NewDiscoverer builds a discoverer. groupOrder fixes the group rank for
// the canonical chunk order; exclude names folders under root that are
// never documents (output and checkpoint folders).
func NewDiscoverer(root string, groupOrder []string, exclude []string, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	ex := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		if name != "" {
			ex[filepath.Base(name)] = struct{}{}
		}
	}
	return &Discoverer{
		root:       root,
		groupOrder: groupOrder,
		exclude:    ex,
		log:        logger,
	}
}

// Discover walks the root and returns every document with at least one
// chunk, chunks already in canonical order. Folder-level problems are
// counted and skipped; only an unreadable root is an error.
func (d *Discoverer) Discover(ctx context.Context) ([]Document, DiscoverStats, error) {
	var stats DiscoverStats

	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, stats, fmt.Errorf("read root %q: %w", d.root, err)
	}

	var docs []Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return docs, stats, err
		}
		if !entry.IsDir() || IsHidden(entry.Name()) {
			continue
		}
		if _, skip := d.exclude[entry.Name()]; skip {
			continue
		}
		stats.Scanned++

		doc, ok := d.discoverDocument(entry.Name(), &stats)
		if !ok {
			continue
		}
		stats.Matched++
		stats.Chunks += uint32(len(doc.Chunks))
		docs = append(docs, doc)
	}

	d.log.Info("ingest.discover.ok",
		"root", d.root,
		"scanned", stats.Scanned,
		"documents", stats.Matched,
		"chunks", stats.Chunks,
		"no_layout", stats.NoLayout,
		"empty", stats.Empty,
	)
	return docs, stats, nil
}

func (d *Discoverer) discoverDocument(name string, stats *DiscoverStats) (Document, bool) {
	nested := filepath.Join(d.root, name, name)
	info, err := os.Stat(nested)
	if err != nil || !info.IsDir() {
		stats.NoLayout++
		d.log.Warn("ingest.doc.no_layout", "document", name, "expected", nested)
		return Document{}, false
	}

	var chunks []Chunk
	for _, group := range d.groupOrder {
		groupDir := filepath.Join(nested, group)
		entries, err := os.ReadDir(groupDir)
		if err != nil {
			if !os.IsNotExist(err) {
				d.log.Warn("ingest.group.unreadable", "document", name, "group", group, "error", err)
			}
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || IsHidden(entry.Name()) {
				continue
			}
			if !AllowedExt(filepath.Ext(entry.Name())) {
				continue
			}
			chunks = append(chunks, Chunk{
				Document: name,
				Group:    group,
				Filename: entry.Name(),
				Stem:     constants.Stem(entry.Name()),
				Path:     filepath.Join(groupDir, entry.Name()),
			})
		}
	}

	if len(chunks) == 0 {
		stats.Empty++
		d.log.Warn("ingest.doc.empty", "document", name)
		return Document{}, false
	}

	// Canonical order: group rank, then filename. Applied once here;
	// positions are part of the Document from now on.
	rank := make(map[string]int, len(d.groupOrder))
	for i, g := range d.groupOrder {
		rank[g] = i
	}
	slices.SortFunc(chunks, func(a, b Chunk) int {
		if c := cmp.Compare(rank[a.Group], rank[b.Group]); c != 0 {
			return c
		}
		return cmp.Compare(a.Filename, b.Filename)
	})
	for i := range chunks {
		chunks[i].Position = i
	}

	return Document{Name: name, Chunks: chunks}, true
}
