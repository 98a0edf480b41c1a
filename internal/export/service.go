package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wgamage/actextract/constants"
	"github.com/wgamage/actextract/internal/acts"
)

// Excel's hard per-cell character limit.
const cellLimit = 32767

// Service turns assembled act artifacts into XLSX workbooks, one row
// per clause, for review outside the pipeline.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

type artifact struct {
	document string
	payload  []byte
}

// ExportXLSX reads every .json artifact under dir and returns one
// workbook. The mode selects the artifact layout; text artifacts have
// no tabular form and are rejected. Artifacts that fail to decode are
// logged and skipped, the rest still export.
func (s *Service) ExportXLSX(ctx context.Context, dir string, mode constants.Mode) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read artifact dir: %w", err)
	}

	var artifacts []artifact
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		payload, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			s.logger.Warn("export.artifact.unreadable", "file", entry.Name(), "err", err)
			continue
		}
		artifacts = append(artifacts, artifact{
			document: strings.TrimSuffix(entry.Name(), ".json"),
			payload:  payload,
		})
	}

	return s.export(mode, artifacts)
}

// ExportArtifactXLSX exports a single assembled artifact.
func (s *Service) ExportArtifactXLSX(_ context.Context, path string, mode constants.Mode) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	document := strings.TrimSuffix(filepath.Base(path), ".json")
	return s.export(mode, []artifact{{document: document, payload: payload}})
}

func (s *Service) export(mode constants.Mode, artifacts []artifact) ([]byte, error) {
	start := time.Now()

	var headers []string
	switch mode {
	case constants.ModeClauses:
		headers = []string{"Document", "Act Name", "Act Number", "Citation Path", "Full Citation", "Content"}
	case constants.ModeGrouped:
		headers = []string{"Document", "Act Title", "Act ID", "Clause Number", "Full Citation", "Content"}
	default:
		return nil, fmt.Errorf("mode %s has no tabular export", mode)
	}

	f := excelize.NewFile()
	const sheet = "Clauses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	files := 0
	for _, a := range artifacts {
		var rows [][]any
		var err error
		switch mode {
		case constants.ModeClauses:
			rows, err = clauseRows(a.document, a.payload)
		case constants.ModeGrouped:
			rows, err = sectionRows(a.document, a.payload)
		}
		if err != nil {
			s.logger.Warn("export.artifact.malformed", "document", a.document, "err", err)
			continue
		}
		files++

		for _, values := range rows {
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // document
	_ = f.SetColWidth(sheet, "B", "B", 28) // act name/title
	_ = f.SetColWidth(sheet, "C", "C", 18) // number/id
	_ = f.SetColWidth(sheet, "D", "D", 32) // citation path / clause number
	_ = f.SetColWidth(sheet, "E", "E", 32) // full citation
	_ = f.SetColWidth(sheet, "F", "F", 80) // content

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"mode", string(mode),
		"artifacts", files,
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func clauseRows(document string, payload []byte) ([][]any, error) {
	doc, err := acts.DecodeActDocument(payload)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(doc.Clauses))
	for _, c := range doc.Clauses {
		rows = append(rows, []any{
			document,
			doc.ActName,
			doc.ActNumber,
			strings.Join(c.CitationPath, " > "),
			c.FullCitation,
			truncate(c.Content, cellLimit),
		})
	}
	return rows, nil
}

func sectionRows(document string, payload []byte) ([][]any, error) {
	sections, err := acts.DecodeGroupedSections(payload)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(sections))
	for _, sec := range sections {
		rows = append(rows, []any{
			document,
			sec.ActTitle,
			sec.ActID,
			sec.ClauseNumber,
			sec.FullCitation,
			truncate(sec.Content, cellLimit),
		})
	}
	return rows, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
