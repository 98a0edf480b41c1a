package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/wgamage/actextract/constants"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeArtifact(t *testing.T, dir, name, payload string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(payload), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func sheetRows(t *testing.T, workbook []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Clauses")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	return rows
}

func TestExportXLSX_ClauseArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "Evidence Act.json", `{
		"act_name": "Evidence Act",
		"act_number": "No. 14 of 1995",
		"clauses": [
			{"citation_path": ["Part I", "Section 1"], "full_citation_string": "Section 1", "content": "first clause"},
			{"citation_path": ["Part I", "Section 2"], "full_citation_string": "Section 2", "content": "second clause"}
		]
	}`)
	writeArtifact(t, dir, "Other Act.json", `{
		"act_name": "Other Act",
		"act_number": "Unknown",
		"clauses": [
			{"citation_path": ["Section 9"], "full_citation_string": "Section 9", "content": "ninth clause"}
		]
	}`)

	out, err := NewService(testLogger()).ExportXLSX(context.Background(), dir, constants.ModeClauses)
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	rows := sheetRows(t, out)
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 clause rows, got %d rows", len(rows))
	}
	if rows[0][0] != "Document" || rows[0][5] != "Content" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "Evidence Act" || rows[1][3] != "Part I > Section 1" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
	if rows[3][0] != "Other Act" || rows[3][5] != "ninth clause" {
		t.Errorf("unexpected last data row: %v", rows[3])
	}
}

func TestExportXLSX_GroupedArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "X Act.json", `[
		{"act_title": "X Act", "act_id": "No. 5", "clause_number": "2", "full_citation": "Section 2", "content": "body two"},
		{"act_title": "Unknown", "act_id": "Unknown", "clause_number": "3", "full_citation": "Section 3", "content": "body three"}
	]`)

	out, err := NewService(testLogger()).ExportXLSX(context.Background(), dir, constants.ModeGrouped)
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	rows := sheetRows(t, out)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 section rows, got %d rows", len(rows))
	}
	if rows[0][1] != "Act Title" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][2] != "No. 5" || rows[2][3] != "3" {
		t.Errorf("unexpected data rows: %v", rows[1:])
	}
}

func TestExportXLSX_SkipsMalformedArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "Good Act.json", `{
		"act_name": "Good Act",
		"act_number": "No. 1",
		"clauses": [{"citation_path": ["Section 1"], "full_citation_string": "Section 1", "content": "fine"}]
	}`)
	writeArtifact(t, dir, "Bad Act.json", `not json`)
	writeArtifact(t, dir, "notes.txt", `should be ignored entirely`)

	out, err := NewService(testLogger()).ExportXLSX(context.Background(), dir, constants.ModeClauses)
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	rows := sheetRows(t, out)
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d rows", len(rows))
	}
	if rows[1][0] != "Good Act" {
		t.Errorf("unexpected data row: %v", rows[1])
	}
}

func TestExportXLSX_TextModeRejected(t *testing.T) {
	if _, err := NewService(testLogger()).ExportXLSX(context.Background(), t.TempDir(), constants.ModeText); err == nil {
		t.Fatal("expected error for text mode export")
	}
}

func TestExportArtifactXLSX_SingleArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "Evidence Act.json", `{
		"act_name": "Evidence Act",
		"act_number": "No. 14 of 1995",
		"clauses": [
			{"citation_path": ["Section 1"], "full_citation_string": "Section 1", "content": "first clause"}
		]
	}`)

	out, err := NewService(testLogger()).ExportArtifactXLSX(context.Background(), filepath.Join(dir, "Evidence Act.json"), constants.ModeClauses)
	if err != nil {
		t.Fatalf("ExportArtifactXLSX: %v", err)
	}

	rows := sheetRows(t, out)
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d rows", len(rows))
	}
	if rows[1][0] != "Evidence Act" || rows[1][1] != "Evidence Act" || rows[1][5] != "first clause" {
		t.Errorf("unexpected data row: %v", rows[1])
	}
}

func TestExportArtifactXLSX_MissingFile(t *testing.T) {
	svc := NewService(testLogger())
	if _, err := svc.ExportArtifactXLSX(context.Background(), filepath.Join(t.TempDir(), "absent.json"), constants.ModeClauses); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}
