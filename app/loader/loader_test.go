package loader

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/git-galluppakistan/survey-dashboard/app/fileloader"
)

const testCSV = `Province,District,RSex,S4C6,S1Q1
Punjab,Lahore,1,25,Yes
Punjab,Multan,2,31,No
Sindh,Karachi,1,40,Yes
Sindh,Karachi,#NULL!,19,#NULL!
`

func writeTestData(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte(testCSV), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func writeTestCodebook(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "code.csv")
	content := "Code,Label\nS1Q1,Do you own a phone?\nProvince,Should not apply\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func defaultOptions(dir string) Options {
	return Options{
		DataDir:          dir,
		SourceCandidates: []string{"data.zip", "data.csv"},
	}
}

func TestLoad_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)
	codebook := writeTestCodebook(t, dir)

	opts := defaultOptions(dir)
	opts.CodebookPath = codebook

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tbl := result.Table
	if tbl.RowCount() != 4 {
		t.Fatalf("Expected 4 rows, got %d", tbl.RowCount())
	}

	// Codebook rename applied, protected column untouched
	if _, ok := tbl.Column("Do you own a phone? (S1Q1)"); !ok {
		t.Errorf("Expected renamed question column; have %v", tbl.ColumnNames())
	}
	if _, ok := tbl.Column("Province"); !ok {
		t.Errorf("Expected Province to keep its name")
	}

	// Gender codes remapped
	gender, ok := tbl.Column("RSex")
	if !ok {
		t.Fatalf("RSex column missing")
	}
	want := []string{"Male", "Female", "Male", "Unknown"}
	for i, w := range want {
		if got := gender.Value(i); got != w {
			t.Errorf("Gender row %d: expected %q, got %q", i, w, got)
		}
	}

	if result.CodebookPath != codebook {
		t.Errorf("Expected codebook path recorded, got %q", result.CodebookPath)
	}
	if result.SourcePath != filepath.Join(dir, "data.csv") {
		t.Errorf("Unexpected source path %q", result.SourcePath)
	}
}

func TestLoad_ZippedSource(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "data.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("data.csv")
	if err != nil {
		t.Fatalf("Create entry failed: %v", err)
	}
	if _, err := w.Write([]byte(testCSV)); err != nil {
		t.Fatalf("Write entry failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close zip failed: %v", err)
	}
	f.Close()

	result, err := Load(context.Background(), defaultOptions(dir))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if result.Table.RowCount() != 4 {
		t.Errorf("Expected 4 rows from zipped CSV, got %d", result.Table.RowCount())
	}
	if result.SourcePath != zipPath {
		t.Errorf("Expected zip to win candidate order, got %q", result.SourcePath)
	}
}

func TestLoad_BatchingEquivalence(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)

	whole, err := Load(context.Background(), defaultOptions(dir))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	opts := defaultOptions(dir)
	opts.BatchRows = 2
	chunked, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Chunked load failed: %v", err)
	}

	if whole.Table.RowCount() != chunked.Table.RowCount() {
		t.Fatalf("Row counts differ: %d vs %d", whole.Table.RowCount(), chunked.Table.RowCount())
	}
	for _, name := range whole.Table.ColumnNames() {
		a, _ := whole.Table.Column(name)
		b, ok := chunked.Table.Column(name)
		if !ok {
			t.Fatalf("Column %s missing from chunked load", name)
		}
		for row := 0; row < whole.Table.RowCount(); row++ {
			if a.Value(row) != b.Value(row) {
				t.Errorf("Column %s row %d differs: %q vs %q", name, row, a.Value(row), b.Value(row))
			}
		}
	}
}

func TestLoad_MissingSource(t *testing.T) {
	_, err := Load(context.Background(), defaultOptions(t.TempDir()))
	if !errors.Is(err, fileloader.ErrMissingSourceFile) {
		t.Errorf("Expected ErrMissingSourceFile, got %v", err)
	}
}

func TestLoad_MissingCodebookIsWarning(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)

	opts := defaultOptions(dir)
	opts.CodebookPath = filepath.Join(dir, "nope.csv")

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load should tolerate a missing codebook, got %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Errorf("Expected a warning about the missing codebook")
	}
	if result.CodebookPath != "" {
		t.Errorf("Expected empty codebook path, got %q", result.CodebookPath)
	}
	// Raw identifiers survive
	if _, ok := result.Table.Column("S1Q1"); !ok {
		t.Errorf("Expected raw identifier S1Q1; have %v", result.Table.ColumnNames())
	}
}

func TestLoad_MalformedCodebookIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)

	codebook := filepath.Join(dir, "code.csv")
	if err := os.WriteFile(codebook, []byte("a,b\n\"unterminated\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	opts := defaultOptions(dir)
	opts.CodebookPath = codebook

	_, err := Load(context.Background(), opts)
	if !errors.Is(err, ErrLoadParse) {
		t.Errorf("Expected ErrLoadParse for malformed codebook, got %v", err)
	}
}

func TestLoad_Cancellation(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, defaultOptions(dir))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
