package fileloader

import (
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const sampleCSV = "Province,Age\nPunjab,25\nSindh,31\n"

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	if _, err := gw.Write([]byte(content)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func writeZip(t *testing.T, path string, entries map[string]string, order []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Create zip entry failed: %v", err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("Write zip entry failed: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close zip failed: %v", err)
	}
}

func TestDecompressFile_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv.gz")
	writeGzip(t, path, sampleCSV)

	data, err := DecompressFile(path, CompressionGzip)
	if err != nil {
		t.Fatalf("DecompressFile failed: %v", err)
	}
	if string(data) != sampleCSV {
		t.Errorf("Decompressed data mismatch: %q", data)
	}
}

func TestDecompressFile_Zip(t *testing.T) {
	t.Run("SingleEntry", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "data.zip")
		writeZip(t, path, map[string]string{"data.csv": sampleCSV}, []string{"data.csv"})

		data, err := DecompressFile(path, CompressionZip)
		if err != nil {
			t.Fatalf("DecompressFile failed: %v", err)
		}
		if string(data) != sampleCSV {
			t.Errorf("Decompressed data mismatch: %q", data)
		}
	})

	t.Run("SkipsMetadataEntries", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "data.zip")
		writeZip(t, path, map[string]string{
			"__MACOSX/._data.csv": "junk",
			".DS_Store":           "junk",
			"data.csv":            sampleCSV,
		}, []string{"__MACOSX/._data.csv", ".DS_Store", "data.csv"})

		data, err := DecompressFile(path, CompressionZip)
		if err != nil {
			t.Fatalf("DecompressFile failed: %v", err)
		}
		if string(data) != sampleCSV {
			t.Errorf("Expected metadata entries to be skipped, got %q", data)
		}
	})

	t.Run("EmptyArchive", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "data.zip")
		writeZip(t, path, map[string]string{".DS_Store": "junk"}, []string{".DS_Store"})

		if _, err := DecompressFile(path, CompressionZip); err == nil {
			t.Errorf("Expected error for archive with no usable entry")
		}
	})
}

func TestGetDecompressingReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv.gz")
	writeGzip(t, path, sampleCSV)

	rc, err := GetDecompressingReader(path, CompressionGzip)
	if err != nil {
		t.Fatalf("GetDecompressingReader failed: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != sampleCSV {
		t.Errorf("Streamed data mismatch: %q", data)
	}
}

func TestGetRecords_ZippedCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.zip")
	writeZip(t, path, map[string]string{"data.csv": sampleCSV}, []string{"data.csv"})

	records, closer, err := GetRecords(path, FileOptions{})
	if err != nil {
		t.Fatalf("GetRecords failed: %v", err)
	}
	defer closer.Close()

	var rows [][]string
	for {
		rec, err := records.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		rows = append(rows, append([]string(nil), rec...))
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 records including header, got %d", len(rows))
	}
	if rows[0][0] != "Province" || rows[1][0] != "Punjab" || rows[2][1] != "31" {
		t.Errorf("Unexpected records: %v", rows)
	}
}
