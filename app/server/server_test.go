package server

import (
	"archive/zip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/git-galluppakistan/survey-dashboard/app/cache"
	"github.com/git-galluppakistan/survey-dashboard/app/config"
)

const testCSV = `Province,District,RSex,S4C6,Q1
Punjab,Lahore,1,25,Yes
Punjab,Multan,2,31,No
Sindh,Karachi,1,40,Yes
Sindh,Karachi,2,19,Yes
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte(testCSV), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := &config.Config{
		DataDir:          dir,
		SourceCandidates: []string{"data.zip", "data.csv"},
		BatchRows:        50000,
		ListenAddr:       ":0",
	}
	return New(cfg, cache.New(1024*1024))
}

func doGet(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestServer_UnavailableWhileLoading(t *testing.T) {
	s := newTestServer(t)

	rec := doGet(t, s, "/api/summary")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before load, got %d", rec.Code)
	}

	// Health stays 200 and reports the state
	rec = doGet(t, s, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from health, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "loading" {
		t.Errorf("Expected loading status, got %v", body["status"])
	}
}

func TestServer_Endpoints(t *testing.T) {
	s := newTestServer(t)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	t.Run("Summary", func(t *testing.T) {
		rec := doGet(t, s, "/api/summary")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["total_rows"].(float64) != 4 {
			t.Errorf("Expected 4 total rows, got %v", body["total_rows"])
		}
	})

	t.Run("SummaryFiltered", func(t *testing.T) {
		rec := doGet(t, s, "/api/summary?province=Punjab")
		body := decodeBody(t, rec)
		if body["filtered_rows"].(float64) != 2 {
			t.Errorf("Expected 2 filtered rows, got %v", body["filtered_rows"])
		}
	})

	t.Run("Questions", func(t *testing.T) {
		rec := doGet(t, s, "/api/questions")
		body := decodeBody(t, rec)
		questions := body["questions"].([]any)
		if len(questions) != 1 || questions[0] != "Q1" {
			t.Errorf("Expected [Q1], got %v", questions)
		}
	})

	t.Run("Question", func(t *testing.T) {
		rec := doGet(t, s, "/api/question?column=Q1")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["total"].(float64) != 4 {
			t.Errorf("Expected 4 answers, got %v", body["total"])
		}
		if body["top_answer"] != "Yes" {
			t.Errorf("Expected top answer Yes, got %v", body["top_answer"])
		}

		// Second request hits the query cache and returns the same payload
		rec2 := doGet(t, s, "/api/question?column=Q1")
		if rec2.Body.String() != rec.Body.String() {
			t.Errorf("Cached response differs from original")
		}
		if stats := s.cache.GetStats(); stats.QueryHits == 0 {
			t.Errorf("Expected a query cache hit, stats: %+v", stats)
		}
	})

	t.Run("QuestionMissingColumn", func(t *testing.T) {
		rec := doGet(t, s, "/api/question")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 without column, got %d", rec.Code)
		}
	})

	t.Run("QuestionUnknownColumn", func(t *testing.T) {
		rec := doGet(t, s, "/api/question?column=Nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404 for unknown column, got %d", rec.Code)
		}
	})

	t.Run("Breakdown", func(t *testing.T) {
		rec := doGet(t, s, "/api/breakdown?column=Q1&dimension=gender")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		groups := body["groups"].([]any)
		if len(groups) != 2 {
			t.Errorf("Expected 2 gender groups, got %v", groups)
		}
	})

	t.Run("BreakdownBadDimension", func(t *testing.T) {
		rec := doGet(t, s, "/api/breakdown?column=Q1&dimension=planet")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for unknown dimension, got %d", rec.Code)
		}
	})

	t.Run("Highlight", func(t *testing.T) {
		rec := doGet(t, s, "/api/highlight?column=Q1&dimension=gender")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["top_answer"] != "Yes" {
			t.Errorf("Expected top answer Yes, got %v", body["top_answer"])
		}
		groups := body["groups"].([]any)
		if len(groups) != 2 {
			t.Fatalf("Expected 2 gender groups, got %v", groups)
		}
	})

	t.Run("HighlightMissingDimension", func(t *testing.T) {
		rec := doGet(t, s, "/api/highlight?column=Q1")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 without dimension, got %d", rec.Code)
		}
	})

	t.Run("Facets", func(t *testing.T) {
		rec := doGet(t, s, "/api/facets?province=Sindh")
		body := decodeBody(t, rec)
		facets := body["facets"].([]any)
		var districtValues []any
		for _, f := range facets {
			m := f.(map[string]any)
			if m["facet"] == "district" {
				districtValues = m["values"].([]any)
			}
		}
		if len(districtValues) != 1 || districtValues[0] != "Karachi" {
			t.Errorf("Expected district narrowed to Karachi, got %v", districtValues)
		}
	})

	t.Run("TopDistricts", func(t *testing.T) {
		rec := doGet(t, s, "/api/districts/top")
		body := decodeBody(t, rec)
		districts := body["districts"].([]any)
		if len(districts) != 3 {
			t.Errorf("Expected 3 districts, got %v", districts)
		}
		first := districts[0].(map[string]any)
		if first["answer"] != "Karachi" || first["count"].(float64) != 2 {
			t.Errorf("Expected Karachi ranked first, got %v", first)
		}
	})

	t.Run("BadAgeParam", func(t *testing.T) {
		rec := doGet(t, s, "/api/summary?age_min=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for bad age_min, got %d", rec.Code)
		}
	})

	t.Run("CacheStats", func(t *testing.T) {
		rec := doGet(t, s, "/api/cache/stats")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["dataset_entries"].(float64) != 1 {
			t.Errorf("Expected 1 cached dataset, got %v", body["dataset_entries"])
		}
	})
}

func TestServer_ReloadPicksUpNewSource(t *testing.T) {
	s := newTestServer(t)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := decodeBody(t, doGet(t, s, "/api/summary"))["total_rows"].(float64); got != 4 {
		t.Fatalf("Expected 4 rows from data.csv, got %v", got)
	}

	// A higher-priority export appears next to the cached CSV; the next
	// reload must serve it, not the stale cache entry.
	zipped := "Province,District,RSex,S4C6,Q1\nPunjab,Lahore,1,25,Yes\nSindh,Karachi,2,19,No\n"
	zipPath := filepath.Join(s.cfg.DataDir, "data.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("data.csv")
	if err != nil {
		t.Fatalf("zip Create failed: %v", err)
	}
	if _, err := w.Write([]byte(zipped)); err != nil {
		t.Fatalf("zip Write failed: %v", err)
	}
	zw.Close()
	f.Close()

	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := decodeBody(t, doGet(t, s, "/api/summary"))["total_rows"].(float64); got != 2 {
		t.Errorf("Expected 2 rows from data.zip after reload, got %v", got)
	}
	if src := decodeBody(t, doGet(t, s, "/api/health"))["source"].(string); filepath.Base(src) != "data.zip" {
		t.Errorf("Expected data.zip as the active source, got %q", src)
	}
}

func TestServer_CodebookResolvedAgainstDataDir(t *testing.T) {
	s := newTestServer(t)

	// The codebook sits in the data dir; a relative codebook_file must find
	// it there, wherever the process was started from.
	codebook := "Code,Label\nQ1,Do you own a phone\n"
	if err := os.WriteFile(filepath.Join(s.cfg.DataDir, "code.csv"), []byte(codebook), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	s.cfg.CodebookFile = "code.csv"

	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	body := decodeBody(t, doGet(t, s, "/api/questions"))
	questions := body["questions"].([]any)
	if len(questions) != 1 || questions[0] != "Do you own a phone (Q1)" {
		t.Errorf("Expected renamed question column, got %v", questions)
	}
}

func TestServer_GenderRemapVisible(t *testing.T) {
	s := newTestServer(t)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	// Gender codes 1/2 were remapped at load time, so the facet offers labels
	rec := doGet(t, s, "/api/facets")
	body := decodeBody(t, rec)
	for _, f := range body["facets"].([]any) {
		m := f.(map[string]any)
		if m["facet"] != "gender" {
			continue
		}
		values := m["values"].([]any)
		found := map[string]bool{}
		for _, v := range values {
			found[v.(string)] = true
		}
		if !found["Male"] || !found["Female"] {
			t.Errorf("Expected remapped gender labels, got %v", values)
		}
		return
	}
	t.Fatalf("Gender facet missing from response")
}
