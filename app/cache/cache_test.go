package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

func smallTable(t *testing.T) *table.Table {
	t.Helper()
	b := table.NewBuilder([]string{"Province"})
	if err := b.AppendBatch([][]string{{"Punjab"}, {"Sindh"}}); err != nil {
		t.Fatalf("AppendBatch failed: %v", err)
	}
	return b.Finalize()
}

func TestCache_QueryRoundTrip(t *testing.T) {
	c := New(1024 * 1024)

	key := QueryKey("d1", "question", map[string]string{"column": "Q1"})
	if _, ok := c.GetQuery(key); ok {
		t.Fatalf("Expected miss on empty cache")
	}

	c.StoreQuery(key, []byte(`{"total":5}`))

	payload, ok := c.GetQuery(key)
	if !ok {
		t.Fatalf("Expected hit after store")
	}
	if string(payload) != `{"total":5}` {
		t.Errorf("Payload mismatch: %s", payload)
	}

	stats := c.GetStats()
	if stats.QueryHits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit / 1 miss, got %d / %d", stats.QueryHits, stats.Misses)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	// Budget fits roughly two entries of ~1KB payload plus overhead
	c := New(2500)

	payload := make([]byte, 1000)
	keys := make([]string, 3)
	for i := range keys {
		keys[i] = QueryKey("d1", "question", map[string]string{"column": fmt.Sprintf("Q%d", i)})
	}

	c.StoreQuery(keys[0], payload)
	c.StoreQuery(keys[1], payload)

	// Touch the first entry so the second becomes the eviction candidate
	if _, ok := c.GetQuery(keys[0]); !ok {
		t.Fatalf("Expected first entry present")
	}

	c.StoreQuery(keys[2], payload)

	if _, ok := c.GetQuery(keys[0]); !ok {
		t.Errorf("Recently used entry should survive eviction")
	}
	if _, ok := c.GetQuery(keys[1]); ok {
		t.Errorf("Least recently used entry should be evicted")
	}
	if _, ok := c.GetQuery(keys[2]); !ok {
		t.Errorf("Newest entry should be present")
	}
	if c.Size() > c.MaxSize() {
		t.Errorf("Cache size %d exceeds budget %d", c.Size(), c.MaxSize())
	}
}

func TestCache_OversizedRejected(t *testing.T) {
	c := New(100)
	key := QueryKey("d1", "question", nil)
	c.StoreQuery(key, make([]byte, 1000))

	if _, ok := c.GetQuery(key); ok {
		t.Errorf("Oversized entry must not be stored")
	}
}

func TestCache_DatasetModTimeInvalidation(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(source, []byte("Province\nPunjab\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c := New(1024 * 1024)
	key := DatasetKey(dir, "code.csv")

	stored := c.StoreDataset(key, DatasetEntry{
		Table:      smallTable(t),
		SourcePath: source,
	}, source)
	if stored.ID == "" {
		t.Fatalf("Expected a dataset ID to be assigned")
	}

	entry, ok := c.GetDataset(key)
	if !ok {
		t.Fatalf("Expected dataset hit")
	}
	if entry.ID != stored.ID {
		t.Errorf("ID mismatch: %s vs %s", entry.ID, stored.ID)
	}

	// Rewrite the source with a different mtime
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(source, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	if _, ok := c.GetDataset(key); ok {
		t.Errorf("Expected invalidation after source file changed")
	}
}

func TestCache_RemoveDatasetDropsDerivedQueries(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(source, []byte("x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c := New(1024 * 1024)
	key := DatasetKey(dir, "")
	stored := c.StoreDataset(key, DatasetEntry{Table: smallTable(t), SourcePath: source}, source)

	queryKey := QueryKey(stored.ID, "question", map[string]string{"column": "Q1"})
	c.StoreQuery(queryKey, []byte("{}"))

	otherKey := QueryKey("other-dataset", "question", map[string]string{"column": "Q1"})
	c.StoreQuery(otherKey, []byte("{}"))

	c.RemoveDataset(key)

	if _, ok := c.GetQuery(queryKey); ok {
		t.Errorf("Queries derived from a removed dataset must be dropped")
	}
	if _, ok := c.GetQuery(otherKey); !ok {
		t.Errorf("Queries for other datasets must survive")
	}
}

func TestCache_UpdateMaxSizeEvicts(t *testing.T) {
	c := New(1024 * 1024)
	for i := 0; i < 4; i++ {
		key := QueryKey("d1", "question", map[string]string{"column": fmt.Sprintf("Q%d", i)})
		c.StoreQuery(key, make([]byte, 1000))
	}

	c.UpdateMaxSize(1500)
	if c.Size() > 1500 {
		t.Errorf("Expected eviction down to new budget, size is %d", c.Size())
	}
}

func TestQueryKey_Canonical(t *testing.T) {
	a := QueryKey("d1", "question", map[string]string{"column": "Q1", "province": "Punjab,Sindh"})
	b := QueryKey("d1", "question", map[string]string{"province": "Punjab,Sindh", "column": "Q1"})
	if a != b {
		t.Errorf("Parameter order must not change the key: %s vs %s", a, b)
	}

	c := QueryKey("d1", "question", map[string]string{"column": "Q2", "province": "Punjab,Sindh"})
	if a == c {
		t.Errorf("Different parameters must produce different keys")
	}

	d := QueryKey("d1", "breakdown", map[string]string{"column": "Q1", "province": "Punjab,Sindh"})
	if ExtractOp(d) != "breakdown" {
		t.Errorf("Expected op breakdown, got %q", ExtractOp(d))
	}
	if DatasetIDFromKey(d) != "d1" {
		t.Errorf("Expected dataset d1, got %q", DatasetIDFromKey(d))
	}
}
