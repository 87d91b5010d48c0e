package cache

import (
	"time"

	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

// DefaultMaxSize is the default cache budget (512MB) covering loaded
// datasets and query results together.
const DefaultMaxSize = 512 * 1024 * 1024

// QueryEntry is one cached query result: the marshaled response payload.
// Storing the encoded bytes keeps sizing exact and the entry immutable.
type QueryEntry struct {
	Payload    []byte
	Size       int64
	AccessTime int64
	CreateTime time.Time
}

// DatasetEntry is one loaded dataset. ModTimes records the modification
// time of every file the dataset was built from (source plus codebook);
// a change to any of them invalidates the entry.
type DatasetEntry struct {
	ID           string
	Table        *table.Table
	SourcePath   string
	CodebookPath string
	ModTimes     map[string]time.Time
	Size         int64
	AccessTime   int64
	CreateTime   time.Time
}

// Stats is a point-in-time snapshot of cache occupancy and hit rates.
type Stats struct {
	QueryEntries   int
	DatasetEntries int
	TotalSize      int64
	MaxSize        int64
	UsagePercent   float64

	QueryHits   int64
	DatasetHits int64
	Misses      int64
	HitRate     float64

	OpStats map[string]OpStats
}

// OpStats aggregates cached entries per query operation.
type OpStats struct {
	EntryCount int
	TotalSize  int64
}
