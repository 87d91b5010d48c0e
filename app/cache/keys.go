package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/minio/highwayhash"
)

// hashKey is the fixed HighwayHash key. Cache keys only need to be stable
// within one process, not secret.
var hashKey = []byte("surveydash-cache-key-v1-00000000")

// QueryKey derives the cache key for one query result. Parameters are
// canonicalized (sorted, joined) before hashing so logically identical
// selections always produce the same key. The dataset ID and operation stay
// readable in the key for log inspection.
func QueryKey(datasetID, op string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
		b.WriteByte('|')
	}

	digest := highwayhash.Sum64([]byte(b.String()), hashKey)
	return fmt.Sprintf("ds:%s|op:%s|%016x", datasetID, op, digest)
}

// DatasetKey derives the cache key for a loaded dataset from its source
// identity (paths plus modification times rendered by the caller).
func DatasetKey(parts ...string) string {
	digest := highwayhash.Sum64([]byte(strings.Join(parts, "|")), hashKey)
	return fmt.Sprintf("file:%016x", digest)
}

// ExtractOp returns the operation segment of a query key, or "" for keys
// without one (dataset keys). Used for per-operation cache statistics.
func ExtractOp(key string) string {
	for _, part := range strings.Split(key, "|") {
		if strings.HasPrefix(part, "op:") {
			return strings.TrimPrefix(part, "op:")
		}
	}
	return ""
}

// DatasetIDFromKey returns the dataset ID segment of a query key, or "".
func DatasetIDFromKey(key string) string {
	for _, part := range strings.Split(key, "|") {
		if strings.HasPrefix(part, "ds:") {
			return strings.TrimPrefix(part, "ds:")
		}
	}
	return ""
}
