package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/blainsmith/seahash"
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/grailbio/bio/scoring"
)

// ResultCache stores previously computed Results keyed by an opaque digest
// (see Key). A cache miss, a disabled cache, or a read error all fall back
// to recomputation: the Result pipeline.Run produces is bit-identical
// whether or not a cache is consulted.
type ResultCache interface {
	Get(key uint64) (scoring.Result, bool)
	Put(key uint64, res scoring.Result)
}

// Key derives the cache digest for one piece of work: the profile name,
// query name, seed endpoints and cloud parameters, hashed with seahash the
// same way bamprovider.concurrentMap shards by read name — a fast,
// non-cryptographic digest is exactly what a cache key needs.
func Key(w Work) uint64 {
	qBeg, tBeg, qEnd, tEnd, _ := w.Seed.Endpoints()
	s := fmt.Sprintf("%s|%s|%d,%d,%d,%d|%g,%g,%d",
		w.Profile.Name, w.Query.Name, qBeg, tBeg, qEnd, tEnd,
		w.Cloud.Alpha, w.Cloud.Beta, w.Cloud.Gamma)
	return seahash.Sum64([]byte(s))
}

const numMemCacheShards = 256

type memCacheShard struct {
	mu      sync.Mutex
	entries map[uint64]scoring.Result
}

// MemCache is a sharded in-memory ResultCache, sharded by key the way
// bamprovider.concurrentMap shards mate lookups so that concurrent
// RunBatch workers contend on 1/numMemCacheShards of the cache instead of
// one mutex.
type MemCache struct {
	shards [numMemCacheShards]memCacheShard
}

// NewMemCache returns an empty MemCache ready for concurrent use.
func NewMemCache() *MemCache {
	c := &MemCache{}
	for i := range c.shards {
		c.shards[i].entries = make(map[uint64]scoring.Result)
	}
	return c
}

func (c *MemCache) shard(key uint64) *memCacheShard {
	return &c.shards[key%numMemCacheShards]
}

// Get implements ResultCache.
func (c *MemCache) Get(key uint64) (scoring.Result, bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.entries[key]
	return res, ok
}

// Put implements ResultCache.
func (c *MemCache) Put(key uint64, res scoring.Result) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = res
}

// DiskCache persists each Result as a snappy-compressed gob-encoded file
// under Dir, one file per key, mirroring encoding/bampair's
// snappy.NewBufferedWriter-over-a-plain-file persistence pattern. It is
// meant for batch jobs that re-run the same pairs across process restarts
// (e.g. iterative parameter tuning), not as a fast path within one run.
type DiskCache struct {
	Dir string
}

// NewDiskCache returns a DiskCache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "pipeline: creating disk cache dir %s", dir)
	}
	return &DiskCache{Dir: dir}, nil
}

func (c *DiskCache) path(key uint64) string {
	return filepath.Join(c.Dir, fmt.Sprintf("result_%016x.gob.sz", key))
}

// Get implements ResultCache. A missing file, or one that fails to
// decode, is reported as a miss rather than an error: the caller always
// has the option of recomputation.
func (c *DiskCache) Get(key uint64) (scoring.Result, bool) {
	raw, err := ioutil.ReadFile(c.path(key))
	if err != nil {
		return scoring.Result{}, false
	}
	decompressed, err := snappy.Decode(nil, raw)
	if err != nil {
		return scoring.Result{}, false
	}
	var res scoring.Result
	if err := gob.NewDecoder(bytes.NewReader(decompressed)).Decode(&res); err != nil {
		return scoring.Result{}, false
	}
	return res, true
}

// Put implements ResultCache. A write failure is silently ignored: caching
// is strictly an optimization, so a disk error here must not fail the
// pair that produced res.
func (c *DiskCache) Put(key uint64, res scoring.Result) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(res); err != nil {
		return
	}
	compressed := snappy.Encode(nil, buf.Bytes())
	_ = ioutil.WriteFile(c.path(key), compressed, 0o644)
}
