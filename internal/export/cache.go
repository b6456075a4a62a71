package export

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/banshee-data/odysseus-results/internal/monitoring"
	"github.com/banshee-data/odysseus-results/internal/results"
)

// Cache memoises ToCSVBytes by table content. Two tables with the same
// names, types, index and cells share one entry regardless of where they
// were loaded from. At most max entries are kept; the oldest is evicted
// first. Concurrent requests for the same content encode once.
type Cache struct {
	max int

	mu      sync.Mutex
	entries map[string][]byte
	order   []string
	hits    int
	misses  int

	group singleflight.Group
}

// NewCache returns a cache holding up to max encodings. max < 1 is treated
// as 1.
func NewCache(max int) *Cache {
	if max < 1 {
		max = 1
	}
	return &Cache{max: max, entries: make(map[string][]byte)}
}

// CSV returns the encoding of t, computing it on a miss. Callers must not
// modify the returned slice.
func (c *Cache) CSV(t *results.Table) ([]byte, error) {
	key := ContentKey(t)

	c.mu.Lock()
	if b, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		if b, ok := c.entries[key]; ok {
			c.hits++
			c.mu.Unlock()
			return b, nil
		}
		c.misses++
		c.mu.Unlock()

		b, err := ToCSVBytes(t)
		if err != nil {
			return nil, err
		}
		c.store(key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) store(key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	for len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = b
	c.order = append(c.order, key)
}

// Purge drops every entry. The dashboard calls it when files under the
// results root change.
func (c *Cache) Purge() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string][]byte)
	c.order = nil
	c.mu.Unlock()
	if n > 0 {
		monitoring.Logf("csv cache: purged %d entries", n)
	}
}

// Stats reports entries held, hits and misses since creation.
func (c *Cache) Stats() (entries, hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.hits, c.misses
}

// ContentKey hashes everything ToCSVBytes depends on.
func ContentKey(t *results.Table) string {
	h := sha256.New()
	sep := []byte{0}
	for i, name := range t.Names() {
		h.Write([]byte(name))
		h.Write(sep)
		h.Write([]byte(t.Types()[i]))
		h.Write(sep)
	}
	h.Write([]byte{1})
	for _, ix := range t.Index() {
		h.Write([]byte(strconv.Itoa(ix)))
		h.Write(sep)
	}
	h.Write([]byte{1})
	df := t.DataFrame()
	types := t.Types()
	for j := 0; j < t.Ncol(); j++ {
		for i := 0; i < t.Nrow(); i++ {
			h.Write([]byte(formatCell(df.Elem(i, j), types[j])))
			h.Write(sep)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
