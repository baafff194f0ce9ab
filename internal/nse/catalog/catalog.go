package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotLoaded is returned when a segment is queried before its download.
var ErrNotLoaded = errors.New("catalog not downloaded")

// segmentIndex holds one segment's records in provider order plus the
// search columns built once per download.
type segmentIndex struct {
	records   []InstrumentRecord
	lowSymbol []string
	lowName   []string
	bySymbol  map[string][]int // lowered symbol -> positions, for exact match
}

// Catalog maps exchange segments to their indexed instrument lists.
// A Replace in progress blocks readers, so a partially built index is
// never observable.
type Catalog struct {
	mu       sync.RWMutex
	segments map[Segment]*segmentIndex
}

func New() *Catalog {
	return &Catalog{
		segments: make(map[Segment]*segmentIndex),
	}
}

// Replace installs the freshly downloaded record list for a segment and
// rebuilds its search index. Records keep the provider's listing order.
func (c *Catalog) Replace(seg Segment, records []InstrumentRecord) {
	idx := &segmentIndex{
		records:   make([]InstrumentRecord, len(records)),
		lowSymbol: make([]string, len(records)),
		lowName:   make([]string, len(records)),
		bySymbol:  make(map[string][]int, len(records)),
	}
	copy(idx.records, records)
	for i, rec := range idx.records {
		low := strings.ToLower(rec.Symbol)
		idx.lowSymbol[i] = low
		idx.lowName[i] = strings.ToLower(rec.Name)
		idx.bySymbol[low] = append(idx.bySymbol[low], i)
	}

	c.mu.Lock()
	c.segments[seg] = idx
	c.mu.Unlock()
}

// Loaded reports whether a segment has been downloaded.
func (c *Catalog) Loaded(seg Segment) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.segments[seg]
	return ok
}

// Len returns the number of records held for a segment.
func (c *Catalog) Len(seg Segment) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.segments[seg]
	if !ok {
		return 0
	}
	return len(idx.records)
}

// Records returns a copy of a segment's records in provider order.
func (c *Catalog) Records(seg Segment) ([]InstrumentRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.segments[seg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, seg)
	}
	out := make([]InstrumentRecord, len(idx.records))
	copy(out, idx.records)
	return out, nil
}

// Search returns matching records in catalog order. With exact set, only
// records whose symbol equals query case-insensitively match; otherwise any
// record whose symbol or name contains query case-insensitively matches.
// An empty result is not an error; querying an undownloaded segment is.
func (c *Catalog) Search(seg Segment, query string, exact bool) ([]InstrumentRecord, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.segments[seg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, seg)
	}

	var out []InstrumentRecord
	if exact {
		for _, pos := range idx.bySymbol[q] {
			out = append(out, idx.records[pos])
		}
		return out, nil
	}

	for i := range idx.records {
		if strings.Contains(idx.lowSymbol[i], q) || strings.Contains(idx.lowName[i], q) {
			out = append(out, idx.records[i])
		}
	}
	return out, nil
}
