// Package bloom provides a concurrency-safe probabilistic set of content
// keys, used to skip lookups for pages that were never stored.
package bloom

import (
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter wraps a Bloom filter with a lock so workers can test and add keys
// concurrently.
type Filter struct {
	mu sync.RWMutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected keys
// with the given false positive rate. n is raised to 1 if smaller.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(max(n, 1), fpRate),
	}
}

// Key joins the parts of a composite key.
func Key(parts ...string) string {
	return strings.Join(parts, "\x00")
}

// Add adds a key to the filter.
func (f *Filter) Add(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f.AddString(key)
}

// Test returns true if the key might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.f.TestString(key)
}

// TestAndAdd adds the key and reports whether it might have been present
// before.
func (f *Filter) TestAndAdd(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys in the filter.
func (f *Filter) EstimatedCount() uint {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return uint(f.f.ApproximatedSize())
}
