package crawl

import (
	"sync"

	"github.com/fwojciec/docsynth"
)

// Entry is a URL waiting in the frontier.
type Entry struct {
	URL          string // as discovered
	CanonicalURL string
	Depth        int
	Seq          int // discovery order, starting at 0
}

// Frontier is a FIFO crawl queue with exact deduplication on canonical URLs.
// Popping in insertion order gives breadth-first discovery order.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	queue []Entry
	next  int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]struct{})}
}

// Push adds a URL to the frontier.
// Returns false if the URL cannot be canonicalized or its canonical form
// has already been seen.
func (f *Frontier) Push(rawURL string, depth int) bool {
	canonical, err := docsynth.CanonicalURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[canonical]; ok {
		return false
	}
	f.seen[canonical] = struct{}{}
	f.queue = append(f.queue, Entry{
		URL:          rawURL,
		CanonicalURL: canonical,
		Depth:        depth,
		Seq:          f.next,
	})
	f.next++
	return true
}

// Pop returns the oldest queued entry.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return Entry{}, false
	}
	e := f.queue[0]
	f.queue[0] = Entry{}
	f.queue = f.queue[1:]
	return e, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been processed or queued.
func (f *Frontier) Seen(rawURL string) bool {
	canonical, err := docsynth.CanonicalURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[canonical]
	return ok
}
