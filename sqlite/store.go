package sqlite

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/bloom"
	"github.com/google/uuid"
)

// bloomFalsePositiveRate is the false positive rate of the lookup prefilter.
const bloomFalsePositiveRate = 0.001

// Compile-time interface verification.
var _ docsynth.ContentStore = (*ContentStore)(nil)

// ContentStore implements docsynth.ContentStore for one source using SQLite.
// Entries are read into memory by Load; Lookup and Put work on memory only
// and Persist writes the pages put during the run in one transaction,
// together with a row in the runs table.
type ContentStore struct {
	db     *DB
	source string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	mu      sync.RWMutex
	entries map[string]*docsynth.PageRecord // by canonical URL
	pending map[string]*docsynth.PageRecord
	filter  *bloom.Filter
	started time.Time
}

// NewContentStore creates a store for the pages of the named source.
func NewContentStore(db *DB, source string) *ContentStore {
	return &ContentStore{
		db:      db,
		source:  source,
		entries: make(map[string]*docsynth.PageRecord),
		pending: make(map[string]*docsynth.PageRecord),
		filter:  bloom.NewFilter(0, bloomFalsePositiveRate),
	}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	var b [8]byte
	h := xxhash.Sum64String(content)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

func (s *ContentStore) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Load reads every stored page of the source into memory.
func (s *ContentStore) Load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT canonical_url, url, title, raw_text, source_type, depth, content_hash, discovered_at
		FROM pages
		WHERE source = ?
	`, s.source)
	if err != nil {
		return fmt.Errorf("load pages: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]*docsynth.PageRecord)
	for rows.Next() {
		var p docsynth.PageRecord
		var sourceType, discoveredAt string
		if err := rows.Scan(&p.CanonicalURL, &p.URL, &p.Title, &p.RawText, &sourceType,
			&p.Depth, &p.ContentHash, &discoveredAt); err != nil {
			return fmt.Errorf("scan page: %w", err)
		}
		p.SourceType = docsynth.SourceType(sourceType)
		if p.DiscoveredAt, err = parseTime(discoveredAt, "discovered_at"); err != nil {
			return err
		}
		entries[p.CanonicalURL] = &p
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load pages: %w", err)
	}

	filter := bloom.NewFilter(uint(len(entries)), bloomFalsePositiveRate)
	for _, p := range entries {
		filter.Add(bloom.Key(p.CanonicalURL, p.ContentHash))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.pending = make(map[string]*docsynth.PageRecord)
	s.filter = filter
	s.started = s.now()
	return nil
}

// Lookup returns a copy of the stored page for a canonical URL if its
// content hash matches.
func (s *ContentStore) Lookup(canonicalURL, contentHash string) (*docsynth.PageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.filter.Test(bloom.Key(canonicalURL, contentHash)) {
		return nil, false
	}
	p, ok := s.entries[canonicalURL]
	if !ok || p.ContentHash != contentHash {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// Put records a page for Persist. Pages without a content hash are hashed
// by their text.
func (s *ContentStore) Put(page *docsynth.PageRecord) {
	cp := *page
	if cp.ContentHash == "" {
		cp.ContentHash = hashContent(cp.RawText)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[cp.CanonicalURL] = &cp
}

// Persist writes the pages put since Load and records the run.
func (s *ContentStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string]*docsynth.PageRecord)
	started := s.started
	s.mu.Unlock()

	if started.IsZero() {
		started = s.now()
	}
	run := Run{
		ID:         uuid.New().String(),
		Source:     s.source,
		StartedAt:  started,
		FinishedAt: s.now(),
		Pages:      len(pending),
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin persist: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, started_at, finished_at, pages)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Source, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Pages); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, p := range pending {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (source, canonical_url, url, title, raw_text, source_type, depth, content_hash, discovered_at, run_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (source, canonical_url) DO UPDATE SET
				url = excluded.url,
				title = excluded.title,
				raw_text = excluded.raw_text,
				source_type = excluded.source_type,
				depth = excluded.depth,
				content_hash = excluded.content_hash,
				discovered_at = excluded.discovered_at,
				run_id = excluded.run_id
		`, s.source, p.CanonicalURL, p.URL, p.Title, p.RawText, string(p.SourceType), p.Depth,
			p.ContentHash, formatTime(p.DiscoveredAt), run.ID); err != nil {
			return fmt.Errorf("upsert page %s: %w", p.CanonicalURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for canonical, p := range pending {
		s.entries[canonical] = p
		s.filter.Add(bloom.Key(p.CanonicalURL, p.ContentHash))
	}
	s.started = s.now()
	return nil
}
