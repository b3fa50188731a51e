package mock

import (
	"context"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.ContentStore = (*ContentStore)(nil)

// ContentStore is a mock implementation of docsynth.ContentStore.
type ContentStore struct {
	LoadFn    func(ctx context.Context) error
	LookupFn  func(canonicalURL, contentHash string) (*docsynth.PageRecord, bool)
	PutFn     func(page *docsynth.PageRecord)
	PersistFn func(ctx context.Context) error
}

func (s *ContentStore) Load(ctx context.Context) error {
	return s.LoadFn(ctx)
}

func (s *ContentStore) Lookup(canonicalURL, contentHash string) (*docsynth.PageRecord, bool) {
	return s.LookupFn(canonicalURL, contentHash)
}

func (s *ContentStore) Put(page *docsynth.PageRecord) {
	s.PutFn(page)
}

func (s *ContentStore) Persist(ctx context.Context) error {
	return s.PersistFn(ctx)
}
