// Package cache holds the session-lifetime camera caches: one tier for
// summaries scraped off list pages, one for details with verified
// coordinates. Entries are never evicted; a browsing session is bounded.
package cache

import (
	"sync"

	"github.com/hclin/camradar/internal/camera"
)

// Store is the two-tier camera cache. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	summaries map[string]camera.Summary
	details   map[string]camera.Detail
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		summaries: make(map[string]camera.Summary),
		details:   make(map[string]camera.Detail),
	}
}

// MergeSummaries folds freshly parsed summaries into the summary tier.
// Existing entries are never overwritten: the first-seen name and URLs win at
// this tier, and re-merging the same list is a no-op. Returns how many
// entries were new.
func (s *Store) MergeSummaries(list []camera.Summary) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, sum := range list {
		if sum.ID == "" {
			continue
		}
		if _, ok := s.summaries[sum.ID]; ok {
			continue
		}
		s.summaries[sum.ID] = sum
		added++
	}
	return added
}

// PutDetail stores a resolved detail and enriches a matching summary entry
// whose name or live-feed URL were unknown. Details are write-once: a
// camera's coordinates never change within a session, so a second put for
// the same id is ignored.
func (s *Store) PutDetail(d camera.Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.details[d.ID]; ok {
		return
	}
	s.details[d.ID] = d

	sum, ok := s.summaries[d.ID]
	if !ok {
		return
	}
	if (sum.Name == "" || sum.Name == sum.ID) && d.Name != "" {
		sum.Name = d.Name
	}
	if sum.LiveFeedURL == "" {
		sum.LiveFeedURL = d.LiveFeedURL
	}
	s.summaries[d.ID] = sum
}

// Summary returns the summary-tier entry for id.
func (s *Store) Summary(id string) (camera.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.summaries[id]
	return sum, ok
}

// Detail returns the detail-tier entry for id.
func (s *Store) Detail(id string) (camera.Detail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.details[id]
	return d, ok
}

// Lookup returns everything known about id, preferring the detail tier since
// it carries verified coordinates.
func (s *Store) Lookup(id string) (camera.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.details[id]; ok {
		return d.AsRecord(), true
	}
	if sum, ok := s.summaries[id]; ok {
		return camera.Record{Summary: sum}, true
	}
	return camera.Record{}, false
}

// Len reports the size of each tier.
func (s *Store) Len() (summaries, details int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries), len(s.details)
}
