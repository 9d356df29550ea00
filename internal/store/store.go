// Package store holds the normalized in-memory UI state reconciled against
// the backend. Updates are last-writer-wins: two concurrent refreshes of the
// same listing may resolve out of order and the later-arriving response
// overwrites the earlier one regardless of dispatch order. No request
// fencing is applied.
package store

import (
	"sync"
	"time"

	"github.com/aidar/taskboard-client/internal/domain"
)

// Feature names used as keys for per-feature error state.
const (
	FeatureAuth     = "auth"
	FeatureProjects = "projects"
	FeatureMembers  = "members"
	FeatureWork     = "work"
	FeatureComments = "comments"
)

// Store is the normalized client-side state.
type Store struct {
	mu sync.RWMutex

	projects domain.Page[domain.Project]
	current  *domain.Project
	errs     map[string]string

	searchMu    sync.Mutex
	searchTimer *time.Timer
}

// New creates an empty store.
func New() *Store {
	return &Store{
		projects: domain.EmptyPage[domain.Project](),
		errs:     make(map[string]string),
	}
}

// Projects returns the current project listing.
func (s *Store) Projects() domain.Page[domain.Project] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects
}

// SetProjects replaces the project listing with a freshly normalized page.
func (s *Store) SetProjects(page domain.Page[domain.Project]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = page
}

// CurrentProject returns the single-entity slot, refreshed independently of
// the listing.
func (s *Store) CurrentProject() *domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrentProject replaces the current-project slot.
func (s *Store) SetCurrentProject(p *domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
}

// UpsertProject updates a project in the listing in place by id match; an
// unknown id is ignored (the listing is refreshed by the next fetch).
func (s *Store) UpsertProject(p domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects.Items {
		if s.projects.Items[i].ID == p.ID {
			s.projects.Items[i] = p
			break
		}
	}
	if s.current != nil && s.current.ID == p.ID {
		updated := p
		s.current = &updated
	}
}

// RemoveProject drops a project from the in-memory listing after a delete
// action. Counts are left to the next fetch to recompute.
func (s *Store) RemoveProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.projects.Items[:0]
	for _, p := range s.projects.Items {
		if p.ID != id {
			items = append(items, p)
		}
	}
	s.projects.Items = items
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
}

// SetError stores the user-facing error message for a feature.
func (s *Store) SetError(feature, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" {
		delete(s.errs, feature)
		return
	}
	s.errs[feature] = message
}

// Error returns the stored error message for a feature, if any.
func (s *Store) Error(feature string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[feature]
}

// Reset drops all state, e.g. after a forced logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = domain.EmptyPage[domain.Project]()
	s.current = nil
	s.errs = make(map[string]string)
}

// ScheduleSearch schedules fn after the debounce delay, cancelling a
// previously scheduled (not yet fired) search. An already in-flight fetch
// is not cancelled: a stale response can still arrive and win.
func (s *Store) ScheduleSearch(delay time.Duration, fn func()) {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.searchTimer = time.AfterFunc(delay, fn)
}
