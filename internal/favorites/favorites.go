// Package favorites keeps the signed-in user's favorite movie IDs in
// sync with the backend.
//
// A single Synchronizer instance is shared by every view (movie list,
// profile, CLI commands) so all consumers observe one consistent cache.
// The cache only changes after the server confirms a mutation; failed
// mutations leave it untouched and emit exactly one error notice.
package favorites

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/services"
	"github.com/desertthunder/myflix/internal/session"
	"github.com/desertthunder/myflix/internal/shared"
)

// State tracks the synchronizer lifecycle.
type State int

const (
	Uninitialized State = iota // no fetch attempted yet
	Loading                    // initial fetch in flight
	Ready                      // cache reflects the last confirmed server state
	Mutating                   // add/remove in flight
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Mutating:
		return "mutating"
	default:
		return ""
	}
}

// Kind enumerates update event types sent to subscribers.
type Kind int

const (
	Refreshed Kind = iota // cache reloaded from the server
	Added                 // a movie was added to favorites
	Removed               // a movie was removed from favorites
	Failed                // a mutation failed; cache unchanged
)

// Notice is a transient, user-facing notification. Every mutation
// produces exactly one.
type Notice struct {
	ID      string // unique identifier, for dismissal bookkeeping
	Message string
	Err     bool
}

// Update is broadcast to subscribers after every state change.
type Update struct {
	Kind      Kind
	MovieID   string
	Favorites []string // snapshot of the cached set after the change
	Notice    Notice
}

// Synchronizer reconciles the favorite-movie-ID set between the cached
// local copy and the server. Safe for use from multiple goroutines; all
// operations serialize on an internal mutex.
type Synchronizer struct {
	mu     sync.Mutex
	api    services.Service
	store  session.Store
	logger *log.Logger
	state  State
	ids    []string
	subs   []chan Update
}

// NewSynchronizer creates a Synchronizer in the Uninitialized state.
func NewSynchronizer(api services.Service, store session.Store, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Synchronizer{
		api:    api,
		store:  store,
		logger: logger,
		state:  Uninitialized,
	}
}

// State returns the current lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Favorites returns a copy of the cached favorite movie IDs.
func (s *Synchronizer) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// IsFavorite reports whether movieID is in the cached set. Before the
// first successful Refresh the set is treated as empty.
func (s *Synchronizer) IsFavorite(movieID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contains(movieID)
}

// contains requires s.mu held.
func (s *Synchronizer) contains(movieID string) bool {
	for _, id := range s.ids {
		if id == movieID {
			return true
		}
	}
	return false
}

// Subscribe registers a new update channel. Sends never block: if a
// subscriber falls behind, updates for it are dropped.
func (s *Synchronizer) Subscribe() <-chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 16)
	s.subs = append(s.subs, ch)
	return ch
}

// broadcast requires s.mu held.
func (s *Synchronizer) broadcast(update Update) {
	for _, ch := range s.subs {
		select {
		case ch <- update:
		default:
		}
	}
}

// snapshot requires s.mu held.
func (s *Synchronizer) snapshot() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Refresh loads the current favorites set from the server, replacing the
// cache. On failure the previous cache and state are kept.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := session.User(s.store)
	if !ok {
		return shared.ErrNotAuthenticated
	}

	prev := s.state
	s.state = Loading

	ids, err := s.api.Favorites(ctx, user.ID)
	if err != nil {
		s.state = prev
		return err
	}

	// Server data is authoritative but still duplicate-checked; the set
	// invariant holds regardless of what the backend returns.
	s.ids = dedupe(ids)
	s.state = Ready

	s.broadcast(Update{Kind: Refreshed, Favorites: s.snapshot()})
	return nil
}

// Toggle adds the movie to favorites when absent and removes it when
// present. This is the only mutation entry point; views never call add or
// remove directly.
func (s *Synchronizer) Toggle(ctx context.Context, movie models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contains(movie.ID) {
		return s.remove(ctx, movie)
	}
	return s.add(ctx, movie)
}

// add requires s.mu held. The cache is only appended after the server
// confirms, and never gains a duplicate entry.
func (s *Synchronizer) add(ctx context.Context, movie models.Movie) error {
	user, ok := session.User(s.store)
	if !ok {
		return shared.ErrNotAuthenticated
	}

	prev := s.state
	s.state = Mutating

	updated, err := s.api.AddFavorite(ctx, user.ID, movie.ID)
	if err != nil {
		s.state = prev
		s.fail(movie.ID, fmt.Sprintf("Failed to add %s to your favorites", movie.Title), err)
		return err
	}

	if updated != nil && updated.ID != "" {
		s.ids = dedupe(updated.FavoriteMovies)
	} else if !s.contains(movie.ID) {
		s.ids = append(s.ids, movie.ID)
	}
	s.state = Ready

	s.persist(user)
	s.broadcast(Update{
		Kind:      Added,
		MovieID:   movie.ID,
		Favorites: s.snapshot(),
		Notice: Notice{
			ID:      shared.GenerateID(),
			Message: fmt.Sprintf("%s has been added to your favorites", movie.Title),
		},
	})
	return nil
}

// remove requires s.mu held.
func (s *Synchronizer) remove(ctx context.Context, movie models.Movie) error {
	user, ok := session.User(s.store)
	if !ok {
		return shared.ErrNotAuthenticated
	}

	prev := s.state
	s.state = Mutating

	updated, err := s.api.RemoveFavorite(ctx, user.ID, movie.ID)
	if err != nil {
		s.state = prev
		s.fail(movie.ID, fmt.Sprintf("Failed to remove %s from your favorites", movie.Title), err)
		return err
	}

	if updated != nil && updated.ID != "" {
		s.ids = dedupe(updated.FavoriteMovies)
	} else {
		filtered := s.ids[:0]
		for _, id := range s.ids {
			if id != movie.ID {
				filtered = append(filtered, id)
			}
		}
		s.ids = filtered
	}
	s.state = Ready

	s.persist(user)
	s.broadcast(Update{
		Kind:      Removed,
		MovieID:   movie.ID,
		Favorites: s.snapshot(),
		Notice: Notice{
			ID:      shared.GenerateID(),
			Message: fmt.Sprintf("%s has been removed from your favorites", movie.Title),
		},
	})
	return nil
}

// persist writes a refreshed session snapshot carrying the confirmed
// favorites set. Requires s.mu held.
func (s *Synchronizer) persist(user *models.User) {
	user.FavoriteMovies = s.snapshot()
	if err := session.SaveUser(s.store, user); err != nil {
		s.logger.Warnf("failed to persist session snapshot: %v", err)
	}
}

// fail broadcasts exactly one error notice. Requires s.mu held.
func (s *Synchronizer) fail(movieID, message string, err error) {
	s.logger.Errorf("favorite mutation failed for %s: %v", movieID, err)
	s.broadcast(Update{
		Kind:      Failed,
		MovieID:   movieID,
		Favorites: s.snapshot(),
		Notice: Notice{
			ID:      shared.GenerateID(),
			Message: message,
			Err:     true,
		},
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
