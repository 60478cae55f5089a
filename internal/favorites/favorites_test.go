package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/session"
	"github.com/desertthunder/myflix/internal/shared"
	tu "github.com/desertthunder/myflix/internal/testing"
)

func newSignedInStore(t *testing.T) session.Store {
	t.Helper()
	store := session.NewMemStore()
	err := session.Save(store, &models.Session{
		User:  models.User{ID: "u1", Username: "alice"},
		Token: "jwt-token",
	})
	if err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return store
}

func TestSynchronizer(t *testing.T) {
	ctx := context.Background()

	t.Run("starts uninitialized with an empty set", func(t *testing.T) {
		sync := NewSynchronizer(&tu.MockService{}, newSignedInStore(t), nil)

		if sync.State() != Uninitialized {
			t.Errorf("expected Uninitialized, got %v", sync.State())
		}
		if sync.IsFavorite("m1") {
			t.Error("expected membership checks against an empty set before refresh")
		}
		if len(sync.Favorites()) != 0 {
			t.Error("expected an empty favorites snapshot")
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("loads and dedupes the server set", func(t *testing.T) {
			api := &tu.MockService{
				FavoritesFunc: func(ctx context.Context, userID string) ([]string, error) {
					if userID != "u1" {
						t.Errorf("expected lookup for u1, got %s", userID)
					}
					return []string{"m1", "m2", "m1"}, nil
				},
			}
			sync := NewSynchronizer(api, newSignedInStore(t), nil)

			if err := sync.Refresh(ctx); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if sync.State() != Ready {
				t.Errorf("expected Ready, got %v", sync.State())
			}
			ids := sync.Favorites()
			if len(ids) != 2 {
				t.Errorf("expected deduped set of 2, got %v", ids)
			}
			if !sync.IsFavorite("m1") || !sync.IsFavorite("m2") {
				t.Error("expected both movies in the set")
			}
		})

		t.Run("failure keeps the previous cache and state", func(t *testing.T) {
			calls := 0
			api := &tu.MockService{
				FavoritesFunc: func(ctx context.Context, userID string) ([]string, error) {
					calls++
					if calls == 1 {
						return []string{"m1"}, nil
					}
					return nil, shared.ErrTryAgainLater
				},
			}
			sync := NewSynchronizer(api, newSignedInStore(t), nil)
			sync.Refresh(ctx)

			err := sync.Refresh(ctx)
			if !errors.Is(err, shared.ErrTryAgainLater) {
				t.Fatalf("expected ErrTryAgainLater, got %v", err)
			}

			if sync.State() != Ready {
				t.Errorf("expected state restored to Ready, got %v", sync.State())
			}
			if !sync.IsFavorite("m1") {
				t.Error("expected cache unchanged after failed refresh")
			}
		})

		t.Run("requires a session", func(t *testing.T) {
			sync := NewSynchronizer(&tu.MockService{}, session.NewMemStore(), nil)

			if err := sync.Refresh(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("Toggle", func(t *testing.T) {
		movie := models.Movie{ID: "m1", Title: "The Matrix"}

		t.Run("adds when absent, removes when present", func(t *testing.T) {
			var added, removed int
			api := &tu.MockService{
				AddFavoriteFunc: func(ctx context.Context, userID, movieID string) (*models.User, error) {
					added++
					return &models.User{ID: "u1", FavoriteMovies: []string{"m1"}}, nil
				},
				RemoveFavoriteFunc: func(ctx context.Context, userID, movieID string) (*models.User, error) {
					removed++
					return &models.User{ID: "u1", FavoriteMovies: []string{}}, nil
				},
			}
			sync := NewSynchronizer(api, newSignedInStore(t), nil)

			if err := sync.Toggle(ctx, movie); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !sync.IsFavorite("m1") {
				t.Error("expected movie in the set after first toggle")
			}

			if err := sync.Toggle(ctx, movie); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sync.IsFavorite("m1") {
				t.Error("expected movie removed after second toggle")
			}

			if added != 1 || removed != 1 {
				t.Errorf("expected one add and one remove, got %d/%d", added, removed)
			}
		})

		t.Run("cache mutates only after server confirmation", func(t *testing.T) {
			api := &tu.MockService{
				AddFavoriteFunc: func(ctx context.Context, userID, movieID string) (*models.User, error) {
					return nil, shared.ErrTryAgainLater
				},
			}
			sync := NewSynchronizer(api, newSignedInStore(t), nil)

			err := sync.Toggle(ctx, movie)
			if !errors.Is(err, shared.ErrTryAgainLater) {
				t.Fatalf("expected ErrTryAgainLater, got %v", err)
			}

			if sync.IsFavorite("m1") {
				t.Error("expected cache unchanged after failed mutation")
			}
			if sync.State() != Uninitialized {
				t.Errorf("expected state restored, got %v", sync.State())
			}
		})

		t.Run("falls back to local mutation when no user returned", func(t *testing.T) {
			api := &tu.MockService{
				AddFavoriteFunc: func(ctx context.Context, userID, movieID string) (*models.User, error) {
					return nil, nil
				},
			}
			sync := NewSynchronizer(api, newSignedInStore(t), nil)

			if err := sync.Toggle(ctx, movie); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !sync.IsFavorite("m1") {
				t.Error("expected local append when backend omits the user record")
			}
		})

		t.Run("persists the confirmed set to the session snapshot", func(t *testing.T) {
			api := &tu.MockService{
				AddFavoriteFunc: func(ctx context.Context, userID, movieID string) (*models.User, error) {
					return &models.User{ID: "u1", FavoriteMovies: []string{"m1"}}, nil
				},
			}
			store := newSignedInStore(t)
			sync := NewSynchronizer(api, store, nil)

			if err := sync.Toggle(ctx, movie); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			user, ok := session.User(store)
			if !ok {
				t.Fatal("expected session snapshot to survive")
			}
			if !user.HasFavorite("m1") {
				t.Error("expected snapshot to carry the confirmed favorite")
			}
		})
	})

	t.Run("Subscribe", func(t *testing.T) {
		movie := models.Movie{ID: "m1", Title: "The Matrix"}

		t.Run("successful mutation broadcasts one success notice", func(t *testing.T) {
			api := &tu.MockService{
				AddFavoriteFunc: func(ctx context.Context, userID, movieID string) (*models.User, error) {
					return &models.User{ID: "u1", FavoriteMovies: []string{"m1"}}, nil
				},
			}
			sync := NewSynchronizer(api, newSignedInStore(t), nil)
			updates := sync.Subscribe()

			if err := sync.Toggle(ctx, movie); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			select {
			case update := <-updates:
				if update.Kind != Added {
					t.Errorf("expected Added, got %v", update.Kind)
				}
				if update.Notice.Err {
					t.Error("expected a success notice")
				}
				if update.Notice.Message != "The Matrix has been added to your favorites" {
					t.Errorf("unexpected notice: %q", update.Notice.Message)
				}
				if update.Notice.ID == "" {
					t.Error("expected notice to carry an ID")
				}
			default:
				t.Fatal("expected a buffered update")
			}

			select {
			case update := <-updates:
				t.Fatalf("expected exactly one update, got extra %v", update.Kind)
			default:
			}
		})

		t.Run("failed mutation broadcasts exactly one error notice", func(t *testing.T) {
			api := &tu.MockService{
				AddFavoriteFunc: func(ctx context.Context, userID, movieID string) (*models.User, error) {
					return nil, shared.ErrTryAgainLater
				},
			}
			sync := NewSynchronizer(api, newSignedInStore(t), nil)
			updates := sync.Subscribe()

			sync.Toggle(ctx, movie)

			select {
			case update := <-updates:
				if update.Kind != Failed {
					t.Errorf("expected Failed, got %v", update.Kind)
				}
				if !update.Notice.Err {
					t.Error("expected an error notice")
				}
			default:
				t.Fatal("expected a buffered update")
			}

			select {
			case update := <-updates:
				t.Fatalf("expected exactly one update, got extra %v", update.Kind)
			default:
			}
		})

		t.Run("refresh broadcasts to every subscriber", func(t *testing.T) {
			api := &tu.MockService{
				FavoritesFunc: func(ctx context.Context, userID string) ([]string, error) {
					return []string{"m1"}, nil
				},
			}
			sync := NewSynchronizer(api, newSignedInStore(t), nil)
			first := sync.Subscribe()
			second := sync.Subscribe()

			sync.Refresh(ctx)

			for i, ch := range []<-chan Update{first, second} {
				select {
				case update := <-ch:
					if update.Kind != Refreshed {
						t.Errorf("subscriber %d: expected Refreshed, got %v", i, update.Kind)
					}
					if len(update.Favorites) != 1 {
						t.Errorf("subscriber %d: expected snapshot of 1, got %v", i, update.Favorites)
					}
				default:
					t.Errorf("subscriber %d: expected a buffered update", i)
				}
			}
		})
	})
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Uninitialized: "uninitialized",
		Loading:       "loading",
		Ready:         "ready",
		Mutating:      "mutating",
		State(99):     "",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
