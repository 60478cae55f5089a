package session

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/shared"
	"golang.org/x/oauth2"
)

// Save persists a login session: the serialized user snapshot under
// [KeyUser], then the bearer token under [KeyToken]. Exactly these two
// keys are written, before any caller-side navigation happens.
func Save(s Store, sess *models.Session) error {
	if err := SaveUser(s, &sess.User); err != nil {
		return err
	}
	if err := s.Set(KeyToken, sess.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// SaveUser writes a refreshed user snapshot, leaving the token untouched.
// Called after profile updates and favorite mutations.
func SaveUser(s Store, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize user snapshot: %w", err)
	}
	if err := s.Set(KeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to persist user snapshot: %w", err)
	}
	return nil
}

// User returns the cached user snapshot, or false when no session exists
// or the snapshot cannot be decoded.
func User(s Store) (*models.User, bool) {
	raw, ok := s.Get(KeyUser)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}

// Token returns the stored bearer token, or false when absent.
func Token(s Store) (string, bool) {
	raw, ok := s.Get(KeyToken)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// TokenSource adapts a [Store] to [oauth2.TokenSource]. Token reads the
// stored bearer token fresh on every call, so a re-login is picked up by
// in-flight clients without rewiring.
type TokenSource struct {
	store Store
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// NewTokenSource creates a [TokenSource] reading from the given store.
func NewTokenSource(s Store) *TokenSource {
	return &TokenSource{store: s}
}

// Token returns the current bearer token, or [shared.ErrNotAuthenticated]
// when no session is stored.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	raw, ok := Token(ts.store)
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: raw}, nil
}
