package models

import "fmt"

// Genre represents a movie genre with its catalog description.
type Genre struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// Director represents a movie director.
type Director struct {
	Name  string `json:"Name"`
	Bio   string `json:"Bio"`
	Birth string `json:"Birth,omitempty"`
}

// Movie represents a catalog movie record. Read-only from the client's
// perspective; fetched on demand and never persisted locally.
type Movie struct {
	ID          string   `json:"_id"`
	Title       string   `json:"Title"`
	Description string   `json:"Description"`
	Genre       Genre    `json:"Genre"`
	Director    Director `json:"Director"`
	ImagePath   string   `json:"ImagePath,omitempty"`
	Featured    bool     `json:"Featured,omitempty"`
}

// User represents a backend user record. Password is write-only: the
// backend never echoes it and the client never stores it.
type User struct {
	ID             string   `json:"_id,omitempty"`
	Username       string   `json:"Username"`
	Password       string   `json:"Password,omitempty"`
	Email          string   `json:"Email,omitempty"`
	Birthday       string   `json:"Birthday,omitempty"`
	FavoriteMovies []string `json:"FavoriteMovies,omitempty"`
}

// HasFavorite reports whether movieID is in the user's favorites list.
func (u *User) HasFavorite(movieID string) bool {
	for _, id := range u.FavoriteMovies {
		if id == movieID {
			return true
		}
	}
	return false
}

// Session is the (user snapshot, bearer token) pair returned by login and
// persisted in the session store.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credentials is the login request payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both credential fields are present.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("missing username")
	}
	if c.Password == "" {
		return fmt.Errorf("missing password")
	}
	return nil
}

// Registration is the account creation request payload.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Birthday string `json:"birthday,omitempty"`
}

// Validate checks the required registration fields.
func (r Registration) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("missing username")
	}
	if r.Password == "" {
		return fmt.Errorf("missing password")
	}
	if r.Email == "" {
		return fmt.Errorf("missing email")
	}
	return nil
}

// ProfileUpdate is a partial user update payload. Zero-valued fields are
// omitted from the request body.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
	Birthday string `json:"birthday,omitempty"`
}

// Empty reports whether the patch carries no changes.
func (p ProfileUpdate) Empty() bool {
	return p == ProfileUpdate{}
}
