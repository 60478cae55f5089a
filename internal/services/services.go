package services

import (
	"context"

	"github.com/desertthunder/myflix/internal/models"
)

// Service defines the client-side contract for the myFlix catalog API.
// Implemented by [Client]; mocked in tests.
type Service interface {
	// Register creates a new user account. No authentication required.
	Register(ctx context.Context, reg models.Registration) (*models.User, error)

	// Login exchanges credentials for a (user, token) session pair.
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)

	// Movies retrieves the full movie catalog. Requires authentication.
	Movies(ctx context.Context) ([]models.Movie, error)

	// MovieByTitle retrieves a single movie record by its exact title.
	MovieByTitle(ctx context.Context, title string) (*models.Movie, error)

	// Genre retrieves a genre record by name.
	Genre(ctx context.Context, name string) (*models.Genre, error)

	// Director retrieves a director record by name.
	Director(ctx context.Context, name string) (*models.Director, error)

	// User retrieves a user record by its opaque ID. Requires authentication.
	User(ctx context.Context, userID string) (*models.User, error)

	// Favorites retrieves the user's favorite movie IDs. Requires authentication.
	Favorites(ctx context.Context, userID string) ([]string, error)

	// AddFavorite marks a movie as a favorite and returns the updated
	// user record when the backend provides one. Requires authentication.
	AddFavorite(ctx context.Context, userID, movieID string) (*models.User, error)

	// RemoveFavorite unmarks a favorite movie. Requires authentication.
	RemoveFavorite(ctx context.Context, userID, movieID string) (*models.User, error)

	// UpdateUser applies a partial profile update. Requires authentication.
	UpdateUser(ctx context.Context, userID string, patch models.ProfileUpdate) (*models.User, error)

	// DeleteUser permanently deletes the account. Requires authentication.
	DeleteUser(ctx context.Context, userID string) error
}
