// myFlix API implementation of [Service]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the hosted myFlix backend.
const DefaultBaseURL = "https://letflix-0d183cd4a94e.herokuapp.com"

// Client implements [Service] against a myFlix backend.
//
// Failure policy: transport errors, non-2xx statuses and undecodable
// bodies are logged with full detail and collapsed into the single
// [shared.ErrTryAgainLater] sentinel. Callers cannot distinguish an auth
// failure from an outage; they only get a retry-worthy message. A missing
// session short-circuits to [shared.ErrNotAuthenticated] without issuing
// the request.
//
// No retries, no deduplication, no explicit timeout; the transport's
// defaults apply.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     *log.Logger
}

var _ Service = (*Client)(nil)

// NewClient creates a new API client. The base URL defaults to
// [DefaultBaseURL], the HTTP client to [http.DefaultClient] and the
// logger to a stderr logger.
func NewClient(baseURL string, client *http.Client, tokens oauth2.TokenSource, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: client,
		tokens:     tokens,
		logger:     logger,
	}
}

// doRequest performs one HTTP request and decodes the JSON response into
// result. An empty response body is treated as an empty object: result is
// left at its zero value and no error is returned.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if authed {
		tok, err := c.tokens.Token()
		if err != nil {
			// No stored session; don't issue a doomed request.
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("%s %s failed: %v", method, path, err)
		return shared.ErrTryAgainLater
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Errorf("%s %s: failed to read response: %v", method, path, err)
		return shared.ErrTryAgainLater
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Errorf("backend returned code %d for %s %s, body was: %s", resp.StatusCode, method, path, string(data))
		return shared.ErrTryAgainLater
	}

	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		c.logger.Errorf("%s %s: failed to decode response: %v, body was: %s", method, path, err, string(data))
		return shared.ErrTryAgainLater
	}

	return nil
}

// Register creates a new user account via POST /users.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	var user models.User
	if err := c.doRequest(ctx, http.MethodPost, "/users", reg, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a session via POST /login.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	var sess models.Session
	if err := c.doRequest(ctx, http.MethodPost, "/login", creds, &sess, false); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Movies retrieves the catalog via GET /movies.
func (c *Client) Movies(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := c.doRequest(ctx, http.MethodGet, "/movies", nil, &movies, true); err != nil {
		return nil, err
	}
	return movies, nil
}

// MovieByTitle retrieves a movie record via GET /movies/{title}.
func (c *Client) MovieByTitle(ctx context.Context, title string) (*models.Movie, error) {
	var movie models.Movie
	endpoint := fmt.Sprintf("/movies/%s", url.PathEscape(title))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &movie, false); err != nil {
		return nil, err
	}
	return &movie, nil
}

// Genre retrieves a genre record via GET /movies/genres/{name}.
func (c *Client) Genre(ctx context.Context, name string) (*models.Genre, error) {
	var genre models.Genre
	endpoint := fmt.Sprintf("/movies/genres/%s", url.PathEscape(name))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &genre, false); err != nil {
		return nil, err
	}
	return &genre, nil
}

// Director retrieves a director record via GET /directors/{name}.
func (c *Client) Director(ctx context.Context, name string) (*models.Director, error) {
	var director models.Director
	endpoint := fmt.Sprintf("/directors/%s", url.PathEscape(name))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &director, false); err != nil {
		return nil, err
	}
	return &director, nil
}

// User retrieves a user record via GET /users/{id}.
func (c *Client) User(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	endpoint := fmt.Sprintf("/users/%s", url.PathEscape(userID))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// Favorites retrieves the favorite movie IDs via GET /users/{id}/favorites.
func (c *Client) Favorites(ctx context.Context, userID string) ([]string, error) {
	var favorites []string
	endpoint := fmt.Sprintf("/users/%s/favorites", url.PathEscape(userID))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &favorites, true); err != nil {
		return nil, err
	}
	return favorites, nil
}

// AddFavorite marks a movie as favorite via POST /users/{id}/favorites/{movieId}.
func (c *Client) AddFavorite(ctx context.Context, userID, movieID string) (*models.User, error) {
	var user models.User
	endpoint := fmt.Sprintf("/users/%s/favorites/%s", url.PathEscape(userID), url.PathEscape(movieID))
	if err := c.doRequest(ctx, http.MethodPost, endpoint, nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// RemoveFavorite unmarks a favorite via DELETE /users/{id}/favorites/{movieId}.
func (c *Client) RemoveFavorite(ctx context.Context, userID, movieID string) (*models.User, error) {
	var user models.User
	endpoint := fmt.Sprintf("/users/%s/favorites/%s", url.PathEscape(userID), url.PathEscape(movieID))
	if err := c.doRequest(ctx, http.MethodDelete, endpoint, nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial profile update via PUT /users/{id}.
func (c *Client) UpdateUser(ctx context.Context, userID string, patch models.ProfileUpdate) (*models.User, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: empty profile update", shared.ErrInvalidArgument)
	}

	var user models.User
	endpoint := fmt.Sprintf("/users/%s", url.PathEscape(userID))
	if err := c.doRequest(ctx, http.MethodPut, endpoint, patch, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes the account via DELETE /users/{id}.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	endpoint := fmt.Sprintf("/users/%s", url.PathEscape(userID))
	return c.doRequest(ctx, http.MethodDelete, endpoint, nil, nil, true)
}
