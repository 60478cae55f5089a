package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/session"
	"github.com/desertthunder/myflix/internal/shared"
	tu "github.com/desertthunder/myflix/internal/testing"
	"golang.org/x/oauth2"
)

func newTestStore(token string) session.Store {
	store := session.NewMemStore()
	if token != "" {
		store.Set(session.KeyToken, token)
	}
	return store
}

func newTestClient(serverURL string, store session.Store) *Client {
	return NewClient(serverURL, nil, session.NewTokenSource(store), nil)
}

func TestClient(t *testing.T) {
	t.Run("NewClient", func(t *testing.T) {
		t.Run("applies defaults", func(t *testing.T) {
			client := NewClient("", nil, nil, nil)

			if client.baseURL != DefaultBaseURL {
				t.Errorf("expected default base URL, got %s", client.baseURL)
			}
			if client.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if client.logger == nil {
				t.Error("expected default logger to be set")
			}
		})
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("posts the exact payload to /users", func(t *testing.T) {
			var gotPath, gotMethod string
			var gotBody map[string]string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotMethod = r.Method
				data, _ := io.ReadAll(r.Body)
				json.Unmarshal(data, &gotBody)
				json.NewEncoder(w).Encode(models.User{ID: "u1", Username: "alice"})
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore(""))
			user, err := client.Register(context.Background(), models.Registration{
				Username: "alice",
				Password: "hunter2",
				Email:    "alice@example.com",
				Birthday: "1990-01-02",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotMethod != http.MethodPost || gotPath != "/users" {
				t.Errorf("expected POST /users, got %s %s", gotMethod, gotPath)
			}
			if gotBody["username"] != "alice" || gotBody["password"] != "hunter2" {
				t.Errorf("unexpected payload: %v", gotBody)
			}
			if gotBody["email"] != "alice@example.com" || gotBody["birthday"] != "1990-01-02" {
				t.Errorf("unexpected payload: %v", gotBody)
			}
			if user.ID != "u1" {
				t.Errorf("expected decoded user, got %+v", user)
			}
		})

		t.Run("rejects missing fields without a request", func(t *testing.T) {
			client := newTestClient("http://unreachable.invalid", newTestStore(""))

			_, err := client.Register(context.Background(), models.Registration{Username: "alice"})
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("decodes the session pair", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/login" {
					t.Errorf("expected /login, got %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(models.Session{
					User:  models.User{ID: "u1", Username: "alice"},
					Token: "jwt-token",
				})
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore(""))
			sess, err := client.Login(context.Background(), models.Credentials{Username: "alice", Password: "hunter2"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if sess.Token != "jwt-token" {
				t.Errorf("expected token to be decoded, got %q", sess.Token)
			}
			if sess.User.ID != "u1" {
				t.Errorf("expected user to be decoded, got %+v", sess.User)
			}
		})
	})

	t.Run("authentication", func(t *testing.T) {
		t.Run("attaches the stored bearer token", func(t *testing.T) {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Write([]byte("[]"))
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore("abc123"))
			if _, err := client.Movies(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotAuth != "Bearer abc123" {
				t.Errorf("expected 'Bearer abc123', got %q", gotAuth)
			}
		})

		t.Run("reads the token fresh on every call", func(t *testing.T) {
			var seen []string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = append(seen, r.Header.Get("Authorization"))
				w.Write([]byte("[]"))
			}))
			defer server.Close()

			store := newTestStore("first")
			client := newTestClient(server.URL, store)

			client.Movies(context.Background())
			store.Set(session.KeyToken, "second")
			client.Movies(context.Background())

			if len(seen) != 2 || seen[0] != "Bearer first" || seen[1] != "Bearer second" {
				t.Errorf("expected fresh token per request, got %v", seen)
			}
		})

		t.Run("accepts any token source", func(t *testing.T) {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Write([]byte("[]"))
			}))
			defer server.Close()

			static := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "static-token"})
			client := NewClient(server.URL, nil, static, nil)
			if _, err := client.Movies(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotAuth != "Bearer static-token" {
				t.Errorf("expected 'Bearer static-token', got %q", gotAuth)
			}
		})

		t.Run("missing session short-circuits without a request", func(t *testing.T) {
			requests := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore(""))
			_, err := client.Movies(context.Background())

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if requests != 0 {
				t.Errorf("expected no request to be issued, got %d", requests)
			}
		})
	})

	t.Run("path encoding", func(t *testing.T) {
		t.Run("escapes titles and names identically", func(t *testing.T) {
			var paths []string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				paths = append(paths, r.URL.EscapedPath())
				w.Write([]byte("{}"))
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore("tok"))
			client.MovieByTitle(context.Background(), "Se7en: A Tale")
			client.Genre(context.Background(), "Se7en: A Tale")

			if len(paths) != 2 {
				t.Fatalf("expected 2 requests, got %d", len(paths))
			}
			if paths[0] != "/movies/Se7en:%20A%20Tale" {
				t.Errorf("unexpected movie path: %s", paths[0])
			}
			if paths[1] != "/movies/genres/Se7en:%20A%20Tale" {
				t.Errorf("unexpected genre path: %s", paths[1])
			}
		})

		t.Run("escapes slashes in identifiers", func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				w.Write([]byte("{}"))
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore("tok"))
			client.Director(context.Background(), "a/b")

			if gotPath != "/directors/a%2Fb" {
				t.Errorf("expected escaped slash, got %s", gotPath)
			}
		})
	})

	t.Run("favorites routes", func(t *testing.T) {
		var gotMethod, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			json.NewEncoder(w).Encode(models.User{ID: "u1", FavoriteMovies: []string{"m1"}})
		}))
		defer server.Close()

		client := newTestClient(server.URL, newTestStore("tok"))

		t.Run("add posts to the nested path", func(t *testing.T) {
			user, err := client.AddFavorite(context.Background(), "u1", "m1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotMethod != http.MethodPost || gotPath != "/users/u1/favorites/m1" {
				t.Errorf("expected POST /users/u1/favorites/m1, got %s %s", gotMethod, gotPath)
			}
			if !user.HasFavorite("m1") {
				t.Error("expected updated user to carry the favorite")
			}
		})

		t.Run("remove deletes the nested path", func(t *testing.T) {
			if _, err := client.RemoveFavorite(context.Background(), "u1", "m1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotMethod != http.MethodDelete || gotPath != "/users/u1/favorites/m1" {
				t.Errorf("expected DELETE /users/u1/favorites/m1, got %s %s", gotMethod, gotPath)
			}
		})
	})

	t.Run("error collapse", func(t *testing.T) {
		t.Run("non-2xx becomes try-again-later", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore("expired"))
			_, err := client.Movies(context.Background())

			if !errors.Is(err, shared.ErrTryAgainLater) {
				t.Errorf("expected ErrTryAgainLater, got %v", err)
			}
		})

		t.Run("transport failure becomes try-again-later", func(t *testing.T) {
			httpClient := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			client := NewClient("http://example.test", httpClient, session.NewTokenSource(newTestStore("tok")), nil)

			_, err := client.Movies(context.Background())
			if !errors.Is(err, shared.ErrTryAgainLater) {
				t.Errorf("expected ErrTryAgainLater, got %v", err)
			}
		})

		t.Run("undecodable body becomes try-again-later", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore("tok"))
			_, err := client.Movies(context.Background())

			if !errors.Is(err, shared.ErrTryAgainLater) {
				t.Errorf("expected ErrTryAgainLater, got %v", err)
			}
		})

		t.Run("unreadable body becomes try-again-later", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}}
			httpClient := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			client := NewClient("http://example.test", httpClient, session.NewTokenSource(newTestStore("tok")), nil)

			_, err := client.Movies(context.Background())
			if !errors.Is(err, shared.ErrTryAgainLater) {
				t.Errorf("expected ErrTryAgainLater, got %v", err)
			}
		})
	})

	t.Run("empty bodies", func(t *testing.T) {
		t.Run("2xx with no body yields zero value", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore("tok"))
			user, err := client.User(context.Background(), "u1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.ID != "" || user.Username != "" {
				t.Errorf("expected zero-value user, got %+v", user)
			}
		})

		t.Run("delete succeeds with empty response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore("tok"))
			if err := client.DeleteUser(context.Background(), "u1"); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	})

	t.Run("UpdateUser", func(t *testing.T) {
		t.Run("rejects an empty patch", func(t *testing.T) {
			client := newTestClient("http://unreachable.invalid", newTestStore("tok"))

			_, err := client.UpdateUser(context.Background(), "u1", models.ProfileUpdate{})
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("puts the patch and decodes the user", func(t *testing.T) {
			var gotMethod string
			var gotBody map[string]string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				data, _ := io.ReadAll(r.Body)
				json.Unmarshal(data, &gotBody)
				json.NewEncoder(w).Encode(models.User{ID: "u1", Email: "new@example.com"})
			}))
			defer server.Close()

			client := newTestClient(server.URL, newTestStore("tok"))
			user, err := client.UpdateUser(context.Background(), "u1", models.ProfileUpdate{Email: "new@example.com"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotMethod != http.MethodPut {
				t.Errorf("expected PUT, got %s", gotMethod)
			}
			if _, ok := gotBody["username"]; ok {
				t.Error("expected zero-valued fields to be omitted from the patch")
			}
			if user.Email != "new@example.com" {
				t.Errorf("expected decoded user, got %+v", user)
			}
		})
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		client := newTestClient(server.URL, newTestStore("tok"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := client.Movies(ctx); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}
