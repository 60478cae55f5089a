package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/myflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints the user's favorite movies by title.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	if err := r.sync.Refresh(ctx); err != nil {
		return err
	}

	ids := r.sync.Favorites()
	if cmd.Bool("json") {
		return r.writeJSON(ids, true)
	}

	if len(ids) == 0 {
		return r.writePlain("No favorites yet\n")
	}

	catalog, err := r.api.Movies(ctx)
	if err != nil {
		return err
	}

	titles := make(map[string]string, len(catalog))
	for _, movie := range catalog {
		titles[movie.ID] = movie.Title
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(ids)))
	for i, id := range ids {
		title, ok := titles[id]
		if !ok {
			title = id
		}
		r.writePlain("%d. %s\n", i+1, title)
	}
	return nil
}

// FavoriteToggle adds or removes a favorite by movie title.
func (r *Runner) FavoriteToggle(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	if title == "" {
		return fmt.Errorf("%w: movie title is required", shared.ErrMissingArgument)
	}

	if _, err := r.requireSession(); err != nil {
		return err
	}

	if err := r.sync.Refresh(ctx); err != nil {
		return err
	}

	movie, err := r.api.MovieByTitle(ctx, title)
	if err != nil {
		return err
	}
	if movie.ID == "" {
		return fmt.Errorf("%w: no movie titled %q", shared.ErrInvalidArgument, title)
	}

	updates := r.sync.Subscribe()
	if err := r.sync.Toggle(ctx, *movie); err != nil {
		return err
	}

	select {
	case update := <-updates:
		return r.writePlain("✓ %s\n", update.Notice.Message)
	default:
		return nil
	}
}
