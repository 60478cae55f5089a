package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/myflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// MoviesList prints the full movie catalog.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	movies, err := r.api.Movies(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	// Best effort; the list renders without markers when it fails.
	if err := r.sync.Refresh(ctx); err != nil {
		r.logger.Debugf("favorites refresh failed: %v", err)
	}

	r.writePlainHeader(fmt.Sprintf("myFlix Catalog (%d movies)", len(movies)))
	for i, movie := range movies {
		marker := " "
		if r.sync.IsFavorite(movie.ID) {
			marker = "♥"
		}
		r.writePlain("%s %d. %s", marker, i+1, movie.Title)
		if movie.Director.Name != "" {
			r.writePlain(" — dir. %s", movie.Director.Name)
		}
		if movie.Genre.Name != "" {
			r.writePlain(" [%s]", movie.Genre.Name)
		}
		r.writePlain("\n")
	}

	return nil
}

// MovieGet prints one movie record by exact title.
func (r *Runner) MovieGet(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: title is required", shared.ErrMissingArgument)
	}

	movie, err := r.api.MovieByTitle(ctx, title)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, true)
	}

	r.writePlainHeader(movie.Title)
	r.writePlain("Director: %s\n", movie.Director.Name)
	r.writePlain("Genre: %s\n", movie.Genre.Name)
	r.writePlainln("%s", movie.Description)
	return nil
}

// GenreGet prints a genre description by name.
func (r *Runner) GenreGet(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: genre name is required", shared.ErrMissingArgument)
	}

	genre, err := r.api.Genre(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(genre, true)
	}

	r.writePlainHeader(genre.Name)
	r.writePlainln("%s", genre.Description)
	return nil
}

// DirectorGet prints a director's bio by name.
func (r *Runner) DirectorGet(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: director name is required", shared.ErrMissingArgument)
	}

	director, err := r.api.Director(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(director, true)
	}

	r.writePlainHeader(director.Name)
	if director.Birth != "" {
		r.writePlain("Born: %s\n", director.Birth)
	}
	r.writePlainln("%s", director.Bio)
	return nil
}
