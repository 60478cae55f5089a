package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/session"
	"github.com/desertthunder/myflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProfileShow prints the signed-in user's profile from the backend.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	cached, err := r.requireSession()
	if err != nil {
		return err
	}

	user, err := r.api.User(ctx, cached.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlainHeader(user.Username)
	r.writePlain("Email: %s\n", user.Email)
	if user.Birthday != "" {
		r.writePlain("Birthday: %s\n", user.Birthday)
	}
	r.writePlain("Favorites: %d\n", len(user.FavoriteMovies))
	return nil
}

// ProfileUpdate applies a partial profile update and refreshes the cached
// session snapshot with the server's response.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	cached, err := r.requireSession()
	if err != nil {
		return err
	}

	patch := models.ProfileUpdate{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
		Email:    cmd.String("email"),
		Birthday: cmd.String("birthday"),
	}
	if patch.Empty() {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	r.logger.Info("updating profile", "user", cached.Username)

	user, err := r.api.UpdateUser(ctx, cached.ID, patch)
	if err != nil {
		return err
	}

	if err := session.SaveUser(r.store, user); err != nil {
		return err
	}

	return r.writePlain("✓ User updated successfully!\n")
}

// ProfileDelete permanently deletes the account. Without --yes no request
// is issued. On success the local session is cleared.
func (r *Runner) ProfileDelete(ctx context.Context, cmd *cli.Command) error {
	cached, err := r.requireSession()
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		r.writePlain("This permanently deletes the account %q and cannot be undone.\n", cached.Username)
		return r.writePlain("Re-run with --yes to confirm\n")
	}

	r.logger.Warn("deleting account", "user", cached.Username)

	if err := r.api.DeleteUser(ctx, cached.ID); err != nil {
		return err
	}

	if err := r.store.Clear(); err != nil {
		r.logger.Warnf("account deleted but session cleanup failed: %v", err)
	}

	return r.writePlain("✓ Account deleted\n")
}
