package main

import (
	"context"

	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/session"
	"github.com/urfave/cli/v3"
)

// AuthRegister creates a new account. Registration does not log the user
// in; a separate login issues the session token.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	reg := models.Registration{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
		Email:    cmd.String("email"),
		Birthday: cmd.String("birthday"),
	}

	r.logger.Info("registering account", "username", reg.Username)

	user, err := r.api.Register(ctx, reg)
	if err != nil {
		return err
	}

	r.writePlain("✓ Account created for %s\n", user.Username)
	return r.writePlain("Run 'myflix auth login' to sign in\n")
}

// AuthLogin exchanges credentials for a session and persists it. The
// session is stored before any output so a crash mid-command never loses
// a successful login.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
	}

	r.logger.Info("logging in", "username", creds.Username)

	sess, err := r.api.Login(ctx, creds)
	if err != nil {
		return err
	}

	if err := session.Save(r.store, sess); err != nil {
		return err
	}

	return r.writePlain("✓ Logged in as %s\n", sess.User.Username)
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports whether a session is stored and for whom.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	user, ok := session.User(r.store)
	if !ok {
		return r.writePlain("✗ Not logged in\n")
	}

	r.writePlain("✓ Logged in as %s\n", user.Username)
	if _, ok := session.Token(r.store); !ok {
		r.writePlain("⚠ Session token missing; run 'myflix auth login' again\n")
	}
	return nil
}
