// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your myFlix account session",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create a new myFlix account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "birthday",
						Usage: "Birthday (YYYY-MM-DD)",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Log in and persist the session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session state",
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog browsing operations
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all movies in the catalog",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.MoviesList,
			},
			{
				Name:  "get",
				Usage: "Show a single movie by exact title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MovieGet,
			},
			{
				Name:  "genre",
				Usage: "Show a genre description by name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.GenreGet,
			},
			{
				Name:  "director",
				Usage: "Show a director's bio by name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.DirectorGet,
			},
		},
	}
}

// profileCommand handles user profile operations
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View and manage your profile",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show your profile",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Update profile fields",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "username",
						Usage: "New username",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "New password",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "New email address",
					},
					&cli.StringFlag{
						Name:  "birthday",
						Usage: "New birthday (YYYY-MM-DD)",
					},
				},
				Action: r.ProfileUpdate,
			},
			{
				Name:  "delete",
				Usage: "Permanently delete your account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm deletion without prompting",
					},
				},
				Action: r.ProfileDelete,
			},
		},
	}
}

// favoritesCommand handles favorite movie operations
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage your favorite movies",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your favorite movies",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.FavoritesList,
			},
			{
				Name:  "toggle",
				Usage: "Add or remove a movie from favorites by title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Action: r.FavoriteToggle,
			},
		},
	}
}

// exportCommand handles favorites/catalog export operations
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export your favorites or the full catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (json, csv, markdown, txt)",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export the whole catalog instead of favorites",
			},
			&cli.BoolFlag{
				Name:  "images",
				Usage: "Download poster images",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent image download workers",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Image downloads per second",
				Value: 5.0,
			},
		},
		Action: r.Export,
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing the catalog",
		Action:  r.TUI,
	}
}
