// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// commonFlags are accepted by every command that talks to the API.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "Spotify username the command must operate on",
		},
		&cli.StringFlag{
			Name:  "passphrase",
			Usage: "Passphrase for the encrypted credential file",
		},
		&cli.BoolFlag{
			Name:  "clean-cache",
			Usage: "Drop all cached login sessions before running",
		},
	}
}

// exportCommand captures an account's library into a snapshot file
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Save playlists and liked songs to a snapshot file",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Snapshot file path (defaults to migrate.snapshot_path)",
			},
			&cli.BoolFlag{
				Name:  "select",
				Usage: "Pick which playlists to export interactively",
			},
			&cli.BoolFlag{
				Name:  "no-liked",
				Usage: "Skip the liked songs collection",
			},
		),
		Action: r.Export,
	}
}

// importCommand replays a snapshot file into an account
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Recreate playlists and liked songs from a snapshot file",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Snapshot file path (defaults to migrate.snapshot_path)",
			},
			&cli.BoolFlag{
				Name:  "select",
				Usage: "Pick which playlists to import interactively",
			},
			&cli.BoolFlag{
				Name:  "no-liked",
				Usage: "Skip the liked songs collection",
			},
		),
		Action: r.Import,
	}
}

// eraseCommand clears an account ahead of a re-import
func eraseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "erase",
		Usage: "Remove owned playlists and liked songs from an account",
		Flags: append(commonFlags(),
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Confirm the removal without prompting",
			},
			&cli.BoolFlag{
				Name:  "select",
				Usage: "Pick which playlists to erase interactively",
			},
			&cli.BoolFlag{
				Name:  "no-liked",
				Usage: "Leave liked songs in place",
			},
		),
		Action: r.Erase,
	}
}

// authCommand manages login sessions
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify login sessions",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  commonFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:  "logout",
				Usage: "Drop cached login sessions",
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Drop every cached session, not just --user",
					},
				),
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show which accounts have a cached session",
				Flags:  commonFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// setupCommand handles configuration and database initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create the config file and initialize the database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupInit,
			},
			{
				Name:  "credentials",
				Usage: "Store API credentials in a passphrase-encrypted file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:     "client-id",
						Usage:    "Spotify application client id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "client-secret",
						Usage:    "Spotify application client secret",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "redirect-uri",
						Usage: "OAuth redirect URI registered with the application",
					},
					&cli.StringFlag{
						Name:     "passphrase",
						Usage:    "Passphrase protecting the credential file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Credential file path",
						Value:   "credentials.enc",
					},
				},
				Action: r.SetupCredentials,
			},
		},
	}
}

// historyCommand shows recorded migration runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past export, import, and erase runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "account",
				Usage: "Only show runs for this account",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.History,
	}
}
