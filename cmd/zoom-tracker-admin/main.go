// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the operator CLI for the Zoom tracker: first-run setup,
// data reset and schema migrations.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// requiredEnv must be set before the tracker can complete the OAuth flow.
var requiredEnv = []string{
	"ZOOM_CLIENT_ID",
	"ZOOM_CLIENT_SECRET",
	"ZOOM_ACCOUNT_ID",
	"ZOOM_REDIRECT_URI",
}

var databaseURLFlag = &cli.StringFlag{
	Name:    "database-url",
	Usage:   "PostgreSQL connection string",
	EnvVars: []string{"DATABASE_URL"},
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error reading .env file: %v\n", err)
	}
	logging.InitStructureLogConfig()

	if err := newApp().Run(os.Args); err != nil {
		slog.With(logging.ErrKey, err).Error("command failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "zoom-tracker-admin",
		Usage: "administer the Zoom tracker",
		Commands: []*cli.Command{
			setupCommand(),
			clearCommand(),
			migrateCommand(),
		},
	}
}

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "check configuration, create the data directories and migrate the database",
		Flags: []cli.Flag{
			databaseURLFlag,
			&cli.StringFlag{Name: "data-dir", Value: constants.DefaultDataDir, EnvVars: []string{"DATA_DIR"}},
			&cli.StringFlag{Name: "recordings-dir", Value: constants.DefaultRecordingsDir, EnvVars: []string{"RECORDINGS_DIR"}},
		},
		Action: func(c *cli.Context) error {
			if missing := missingEnv(os.Getenv); len(missing) > 0 {
				return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
			}
			for _, dir := range []string{c.String("data-dir"), c.String("recordings-dir")} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create %s: %w", dir, err)
				}
				slog.Info("directory ready", "path", dir)
			}
			if c.String("database-url") == "" {
				slog.Warn("DATABASE_URL not set, skipping migrations")
				return nil
			}
			return migrate(c, store.MigrateUp)
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "delete all meetings, participants and recordings",
		Flags: []cli.Flag{
			databaseURLFlag,
			&cli.BoolFlag{Name: "tokens", Usage: "also delete stored OAuth tokens"},
		},
		Action: func(c *cli.Context) error {
			db, err := openStore(c)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return store.Clear(c.Context, db, c.Bool("tokens"))
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "apply or revert schema migrations",
		ArgsUsage: "up|down",
		Flags:     []cli.Flag{databaseURLFlag},
		Action: func(c *cli.Context) error {
			direction := store.MigrateDirection(c.Args().First())
			switch direction {
			case store.MigrateUp, store.MigrateDown:
			case "":
				direction = store.MigrateUp
			default:
				return cli.Exit(fmt.Sprintf("unknown direction %q, expected up or down", direction), 2)
			}
			return migrate(c, direction)
		},
	}
}

func openStore(c *cli.Context) (*sqlx.DB, error) {
	dsn := c.String("database-url")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return store.Open(c.Context, dsn)
}

func migrate(c *cli.Context, direction store.MigrateDirection) error {
	db, err := openStore(c)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return store.Migrate(db.DB, direction)
}

// missingEnv lists the required variables lookup reports as empty.
func missingEnv(lookup func(string) string) []string {
	var missing []string
	for _, name := range requiredEnv {
		if strings.TrimSpace(lookup(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
