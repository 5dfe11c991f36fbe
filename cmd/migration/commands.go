package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/golf-league/internal/config"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/spf13/cobra"
)

var defaultMigrationDirs = []string{"./db/migrations", "/app/db/migrations"}

type runner struct {
	dir    string
	logger *logging.Logger
}

func newRootCommand(logger *logging.Logger) *cobra.Command {
	r := &runner{logger: logger}

	root := &cobra.Command{
		Use:           "migration",
		Short:         "Manage the golf league postgres schema",
		Long:          "Reads DB_URL (and DB_BINARY_PARAMETERS) from the environment or .env.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&r.dir, "dir", "", "migrations directory (default $MIGRATIONS_DIR, then ./db/migrations, then /app/db/migrations)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: r.with(func(_ *cobra.Command, m *migrate.Migrate, _ []string) error {
				if err := skipNoChange(m.Up()); err != nil {
					return err
				}
				r.logger.Info("migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back the last steps migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: r.with(func(_ *cobra.Command, m *migrate.Migrate, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}
				if err := skipNoChange(m.Steps(-steps)); err != nil {
					return err
				}
				r.logger.Info("migrations rolled back", "steps", steps)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied version and dirty flag",
			Args:  cobra.NoArgs,
			RunE: r.with(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Fprintln(cmd.OutOrStdout(), "version: none\ndirty: false")
					return nil
				}
				if err != nil {
					return fmt.Errorf("read version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty: %t\n", version, dirty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: r.with(func(_ *cobra.Command, m *migrate.Migrate, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				if err := m.Force(int(version)); err != nil {
					return fmt.Errorf("force version %d: %w", version, err)
				}
				r.logger.Info("forced version", "version", version)
				return nil
			}),
		},
		&cobra.Command{
			Use:     "goto <version>",
			Aliases: []string{"migrate"},
			Short:   "Migrate up or down to an exact version",
			Args:    cobra.ExactArgs(1),
			RunE: r.with(func(_ *cobra.Command, m *migrate.Migrate, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				if err := skipNoChange(m.Migrate(version)); err != nil {
					return err
				}
				r.logger.Info("migrated", "version", version)
				return nil
			}),
		},
	)
	return root
}

// with opens the migrator for one command and closes it afterwards.
func (r *runner) with(run func(*cobra.Command, *migrate.Migrate, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		dbURL, err := config.DatabaseURL()
		if err != nil {
			return err
		}
		if dbURL == "" {
			return errors.New("DB_URL is required")
		}
		dir, err := migrationsDir(r.dir)
		if err != nil {
			return err
		}

		m, err := migrate.New("file://"+filepath.ToSlash(dir), dbURL)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			srcErr, dbErr := m.Close()
			if err := errors.Join(srcErr, dbErr); err != nil {
				r.logger.Warn("close migrator", "error", err)
			}
		}()

		r.logger.Debug("migrator ready", "dir", dir)
		return run(cmd, m, args)
	}
}

func skipNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func parseVersion(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q", raw)
	}
	return uint(v), nil
}

// migrationsDir returns the first existing directory among the flag,
// MIGRATIONS_DIR and the defaults.
func migrationsDir(flag string) (string, error) {
	candidates := append([]string{flag, os.Getenv("MIGRATIONS_DIR")}, defaultMigrationDirs...)
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", errors.New("migrations directory not found")
}
