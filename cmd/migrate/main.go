// Command migrate manages the procurement schema: apply, revert, step,
// inspect or reset the SQL migrations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/config"
	"github.com/helixir/procurement-service/internal/database"
	"github.com/helixir/procurement-service/internal/observability"
)

type options struct {
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	status  bool
	drop    bool
	yes     bool
	dir     string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.BoolVar(&o.up, "up", false, "apply every pending migration")
	fs.BoolVar(&o.down, "down", false, "revert every migration (needs -yes)")
	fs.IntVar(&o.steps, "steps", 0, "apply N migrations, or revert when N is negative")
	fs.BoolVar(&o.version, "version", false, "print the recorded schema version")
	fs.IntVar(&o.force, "force", -1, "record version V as clean without running it")
	fs.BoolVar(&o.status, "status", false, "print version, dirty flag and whether anything ran")
	fs.BoolVar(&o.drop, "drop", false, "drop every object in the schema (needs -yes)")
	fs.BoolVar(&o.yes, "yes", false, "confirm -down or -drop")
	fs.StringVar(&o.dir, "path", "", "migrations directory (default from config)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	chosen := 0
	for _, set := range []bool{o.up, o.down, o.steps != 0, o.version, o.force >= 0, o.status, o.drop} {
		if set {
			chosen++
		}
	}
	switch {
	case chosen == 0:
		fs.Usage()
		return o, errors.New("choose one of -up, -down, -steps, -version, -force, -status, -drop")
	case chosen > 1:
		return o, errors.New("only one action per invocation")
	case (o.down || o.drop) && !o.yes:
		return o, errors.New("refusing destructive action without -yes")
	}
	return o, nil
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.dir == "" {
		opts.dir = cfg.Database.MigrationPath
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
	logger = observability.WithComponent(logger, "migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db, opts.dir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Error().Err(err).Msg("closing migrator")
		}
	}()

	if err := apply(migrator, opts, logger); err != nil {
		return err
	}
	return report(migrator, logger)
}

// apply runs the selected action. Read-only actions do nothing here and
// rely on the report that follows.
func apply(mg *database.Migrator, o options, logger zerolog.Logger) error {
	switch {
	case o.up:
		return mg.Up()
	case o.down:
		return mg.Down()
	case o.steps != 0:
		return mg.Steps(o.steps)
	case o.force >= 0:
		return mg.Force(o.force)
	case o.drop:
		if err := mg.DropAll(); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		logger.Info().Msg("schema emptied")
	}
	return nil
}

func report(mg *database.Migrator, logger zerolog.Logger) error {
	st, err := mg.Status()
	if err != nil {
		return err
	}
	if !st.Applied {
		logger.Info().Msg("no migration recorded")
		return nil
	}
	logger.Info().
		Uint("version", st.Version).
		Bool("dirty", st.Dirty).
		Msg("schema version")
	return nil
}
