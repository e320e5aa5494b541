package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/HammerMeetNail/secretapp/internal/config"
	"github.com/HammerMeetNail/secretapp/internal/database"
	"github.com/HammerMeetNail/secretapp/internal/logging"
)

const usage = `Usage: migrate [flags] <command>

Commands:
  up          apply all pending migrations
  down        roll back every migration
  steps N     apply (N > 0) or roll back (N < 0) N migrations
  force V     set the version without running migrations (clears dirty state)
  version     print the current version and dirty flag

Flags:
`

func main() {
	flags := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	envFile := flags.String("env-file", ".env", "dotenv file to seed the environment from")
	dir := flags.String("dir", "", "migrations directory (defaults to MIGRATIONS_DIR)")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	if err := run(*envFile, *dir, flags.Args()); err != nil {
		logging.Error("Migration failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(envFile, dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if dir == "" {
		dir = cfg.Server.MigrationsDir
	}

	migrator, err := database.NewMigrator(cfg.Database.DSN(), dir)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	switch args[0] {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		var n int
		if n, err = intArg(args); err == nil {
			err = migrator.Steps(n)
		}
	case "force":
		var v int
		if v, err = intArg(args); err == nil {
			err = migrator.Force(v)
		}
	case "version", "status":
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		return err
	}

	status, err := migrator.Status()
	if err != nil {
		return err
	}
	if !status.Applied {
		fmt.Println("no migrations applied")
		return nil
	}
	fmt.Printf("version %d (dirty: %t)\n", status.Version, status.Dirty)
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a numeric argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid %s argument %q: %w", args[0], args[1], err)
	}
	return n, nil
}
