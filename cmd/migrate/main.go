package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shoefinderz-backend/pkg/config"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	"github.com/angelmondragon/shoefinderz-backend/pkg/migrate"
)

type flags struct {
	cmd     string
	dir     string
	name    string
	version string
}

// offline commands run without config or a database.
var offline = map[string]func(flags) error{
	"create": func(f flags) error {
		if f.name == "" {
			return errors.New("-name is required for create")
		}
		paths, err := migrate.CreateSQLMigration(f.dir, f.name, time.Now())
		for _, p := range paths {
			fmt.Println("created", p)
		}
		return err
	},
	"validate": func(flags) error {
		if err := migrate.ValidateEmbedded(); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	},
}

func main() {
	var f flags
	flag.StringVar(&f.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&f.dir, "dir", migrate.DefaultDir, "migrations source tree, used by create")
	flag.StringVar(&f.name, "name", "", "migration name, used by create")
	flag.StringVar(&f.version, "version", "", "target version YYYYMMDDHHMMSS, used by version")
	flag.Parse()

	if cmd, ok := offline[f.cmd]; ok {
		if err := cmd(f); err != nil {
			fmt.Fprintf(os.Stderr, "migrate %s: %v\n", f.cmd, err)
			os.Exit(1)
		}
		return
	}

	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": f.cmd})

	if err := run(ctx, cfg, logg, f); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, f flags) (err error) {
	client, err := db.New(ctx, cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, client.Close()) }()

	sqlDB, err := client.SQL()
	if err != nil {
		return err
	}
	dialect := client.Dialect()
	logg.Info(logg.WithField(ctx, "dialect", dialect), "migrate ready")

	switch f.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, dialect, f.cmd)
	case "version":
		return version(ctx, sqlDB, dialect, f.version)
	default:
		return fmt.Errorf("unknown -cmd %q", f.cmd)
	}
}

func version(ctx context.Context, sqlDB *sql.DB, dialect, target string) error {
	if target != "" {
		return migrate.MigrateToVersion(ctx, sqlDB, dialect, target)
	}
	current, err := migrate.Version(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}
	fmt.Println("current version:", current)
	return nil
}
