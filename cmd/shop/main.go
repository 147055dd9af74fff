package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/internal/storefront"
	"github.com/angelmondragon/shoefinderz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	"github.com/angelmondragon/shoefinderz-backend/pkg/storeclient"
	"github.com/angelmondragon/shoefinderz-backend/pkg/tracing"
)

var errUsage = errors.New("missing -sheet")

func main() {
	_ = godotenv.Load()

	sheetPath := flag.String("sheet", "", "path to a YAML order sheet")
	dryRun := flag.Bool("dry-run", false, "print totals without placing the order")
	logout := flag.Bool("logout", false, "revoke and delete the stored session")
	flag.Parse()

	cfg, err := config.LoadShop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	err = run(cfg, *sheetPath, *dryRun, *logout)
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	case err != nil:
		fail(err)
	}
}

func run(cfg *config.ShopConfig, sheetPath string, dryRun, logout bool) (err error) {
	logg := logger.New(logger.Options{
		ServiceName: "shop",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tracerProvider, err := tracing.Setup(ctx, tracing.Options{ServiceName: "shoefinderz-shop", Config: cfg.Tracing})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		err = multierr.Append(err, tracerProvider.Shutdown(flushCtx))
	}()

	client, err := storeclient.NewClient(cfg.APIBaseURL, storeclient.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return err
	}
	sessions, err := storefront.NewFileStore(cfg.SessionFile)
	if err != nil {
		return err
	}
	policy, err := pricing.ParseTaxPolicy(cfg.TaxPolicy)
	if err != nil {
		return err
	}
	app, err := storefront.New(storefront.Params{Backend: client, Sessions: sessions, Logger: logg, Policy: policy})
	if err != nil {
		return err
	}

	if logout {
		if err := app.Restore(ctx); err != nil {
			return err
		}
		if err := app.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil
	}

	if sheetPath == "" {
		return errUsage
	}
	f, err := os.Open(sheetPath)
	if err != nil {
		return err
	}
	sheet, err := ParseSheet(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	r := &runner{app: app, out: os.Stdout, dryRun: dryRun}
	_, err = r.Run(ctx, sheet)
	return err
}

func fail(err error) {
	if typed := pkgerrors.As(err); typed != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", typed.Code(), typed.Message())
		if details := typed.Details(); details != nil {
			fmt.Fprintf(os.Stderr, "details: %v\n", details)
		}
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
