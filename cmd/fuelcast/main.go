// Command fuelcast serves Kerala fuel price predictions.
//
// Usage:
//
//	fuelcast                 start the web form and JSON API on $PORT
//	fuelcast predict -date 2025-03-01 -district Kochi -fuel Petrol
//
// The dataset location and fit mode come from the environment (DATA_PATH,
// FIT_MODE); see internal/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ezoic/fuelcast/forecast"
	"github.com/ezoic/fuelcast/internal/config"
	"github.com/ezoic/fuelcast/internal/web"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
	"github.com/ezoic/fuelcast/pkg/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "fuelcast:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fcErrors.Wrap(err, "load config")
	}
	log.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger := log.GetLoggerWithName("main")

	loader := forecast.NewLoader(cfg.Data.Path, cfg.Data.FitMode, cfg.Data.LoadTimeout)

	if len(args) > 0 && args[0] == "predict" {
		return predict(args[1:], loader, stdout)
	}
	if len(args) > 0 {
		return fcErrors.Newf("unknown command %q", args[0])
	}

	logger.Info("Preparing model",
		log.SourceKey, cfg.Data.Path,
		log.FitModeKey, cfg.Data.FitMode,
	)
	if _, err := loader.Model(context.Background()); err != nil {
		return fcErrors.Wrap(err, "prepare model")
	}

	app := web.New(loader)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", cfg.Server.Addr(), "env", cfg.Server.Env)
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Shutting down", "signal", sig.String())
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func predict(args []string, loader *forecast.Loader, stdout io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	date := fs.String("date", "", "prediction date, YYYY-MM-DD")
	district := fs.String("district", "", "district name as it appears in the dataset")
	fuel := fs.String("fuel", "", "Petrol or Diesel")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var day *time.Time
	if *date != "" {
		t, err := time.Parse(time.DateOnly, *date)
		if err != nil {
			return fcErrors.Wrap(err, "-date")
		}
		day = &t
	}

	m, err := loader.Model(context.Background())
	if err != nil {
		return fcErrors.Wrap(err, "prepare model")
	}
	price, err := m.Predict(day, *district, *fuel)
	if err != nil {
		var ve *fcErrors.ValidationError
		if fcErrors.As(err, &ve) {
			return fcErrors.New(ve.Message())
		}
		return err
	}

	_, err = fmt.Fprintln(stdout, web.ResultText(*fuel, *day, *district, price))
	return err
}
