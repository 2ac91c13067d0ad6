package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expenses/internal/amqp"
	"expenses/internal/cache"
	"expenses/internal/cli"
	"expenses/internal/form"
	apphttp "expenses/internal/http"
	applog "expenses/internal/log"
	"expenses/internal/metrics"
	"expenses/internal/services"
	"expenses/internal/sheets"
	gsheet "expenses/internal/sheets/google"
)

const (
	shutdownTimeout    = 30 * time.Second
	cacheSweepInterval = time.Minute
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(cli.SetupLogger(os.Stdout, "info", applog.ComponentApp), "Configuration invalid", err)
	}
	logger := cli.SetupLogger(os.Stdout, cfg.LogLevel, applog.ComponentApp)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to open expense store", err)
	}
	defer st.Close()

	m := metrics.New()
	m.SetStored(st.Len())

	fc := form.NewController(st, form.WithDefaultCategory(cfg.DefaultCategory))
	srv := apphttp.NewServer(apphttp.ConfigFromApp(cfg), st, fc,
		apphttp.WithMetrics(m),
		apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP)))

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	caches.Register(srv.ChartCache())

	opts := []services.Option{
		services.WithPurger(srv.ChartCache()),
		services.WithRecorder(m),
		services.WithLogger(logger.Logger),
	}

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer client.Close()
		opts = append(opts, services.WithPublisher(client))
		logger.Info("AMQP change events enabled", "exchange", cfg.AMQPExchange)
	}

	if cfg.SheetsEnabled() {
		writer, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, gsheet.Credentials{
			JSON:            cfg.GoogleServiceAccountJSON,
			File:            cfg.GoogleServiceAccountFile,
			OAuthClientFile: cfg.GoogleOAuthClientFile,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		})
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		mirror := sheets.NewMirror(writer, cfg.GoogleSheetName, logger.WithComponent(applog.ComponentSheets).Logger)
		defer mirror.Close()
		mirror.Enqueue(st.All())
		opts = append(opts, services.WithMirror(mirror))
		logger.Info("Google Sheets mirror enabled", "sheet", cfg.GoogleSheetName)
	}

	changes := services.NewChangeService(st, opts...)
	defer changes.Close()

	sigCtx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info("Starting expenses server",
			applog.FieldOperation, applog.OpStartup,
			"addr", srv.Addr,
			"backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return caches.Run(gctx, cacheSweepInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "addr", srv.Addr)
		_ = srv.Shutdown(context.Background())
		return
	}

	<-done
	logger.Info("Server stopped gracefully")
}
