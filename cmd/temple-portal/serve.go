package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/temple-portal/internal/auth"
	"github.com/iwvelando/temple-portal/internal/config"
	"github.com/iwvelando/temple-portal/internal/content"
	"github.com/iwvelando/temple-portal/internal/media"
	"github.com/iwvelando/temple-portal/internal/metrics"
	"github.com/iwvelando/temple-portal/internal/realtime"
	"github.com/iwvelando/temple-portal/internal/server"
	"github.com/iwvelando/temple-portal/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the public site, the content API and live updates",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, err := loadSiteConfig(cmd)
	if err != nil {
		return err
	}
	serverConf, err := server.LoadConfig(serverConfigLocation)
	if err != nil {
		return err
	}

	// Server logging settings fill in what the site file leaves unset.
	logging := conf.Logging
	if logging.Level == "" {
		logging.Level = serverConf.Logging.Level
	}
	if logging.Format == "" {
		logging.Format = serverConf.Logging.Format
	}
	if logging.OutputFile == "" {
		logging.OutputFile = serverConf.Logging.OutputFile
	}
	logger, err := initializeLogger(logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.serve"),
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, logger, conf, serverConf)
}

func serve(ctx context.Context, logger *zap.Logger, conf *config.Configuration, serverConf *server.Config) error {
	location, err := time.LoadLocation(conf.Site.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid site time zone %q: %w", conf.Site.TimeZone, err)
	}
	calendar, err := conf.BuildCalendar()
	if err != nil {
		return err
	}
	logger.Info("loaded Tamil calendar",
		zap.String("op", "main.serve"),
		zap.Ints("calibratedYears", calendar.OverriddenYears()),
	)

	m := metrics.New()
	hub := realtime.NewHub(logger, m)

	st, err := store.Open(conf.Store.Path, logger, store.WithPublisher(store.Publishers{hub, m}))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store",
				zap.String("op", "main.serve"),
				zap.Error(err),
			)
		}
	}()

	ms, err := media.NewLocalStorage(ctx, conf.Media.Dir, conf.Media.URLPrefix, logger)
	if err != nil {
		return err
	}

	authn, err := auth.New(conf.Admin, logger)
	if err != nil {
		return err
	}

	svc := content.New(st, ms, calendar, logger,
		content.WithMetrics(m),
		content.WithLocation(location),
	)

	httpServer := &http.Server{
		Addr: serverConf.Address,
		Handler: server.NewHandler(server.Dependencies{
			Logger:        logger,
			Content:       svc,
			Auth:          authn,
			Hub:           hub,
			Metrics:       m,
			MediaDir:      ms.Root(),
			MediaURL:      conf.Media.URLPrefix,
			MaxUploadSize: serverConf.UploadSizeBytes(),
			Version:       version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("starting server",
			zap.String("op", "main.serve"),
			zap.String("address", serverConf.Address),
			zap.String("site", conf.Site.Name),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeoutDuration())
		defer cancel()
		logger.Info("shutting down server",
			zap.String("op", "main.serve"),
		)
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
