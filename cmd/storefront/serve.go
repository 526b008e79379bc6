package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rl1809/storefront/internal/adapter/notify"
	"github.com/rl1809/storefront/internal/app"
	"github.com/rl1809/storefront/internal/log"
	"github.com/rl1809/storefront/internal/otel"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart over a local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(c context.Context, opts *rootOptions) error {
	cfg := opts.cfg
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main runServer").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	otelShutdowns, err := otel.InitOtelSdk(logger.WithContext(c), cfg.Application.Name, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("failed initializing otel sdk with error=%w", err)
	}
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing app").Logger()
	logger.Info().Msg("initializing app")
	a, err := app.New(c, cfg, notify.NewLogNotifier(logger))
	if err != nil {
		otel.ShutdownOtel(context.WithoutCancel(c), otelShutdowns)
		return fmt.Errorf("failed initializing app with error=%w", err)
	}
	logger.Info().Msg("initialized app")

	httpServer := http.Server{
		Addr:         cfg.Server.Addr(),
		BaseContext:  func(net.Listener) context.Context { return logger.WithContext(context.WithoutCancel(c)) },
		Handler:      a.Handler(c),
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("error=%w occured while server is running", err)
		}
		close(serveErr)
	}()

	select {
	case <-c.Done():
		logger.Info().Msg("received interruption signal shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg(err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(logger.WithContext(context.WithoutCancel(c)), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	logger = logger.With().Str(log.KeyProcess, "shutting down").Logger()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed shutting down http server with error=%w", err))
	}
	logger.Info().Msg("shutdown http server")

	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	logger.Info().Msg("flushed cart and closed storage")

	if err := otel.ShutdownOtel(shutdownCtx, otelShutdowns); err != nil {
		errs = append(errs, fmt.Errorf("failed shutting down otel with error=%w", err))
	}
	logger.Info().Msg("shutdown otel")

	return errors.Join(errs...)
}
