package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/ymoraviadev-droid/t-chat/internal/config"
	"github.com/ymoraviadev-droid/t-chat/internal/core"
	transporthttp "github.com/ymoraviadev-droid/t-chat/internal/transport/http"
)

// App wires together core and transport layers for one server variant.
type App struct {
	server          *stdhttp.Server
	sweeper         *core.Sweeper
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// NewRelay builds the push-transport (WebSocket) relay server.
func NewRelay(cfg config.Config, logger *zerolog.Logger) *App {
	clk := clock.New()
	reg := core.NewRegistry(clk)
	router := core.NewRouter(reg, clk, logger)
	sweeper := core.NewHandleSweeper(reg, cfg.HandleSweepInterval, clk, logger)
	server := transporthttp.NewRelayServer(reg, router, cfg, logger)

	return &App{
		server:          server,
		sweeper:         sweeper,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
}

// NewPoll builds the pull-transport (HTTP polling) relay server.
func NewPoll(cfg config.Config, logger *zerolog.Logger) *App {
	clk := clock.New()
	reg := core.NewRegistry(clk)
	router := core.NewRouter(reg, clk, logger)
	msgs := core.NewMessageLog(cfg.HistoryLimit, clk)
	handlers := transporthttp.NewPollHandlers(reg, router, msgs, logger)
	sweeper := core.NewIdleSweeper(reg, router, handlers.Fold, cfg.IdleSweepInterval, cfg.ClientTimeout, clk, logger)
	server := transporthttp.NewPollServer(handlers, cfg, logger)

	return &App{
		server:          server,
		sweeper:         sweeper,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	a.sweeper.Start(sweepCtx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup(stopSweeper)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup(stopSweeper)
			return err
		}

		a.cleanup(stopSweeper)
		return <-serverErr
	}
}

// cleanup stops the sweeper and waits for its loop to exit.
func (a *App) cleanup(stopSweeper context.CancelFunc) {
	stopSweeper()
	a.sweeper.Wait()
	a.log.Info().Msg("sweeper stopped")
}
