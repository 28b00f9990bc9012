package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/takane/peerbridge/internal/bridge"
	"github.com/takane/peerbridge/internal/config"
	"github.com/takane/peerbridge/internal/lifecycle"
	"github.com/takane/peerbridge/internal/plugin"
	"github.com/takane/peerbridge/internal/plugin/gateway"
	"github.com/takane/peerbridge/internal/plugin/rtc"
	"github.com/takane/peerbridge/internal/router"
	"github.com/takane/peerbridge/internal/status"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	reg := router.NewRegistry()
	state := lifecycle.NewState()

	var plug plugin.Plugin
	switch cfg.Plugin {
	case "embedded":
		plug = rtc.New(cfg.PeerID)
	default:
		plug = gateway.New(cfg.GatewayURL, cfg.ReadLimit)
	}

	// The bridge must be constructed, and its table registered, before the
	// plugin starts raising events.
	if _, err := bridge.New(reg, state, plug); err != nil {
		log.Fatal().Err(err).Msg("failed to construct bridge")
	}
	if err := plug.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start plugin")
	}

	r := status.SetupRouter(cfg, reg, state)
	addr := fmt.Sprintf(":%d", cfg.StatusPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}
	go func() {
		log.Info().Str("addr", addr).Str("plugin", cfg.Plugin).Msg("peerbridge started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("status server error")
		}
	}()

	select {
	case <-ctx.Done():
		state.RequestShutdown(lifecycle.ReasonSignal)
	case <-plug.Done():
		state.RequestShutdown(lifecycle.ReasonPluginClosed)
	case <-state.Done():
	}
	log.Info().Str("reason", string(state.Reason())).Msg("Shutting down")

	if err := plug.Close(); err != nil {
		log.Error().Err(err).Msg("plugin close")
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Exited gracefully")
}
