package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/parambehera/Viora/backend/auth"
	"github.com/parambehera/Viora/backend/cmd/config"
	"github.com/parambehera/Viora/backend/registry"
	"github.com/parambehera/Viora/backend/relay"
	httpServer "github.com/parambehera/Viora/backend/server/http"
	websocketServer "github.com/parambehera/Viora/backend/server/websocket"
	"github.com/parambehera/Viora/backend/service"
	store "github.com/parambehera/Viora/backend/storage/memory"
	sw "github.com/parambehera/Viora/backend/switch"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	fs.StringP("api-listen-addr", "a", ":8080", "api listen address")
	fs.StringP("ws-listen-addr", "w", ":8888", "websocket signaling listen address")
	fs.StringP("log-level", "l", "debug", "log level")
	fs.String("jwt-secret", "", "bearer token secret, empty disables the token gate")

	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}
	cfg, err := config.Load(fs)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	var verifier auth.Verifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.JWTSecret)
	}

	ids := registry.New()
	rooms := store.NewMemStore()
	rl := relay.New(relay.Config{
		Logger:   &logger,
		Registry: ids,
		Rooms:    rooms,
	})
	svc := service.NewService(service.Config{
		Relay:  rl,
		Switch: sw.NewSwitch(&logger),
		Logger: &logger,
	})
	httpSrv := httpServer.NewServer(httpServer.Config{
		Logger:     &logger,
		Rooms:      rooms,
		Identities: ids,
		ListenAddr: cfg.APIListenAddr,
	})
	wsSrv := websocketServer.NewServer(websocketServer.Config{
		Logger:           &logger,
		SignalingService: svc,
		Verifier:         verifier,
		ListenAddr:       cfg.WSListenAddr,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		wg   = &sync.WaitGroup{}
		errc = make(chan error, 2)
	)
	wg.Add(2)
	go httpSrv.Run(ctx, wg, errc)
	go wsSrv.Run(ctx, wg, errc)

	select {
	case err = <-errc:
		logger.Error().Err(err).Msg("unexpected server error, shutting down")
	case <-ctx.Done():
		logger.Warn().Msg("interrupted")
	}
	cancel()
	wg.Wait()
}
