package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"matchroom/config"
	"matchroom/dispatch"
	httpServer "matchroom/server/http"
	websocketServer "matchroom/server/websocket"
	"matchroom/service"
	store "matchroom/storage/memory"
	sw "matchroom/switch"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	var (
		configPath = fs.StringP("config", "c", "", "path to yaml config file")
		_          = fs.StringP("session_listen_addr", "w", ":8888", "websocket session listen address")
		_          = fs.StringP("api_listen_addr", "a", ":8080", "ops api listen address")
		_          = fs.StringP("log_level", "l", "debug", "log level")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	memStore := store.NewMemStore(store.Config{
		MaxPlayersPerRoom: cfg.Matchmaking.MaxPlayersPerRoom,
		MaxRooms:          cfg.Matchmaking.MaxRooms,
	})
	svc := service.NewService(service.Config{
		Store:      memStore,
		Switch:     sw.NewSwitch(&logger),
		Dispatcher: dispatch.New(&logger),
		Logger:     &logger,
	})
	wsSrv := websocketServer.NewServer(websocketServer.Config{
		Logger:         &logger,
		SessionService: svc,
		ListenAddr:     cfg.SessionListenAddr,
		PingInterval:   cfg.Transport.PingInterval,
		PongWait:       cfg.Transport.PongWait,
		WriteDeadline:  cfg.Transport.WriteDeadline,
	})
	apiSrv := httpServer.NewServer(httpServer.Config{
		Logger:        &logger,
		RoomDirectory: memStore,
		ListenAddr:    cfg.APIListenAddr,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		wg   = &sync.WaitGroup{}
		errc = make(chan error, 2)
	)
	wg.Add(2)
	go wsSrv.Run(ctx, wg, errc)
	go apiSrv.Run(ctx, wg, errc)

	select {
	case err = <-errc:
		logger.Error().Err(err).Msg("unexpected server error, shutting down")
	case <-ctx.Done():
		logger.Warn().Msg("interrupted")
	}
	cancel()
	wg.Wait()
}
