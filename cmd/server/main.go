package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/telesync/internal/adapters/http"
	"github.com/dkeye/telesync/internal/adapters/auth"
	wsignal "github.com/dkeye/telesync/internal/adapters/signal"
	"github.com/dkeye/telesync/internal/adapters/store"
	"github.com/dkeye/telesync/internal/app"
	"github.com/dkeye/telesync/internal/app/orch"
	"github.com/dkeye/telesync/internal/config"
	"github.com/dkeye/telesync/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	rooms, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init token verifier")
	}

	var policy app.Policy = app.SimplePolicy{}
	if cfg.Hub.EvictOnSendFailure {
		policy = app.EvictPolicy{}
	}

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Presence: app.NewPresence(),
		Rooms:    rooms,
		Auth:     verifier,
		Policy:   policy,
		Options: orch.Options{
			GatewayTimeout: cfg.Hub.GatewayTimeout,
			CleanupOnClose: cfg.Hub.CleanupOnClose,
			JoinNack:       cfg.Hub.JoinNack,
		},
	}
	ctl := wsignal.NewSignalWSController(o,
		wsignal.NewJoinRateLimiter(cfg.Hub.JoinRateLimit, cfg.Hub.JoinRateInterval),
		wsignal.Config{
			ReadLimit:  cfg.ReadLimit,
			PingPeriod: cfg.PingPeriod,
			WriteWait:  cfg.Hub.WriteWait,
		},
	)

	r := router.SetupRouter(ctx, cfg, o, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Telesync server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// openStore builds the RoomStore for cfg.Store.Driver, with the Redis
// room cache in front when redis.addr is set.
func openStore(ctx context.Context, cfg *config.Config) (core.RoomStore, func(), error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Str("module", "main").Msg("using in-memory store, rooms are not persisted")
		return app.NewRoomManager(), func() {}, nil
	}

	mongoStore, client, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { _ = client.Disconnect(context.Background()) }}
	var rooms core.RoomStore = mongoStore

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("module", "main").Str("addr", cfg.Redis.Addr).Msg("redis unreachable, cache will fall through")
		}
		rooms = store.NewCachedRooms(mongoStore, rdb, cfg.Redis.RoomTTL)
		closers = append(closers, func() { _ = rdb.Close() })
	}

	return rooms, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
