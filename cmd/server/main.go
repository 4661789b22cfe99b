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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/Huddle/internal/adapters/http"
	"github.com/dkeye/Huddle/internal/adapters/rtc"
	wssignal "github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/auth"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/ratelimit"
	"github.com/dkeye/Huddle/internal/store"
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
	if cfg.Debug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	st, err := store.Open(store.Config{
		Driver:      cfg.Database.Driver,
		DSN:         cfg.Database.DSN,
		AutoMigrate: cfg.Database.AutoMigrate,
		Debug:       cfg.Debug(),
	})
	if err != nil {
		return err
	}
	defer st.Close()

	verifier, err := auth.NewJWTVerifier(auth.Config{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL})
	if err != nil {
		return err
	}
	ice, err := rtc.ICEServers(cfg.RTC.ICEServers)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	limiter, closeLimiter := newLimiter(gctx, g, cfg)
	defer closeLimiter()

	o := orch.New(verifier, st, st, app.PolicyByName(cfg.Backpressure))
	o.Limits = orch.Limits{MessageContent: cfg.Limits.MessageContent, TodoText: cfg.Limits.TodoText}

	ws := wssignal.NewSignalWSController(o, limiter, wssignal.Settings{
		ReadLimit:        cfg.ReadLimit,
		PingPeriod:       cfg.PingPeriod,
		PongWait:         cfg.PongWait,
		WriteWait:        cfg.WriteWait,
		SendBuffer:       cfg.SendBuffer,
		HandshakeTimeout: cfg.HandshakeTimeout,
		CheckOrigin:      wssignal.AllowOrigin(cfg.ClientOrigin),
	})

	r := router.SetupRouter(gctx, cfg, router.Deps{
		Orch:       o,
		Signal:     ws,
		ICEServers: ice,
		Store:      st,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Huddle server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Websockets are hijacked and untouched by Shutdown.
		o.Shutdown()
		return err
	})

	return g.Wait()
}

// newLimiter picks the Redis limiter when redis.url is set and reachable,
// the in-process one otherwise. Events <= 0 disables limiting.
func newLimiter(ctx context.Context, g *errgroup.Group, cfg *config.Config) (ratelimit.Limiter, func()) {
	rl := ratelimit.Config{Events: cfg.RateLimit.Events, Interval: cfg.RateLimit.Interval}
	if rl.Events <= 0 {
		return ratelimit.Unlimited{}, func() {}
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Str("module", "ratelimit").Msg("bad redis url, using in-memory limiter")
		} else {
			client := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = client.Ping(pingCtx).Err()
			cancel()
			if err == nil {
				log.Info().Str("module", "ratelimit").Str("addr", opts.Addr).Msg("redis rate limiter")
				return ratelimit.NewRedis(client, rl, "huddle:ratelimit:"), func() { _ = client.Close() }
			}
			log.Warn().Err(err).Str("module", "ratelimit").Msg("redis unreachable, using in-memory limiter")
			_ = client.Close()
		}
	}

	mem := ratelimit.NewMemory(rl)
	g.Go(func() error {
		mem.Run(ctx)
		return nil
	})
	return mem, func() {}
}
