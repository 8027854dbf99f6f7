package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"byte_battle/internal/ai"
	"byte_battle/internal/battle"
	"byte_battle/internal/config"
	"byte_battle/internal/db"
	httpServer "byte_battle/internal/http"
	"byte_battle/internal/http/handlers"
	"byte_battle/internal/http/middleware"
	"byte_battle/internal/logger"
	"byte_battle/internal/repository"
	"byte_battle/internal/service"
	"byte_battle/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)
	log := logger.Component("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database", "error", err)
		os.Exit(1)
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	redisClient := middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	var redisPing func(context.Context) error
	if redisClient != nil {
		defer redisClient.Close()
		redisPing = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var gen ai.Generator = ai.Disabled{}
	if cfg.AIAPIKey != "" {
		client, err := ai.NewGeminiClient(cfg.AIAPIKey,
			ai.WithModel(cfg.AIModel),
			ai.WithBaseURL(cfg.AIBaseURL),
			ai.WithTimeout(maxDuration(cfg.Battle.GenerationTimeout, cfg.Battle.JudgeTimeout)),
		)
		if err != nil {
			log.Error("ai client", "error", err)
			os.Exit(1)
		}
		gen = client
	} else {
		log.Warn("AI_API_KEY not set; every round uses the fallback problem and no verdict")
	}

	var rewards battle.RewardAwarder = service.LogOnlyAwarder{Log: logger.Component("xp")}
	if dbPool != nil {
		rewards = service.NewXPService(dbPool)
	}

	engine := battle.NewEngine(battle.Options{
		RoundDuration:     cfg.Battle.RoundDuration,
		GenerationTimeout: cfg.Battle.GenerationTimeout,
		JudgeTimeout:      cfg.Battle.JudgeTimeout,
		ReconnectGrace:    cfg.Battle.ReconnectGrace,
		EnforceDeadline:   cfg.Battle.EnforceDeadline,
		CodeLength:        cfg.Battle.CodeLength,
	}, battle.Deps{
		Problems: gen,
		Judge:    gen,
		Rewards:  rewards,
		Log:      logger.Component("battle"),
	})

	hub := ws.NewHub(engine)
	h := handlers.NewHandler(engine, cfg.AllowedOrigin)
	var health *handlers.HealthHandler
	if dbPool != nil {
		h.WithStore(repository.NewUserRepository(dbPool), repository.NewXPRepository(dbPool))
		health = handlers.NewHealthHandler(dbPool, redisPing, engine, hub, version)
	} else {
		health = handlers.NewHealthHandler(nil, redisPing, engine, hub, version)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	httpServer.RegisterRoutes(r, cfg, httpServer.Deps{Handler: h, Health: health, Hub: hub})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           corsHandler(cfg.AllowedOrigin).Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		log.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		hub.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		return
	}
	log.Info("server exited")
}

// corsHandler allows the configured frontend origin, or any origin when unset.
func corsHandler(allowedOrigin string) *cors.Cors {
	origins := []string{"*"}
	if allowedOrigin != "" {
		origins = []string{allowedOrigin}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
