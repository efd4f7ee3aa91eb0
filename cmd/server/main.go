package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/labstack/echo-contrib/echoprometheus"

	_ "github.com/teamcuriosity/collective/docs"
	"github.com/teamcuriosity/collective/internal/api"
	"github.com/teamcuriosity/collective/internal/api/ws"
	"github.com/teamcuriosity/collective/internal/chat"
	"github.com/teamcuriosity/collective/internal/core/service"
	"github.com/teamcuriosity/collective/internal/infrastructure/db/mongo"
	"github.com/teamcuriosity/collective/internal/infrastructure/db/redis"
	"github.com/teamcuriosity/collective/internal/infrastructure/http/handlers"
	"github.com/teamcuriosity/collective/internal/pkg/config"
	"github.com/teamcuriosity/collective/pkg/logger"
)

const (
	serviceName     = "collective"
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	mongoClient, db, err := mongo.Connect(startCtx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to mongodb")
	}
	if err := mongo.EnsureIndexes(startCtx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure mongodb indexes")
	}

	rdb, err := redis.Connect(startCtx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to redis")
	}

	// --- Repositories ---
	userRepo := mongo.NewUserRepository(db)
	inviteRepo := mongo.NewInviteRepository(db)
	messageRepo := mongo.NewMessageRepository(db)
	notificationRepo := mongo.NewNotificationRepository(db)

	// --- Services ---
	inviteService := service.NewInviteService(inviteRepo, time.Now, log)
	authService := service.NewAuthService(userRepo, inviteService, cfg.JWTSecret, cfg.TokenTTL, log)
	messageService := service.NewMessageService(messageRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, log)

	// --- Chat ---
	broadcaster := chat.NewBroadcaster(messageService, chat.Options{
		FanoutWorkers: cfg.Chat.FanoutWorkers,
		Limiter:       redis.NewRateLimiter(rdb, cfg.Chat.SendLimit, cfg.Chat.SendWindow),
	}, log)
	fanoutCtx, stopFanout := context.WithCancel(context.Background())
	broadcaster.Start(fanoutCtx)

	e := api.NewRouter(api.Deps{
		Auth:          authService,
		Invites:       inviteService,
		Notifications: notificationService,
		Messages:      messageService,
		Users:         userRepo,
		Hub:           broadcaster,
		Upgrader:      ws.NewUpgrader(cfg.Chat.Origins()),
		AuthLimiter:   redis.NewRateLimiter(rdb, cfg.Auth.RateLimit, cfg.Auth.RateWindow),
		HTTPMetrics:   echoprometheus.NewMiddleware(serviceName),
		MetricsRoute:  echoprometheus.NewHandler(),
		HealthChecks: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		Sessions:      broadcaster,
		JWTSecret:     cfg.JWTSecret,
		EnableSwagger: !cfg.IsProduction(),
		Now:           time.Now,
		Log:           logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// A single operation keeps the steps in order: stop taking requests,
	// stop fan-out, then close the stores the request paths write to.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			serviceName: func(ctx context.Context) error {
				log.Info().Msg("shutting down http server")
				httpErr := e.Shutdown(ctx)

				log.Info().Msg("stopping fan-out workers")
				stopFanout()
				broadcaster.Wait()

				mongoErr := mongoClient.Disconnect(ctx)
				redisErr := rdb.Close()
				return errors.Join(httpErr, mongoErr, redisErr)
			},
		},
	)

	exitCode := <-wait
	log.Info().Int("exit_code", exitCode).Msg("collective stopped")
	os.Exit(exitCode)
}
