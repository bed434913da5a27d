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

	"github.com/oggyb/sms-gateway/internal/auth"
	"github.com/oggyb/sms-gateway/internal/broker/natsbroker"
	"github.com/oggyb/sms-gateway/internal/cache/redis"
	"github.com/oggyb/sms-gateway/internal/config"
	"github.com/oggyb/sms-gateway/internal/db/gormdb"
	"github.com/oggyb/sms-gateway/internal/handler"
	messagegorm "github.com/oggyb/sms-gateway/internal/repository/gorm/message"
	outboxgorm "github.com/oggyb/sms-gateway/internal/repository/gorm/outbox"
	tenantgorm "github.com/oggyb/sms-gateway/internal/repository/gorm/tenant"
	routes "github.com/oggyb/sms-gateway/internal/router"
	"github.com/oggyb/sms-gateway/internal/scheduler"
	"github.com/oggyb/sms-gateway/internal/server"
	"github.com/oggyb/sms-gateway/internal/service"
	customMiddleware "github.com/oggyb/sms-gateway/internal/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	rootCtx := context.Background()

	cfg := config.New()

	log := newLogger(cfg.LogLevel).With().Str("component", "api").Logger()

	// Init cache.
	cache := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cache.Ping(rootCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Init DB.
	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	rawDB := db.Conn().(*gorm.DB)
	if err := rawDB.AutoMigrate(&tenantgorm.TenantModel{}, &messagegorm.MessageModel{}, &outboxgorm.OutboxModel{}); err != nil {
		log.Fatal().Err(err).Msg("automigrate failed")
	}

	// Init broker.
	broker, err := natsbroker.New(rootCtx, natsbroker.Config{
		URL:           cfg.NATS.URL,
		Stream:        cfg.NATS.Stream,
		MaxAckPending: cfg.NATS.MaxAckPending,
		MaxDeliver:    cfg.NATS.MaxDeliver,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to nats")
	}
	defer broker.Close()

	// Repositories.
	tenantRepo := tenantgorm.NewRepository(db)
	messageRepo := messagegorm.NewRepository(db)
	outboxRepo := outboxgorm.NewRepository(db)

	// Services.
	authenticator := auth.New(tenantRepo, cache)
	accountSvc := service.NewAccountService(tenantRepo)
	smsSvc := service.NewSMSService(db, messageRepo)
	outboxPublisher := service.NewOutboxPublisher(outboxRepo, broker, cfg.Outbox.BatchSize, log)

	// The outbox publisher reuses the generic scheduler control loop, just
	// driven at the outbox's own poll interval instead of the settlement
	// batch's.
	outboxScheduler := scheduler.NewSchedulerService(outboxPublisher, cfg.Outbox.PollInterval, cfg.Outbox.PollInterval*10, log)

	// HTTP dependencies & server wiring.
	homeHandler := handler.NewHomeHandler()
	accountHandler := handler.NewAccountHandler(accountSvc)
	smsHandler := handler.NewSMSHandler(smsSvc)

	deps := routes.AppDeps{
		Home:    homeHandler,
		Account: accountHandler,
		SMS:     smsHandler,
		Auth:    customMiddleware.Auth(authenticator),
	}

	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	srv := server.New(addr, cfg.API.Prefix, deps, log)

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	if err := outboxScheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("outbox scheduler failed to start")
	}
	log.Info().Msg("outbox publisher scheduler started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := outboxScheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("outbox scheduler stop failed")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server graceful shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
