// Command worker runs the delivery-side processes: the express/regular
// dispatch pools, the dead-letter consumer and the settlement batch settler.
// It is deployed as a separate process from cmd/api so admission throughput
// never blocks on upstream operator latency.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/oggyb/sms-gateway/internal/broker"
	"github.com/oggyb/sms-gateway/internal/broker/natsbroker"
	"github.com/oggyb/sms-gateway/internal/cache/redis"
	"github.com/oggyb/sms-gateway/internal/config"
	"github.com/oggyb/sms-gateway/internal/db/gormdb"
	"github.com/oggyb/sms-gateway/internal/dlqconsumer"
	"github.com/oggyb/sms-gateway/internal/operator"
	messagegorm "github.com/oggyb/sms-gateway/internal/repository/gorm/message"
	"github.com/oggyb/sms-gateway/internal/scheduler"
	"github.com/oggyb/sms-gateway/internal/settlement"
	"github.com/oggyb/sms-gateway/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	rootCtx := context.Background()

	cfg := config.New()
	log := newLogger(cfg.LogLevel).With().Str("component", "worker").Logger()

	cache := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cache.Ping(rootCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	messageRepo := messagegorm.NewRepository(db)

	natsClient, err := natsbroker.New(rootCtx, natsbroker.Config{
		URL:           cfg.NATS.URL,
		Stream:        cfg.NATS.Stream,
		MaxAckPending: cfg.NATS.MaxAckPending,
		MaxDeliver:    cfg.NATS.MaxDeliver,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to nats")
	}
	defer natsClient.Close()

	dispatcher := operator.New(cfg.Operators)

	expressPool := worker.New(broker.QueueExpress, natsClient, natsClient, dispatcher, cache, messageRepo, log, cfg.Worker.ExpressWorkers)
	regularPool := worker.New(broker.QueueRegular, natsClient, natsClient, dispatcher, cache, messageRepo, log, cfg.Worker.RegularWorkers)
	dlq := dlqconsumer.New(natsClient, log)

	settler := settlement.New(messageRepo, cache, log, cfg.Settlement.BatchSize, cfg.Settlement.LockTTL)
	settlerScheduler := scheduler.NewSchedulerService(settler, cfg.Settlement.Interval, cfg.Settlement.BatchTimeout, log)

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Str("worker", name).Msg("worker exited with error")
			}
		}()
	}

	run("express-pool", expressPool.Run)
	run("regular-pool", regularPool.Run)
	run("dlq-consumer", dlq.Run)

	if err := settlerScheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("settler failed to start")
	}
	log.Info().Msg("worker processes started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping worker processes")

	if err := settlerScheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("settler stop failed")
	}

	wg.Wait()
	log.Info().Msg("worker shutdown complete")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
