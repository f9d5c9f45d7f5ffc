package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"souk/common/cache"
	"souk/common/cache/memory"
	"souk/common/cache/redis"
	"souk/common/database"
	"souk/common/database/schema/migrations"
	"souk/common/telemetry"
	"souk/services/estimation/internal/config"
	"souk/services/estimation/internal/events"
	"souk/services/estimation/internal/messaging"
	"souk/services/estimation/internal/parser"
	"souk/services/estimation/internal/pricing"
	"souk/services/estimation/internal/processor"
	"souk/services/estimation/internal/ranking"
	"souk/services/estimation/internal/repository"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", cfg.ServiceName)), nil
}

func newNATSConnection(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name(cfg.ServiceName),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("Disconnected from NATS", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := nc.FlushWithContext(ctx); err != nil {
				logger.Warn("Failed to flush NATS connection", zap.Error(err))
			}
			nc.Close()
			return nil
		},
	})
	return nc, nil
}

func newClickHouseConnection(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (clickhouse.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.ClickHouseAutoMigrate {
		if err := db.Migrate(ctx, migrations.All); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
	return db.Conn(), nil
}

func newCache(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (cache.Cache, error) {
	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.CacheTTL
	opts.Namespace = cfg.ServiceName
	opts.RedisAddr = cfg.RedisAddr
	opts.RedisPassword = cfg.RedisPassword
	opts.RedisDB = cfg.RedisDB

	var c cache.Cache
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-memory estimate cache")
		c = memory.New(opts)
	} else {
		rc := redis.New(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, err
		}
		c = rc
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}

func newEstimateStore(r *repository.EstimateRepository) processor.EstimateStore { return r }

func newRankingStore(r *repository.EstimateRepository) processor.RankingStore { return r }

func newPublisher(logger *zap.Logger, nc *nats.Conn) messaging.Publisher {
	return messaging.NewPublisher(logger, nc)
}

func newSubscriber(nc *nats.Conn) events.Subscriber { return nc }

func newExtractor(cfg *config.Config) *parser.Extractor {
	return parser.NewExtractor(cfg.Vocabulary())
}

func newCalculator(cfg *config.Config) *pricing.Calculator {
	return pricing.NewCalculator(pricing.DefaultRates(), cfg.Market())
}

func newScorer() ranking.Scorer {
	return ranking.BandDistanceScore
}

func newJobEstimator(p *processor.JobProcessor) events.JobEstimator { return p }

func newOfferRanker(p *processor.OfferProcessor) events.OfferRanker { return p }

func newTracer() trace.Tracer {
	return telemetry.GetTracer("souk/estimation")
}

func initTracing(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) error {
	if cfg.OTELCollectorURL == "" {
		logger.Info("OTEL_COLLECTOR_URL not set, tracing disabled")
		return nil
	}

	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.Options{
		ServiceName:  cfg.ServiceName,
		CollectorURL: cfg.OTELCollectorURL,
		SampleRatio:  cfg.OTELSampleRatio,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return nil
}

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newNATSConnection,
			newClickHouseConnection,
			newCache,
			repository.NewEstimateRepository,
			newEstimateStore,
			newRankingStore,
			newPublisher,
			newSubscriber,
			newExtractor,
			newCalculator,
			newScorer,
			processor.NewJobProcessor,
			processor.NewOfferProcessor,
			newJobEstimator,
			newOfferRanker,
			events.NewHandler,
			newTracer,
		),
		fx.Invoke(
			initTracing,
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
		),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
