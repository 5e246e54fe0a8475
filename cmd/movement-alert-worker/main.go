package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/betboard/internal/alert"
	sharedcache "github.com/radieske/betboard/internal/shared/cache"
	"github.com/radieske/betboard/internal/shared/config"
	sharedkafka "github.com/radieske/betboard/internal/shared/kafka"
	"github.com/radieske/betboard/internal/shared/logger"
	"github.com/radieske/betboard/internal/shared/metrics"
	"github.com/radieske/betboard/pkg/contracts/topics"
)

func main() {
	cfg, err := config.Load(os.Getenv("BETBOARD_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New("movement-alert-worker", cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient, err := sharedcache.ConnectRedis(cfg.Storage.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	reader := sharedkafka.NewReader(cfg.Kafka.Brokers, topics.MovementEvents, "movement-alerts")
	defer reader.Close()

	// Métricas Prometheus para acompanhamento do consumo
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "movement_alert_messages_consumed_total", Help: "movimentos consumidos"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "movement_alert_cache_sets_total", Help: "sets no cache"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "movement_alert_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, errorsBy)

	srv := metrics.StartMetricsServer(cfg.App.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	defer srv.Close()
	log.Info("metrics/health listening", zap.String("port", cfg.App.MetricsPort))

	worker := &alert.Worker{
		Log:        log,
		Reader:     reader,
		Redis:      redisClient,
		TTL:        24 * time.Hour,
		OnConsumed: func() { consumed.Inc() },
		OnCached:   func() { cached.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("movement-alert-worker started")
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("worker stopped with error", zap.Error(err))
	}
	log.Info("movement-alert-worker stopped")
}
