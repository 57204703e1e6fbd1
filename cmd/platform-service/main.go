package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	pcache "github.com/ffarena/tournament-platform/internal/platform/cache"
	phttp "github.com/ffarena/tournament-platform/internal/platform/http"
	"github.com/ffarena/tournament-platform/internal/platform/producer"
	"github.com/ffarena/tournament-platform/internal/platform/pubsub"
	"github.com/ffarena/tournament-platform/internal/platform/repo"
	"github.com/ffarena/tournament-platform/internal/platform/ws"
	"github.com/ffarena/tournament-platform/internal/shared/cache"
	"github.com/ffarena/tournament-platform/internal/shared/config"
	"github.com/ffarena/tournament-platform/internal/shared/db"
	"github.com/ffarena/tournament-platform/internal/shared/kafka"
	"github.com/ffarena/tournament-platform/internal/shared/logger"
	"github.com/ffarena/tournament-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("platform-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "platform-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Conexão com Redis (cache de lobby + pub/sub de carteira)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Writers Kafka para os eventos de depósito
	submittedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDepositSubmitted)
	defer submittedWriter.Close()
	reviewedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDepositReviewed)
	defer reviewedWriter.Close()

	// Hub WebSocket alimentado pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(context.Background(), rdb, hub)

	// Instancia repositórios e servidor HTTP
	pgRepo := repo.NewPostgres(pg)
	readRepo := &repo.ReadRepo{DB: pg}
	lobbyCache := pcache.New(rdb)
	publ := producer.NewKafkaPublisher(submittedWriter, reviewedWriter)
	bcast := pubsub.NewRedisBroadcaster(rdb)

	api := phttp.NewServer(log, pgRepo, readRepo, lobbyCache, publ, bcast, hub.HandleWS, cfg.JWTSecret)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	// Servidor de métricas e health check
	metricsSrv := metrics.StartMetricsServer("platform-service", cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Inicia servidor principal da API
	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
