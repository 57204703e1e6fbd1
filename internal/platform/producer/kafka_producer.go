package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ffarena/tournament-platform/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do ciclo de vida de depósitos
type KafkaPublisher struct {
	Submitted *kafka.Writer
	Reviewed  *kafka.Writer
}

func NewKafkaPublisher(submitted, reviewed *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Submitted: submitted, Reviewed: reviewed}
}

func (p *KafkaPublisher) PublishDepositSubmitted(ctx context.Context, e events.DepositSubmitted) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Submitted.WriteMessages(ctx, kafka.Message{Value: b})
}

func (p *KafkaPublisher) PublishDepositReviewed(ctx context.Context, e events.DepositReviewed) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now()
	}
	b, _ := json.Marshal(e)
	return p.Reviewed.WriteMessages(ctx, kafka.Message{Value: b})
}
