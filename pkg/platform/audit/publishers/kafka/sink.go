// Package kafka forwards lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "healx/pkg/platform/audit"
)

// payload is the wire format consumers read from the lifecycle topic.
type payload struct {
	Category    string `json:"category"`
	Action      string `json:"action"`
	BatchID     string `json:"batch_id,omitempty"`
	ActorWallet string `json:"actor_wallet,omitempty"`
	Status      string `json:"status,omitempty"`
	Marker      string `json:"marker,omitempty"`
	Detail      string `json:"detail,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Sink implements audit.Store on top of a Kafka producer. Records are keyed by
// batch id so a batch's events stay ordered within one partition.
type Sink struct {
	producer Producer
	topic    string
}

func NewSink(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(toPayload(event))
	if err != nil {
		return fmt.Errorf("marshal lifecycle event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.BatchID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce lifecycle event: %w", err)
	}
	return nil
}

func toPayload(event audit.Event) payload {
	return payload{
		Category:    string(audit.AuditEvent(event.Action).Category()),
		Action:      event.Action,
		BatchID:     event.BatchID.String(),
		ActorWallet: event.ActorWallet.String(),
		Status:      event.Status,
		Marker:      event.Marker,
		Detail:      event.Detail,
		RequestID:   event.RequestID,
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}
