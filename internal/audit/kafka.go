package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink streams audit events to a Kafka topic. Events are drained from a
// buffered channel by a single background goroutine so emitters never block
// on broker latency; when the buffer is full the event is dropped and
// counted, keeping audit strictly best-effort.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	events chan Event
	done   chan struct{}
	logger *slog.Logger
}

// NewKafkaSink connects to the brokers, ensures the topic exists, and starts
// the drain goroutine.
func NewKafkaSink(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	sink := &KafkaSink{
		client: client,
		topic:  topic,
		events: make(chan Event, 1024),
		done:   make(chan struct{}),
		logger: logger,
	}
	go sink.drain()
	return sink, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	// Already-exists is fine; anyone may have created it first.
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic %q: %w", topic, resp.Err)
	}
	return nil
}

// Publish enqueues an event for streaming. Non-blocking.
func (s *KafkaSink) Publish(event Event) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("audit kafka buffer full, dropping event",
			"action", event.Action, "subject", event.Subject)
	}
}

func (s *KafkaSink) drain() {
	for event := range s.events {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal audit event", "error", err)
			continue
		}
		record := &kgo.Record{Topic: s.topic, Key: []byte(event.Subject), Value: payload}
		s.client.Produce(context.Background(), record, func(_ *kgo.Record, err error) {
			if err != nil {
				s.logger.Error("produce audit event", "error", err)
			}
		})
	}
	close(s.done)
}

// Close flushes buffered events and shuts the producer down.
func (s *KafkaSink) Close(ctx context.Context) error {
	close(s.events)
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := s.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush audit events: %w", err)
	}
	s.client.Close()
	return nil
}
