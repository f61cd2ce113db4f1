// Package worker relays audit events from the transactional outbox to Kafka.
// The relay polls for unpublished rows, produces them in order, and marks
// them published; a crash between produce and mark yields at-least-once
// delivery, which consumers absorb via the event ID.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Relay polls the outbox table and publishes pending audit events.
type Relay struct {
	db       *sql.DB
	client   *kgo.Client
	topic    string
	interval time.Duration
	logger   *slog.Logger
}

// NewRelay connects a Kafka producer for the audit topic.
func NewRelay(db *sql.DB, brokers []string, topic string, interval time.Duration, logger *slog.Logger) (*Relay, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{
		db:       db,
		client:   client,
		topic:    topic,
		interval: interval,
		logger:   logger,
	}, nil
}

// EnsureTopic creates the audit topic if it does not exist yet.
func (r *Relay) EnsureTopic(ctx context.Context) error {
	adm := kadm.NewClient(r.client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, r.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic: %w", resp.Err)
	}
	return nil
}

// Run polls until the context is canceled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.drain(ctx); err != nil {
				// Transient publish failures retry on the next tick.
				if r.logger != nil {
					r.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
				}
			}
		}
	}
}

// drain publishes up to one batch of pending outbox rows.
func (r *Relay) drain(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT 100
	`)
	if err != nil {
		return fmt.Errorf("select pending outbox rows: %w", err)
	}
	type pending struct {
		id          string
		aggregateID string
		payload     []byte
	}
	var batch []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.aggregateID, &p.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox rows: %w", err)
	}

	for _, p := range batch {
		record := &kgo.Record{
			Topic: r.topic,
			Key:   []byte(p.aggregateID),
			Value: p.payload,
		}
		if err := r.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			return fmt.Errorf("produce outbox row %s: %w", p.id, err)
		}
		if _, err := r.db.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`,
			time.Now(), p.id,
		); err != nil {
			return fmt.Errorf("mark outbox row published: %w", err)
		}
	}
	return nil
}

// Close flushes and releases the Kafka producer.
func (r *Relay) Close() {
	r.client.Close()
}
