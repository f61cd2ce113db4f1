package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "odyssey/pkg/platform/audit"
	txcontext "odyssey/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Append writes the event to audit_events and a publication row to outbox in
// one transaction; the outbox relay publishes pending rows to Kafka.
//
// Tables:
//
//	audit_events(id uuid primary key, category text, ts timestamptz,
//	             actor text, action text, reason text, issue_type text,
//	             risk_level int, latitude int, outcome text, fix_applied text,
//	             requires_manual_intervention boolean, request_id text)
//	outbox(id uuid primary key, aggregate_type text, aggregate_id text,
//	       event_type text, payload jsonb, created_at timestamptz,
//	       published_at timestamptz)
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// outboxPayload is the JSON structure published to Kafka. The field set
// mirrors audit.Event; downstream consumers deserialize by these names.
type outboxPayload struct {
	ID                         string `json:"id"`
	Category                   string `json:"category"`
	Timestamp                  string `json:"timestamp"`
	Actor                      string `json:"actor"`
	Action                     string `json:"action"`
	Reason                     string `json:"reason,omitempty"`
	IssueType                  string `json:"issue_type,omitempty"`
	RiskLevel                  int    `json:"risk_level"`
	Latitude                   int    `json:"latitude"`
	Outcome                    string `json:"outcome,omitempty"`
	FixApplied                 string `json:"fix_applied,omitempty"`
	RequiresManualIntervention bool   `json:"requires_manual_intervention,omitempty"`
	RequestID                  string `json:"request_id,omitempty"`
}

// Append writes one audit event and its outbox row atomically.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	// Derive category from action - eventCategories map is the source of truth.
	category := audit.AuditAction(event.Action).Category()

	payload := outboxPayload{
		ID:                         event.ID,
		Category:                   string(category),
		Timestamp:                  event.Timestamp.Format(time.RFC3339Nano),
		Actor:                      event.Actor,
		Action:                     event.Action,
		Reason:                     event.Reason,
		IssueType:                  event.IssueType,
		RiskLevel:                  event.RiskLevel,
		Latitude:                   event.Latitude,
		Outcome:                    event.Outcome,
		FixApplied:                 event.FixApplied,
		RequiresManualIntervention: event.RequiresManualIntervention,
		RequestID:                  event.RequestID,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		tx, _ := txcontext.From(ctx)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO audit_events (
				id, category, ts, actor, action, reason, issue_type,
				risk_level, latitude, outcome, fix_applied,
				requires_manual_intervention, request_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`,
			event.ID, string(category), event.Timestamp, event.Actor, event.Action,
			event.Reason, event.IssueType, event.RiskLevel, event.Latitude,
			event.Outcome, event.FixApplied, event.RequiresManualIntervention,
			event.RequestID,
		)
		if err != nil {
			return fmt.Errorf("insert audit event: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			uuid.NewString(), "audit", event.ID, event.Action, payloadBytes, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("insert outbox entry: %w", err)
		}
		return nil
	})
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, ts, actor, action, reason, issue_type,
		       risk_level, latitude, outcome, fix_applied,
		       requires_manual_intervention, request_id
		FROM audit_events
		ORDER BY ts DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(
			&e.ID, &category, &e.Timestamp, &e.Actor, &e.Action, &e.Reason,
			&e.IssueType, &e.RiskLevel, &e.Latitude, &e.Outcome, &e.FixApplied,
			&e.RequiresManualIntervention, &e.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
