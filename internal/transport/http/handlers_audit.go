package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	dErrors "odyssey/pkg/domain-errors"
	"odyssey/pkg/platform/audit"
	"odyssey/pkg/platform/httputil"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// AuditReader lists persisted audit events. *publisher.Publisher satisfies this.
type AuditReader interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// AuditHandler serves the audit trail to operators.
type AuditHandler struct {
	reader AuditReader
	logger *slog.Logger
}

func NewAuditHandler(reader AuditReader, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{reader: reader, logger: logger}
}

// EventResponse is one audit record as exposed over HTTP.
type EventResponse struct {
	ID                         string    `json:"id"`
	Category                   string    `json:"category"`
	Timestamp                  time.Time `json:"timestamp"`
	Actor                      string    `json:"actor"`
	Action                     string    `json:"action"`
	Reason                     string    `json:"reason,omitempty"`
	IssueType                  string    `json:"issue_type,omitempty"`
	RiskLevel                  int       `json:"risk_level"`
	Latitude                   int       `json:"latitude"`
	Outcome                    string    `json:"outcome"`
	FixApplied                 string    `json:"fix_applied,omitempty"`
	RequiresManualIntervention bool      `json:"requires_manual_intervention"`
	RequestID                  string    `json:"request_id,omitempty"`
}

// HandleListEvents handles GET /audit/events requests, newest first.
func (h *AuditHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.reader.List(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events", "error", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			ID:                         e.ID,
			Category:                   string(e.Category),
			Timestamp:                  e.Timestamp,
			Actor:                      e.Actor,
			Action:                     e.Action,
			Reason:                     e.Reason,
			IssueType:                  e.IssueType,
			RiskLevel:                  e.RiskLevel,
			Latitude:                   e.Latitude,
			Outcome:                    e.Outcome,
			FixApplied:                 e.FixApplied,
			RequiresManualIntervention: e.RequiresManualIntervention,
			RequestID:                  e.RequestID,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}
