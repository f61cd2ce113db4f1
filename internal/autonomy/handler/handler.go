package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"odyssey/internal/autonomy"
	"odyssey/internal/autonomy/metrics"
	"odyssey/internal/remediation"
	dErrors "odyssey/pkg/domain-errors"
	"odyssey/pkg/platform/httputil"
	"odyssey/pkg/requestcontext"
)

// Service defines the interface for autonomy gate operations.
type Service interface {
	HandleDetectedIssue(ctx context.Context, report autonomy.IssueReport) autonomy.Verdict
	Latitude() int
	SetLatitude(ctx context.Context, v int, authorizedBy string) bool
	Capabilities() []remediation.Listing
}

// Handler wires autonomy endpoints to the gate engine.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs an autonomy handler with its dependencies.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts autonomy endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/autonomy/issues", h.HandleReportIssue)
	r.Get("/autonomy/latitude", h.HandleGetLatitude)
	r.Put("/autonomy/latitude", h.HandleSetLatitude)
	r.Get("/autonomy/capabilities", h.HandleListCapabilities)
}

// HandleReportIssue handles POST /autonomy/issues requests from detectors.
func (h *Handler) HandleReportIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ReportIssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	verdict := h.service.HandleDetectedIssue(ctx, req.Report())

	h.logger.InfoContext(ctx, "issue report evaluated",
		"request_id", requestID,
		"issue_type", req.Type,
		"status", verdict.Status,
		"risk_level", verdict.RiskLevel,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromVerdict(verdict))
}

// HandleGetLatitude handles GET /autonomy/latitude requests.
func (h *Handler) HandleGetLatitude(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LatitudeResponse{Latitude: h.service.Latitude()})
}

// HandleSetLatitude handles PUT /autonomy/latitude requests. The change is
// attributed to the authenticated actor; the engine's authorization policy
// decides whether that actor may change the threshold.
func (h *Handler) HandleSetLatitude(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor := requestcontext.Actor(ctx)
	if actor == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SetLatitudeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if !h.service.SetLatitude(ctx, *req.Latitude, actor) {
		h.logger.WarnContext(ctx, "latitude change refused",
			"request_id", requestID,
			"actor", actor,
			"latitude", *req.Latitude,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "not authorized to change autonomy latitude"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LatitudeResponse{Latitude: h.service.Latitude()})
}

// HandleListCapabilities handles GET /autonomy/capabilities requests.
func (h *Handler) HandleListCapabilities(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, CapabilitiesResponse{Capabilities: h.service.Capabilities()})
}
