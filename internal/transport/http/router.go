// Package httptransport assembles the HTTP surface: middleware chain, route
// groups, and operational endpoints. Business logic stays in the context
// packages; this layer only wires them.
package httptransport

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	autonomyhandler "odyssey/internal/autonomy/handler"
	redisplatform "odyssey/internal/platform/redis"
	"odyssey/pkg/platform/httputil"
	"odyssey/pkg/platform/middleware/apikey"
	"odyssey/pkg/platform/middleware/auth"
	"odyssey/pkg/platform/middleware/metadata"
	"odyssey/pkg/platform/middleware/requestid"
	"odyssey/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router mounts.
type Deps struct {
	Autonomy *autonomyhandler.Handler
	Audit    *AuditHandler

	TokenValidator  auth.TokenValidator
	DetectorKeyHash string

	DB     *sql.DB
	Redis  *redisplatform.Client
	Logger *slog.Logger
}

// NewRouter wires all endpoints. Detector endpoints authenticate by API key,
// operator endpoints by bearer token; read-only gate state is open.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	// Detector surface
	r.Group(func(r chi.Router) {
		r.Use(apikey.RequireKey(deps.DetectorKeyHash, deps.Logger))
		r.Post("/autonomy/issues", deps.Autonomy.HandleReportIssue)
	})

	// Operator surface
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.TokenValidator, deps.Logger))
		r.Put("/autonomy/latitude", deps.Autonomy.HandleSetLatitude)
		r.Get("/audit/events", deps.Audit.HandleListEvents)
	})

	// Read-only gate state
	r.Get("/autonomy/latitude", deps.Autonomy.HandleGetLatitude)
	r.Get("/autonomy/capabilities", deps.Autonomy.HandleListCapabilities)

	// Operational endpoints
	r.Get("/healthz", healthHandler(deps.DB, deps.Redis))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func healthHandler(db *sql.DB, rdb *redisplatform.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			} else {
				checks["postgres"] = "ok"
			}
		}
		if rdb != nil {
			if err := rdb.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}
