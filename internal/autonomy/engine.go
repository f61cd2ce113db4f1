package autonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"odyssey/internal/autonomy/metrics"
	"odyssey/internal/constitution"
	"odyssey/internal/knowledge"
	"odyssey/internal/remediation"
	"odyssey/internal/risk"
	"odyssey/pkg/platform/audit"
	"odyssey/pkg/requestcontext"
)

// EngineActor identifies the engine itself in audit records for gate verdicts.
const EngineActor = "autonomy engine"

// AuthorizePolicy decides whether an actor may change the latitude.
type AuthorizePolicy func(actor string) bool

// SinglePrincipal authorizes exactly one identity, compared verbatim.
func SinglePrincipal(identity string) AuthorizePolicy {
	return func(actor string) bool { return actor == identity }
}

// ActionRunner executes one remediation and reports its outcome.
// *remediation.Actions satisfies this; tests substitute fakes.
type ActionRunner interface {
	Apply(ctx context.Context, fix remediation.FixType, details risk.Details) remediation.Result
}

// Auditor persists audit events. *publisher.Publisher satisfies this.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config carries the gate's tunable policy. Latitude and the authorization
// policy are explicit here rather than read from ambient settings.
type Config struct {
	// Latitude is the initial risk threshold, inclusive, in [0, 100].
	Latitude int
	// FailOpenOnStateFetch controls behavior when the constitutional state
	// cannot be fetched: true proceeds as if active, false aborts.
	FailOpenOnStateFetch bool
	// Authorize gates latitude changes. Nil denies all changes.
	Authorize AuthorizePolicy
}

// Deps are the engine's collaborators.
type Deps struct {
	Registry  *remediation.Registry
	Actions   ActionRunner
	State     constitution.Store
	Knowledge knowledge.Store
	Auditor   Auditor
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Engine is the risk gate: every detected issue passes through
// HandleDetectedIssue, which decides between automatic remediation and
// human escalation. Safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	latitude int

	failOpen  bool
	authorize AuthorizePolicy

	registry  *remediation.Registry
	actions   ActionRunner
	state     constitution.Store
	knowledge knowledge.Store
	auditor   Auditor
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// New validates dependencies and returns a ready engine.
func New(cfg Config, deps Deps) (*Engine, error) {
	if cfg.Latitude < 0 || cfg.Latitude > risk.MaxScore {
		return nil, fmt.Errorf("latitude %d out of range [0, %d]", cfg.Latitude, risk.MaxScore)
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("capability registry is required")
	}
	if deps.Actions == nil {
		return nil, fmt.Errorf("action runner is required")
	}
	if deps.State == nil {
		return nil, fmt.Errorf("constitutional state store is required")
	}
	if deps.Knowledge == nil {
		return nil, fmt.Errorf("knowledge store is required")
	}
	if deps.Auditor == nil {
		return nil, fmt.Errorf("auditor is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	authorize := cfg.Authorize
	if authorize == nil {
		authorize = func(string) bool { return false }
	}
	deps.Metrics.SetLatitude(cfg.Latitude)
	return &Engine{
		latitude:  cfg.Latitude,
		failOpen:  cfg.FailOpenOnStateFetch,
		authorize: authorize,
		registry:  deps.Registry,
		actions:   deps.Actions,
		state:     deps.State,
		knowledge: deps.Knowledge,
		auditor:   deps.Auditor,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		tracer:    otel.Tracer("odyssey/autonomy"),
	}, nil
}

// fixForIssue maps an issue type to its remediation capability.
func fixForIssue(issue risk.IssueType) (remediation.FixType, bool) {
	switch issue {
	case risk.IssueStaleCache:
		return remediation.FixClearCache, true
	case risk.IssueFunctionDown:
		return remediation.FixRestartFunction, true
	case risk.IssueRLSDrift:
		return remediation.FixApplyAccessPolicies, true
	case risk.IssueOrphanedData:
		return remediation.FixCleanOrphanedData, true
	case risk.IssueErrorSpike:
		return remediation.FixRollbackDeployment, true
	case risk.IssueAPIKeyExpired:
		return remediation.FixRotateAPIKey, true
	case risk.IssueSecretStale:
		return remediation.FixUpdateSecrets, true
	case risk.IssueSchemaChange:
		return remediation.FixAlterSchema, true
	default:
		return "", false
	}
}

// Latitude returns the current threshold.
func (e *Engine) Latitude() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latitude
}

// RiskLevel computes the risk score for an issue without evaluating the gate.
func (e *Engine) RiskLevel(issue risk.IssueType, details risk.Details) int {
	return risk.Assess(issue, details)
}

// CanAutoFix reports whether an issue of this type would be eligible for
// automatic remediation at the current latitude, ignoring report details.
func (e *Engine) CanAutoFix(issue risk.IssueType) bool {
	fix, ok := fixForIssue(issue)
	if !ok || !e.registry.Enabled(fix) {
		return false
	}
	return risk.Assess(issue, risk.Details{}) <= e.Latitude()
}

// Capabilities lists the registered fix capabilities.
func (e *Engine) Capabilities() []remediation.Listing {
	return e.registry.List()
}

// SetLatitude changes the threshold. The change is refused when the value is
// out of range or the actor fails the authorization policy. A successful
// change is audited with the old and new values.
func (e *Engine) SetLatitude(ctx context.Context, v int, authorizedBy string) bool {
	if v < 0 || v > risk.MaxScore {
		e.logger.WarnContext(ctx, "latitude change refused: out of range",
			slog.Int("value", v), slog.String("actor", authorizedBy))
		return false
	}
	if !e.authorize(authorizedBy) {
		e.logger.WarnContext(ctx, "latitude change refused: unauthorized",
			slog.String("actor", authorizedBy))
		return false
	}

	e.mu.Lock()
	old := e.latitude
	e.latitude = v
	e.mu.Unlock()

	e.metrics.SetLatitude(v)
	e.logger.InfoContext(ctx, "autonomy latitude changed",
		slog.Int("from", old), slog.Int("to", v), slog.String("actor", authorizedBy))

	e.emit(ctx, audit.Event{
		Actor:    authorizedBy,
		Action:   string(audit.ActionLatitudeChanged),
		Reason:   fmt.Sprintf("autonomy latitude changed from %d to %d", old, v),
		Latitude: v,
		Outcome:  audit.OutcomeSuccess,
	})
	return true
}

// HandleDetectedIssue is the gate. It classifies the report, checks the
// constitutional state and the latitude, and either runs the mapped
// remediation or records the issue for human review. It never returns an
// error: every path yields a verdict.
func (e *Engine) HandleDetectedIssue(ctx context.Context, report IssueReport) Verdict {
	ctx, span := e.tracer.Start(ctx, "autonomy.handle_detected_issue",
		trace.WithAttributes(attribute.String("issue_type", string(report.Type))))
	defer span.End()

	riskLevel := risk.Assess(report.Type, report.Details)
	span.SetAttributes(attribute.Int("risk_level", riskLevel))
	e.metrics.ObserveRiskScore(riskLevel)

	latitude := e.Latitude()
	log := e.logger.With(
		slog.String("issue_type", string(report.Type)),
		slog.Int("risk_level", riskLevel),
		slog.Int("latitude", latitude),
	)

	if verdict, suspended := e.checkConstitution(ctx, log, riskLevel); suspended {
		return e.finish(span, log, report, verdict)
	}

	if riskLevel > latitude {
		e.emit(ctx, audit.Event{
			Actor:                      EngineActor,
			Action:                     string(audit.ActionHighRiskDetected),
			Reason:                     fmt.Sprintf("risk %d exceeds latitude %d", riskLevel, latitude),
			IssueType:                  string(report.Type),
			RiskLevel:                  riskLevel,
			Latitude:                   latitude,
			Outcome:                    audit.OutcomePendingReview,
			RequiresManualIntervention: true,
			RequestID:                  requestcontext.RequestID(ctx),
		})
		return e.finish(span, log, report, Verdict{
			Status:    StatusNotified,
			Message:   fmt.Sprintf("risk level %d exceeds autonomy latitude %d; flagged for manual review", riskLevel, latitude),
			RiskLevel: riskLevel,
		})
	}

	fix, ok := fixForIssue(report.Type)
	if !ok || !e.registry.Enabled(fix) {
		e.emit(ctx, audit.Event{
			Actor:     EngineActor,
			Action:    string(audit.ActionFixUnavailable),
			Reason:    fmt.Sprintf("no enabled fix capability for issue %s", report.Type),
			IssueType: string(report.Type),
			RiskLevel: riskLevel,
			Latitude:  latitude,
			Outcome:   audit.OutcomeFailed,
			RequestID: requestcontext.RequestID(ctx),
		})
		return e.finish(span, log, report, Verdict{
			Status:    StatusFailed,
			Message:   fmt.Sprintf("no automated fix available for %s", report.Type),
			RiskLevel: riskLevel,
		})
	}

	started := time.Now()
	result := e.actions.Apply(ctx, fix, report.Details)
	e.metrics.ObserveRemediationDuration(string(fix), time.Since(started))

	if !result.Success {
		e.emit(ctx, audit.Event{
			Actor:     EngineActor,
			Action:    string(audit.ActionAutoFixFailed),
			Reason:    result.Message,
			IssueType: string(report.Type),
			RiskLevel: riskLevel,
			Latitude:  latitude,
			Outcome:   audit.OutcomeFailed,
			RequestID: requestcontext.RequestID(ctx),
		})
		e.recordObservation(ctx, report, riskLevel, fix, result)
		return e.finish(span, log, report, Verdict{
			Status:      StatusEscalated,
			Message:     fmt.Sprintf("automated fix for %s failed: %s", report.Type, result.Message),
			RiskLevel:   riskLevel,
			ActionTaken: string(fix),
		})
	}

	e.emit(ctx, audit.Event{
		Actor:      EngineActor,
		Action:     string(audit.ActionAutoFixExecuted),
		Reason:     result.Message,
		IssueType:  string(report.Type),
		RiskLevel:  riskLevel,
		Latitude:   latitude,
		Outcome:    audit.OutcomeSuccess,
		FixApplied: result.FixApplied,
		RequestID:  requestcontext.RequestID(ctx),
	})
	e.recordObservation(ctx, report, riskLevel, fix, result)
	return e.finish(span, log, report, Verdict{
		Status:      StatusHealed,
		Message:     result.Message,
		RiskLevel:   riskLevel,
		FixApplied:  result.FixApplied,
		ActionTaken: string(fix),
	})
}

// checkConstitution fetches the constitutional state and translates it into
// an abort verdict when autonomy is suspended. A fetch failure follows the
// configured fail-open policy.
func (e *Engine) checkConstitution(ctx context.Context, log *slog.Logger, riskLevel int) (Verdict, bool) {
	state, err := e.state.Fetch(ctx)
	if err != nil {
		if e.failOpen {
			log.WarnContext(ctx, "constitutional state unavailable, proceeding fail-open",
				slog.String("error", err.Error()))
			return Verdict{}, false
		}
		log.ErrorContext(ctx, "constitutional state unavailable, aborting",
			slog.String("error", err.Error()))
		return Verdict{
			Status:    StatusAborted,
			Message:   "constitutional state unavailable; autonomous action withheld",
			RiskLevel: riskLevel,
		}, true
	}
	if !state.Active() {
		log.InfoContext(ctx, "autonomy suspended by constitutional state",
			slog.String("status", state.Status))
		return Verdict{
			Status:    StatusAborted,
			Message:   "autonomous operation is suspended",
			RiskLevel: riskLevel,
		}, true
	}
	return Verdict{}, false
}

// fixObservation is the knowledge payload written after every remediation
// attempt, keyed by issue type so later attempts overwrite earlier ones.
type fixObservation struct {
	IssueType  string    `json:"issue_type"`
	Outcome    string    `json:"outcome"`
	FixApplied string    `json:"fix_applied,omitempty"`
	Message    string    `json:"message"`
	RiskLevel  int       `json:"risk_level"`
	ObservedAt time.Time `json:"observed_at"`
}

func (e *Engine) recordObservation(ctx context.Context, report IssueReport, riskLevel int, fix remediation.FixType, result remediation.Result) {
	outcome := audit.OutcomeSuccess
	if !result.Success {
		outcome = audit.OutcomeFailed
	}
	payload, err := json.Marshal(fixObservation{
		IssueType:  string(report.Type),
		Outcome:    outcome,
		FixApplied: result.FixApplied,
		Message:    result.Message,
		RiskLevel:  riskLevel,
		ObservedAt: requestcontext.Now(ctx),
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to encode fix observation", slog.String("error", err.Error()))
		return
	}
	record := knowledge.Record{
		Key:   "autofix:" + string(report.Type),
		Value: payload,
	}
	if err := e.knowledge.Upsert(ctx, record); err != nil {
		// Knowledge is advisory; the verdict stands regardless.
		e.logger.ErrorContext(ctx, "failed to record fix observation",
			slog.String("key", record.Key), slog.String("error", err.Error()))
	}
}

// emit writes one audit event, logging rather than failing the verdict when
// the audit store is unavailable.
func (e *Engine) emit(ctx context.Context, event audit.Event) {
	if err := e.auditor.Emit(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "failed to write audit event",
			slog.String("action", event.Action), slog.String("error", err.Error()))
	}
}

func (e *Engine) finish(span trace.Span, log *slog.Logger, report IssueReport, v Verdict) Verdict {
	span.SetAttributes(attribute.String("verdict", string(v.Status)))
	e.metrics.IncrementVerdict(string(v.Status), string(report.Type))
	log.Info("gate verdict", slog.String("status", string(v.Status)), slog.String("message", v.Message))
	return v
}
