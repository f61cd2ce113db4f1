package autonomy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"odyssey/internal/constitution"
	"odyssey/internal/knowledge"
	"odyssey/internal/remediation"
	"odyssey/internal/risk"
	"odyssey/pkg/platform/audit"
)

// ============================================================
// Fakes
// ============================================================

type fakeActions struct {
	result remediation.Result
	calls  []remediation.FixType
}

func (f *fakeActions) Apply(_ context.Context, fix remediation.FixType, _ risk.Details) remediation.Result {
	f.calls = append(f.calls, fix)
	return f.result
}

type recordingAuditor struct {
	events []audit.Event
	err    error
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

type failingStateStore struct{}

func (failingStateStore) Fetch(context.Context) (constitution.State, error) {
	return constitution.State{}, errors.New("connection refused")
}

func (failingStateStore) Set(context.Context, constitution.State) error {
	return errors.New("connection refused")
}

// ============================================================
// Suite
// ============================================================

type EngineSuite struct {
	suite.Suite

	actions   *fakeActions
	auditor   *recordingAuditor
	state     *constitution.InMemoryStore
	knowledge *knowledge.InMemoryStore
	engine    *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.buildEngine(Config{
		Latitude:             75,
		FailOpenOnStateFetch: true,
		Authorize:            SinglePrincipal("Master Architect Rickey Howard"),
	})
}

func (s *EngineSuite) buildEngine(cfg Config) {
	s.actions = &fakeActions{result: remediation.Result{
		Success:    true,
		Message:    "cache cleared",
		FixApplied: "cache_clear",
	}}
	s.auditor = &recordingAuditor{}
	s.state = constitution.NewInMemoryStore()
	s.knowledge = knowledge.NewInMemoryStore()

	engine, err := New(cfg, Deps{
		Registry:  remediation.DefaultRegistry(),
		Actions:   s.actions,
		State:     s.state,
		Knowledge: s.knowledge,
		Auditor:   s.auditor,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.Require().NoError(err)
	s.engine = engine
}

func (s *EngineSuite) report(issue risk.IssueType) IssueReport {
	return IssueReport{Type: issue}
}

// ============================================================
// Constructor
// ============================================================

func (s *EngineSuite) TestNewRejectsMissingDeps() {
	_, err := New(Config{Latitude: 40}, Deps{})
	s.Error(err)
}

func (s *EngineSuite) TestNewRejectsLatitudeOutOfRange() {
	_, err := New(Config{Latitude: 101}, Deps{
		Registry:  remediation.DefaultRegistry(),
		Actions:   &fakeActions{},
		State:     constitution.NewInMemoryStore(),
		Knowledge: knowledge.NewInMemoryStore(),
		Auditor:   &recordingAuditor{},
	})
	s.Error(err)
}

// ============================================================
// Gate verdicts
// ============================================================

func (s *EngineSuite) TestLowRiskIssueIsHealed() {
	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))

	s.Equal(StatusHealed, verdict.Status)
	s.Equal(10, verdict.RiskLevel)
	s.Equal("cache cleared", verdict.Message)
	s.Equal("cache_clear", verdict.FixApplied)
	s.Equal(string(remediation.FixClearCache), verdict.ActionTaken)
	s.Equal([]remediation.FixType{remediation.FixClearCache}, s.actions.calls)

	s.Require().Len(s.auditor.events, 1)
	event := s.auditor.events[0]
	s.Equal(string(audit.ActionAutoFixExecuted), event.Action)
	s.Equal(audit.OutcomeSuccess, event.Outcome)
	s.Equal(EngineActor, event.Actor)
	s.Equal("STALE_CACHE", event.IssueType)
	s.Equal(75, event.Latitude)
}

func (s *EngineSuite) TestHighRiskIssueIsNotified() {
	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueSchemaChange))

	s.Equal(StatusNotified, verdict.Status)
	s.Equal(98, verdict.RiskLevel)
	s.Empty(s.actions.calls, "no remediation may run above the latitude")

	s.Require().Len(s.auditor.events, 1)
	event := s.auditor.events[0]
	s.Equal(string(audit.ActionHighRiskDetected), event.Action)
	s.Equal(audit.OutcomePendingReview, event.Outcome)
	s.True(event.RequiresManualIntervention)
}

func (s *EngineSuite) TestRiskEqualToLatitudeIsAutoFixed() {
	ok := s.engine.SetLatitude(context.Background(), 10, "Master Architect Rickey Howard")
	s.Require().True(ok)
	s.auditor.events = nil

	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))
	s.Equal(StatusHealed, verdict.Status, "threshold comparison is inclusive")
}

func (s *EngineSuite) TestDisabledCapabilityFails() {
	// API_KEY_EXPIRED scores 60, below the latitude, but its fix ships disabled.
	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueAPIKeyExpired))

	s.Equal(StatusFailed, verdict.Status)
	s.Equal(60, verdict.RiskLevel)
	s.Empty(s.actions.calls)

	s.Require().Len(s.auditor.events, 1)
	s.Equal(string(audit.ActionFixUnavailable), s.auditor.events[0].Action)
	s.Equal(audit.OutcomeFailed, s.auditor.events[0].Outcome)
}

func (s *EngineSuite) TestUnknownIssueIsNotifiedNotFailed() {
	// Unknown types score 80, above the default latitude, so the threshold
	// check routes them to review before the capability lookup runs.
	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report("QUANTUM_FLUX"))

	s.Equal(StatusNotified, verdict.Status)
	s.Equal(risk.UnknownScore, verdict.RiskLevel)
}

func (s *EngineSuite) TestFailedRemediationEscalates() {
	s.actions.result = remediation.Result{Success: false, Message: "redis unreachable"}

	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))

	s.Equal(StatusEscalated, verdict.Status)
	s.Contains(verdict.Message, "redis unreachable")
	s.Equal(string(remediation.FixClearCache), verdict.ActionTaken)

	s.Require().Len(s.auditor.events, 1)
	s.Equal(string(audit.ActionAutoFixFailed), s.auditor.events[0].Action)
	s.Equal(audit.OutcomeFailed, s.auditor.events[0].Outcome)
}

// ============================================================
// Constitutional state
// ============================================================

func (s *EngineSuite) TestSuspendedConstitutionAborts() {
	err := s.state.Set(context.Background(), constitution.State{
		Category:    constitution.CategoryGovernance,
		Subcategory: constitution.SubcategorySovereignty,
		Status:      constitution.StatusSuspended,
	})
	s.Require().NoError(err)

	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))

	s.Equal(StatusAborted, verdict.Status)
	s.Empty(s.actions.calls)
	s.Empty(s.auditor.events, "aborted evaluations leave no audit record")
}

func (s *EngineSuite) TestStateFetchFailureProceedsWhenFailOpen() {
	engine, err := New(Config{Latitude: 75, FailOpenOnStateFetch: true}, Deps{
		Registry:  remediation.DefaultRegistry(),
		Actions:   s.actions,
		State:     failingStateStore{},
		Knowledge: s.knowledge,
		Auditor:   s.auditor,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.Require().NoError(err)

	verdict := engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))
	s.Equal(StatusHealed, verdict.Status)
}

func (s *EngineSuite) TestStateFetchFailureAbortsWhenFailClosed() {
	engine, err := New(Config{Latitude: 75, FailOpenOnStateFetch: false}, Deps{
		Registry:  remediation.DefaultRegistry(),
		Actions:   s.actions,
		State:     failingStateStore{},
		Knowledge: s.knowledge,
		Auditor:   s.auditor,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.Require().NoError(err)

	verdict := engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))
	s.Equal(StatusAborted, verdict.Status)
	s.Empty(s.actions.calls)
	s.Empty(s.auditor.events)
}

// ============================================================
// Knowledge
// ============================================================

func (s *EngineSuite) TestSuccessfulFixRecordsObservation() {
	s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))

	record, err := s.knowledge.Get(context.Background(), "autofix:STALE_CACHE")
	s.Require().NoError(err)

	var obs fixObservation
	s.Require().NoError(json.Unmarshal(record.Value, &obs))
	s.Equal("STALE_CACHE", obs.IssueType)
	s.Equal(audit.OutcomeSuccess, obs.Outcome)
	s.Equal("cache_clear", obs.FixApplied)
}

func (s *EngineSuite) TestFailedFixRecordsObservation() {
	s.actions.result = remediation.Result{Success: false, Message: "nope"}
	s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))

	record, err := s.knowledge.Get(context.Background(), "autofix:STALE_CACHE")
	s.Require().NoError(err)

	var obs fixObservation
	s.Require().NoError(json.Unmarshal(record.Value, &obs))
	s.Equal(audit.OutcomeFailed, obs.Outcome)
}

func (s *EngineSuite) TestAuditFailureDoesNotChangeVerdict() {
	s.auditor.err = errors.New("outbox full")

	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))
	s.Equal(StatusHealed, verdict.Status)
}

// ============================================================
// Latitude
// ============================================================

func (s *EngineSuite) TestSetLatitudeRejectsOutOfRange() {
	s.False(s.engine.SetLatitude(context.Background(), 150, "Master Architect Rickey Howard"))
	s.False(s.engine.SetLatitude(context.Background(), -1, "Master Architect Rickey Howard"))
	s.Equal(75, s.engine.Latitude())
	s.Empty(s.auditor.events)
}

func (s *EngineSuite) TestSetLatitudeRejectsUnauthorizedActor() {
	s.False(s.engine.SetLatitude(context.Background(), 50, "rickey howard"))
	s.False(s.engine.SetLatitude(context.Background(), 50, ""))
	s.Equal(75, s.engine.Latitude())
	s.Empty(s.auditor.events)
}

func (s *EngineSuite) TestSetLatitudeByAuthorizedPrincipal() {
	ok := s.engine.SetLatitude(context.Background(), 50, "Master Architect Rickey Howard")

	s.True(ok)
	s.Equal(50, s.engine.Latitude())
	s.Require().Len(s.auditor.events, 1)
	event := s.auditor.events[0]
	s.Equal(string(audit.ActionLatitudeChanged), event.Action)
	s.Equal("Master Architect Rickey Howard", event.Actor)
	s.Contains(event.Reason, "from 75 to 50")
	s.Equal(50, event.Latitude)
}

func (s *EngineSuite) TestZeroLatitudeDisablesAllAutoFixes() {
	s.Require().True(s.engine.SetLatitude(context.Background(), 0, "Master Architect Rickey Howard"))
	s.auditor.events = nil

	verdict := s.engine.HandleDetectedIssue(context.Background(), s.report(risk.IssueStaleCache))
	s.Equal(StatusNotified, verdict.Status)
	s.Empty(s.actions.calls)
}

func (s *EngineSuite) TestNilAuthorizePolicyDeniesAll() {
	s.buildEngine(Config{Latitude: 75, FailOpenOnStateFetch: true})
	s.False(s.engine.SetLatitude(context.Background(), 50, "Master Architect Rickey Howard"))
}

// ============================================================
// Queries
// ============================================================

func (s *EngineSuite) TestCanAutoFix() {
	s.True(s.engine.CanAutoFix(risk.IssueStaleCache))
	s.False(s.engine.CanAutoFix(risk.IssueSchemaChange), "above latitude")
	s.False(s.engine.CanAutoFix(risk.IssueAPIKeyExpired), "capability disabled")
	s.False(s.engine.CanAutoFix("QUANTUM_FLUX"), "no mapped capability")
}

func (s *EngineSuite) TestRiskLevel() {
	s.Equal(10, s.engine.RiskLevel(risk.IssueStaleCache, risk.Details{}))
	s.Equal(25, s.engine.RiskLevel(risk.IssueStaleCache, risk.Details{AffectedRows: 2000, Production: true}))
}

func (s *EngineSuite) TestCapabilitiesListsRegistry() {
	listings := s.engine.Capabilities()
	s.Len(listings, 8)
}
