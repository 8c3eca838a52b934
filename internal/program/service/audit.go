package service

import (
	"context"
	"strings"

	"grantgate/internal/eligibility"
	id "grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	audit "grantgate/pkg/platform/audit"
	"grantgate/pkg/requestcontext"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// Auditor records program changes and eligibility verdicts.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditTrail reads recorded events back.
type AuditTrail interface {
	ListByProgram(ctx context.Context, programID id.ProgramID, limit int) ([]audit.Event, error)
}

// WithAuditor enables the audit trail. Emission failures are logged and never
// fail the operation that produced the event.
func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithAuditTrail enables ListAuditEvents.
func WithAuditTrail(t AuditTrail) Option {
	return func(s *Service) {
		s.trail = t
	}
}

// ListAuditEvents returns the most recent audit events of a program, oldest
// first. A limit of zero selects the default.
func (s *Service) ListAuditEvents(ctx context.Context, programID id.ProgramID, limit int) ([]audit.Event, error) {
	if limit < 0 || limit > maxAuditLimit {
		return nil, dErrors.Newf(dErrors.CodeValidation, "limit must be between 1 and %d", maxAuditLimit)
	}
	if limit == 0 {
		limit = defaultAuditLimit
	}
	if _, err := s.GetProgram(ctx, programID); err != nil {
		return nil, err
	}
	if s.trail == nil {
		return []audit.Event{}, nil
	}
	events, err := s.trail.ListByProgram(ctx, programID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events")
	}
	return events, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", event.RequestID,
			"program_id", event.ProgramID,
			"action", event.Action,
			"error", err,
		)
	}
}

func verdictEvent(programID id.ProgramID, applicantRef string, res eligibility.Result) audit.Event {
	decision := "ineligible"
	if res.Eligible {
		decision = "eligible"
	}
	return audit.Event{
		ProgramID: programID,
		Subject:   applicantRef,
		Action:    string(audit.EventEligibilityEvaluated),
		Decision:  decision,
		Reason:    strings.Join(res.Failed, "; "),
	}
}
