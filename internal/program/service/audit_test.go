package service

import (
	"context"
	"errors"

	"grantgate/internal/eligibility"
	id "grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	audit "grantgate/pkg/platform/audit"
	"grantgate/pkg/platform/audit/publisher"
	"grantgate/pkg/platform/audit/store/memory"
	"grantgate/pkg/requestcontext"
)

type failingAuditor struct{}

func (failingAuditor) Emit(context.Context, audit.Event) error {
	return errors.New("audit store down")
}

func (s *ServiceSuite) TestAuditTrail() {
	trail := memory.NewInMemoryStore()
	pub := publisher.NewPublisher(trail)
	s.T().Cleanup(func() { _ = pub.Close() })
	s.service = New(s.store, WithAuditor(pub), WithAuditTrail(trail))
	ctx := requestcontext.WithRequestID(s.ctx, "req-42")

	p, err := s.service.CreateProgram(ctx, bursaryCommand())
	s.Require().NoError(err)
	_, err = s.service.Evaluate(requestcontext.WithApplicantRef(ctx, "applicant-9"), p.ID, eligibility.Answers{
		"age": "17", "country": "GB", "visaStatus": "settled",
	})
	s.Require().NoError(err)

	events, err := s.service.ListAuditEvents(ctx, p.ID, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	s.Equal(string(audit.EventProgramCreated), events[0].Action)
	s.Equal("req-42", events[0].RequestID)
	s.Equal(s.now, events[0].Timestamp)

	verdict := events[1]
	s.Equal(string(audit.EventEligibilityEvaluated), verdict.Action)
	s.Equal("applicant-9", verdict.Subject)
	s.Equal("ineligible", verdict.Decision)
	s.Equal("age", verdict.Reason)
	s.Equal(audit.CategoryCompliance, verdict.Category)

	s.Run("limit keeps the most recent", func() {
		events, err := s.service.ListAuditEvents(ctx, p.ID, 1)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventEligibilityEvaluated), events[0].Action)
	})

	s.Run("invalid limit", func() {
		_, err := s.service.ListAuditEvents(ctx, p.ID, -1)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown program", func() {
		_, err := s.service.ListAuditEvents(ctx, id.NewProgramID(), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailOperation() {
	s.service = New(s.store, WithAuditor(failingAuditor{}))

	p, err := s.service.CreateProgram(s.ctx, bursaryCommand())
	s.Require().NoError(err)

	eval, err := s.service.Evaluate(s.ctx, p.ID, eligibility.Answers{"age": "30", "country": "GB", "visaStatus": "citizen"})
	s.Require().NoError(err)
	s.True(eval.Result.Eligible)
}

func (s *ServiceSuite) TestAuditEventsWithoutTrail() {
	p := s.createProgram()
	events, err := s.service.ListAuditEvents(s.ctx, p.ID, 0)
	s.Require().NoError(err)
	s.Empty(events)
}
