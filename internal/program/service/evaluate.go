package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"grantgate/internal/eligibility"
	"grantgate/internal/program/models"
	id "grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	"grantgate/pkg/requestcontext"
)

// Evaluation is the eligibility verdict for one applicant.
type Evaluation struct {
	ProgramID    id.ProgramID
	ApplicantRef string
	Result       eligibility.Result
	EvaluatedAt  time.Time
}

// Applicant is one entry of a batch evaluation.
type Applicant struct {
	Ref     string
	Answers eligibility.Answers
}

// Evaluate decides whether one applicant's answers satisfy every criterion of
// the program.
func (s *Service) Evaluate(ctx context.Context, programID id.ProgramID, answers eligibility.Answers) (*Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "program.evaluate",
		trace.WithAttributes(attribute.String("program.id", programID.String())))
	defer span.End()
	start := time.Now()

	p, err := s.GetProgram(ctx, programID)
	if err != nil {
		return nil, s.fail(span, err)
	}

	eval, err := s.evaluate(ctx, p, requestcontext.ApplicantRef(ctx), answers)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Bool("eligible", eval.Result.Eligible))
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	return eval, nil
}

// EvaluateBatch evaluates many applicants against one program. The program is
// loaded once; applicants are evaluated concurrently up to the configured
// limit and results keep the input order. Cancelling ctx stops scheduling
// further applicants.
func (s *Service) EvaluateBatch(ctx context.Context, programID id.ProgramID, applicants []Applicant) ([]*Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "program.evaluate_batch",
		trace.WithAttributes(
			attribute.String("program.id", programID.String()),
			attribute.Int("batch.size", len(applicants)),
		))
	defer span.End()
	start := time.Now()

	if len(applicants) == 0 {
		return nil, s.fail(span, dErrors.New(dErrors.CodeValidation, "at least one applicant is required"))
	}
	if len(applicants) > s.maxBatchSize {
		return nil, s.fail(span, dErrors.Newf(dErrors.CodeValidation, "a batch may contain at most %d applicants", s.maxBatchSize))
	}

	p, err := s.GetProgram(ctx, programID)
	if err != nil {
		return nil, s.fail(span, err)
	}

	results := make([]*Evaluation, len(applicants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, applicant := range applicants {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			eval, err := s.evaluate(gctx, p, applicant.Ref, applicant.Answers)
			if err != nil {
				return err
			}
			results[i] = eval
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(span, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "batch evaluation cancelled"))
	}

	s.metrics.ObserveBatchEvaluateLatency(time.Since(start))
	s.logger.InfoContext(ctx, "batch evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"program_id", programID,
		"applicants", len(applicants),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (s *Service) evaluate(ctx context.Context, p *models.Program, applicantRef string, answers eligibility.Answers) (*Evaluation, error) {
	if answers == nil {
		answers = eligibility.Answers{}
	}
	res, err := p.Evaluate(answers)
	if err != nil {
		s.metrics.IncrementEvaluation("error")
		if errors.Is(err, eligibility.ErrContractViolation) {
			// Stored programs are validated, so this means a program was
			// persisted by something that bypassed the invariants.
			s.logger.ErrorContext(ctx, "program violates the evaluation contract",
				"request_id", requestcontext.RequestID(ctx),
				"program_id", p.ID,
				"error", err,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate eligibility")
	}

	for _, f := range res.Faults {
		s.logger.WarnContext(ctx, "criterion references missing data",
			"request_id", requestcontext.RequestID(ctx),
			"program_id", p.ID,
			"criterion_id", f.CriterionID,
			"group_id", f.GroupID,
			"question_id", f.QuestionID,
			"reason", f.Reason,
		)
	}
	for _, m := range res.Malformed {
		s.logger.DebugContext(ctx, "stored answer is malformed",
			"request_id", requestcontext.RequestID(ctx),
			"program_id", p.ID,
			"applicant_ref", applicantRef,
			"criterion_id", m.CriterionID,
			"group_id", m.GroupID,
			"question_id", m.QuestionID,
			"kind", m.Kind,
		)
	}
	s.metrics.AddIntegrityFaults(len(res.Faults))
	for _, o := range res.Outcomes {
		s.metrics.IncrementCriterionOutcome(string(o.Kind), o.Passed)
	}
	outcome := "ineligible"
	if res.Eligible {
		outcome = "eligible"
	}
	s.metrics.IncrementEvaluation(outcome)

	s.logger.DebugContext(ctx, "applicant evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"program_id", p.ID,
		"applicant_ref", applicantRef,
		"eligible", res.Eligible,
		"failed", res.Failed,
	)

	eval := &Evaluation{
		ProgramID:    p.ID,
		ApplicantRef: applicantRef,
		Result:       res,
		EvaluatedAt:  requestcontext.Now(ctx),
	}
	event := verdictEvent(p.ID, applicantRef, res)
	event.Timestamp = eval.EvaluatedAt
	s.emit(ctx, event)
	return eval, nil
}
