// Package service orchestrates grant program authoring and applicant
// evaluation on top of the eligibility engine.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"grantgate/internal/eligibility"
	"grantgate/internal/program/metrics"
	"grantgate/internal/program/models"
	id "grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	audit "grantgate/pkg/platform/audit"
	"grantgate/pkg/platform/sentinel"
	"grantgate/pkg/requestcontext"
)

const (
	tracerName = "grantgate/program"

	defaultBatchConcurrency = 8
	defaultMaxBatchSize     = 500
)

// Store is the persistence port for programs.
type Store interface {
	Create(ctx context.Context, program *models.Program) error
	FindByID(ctx context.Context, programID id.ProgramID) (*models.Program, error)
	List(ctx context.Context) ([]*models.Program, error)
	Execute(ctx context.Context, programID id.ProgramID, fn func(*models.Program) error) (*models.Program, error)
}

// Service orchestrates program authoring and eligibility evaluation.
type Service struct {
	programs         Store
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	batchConcurrency int
	maxBatchSize     int
	auditor          Auditor
	trail            AuditTrail
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBatchConcurrency bounds how many applicants of one batch are evaluated
// at the same time. Values below 1 are ignored.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithMaxBatchSize caps the number of applicants accepted per batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// New constructs a Service.
func New(programs Store, opts ...Option) *Service {
	s := &Service{
		programs:         programs,
		logger:           slog.New(slog.DiscardHandler),
		tracer:           otel.Tracer(tracerName),
		batchConcurrency: defaultBatchConcurrency,
		maxBatchSize:     defaultMaxBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProgramCommand carries an authored program.
type CreateProgramCommand struct {
	Name        string
	Description string
	Questions   []eligibility.Question
	Groups      []eligibility.QuestionGroup
	Criteria    []eligibility.Criterion
}

func (s *Service) CreateProgram(ctx context.Context, cmd CreateProgramCommand) (*models.Program, error) {
	ctx, span := s.tracer.Start(ctx, "program.create")
	defer span.End()

	now := requestcontext.Now(ctx)
	p, err := models.NewProgram(id.NewProgramID(), cmd.Name, cmd.Description, cmd.Questions, cmd.Groups, cmd.Criteria, now)
	if err != nil {
		return nil, s.fail(span, s.translateAuthoring(err))
	}
	span.SetAttributes(attribute.String("program.id", p.ID.String()))

	if err := s.programs.Create(ctx, p); err != nil {
		return nil, s.fail(span, wrapStoreErr(err, "failed to create program"))
	}
	s.metrics.IncrementProgramsCreated()
	s.emit(ctx, audit.Event{
		ProgramID: p.ID,
		Subject:   p.Name,
		Action:    string(audit.EventProgramCreated),
	})
	s.logger.InfoContext(ctx, "program created",
		"request_id", requestcontext.RequestID(ctx),
		"program_id", p.ID,
		"criteria", len(p.Criteria),
	)
	return p, nil
}

func (s *Service) GetProgram(ctx context.Context, programID id.ProgramID) (*models.Program, error) {
	if programID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "program ID is required")
	}
	p, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load program")
	}
	return p, nil
}

func (s *Service) ListPrograms(ctx context.Context) ([]*models.Program, error) {
	programs, err := s.programs.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to list programs")
	}
	return programs, nil
}

// AddCriterion appends a criterion to a program after checking it against the
// authoring rules and the program's invariants.
//
// Uses the Execute callback pattern so validation and mutation happen under
// the store's lock.
func (s *Service) AddCriterion(ctx context.Context, programID id.ProgramID, c eligibility.Criterion) (*models.Program, eligibility.Criterion, error) {
	ctx, span := s.tracer.Start(ctx, "program.add_criterion",
		trace.WithAttributes(attribute.String("program.id", programID.String())))
	defer span.End()

	if programID.IsNil() {
		return nil, eligibility.Criterion{}, dErrors.New(dErrors.CodeBadRequest, "program ID is required")
	}

	now := requestcontext.Now(ctx)
	var added eligibility.Criterion
	p, err := s.programs.Execute(ctx, programID, func(p *models.Program) error {
		var err error
		added, err = p.AddCriterion(c, now)
		return err
	})
	if err != nil {
		return nil, eligibility.Criterion{}, s.fail(span, s.translateMutation(err, "failed to add criterion"))
	}

	s.emit(ctx, audit.Event{
		ProgramID: programID,
		Subject:   added.ID,
		Action:    string(audit.EventCriterionAdded),
		Reason:    added.Reference(),
	})
	s.logger.InfoContext(ctx, "criterion added",
		"request_id", requestcontext.RequestID(ctx),
		"program_id", programID,
		"criterion_id", added.ID,
		"criterion_type", added.Kind,
	)
	return p, added, nil
}

// UpdateQuestion replaces a question definition. Changing the input or data
// type of a question that a criterion constrains is rejected with a conflict.
func (s *Service) UpdateQuestion(ctx context.Context, programID id.ProgramID, q eligibility.Question) (*models.Program, error) {
	ctx, span := s.tracer.Start(ctx, "program.update_question",
		trace.WithAttributes(
			attribute.String("program.id", programID.String()),
			attribute.String("question.id", q.ID),
		))
	defer span.End()

	if programID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "program ID is required")
	}
	if strings.TrimSpace(q.ID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "question ID is required")
	}

	now := requestcontext.Now(ctx)
	p, err := s.programs.Execute(ctx, programID, func(p *models.Program) error {
		return p.ReplaceQuestion(q, now)
	})
	if err != nil {
		return nil, s.fail(span, s.translateMutation(err, "failed to update question"))
	}

	s.emit(ctx, audit.Event{
		ProgramID: programID,
		Subject:   q.ID,
		Action:    string(audit.EventQuestionUpdated),
	})
	s.logger.InfoContext(ctx, "question updated",
		"request_id", requestcontext.RequestID(ctx),
		"program_id", programID,
		"question_id", q.ID,
	)
	return p, nil
}

// ValidateCondition runs the authoring rules for a single condition without
// touching any program.
func (s *Service) ValidateCondition(ctx context.Context, inputType eligibility.InputType, op eligibility.ComparisonOperator, values []any) error {
	err := eligibility.ValidateCondition(inputType, op, values)
	if err == nil {
		return nil
	}
	var ae *eligibility.AuthoringError
	if errors.As(err, &ae) {
		s.metrics.IncrementAuthoringRejection(string(ae.Kind))
		s.logger.DebugContext(ctx, "condition rejected",
			"request_id", requestcontext.RequestID(ctx),
			"reason", ae.Kind,
			"input_type", inputType,
			"operator", op,
		)
	}
	return err
}

// LegalOperators returns the operators an author may pick for an input type.
func (s *Service) LegalOperators(inputType eligibility.InputType) ([]eligibility.ComparisonOperator, error) {
	if !inputType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "unknown input type %q", inputType)
	}
	return eligibility.LegalOperators(inputType), nil
}

// translateAuthoring maps program invariant failures to caller-facing codes:
// authoring rule violations become unprocessable, everything else a
// validation error.
func (s *Service) translateAuthoring(err error) error {
	var ae *eligibility.AuthoringError
	if errors.As(err, &ae) {
		s.metrics.IncrementAuthoringRejection(string(ae.Kind))
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, dErrors.Message(err))
	}
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.Wrap(err, dErrors.CodeValidation, dErrors.Message(err))
	}
	return err
}

func (s *Service) translateMutation(err error, msg string) error {
	switch {
	case errors.Is(err, models.ErrQuestionReferenced):
		return dErrors.Wrap(err, dErrors.CodeConflict,
			"question is used by a criterion; remove the criterion before changing its input type")
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return s.translateAuthoring(err)
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		return err
	default:
		return wrapStoreErr(err, msg)
	}
}

func wrapStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "program not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "program already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}
