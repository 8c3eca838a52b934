package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"grantgate/internal/eligibility"
	"grantgate/internal/program/models"
	"grantgate/internal/program/schema"
	"grantgate/internal/program/service"
	rlModels "grantgate/internal/ratelimit/models"
	id "grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	audit "grantgate/pkg/platform/audit"
	"grantgate/pkg/platform/httputil"
	"grantgate/pkg/requestcontext"
)

// Service defines the program operations exposed over HTTP.
type Service interface {
	CreateProgram(ctx context.Context, cmd service.CreateProgramCommand) (*models.Program, error)
	GetProgram(ctx context.Context, programID id.ProgramID) (*models.Program, error)
	ListPrograms(ctx context.Context) ([]*models.Program, error)
	AddCriterion(ctx context.Context, programID id.ProgramID, c eligibility.Criterion) (*models.Program, eligibility.Criterion, error)
	UpdateQuestion(ctx context.Context, programID id.ProgramID, q eligibility.Question) (*models.Program, error)
	Evaluate(ctx context.Context, programID id.ProgramID, answers eligibility.Answers) (*service.Evaluation, error)
	EvaluateBatch(ctx context.Context, programID id.ProgramID, applicants []service.Applicant) ([]*service.Evaluation, error)
	ValidateCondition(ctx context.Context, inputType eligibility.InputType, op eligibility.ComparisonOperator, values []any) error
	LegalOperators(inputType eligibility.InputType) ([]eligibility.ComparisonOperator, error)
	ListAuditEvents(ctx context.Context, programID id.ProgramID, limit int) ([]audit.Event, error)
}

// RouteLimiter throttles the routes of one endpoint class.
type RouteLimiter interface {
	RateLimit(class rlModels.EndpointClass) func(http.Handler) http.Handler
}

// Handler wires program endpoints to the program service.
type Handler struct {
	service Service
	schema  *schema.Validator
	logger  *slog.Logger
	limiter RouteLimiter
}

// Option configures a Handler.
type Option func(*Handler)

// WithRouteLimiter applies per-class rate limits to the mounted routes.
func WithRouteLimiter(l RouteLimiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

// New constructs a program handler. A nil validator skips JSON Schema checks.
func New(service Service, validator *schema.Validator, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{
		service: service,
		schema:  validator,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts program endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	evaluate := h.limit(rlModels.ClassEvaluate)
	authoring := h.limit(rlModels.ClassAuthoring)
	read := h.limit(rlModels.ClassRead)

	r.Route("/v1/programs", func(r chi.Router) {
		r.With(authoring).Post("/", h.HandleCreateProgram)
		r.With(read).Get("/", h.HandleListPrograms)
		r.Route("/{programID}", func(r chi.Router) {
			r.With(read).Get("/", h.HandleGetProgram)
			r.With(authoring).Post("/criteria", h.HandleAddCriterion)
			r.With(authoring).Put("/questions/{questionID}", h.HandleUpdateQuestion)
			r.With(evaluate).Post("/eligibility", h.HandleEvaluate)
			r.With(evaluate).Post("/eligibility/batch", h.HandleEvaluateBatch)
			r.With(read).Get("/audit", h.HandleListAuditEvents)
		})
	})
	r.With(read).Post("/v1/conditions/validate", h.HandleValidateCondition)
	r.With(read).Get("/v1/input-types/{inputType}/operators", h.HandleLegalOperators)
}

func (h *Handler) limit(class rlModels.EndpointClass) func(http.Handler) http.Handler {
	if h.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.limiter.RateLimit(class)
}

// HandleCreateProgram handles POST /v1/programs.
func (h *Handler) HandleCreateProgram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeCheckAndPrepare[CreateProgramRequest](w, r, h.logger, ctx, requestID, h.check(schema.DocumentProgram))
	if !ok {
		return
	}

	p, err := h.service.CreateProgram(ctx, service.CreateProgramCommand{
		Name:        req.Name,
		Description: req.Description,
		Questions:   req.Questions,
		Groups:      req.Groups,
		Criteria:    req.Criteria,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "program creation failed", err, "name", req.Name)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromProgram(p))
}

// HandleListPrograms handles GET /v1/programs.
func (h *Handler) HandleListPrograms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	programs, err := h.service.ListPrograms(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list programs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPrograms(programs))
}

// HandleGetProgram handles GET /v1/programs/{programID}.
func (h *Handler) HandleGetProgram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	programID, ok := h.programID(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetProgram(ctx, programID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get program", err, "program_id", programID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProgram(p))
}

// HandleAddCriterion handles POST /v1/programs/{programID}/criteria.
func (h *Handler) HandleAddCriterion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	programID, ok := h.programID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeCheckAndPrepare[AddCriterionRequest](w, r, h.logger, ctx, requestID, h.check(schema.DocumentCriterion))
	if !ok {
		return
	}

	p, added, err := h.service.AddCriterion(ctx, programID, req.Criterion)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to add criterion", err, "program_id", programID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &CriterionAddedResponse{
		Criterion: added,
		Program:   FromProgram(p),
	})
}

// HandleUpdateQuestion handles PUT /v1/programs/{programID}/questions/{questionID}.
func (h *Handler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	programID, ok := h.programID(w, r)
	if !ok {
		return
	}
	questionID := chi.URLParam(r, "questionID")

	req, ok := httputil.DecodeCheckAndPrepare[UpdateQuestionRequest](w, r, h.logger, ctx, requestID, h.check(schema.DocumentQuestion))
	if !ok {
		return
	}
	if req.ID != questionID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "question id in body does not match the path"))
		return
	}

	p, err := h.service.UpdateQuestion(ctx, programID, req.Question)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update question", err,
			"program_id", programID,
			"question_id", questionID,
		)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProgram(p))
}

// HandleEvaluate handles POST /v1/programs/{programID}/eligibility.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	programID, ok := h.programID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	eval, err := h.service.Evaluate(ctx, programID, eligibility.Answers(req.Answers))
	if err != nil {
		h.writeServiceError(ctx, w, "eligibility evaluation failed", err, "program_id", programID)
		return
	}

	h.logger.InfoContext(ctx, "eligibility evaluated",
		"request_id", requestID,
		"program_id", programID,
		"applicant_ref", eval.ApplicantRef,
		"eligible", eval.Result.Eligible,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromEvaluation(eval))
}

// HandleEvaluateBatch handles POST /v1/programs/{programID}/eligibility/batch.
func (h *Handler) HandleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	programID, ok := h.programID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[BatchEvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	applicants := make([]service.Applicant, len(req.Applicants))
	for i, a := range req.Applicants {
		applicants[i] = service.Applicant{Ref: a.Ref, Answers: eligibility.Answers(a.Answers)}
	}

	evals, err := h.service.EvaluateBatch(ctx, programID, applicants)
	if err != nil {
		h.writeServiceError(ctx, w, "batch evaluation failed", err,
			"program_id", programID,
			"applicants", len(applicants),
		)
		return
	}

	resp := FromBatch(evals)
	h.logger.InfoContext(ctx, "batch evaluated",
		"request_id", requestID,
		"program_id", programID,
		"applicants", resp.Total,
		"eligible", resp.Eligible,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleValidateCondition handles POST /v1/conditions/validate. Authoring
// rule violations are part of the answer, not a request failure.
func (h *Handler) HandleValidateCondition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateConditionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	err := h.service.ValidateCondition(ctx,
		eligibility.InputType(req.InputType),
		eligibility.ComparisonOperator(req.ComparisonOperator),
		req.Values,
	)
	var ae *eligibility.AuthoringError
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, &ConditionValidationResponse{Valid: true})
	case errors.As(err, &ae):
		httputil.WriteJSON(w, http.StatusOK, &ConditionValidationResponse{
			Valid:   false,
			Reason:  string(ae.Kind),
			Message: ae.Message,
		})
	default:
		h.writeServiceError(ctx, w, "condition validation failed", err)
	}
}

// HandleLegalOperators handles GET /v1/input-types/{inputType}/operators.
func (h *Handler) HandleLegalOperators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inputType := eligibility.InputType(chi.URLParam(r, "inputType"))

	ops, err := h.service.LegalOperators(inputType)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list operators", err, "input_type", inputType)
		return
	}
	dt, _ := eligibility.DataTypeFor(inputType)
	httputil.WriteJSON(w, http.StatusOK, &OperatorsResponse{
		InputType: string(inputType),
		DataType:  string(dt),
		Operators: ops,
	})
}

// HandleListAuditEvents handles GET /v1/programs/{programID}/audit?limit=N.
func (h *Handler) HandleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	programID, ok := h.programID(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be an integer"))
			return
		}
		limit = n
	}

	events, err := h.service.ListAuditEvents(ctx, programID, limit)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list audit events", err, "program_id", programID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAuditEvents(programID, events))
}

func (h *Handler) programID(w http.ResponseWriter, r *http.Request) (id.ProgramID, bool) {
	programID, err := id.ParseProgramID(chi.URLParam(r, "programID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProgramID{}, false
	}
	return programID, true
}

func (h *Handler) check(doc schema.Document) httputil.BodyCheck {
	if h.schema == nil {
		return nil
	}
	return func(raw []byte) error {
		return h.schema.ValidateBytes(doc, raw)
	}
}

// writeServiceError logs at ERROR for internal failures and at WARN for
// caller mistakes, then writes the mapped response.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
