package handler

import (
	"time"

	"grantgate/internal/eligibility"
	"grantgate/internal/program/models"
	"grantgate/internal/program/service"
	id "grantgate/pkg/domain"
	audit "grantgate/pkg/platform/audit"
)

// ProgramResponse is the HTTP representation of a program.
type ProgramResponse struct {
	ID          string                      `json:"id"`
	Name        string                      `json:"name"`
	Description string                      `json:"description,omitempty"`
	Questions   []eligibility.Question      `json:"questions"`
	Groups      []eligibility.QuestionGroup `json:"groups"`
	Criteria    []eligibility.Criterion     `json:"criteria"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// FromProgram converts a program to its HTTP response.
func FromProgram(p *models.Program) *ProgramResponse {
	return &ProgramResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Questions:   nonNil(p.Questions),
		Groups:      nonNil(p.Groups),
		Criteria:    nonNil(p.Criteria),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProgramListResponse is the response of GET /v1/programs.
type ProgramListResponse struct {
	Programs []*ProgramResponse `json:"programs"`
}

func FromPrograms(programs []*models.Program) *ProgramListResponse {
	out := make([]*ProgramResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, FromProgram(p))
	}
	return &ProgramListResponse{Programs: out}
}

// CriterionAddedResponse is the response of POST .../criteria.
type CriterionAddedResponse struct {
	Criterion eligibility.Criterion `json:"criterion"`
	Program   *ProgramResponse      `json:"program"`
}

// OutcomeResponse reports a single criterion result.
type OutcomeResponse struct {
	CriterionID string `json:"criterion_id"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Passed      bool   `json:"passed"`
}

// EvaluationResponse is the eligibility verdict for one applicant.
type EvaluationResponse struct {
	ProgramID    string                       `json:"program_id"`
	ApplicantRef string                       `json:"applicant_ref,omitempty"`
	Eligible     bool                         `json:"eligible"`
	Passed       []string                     `json:"passed"`
	Failed       []string                     `json:"failed"`
	Outcomes     []OutcomeResponse            `json:"outcomes"`
	Faults       []eligibility.IntegrityFault `json:"faults,omitempty"`
	Malformed    []MalformedAnswerResponse    `json:"malformed,omitempty"`
	EvaluatedAt  time.Time                    `json:"evaluated_at"`
}

// MalformedAnswerResponse names a stored answer that could not be read as
// its question's data type.
type MalformedAnswerResponse struct {
	CriterionID string `json:"criterion_id"`
	GroupID     string `json:"group_id,omitempty"`
	QuestionID  string `json:"question_id"`
	Kind        string `json:"kind"`
}

// FromEvaluation converts a service evaluation to its HTTP response.
func FromEvaluation(e *service.Evaluation) *EvaluationResponse {
	outcomes := make([]OutcomeResponse, 0, len(e.Result.Outcomes))
	for _, o := range e.Result.Outcomes {
		outcomes = append(outcomes, OutcomeResponse{
			CriterionID: o.CriterionID,
			Type:        string(o.Kind),
			Label:       o.Label,
			Passed:      o.Passed,
		})
	}
	var malformed []MalformedAnswerResponse
	for _, m := range e.Result.Malformed {
		malformed = append(malformed, MalformedAnswerResponse{
			CriterionID: m.CriterionID,
			GroupID:     m.GroupID,
			QuestionID:  m.QuestionID,
			Kind:        string(m.Kind),
		})
	}
	return &EvaluationResponse{
		ProgramID:    e.ProgramID.String(),
		ApplicantRef: e.ApplicantRef,
		Eligible:     e.Result.Eligible,
		Passed:       nonNil(e.Result.Passed),
		Failed:       nonNil(e.Result.Failed),
		Outcomes:     outcomes,
		Faults:       e.Result.Faults,
		Malformed:    malformed,
		EvaluatedAt:  e.EvaluatedAt,
	}
}

// BatchEvaluationResponse is the response of POST .../eligibility/batch.
// Results keep the order of the submitted applicants.
type BatchEvaluationResponse struct {
	Results  []*EvaluationResponse `json:"results"`
	Eligible int                   `json:"eligible"`
	Total    int                   `json:"total"`
}

func FromBatch(evals []*service.Evaluation) *BatchEvaluationResponse {
	resp := &BatchEvaluationResponse{Results: make([]*EvaluationResponse, 0, len(evals)), Total: len(evals)}
	for _, e := range evals {
		resp.Results = append(resp.Results, FromEvaluation(e))
		if e.Result.Eligible {
			resp.Eligible++
		}
	}
	return resp
}

// ConditionValidationResponse is the response of POST /v1/conditions/validate.
// A rejected condition is reported in the body with status 200.
type ConditionValidationResponse struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// OperatorsResponse lists the operators legal for an input type.
type OperatorsResponse struct {
	InputType string                           `json:"input_type"`
	DataType  string                           `json:"data_type"`
	Operators []eligibility.ComparisonOperator `json:"operators"`
}

// AuditEventResponse is one entry of a program's audit trail.
type AuditEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// AuditTrailResponse is the response of GET /v1/programs/{programID}/audit.
type AuditTrailResponse struct {
	ProgramID string               `json:"program_id"`
	Events    []AuditEventResponse `json:"events"`
}

func FromAuditEvents(programID id.ProgramID, events []audit.Event) *AuditTrailResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			Timestamp: e.Timestamp,
			Category:  string(e.Category),
			Action:    e.Action,
			Subject:   e.Subject,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
		})
	}
	return &AuditTrailResponse{ProgramID: programID.String(), Events: out}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
