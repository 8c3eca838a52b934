package handler

import (
	"strings"

	"grantgate/internal/eligibility"
	dErrors "grantgate/pkg/domain-errors"
)

const (
	maxAnswers         = 1000
	maxApplicantRefLen = 128
)

// CreateProgramRequest is the body of POST /v1/programs. Its shape is
// checked against the program JSON Schema before decoding.
type CreateProgramRequest struct {
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Questions   []eligibility.Question      `json:"questions"`
	Groups      []eligibility.QuestionGroup `json:"groups"`
	Criteria    []eligibility.Criterion     `json:"criteria"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateProgramRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	r.Description = strings.TrimSpace(r.Description)
	return nil
}

// AddCriterionRequest is the body of POST /v1/programs/{programID}/criteria.
type AddCriterionRequest struct {
	eligibility.Criterion
}

func (r *AddCriterionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	switch r.Kind {
	case eligibility.CriterionSimple:
		if r.Simple == nil {
			return dErrors.New(dErrors.CodeValidation, "simple criterion requires a simple condition")
		}
	case eligibility.CriterionGroup:
		if r.Group == nil {
			return dErrors.New(dErrors.CodeValidation, "group criterion requires a group condition")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "type must be simple or group")
	}
	r.Label = strings.TrimSpace(r.Label)
	return nil
}

// UpdateQuestionRequest is the body of
// PUT /v1/programs/{programID}/questions/{questionID}.
type UpdateQuestionRequest struct {
	eligibility.Question
}

func (r *UpdateQuestionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "id is required")
	}
	if !r.InputType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "inputType is invalid")
	}
	return nil
}

// EvaluateRequest is the body of POST /v1/programs/{programID}/eligibility.
type EvaluateRequest struct {
	Answers map[string]any `json:"answers"`
}

func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Answers) > maxAnswers {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d answers are accepted", maxAnswers)
	}
	return nil
}

// ApplicantRequest is one applicant of a batch evaluation.
type ApplicantRequest struct {
	Ref     string         `json:"ref"`
	Answers map[string]any `json:"answers"`
}

// BatchEvaluateRequest is the body of
// POST /v1/programs/{programID}/eligibility/batch.
type BatchEvaluateRequest struct {
	Applicants []ApplicantRequest `json:"applicants"`
}

func (r *BatchEvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Applicants) == 0 {
		return dErrors.New(dErrors.CodeValidation, "applicants is required")
	}
	for i := range r.Applicants {
		a := &r.Applicants[i]
		a.Ref = strings.TrimSpace(a.Ref)
		if len(a.Ref) > maxApplicantRefLen {
			return dErrors.Newf(dErrors.CodeValidation, "applicants[%d].ref must be at most %d characters", i, maxApplicantRefLen)
		}
		if len(a.Answers) > maxAnswers {
			return dErrors.Newf(dErrors.CodeValidation, "applicants[%d] has more than %d answers", i, maxAnswers)
		}
	}
	return nil
}

// ValidateConditionRequest is the body of POST /v1/conditions/validate.
type ValidateConditionRequest struct {
	InputType          string `json:"inputType"`
	ComparisonOperator string `json:"comparisonOperator"`
	Values             []any  `json:"values"`
}

func (r *ValidateConditionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.InputType = strings.TrimSpace(r.InputType)
	r.ComparisonOperator = strings.TrimSpace(r.ComparisonOperator)
	if r.InputType == "" {
		return dErrors.New(dErrors.CodeValidation, "inputType is required")
	}
	if r.ComparisonOperator == "" {
		return dErrors.New(dErrors.CodeValidation, "comparisonOperator is required")
	}
	return nil
}
