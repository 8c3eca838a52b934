package eligibility

import (
	"errors"
	"fmt"
)

// ErrContractViolation marks programmer errors: unknown operators, unknown
// criterion kinds, or operators applied to a data type they are not defined
// for. These are never caused by applicant data.
var ErrContractViolation = errors.New("eligibility contract violation")

// NormalizationErrorKind classifies malformed raw answers.
type NormalizationErrorKind string

const (
	InvalidNumber NormalizationErrorKind = "invalid_number"
	InvalidDate   NormalizationErrorKind = "invalid_date"
	InvalidOption NormalizationErrorKind = "invalid_option"
)

// NormalizationError reports a raw answer that cannot be converted to its
// canonical form.
type NormalizationError struct {
	Kind     NormalizationErrorKind
	DataType DataType
	Raw      any
	Err      error
}

func (e *NormalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: cannot normalize %v as %s: %v", e.Kind, e.Raw, e.DataType, e.Err)
	}
	return fmt.Sprintf("%s: cannot normalize %v as %s", e.Kind, e.Raw, e.DataType)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// AuthoringErrorKind classifies conditions rejected at authoring time.
type AuthoringErrorKind string

const (
	IllegalOperator   AuthoringErrorKind = "illegal_operator"
	TooManySelections AuthoringErrorKind = "too_many_selections"
	EmptyTargetList   AuthoringErrorKind = "empty_target_list"
	InvalidTarget     AuthoringErrorKind = "invalid_target"
)

// AuthoringError is returned by ValidateCondition.
type AuthoringError struct {
	Kind      AuthoringErrorKind
	InputType InputType
	Operator  ComparisonOperator
	Message   string
}

func (e *AuthoringError) Error() string {
	return e.Message
}

// IsAuthoringError reports whether err is an AuthoringError of the given kind.
func IsAuthoringError(err error, kind AuthoringErrorKind) bool {
	var ae *AuthoringError
	return errors.As(err, &ae) && ae.Kind == kind
}

// IntegrityFault describes a criterion that references data that does not
// exist. Faults are evaluated fail-closed and reported, never returned as
// errors.
type IntegrityFault struct {
	CriterionID string `json:"criterionId,omitempty"`
	GroupID     string `json:"groupId,omitempty"`
	QuestionID  string `json:"questionId,omitempty"`
	Reason      string `json:"reason"`
}

func (f IntegrityFault) String() string {
	return fmt.Sprintf("criterion %q: %s (group=%q question=%q)", f.CriterionID, f.Reason, f.GroupID, f.QuestionID)
}
