package eligibility

import (
	"errors"
	"fmt"
)

// ResolveDataType returns the question's declared data type, deriving it from
// the input type when the question was stored without one.
func ResolveDataType(q Question) (DataType, error) {
	if q.QuestionDataType.IsValid() {
		return q.QuestionDataType, nil
	}
	if dt, ok := DataTypeFor(q.InputType); ok {
		return dt, nil
	}
	return "", fmt.Errorf("%w: question %q has no usable data type", ErrContractViolation, q.ID)
}

// EvaluateCondition evaluates one condition against the stored raw answer.
// A malformed answer evaluates to false; only contract violations are
// returned as errors, so evaluation is total over arbitrary stored answers.
func EvaluateCondition(q Question, raw any, c SimpleCondition) (bool, error) {
	passed, _, err := evaluateCondition(q, raw, c)
	return passed, err
}

// evaluateCondition is EvaluateCondition that also hands back the
// normalization failure behind a false result, if any.
func evaluateCondition(q Question, raw any, c SimpleCondition) (bool, *NormalizationError, error) {
	dt, err := ResolveDataType(q)
	if err != nil {
		return false, nil, err
	}
	answer, err := Normalize(dt, raw)
	if err != nil {
		var nerr *NormalizationError
		if errors.As(err, &nerr) {
			return false, nerr, nil
		}
		return false, nil, err
	}
	passed, err := Evaluate(c.ComparisonOperator, dt, answer, c.Values)
	return passed, nil, err
}

// MalformedAnswer identifies a stored answer that could not be normalized to
// its question's data type. The criterion reading it failed closed.
type MalformedAnswer struct {
	CriterionID string                 `json:"criterionId,omitempty"`
	GroupID     string                 `json:"groupId,omitempty"`
	QuestionID  string                 `json:"questionId"`
	Kind        NormalizationErrorKind `json:"kind"`
}

// GroupOutcome is the result of evaluating a GroupCondition.
type GroupOutcome struct {
	Passed    bool
	Faults    []IntegrityFault
	Malformed []MalformedAnswer
}

// EvaluateGroup ANDs every member condition of a group criterion. Questions of
// the group without a member condition are unconstrained and skipped. A
// member that references a question outside the group fails closed and is
// reported as an integrity fault. An empty member list evaluates to false.
func EvaluateGroup(group QuestionGroup, answers Answers, c GroupCondition) (GroupOutcome, error) {
	if len(c.QuestionConditions) == 0 {
		return GroupOutcome{Passed: false}, nil
	}

	out := GroupOutcome{Passed: true}
	for _, member := range c.QuestionConditions {
		q, ok := group.Question(member.QuestionID)
		if !ok {
			out.Passed = false
			out.Faults = append(out.Faults, IntegrityFault{
				GroupID:    group.ID,
				QuestionID: member.QuestionID,
				Reason:     "question does not belong to group",
			})
			continue
		}

		raw, _ := answers.Lookup(group.ID, member.QuestionID)
		passed, nerr, err := evaluateCondition(q, raw, SimpleCondition(member))
		if err != nil {
			return GroupOutcome{}, fmt.Errorf("group %q question %q: %w", group.ID, member.QuestionID, err)
		}
		if nerr != nil {
			out.Malformed = append(out.Malformed, MalformedAnswer{
				GroupID:    group.ID,
				QuestionID: member.QuestionID,
				Kind:       nerr.Kind,
			})
		}
		if !passed {
			out.Passed = false
		}
	}
	return out, nil
}
