package eligibility

import (
	"fmt"
	"strings"
)

// Evaluate applies op between a canonical answer and the authored target
// values. It returns an error only for contract violations: an unknown
// operator, or an operator the data type does not define. Malformed targets
// evaluate to false.
//
// An empty answer satisfies a condition only when the target is empty too.
func Evaluate(op ComparisonOperator, dt DataType, answer Value, target []any) (bool, error) {
	if !op.IsValid() {
		return false, fmt.Errorf("%w: unknown operator %q", ErrContractViolation, op)
	}
	if !supportsOperator(dt, op) {
		return false, fmt.Errorf("%w: operator %q is not defined for %s", ErrContractViolation, op, dt)
	}

	want, err := targetValue(op, dt, target)
	if err != nil {
		return false, nil
	}
	if answer.IsEmpty() {
		return want.IsEmpty(), nil
	}
	if want.IsEmpty() {
		return false, nil
	}

	switch family(dt) {
	case DataString:
		return compareString(op, answer, want), nil
	case DataDouble:
		return compareOrdered(op, answer.Number().Cmp(want.Number())), nil
	case DataDate:
		return compareOrdered(op, compareTime(dt, answer, want)), nil
	case DataArray:
		return compareSet(op, answer, want), nil
	}
	return false, fmt.Errorf("%w: data type %q", ErrContractViolation, dt)
}

// targetValue normalizes the right-hand side. in_list collects every target
// value into one set; all other operators use the first value only.
func targetValue(op ComparisonOperator, dt DataType, target []any) (Value, error) {
	if op == OpInList {
		return Normalize(dt, target)
	}
	if len(target) == 0 {
		return emptyValue(dt), nil
	}
	return Normalize(dt, target[0])
}

func compareString(op ComparisonOperator, answer, want Value) bool {
	switch op {
	case OpEquals:
		return answer.String() == want.String()
	case OpContains:
		return strings.Contains(answer.String(), want.String())
	}
	return false
}

func compareOrdered(op ComparisonOperator, cmp int) bool {
	switch op {
	case OpEquals:
		return cmp == 0
	case OpNotEquals:
		return cmp != 0
	case OpGreaterThan:
		return cmp > 0
	case OpLessThan:
		return cmp < 0
	case OpGreaterThanOrEqual:
		return cmp >= 0
	case OpLessThanOrEqual:
		return cmp <= 0
	}
	return false
}

// compareTime orders DATE values by calendar day and DATETIME values by
// instant.
func compareTime(dt DataType, answer, want Value) int {
	a, b := answer.Time(), want.Time()
	if dt == DataDate && sameDay(a, b) {
		return 0
	}
	return a.Compare(b)
}

func compareSet(op ComparisonOperator, answer, want Value) bool {
	switch op {
	case OpEquals:
		return answer.Set().Equal(want.Set())
	case OpInList:
		return answer.Set().Intersects(want.Set())
	}
	return false
}
