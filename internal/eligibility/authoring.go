package eligibility

import (
	"fmt"
	"slices"
)

var orderingOperators = []ComparisonOperator{
	OpEquals,
	OpNotEquals,
	OpGreaterThan,
	OpLessThan,
	OpGreaterThanOrEqual,
	OpLessThanOrEqual,
}

// legalOperators is the operator legality table per input type. The authoring
// validator, the operator catalogue endpoint and the tests all read it.
var legalOperators = map[InputType][]ComparisonOperator{
	InputText:        {OpEquals, OpContains},
	InputTextarea:    {OpEquals, OpContains},
	InputNumber:      orderingOperators,
	InputDate:        orderingOperators,
	InputRadio:       {OpEquals, OpInList},
	InputMultiselect: {OpEquals, OpInList},
}

// dataTypeOperators is the evaluator-side view of the same table, keyed by the
// canonical data type family.
var dataTypeOperators = map[DataType][]ComparisonOperator{
	DataString: {OpEquals, OpContains},
	DataDouble: orderingOperators,
	DataDate:   orderingOperators,
	DataArray:  {OpEquals, OpInList},
}

// LegalOperators returns the operators an author may pick for an input type.
func LegalOperators(t InputType) []ComparisonOperator {
	return slices.Clone(legalOperators[t])
}

// IsLegalOperator reports whether op may be authored for the input type.
func IsLegalOperator(t InputType, op ComparisonOperator) bool {
	return slices.Contains(legalOperators[t], op)
}

// supportsOperator reports whether the evaluator defines op for the data type.
func supportsOperator(dt DataType, op ComparisonOperator) bool {
	return slices.Contains(dataTypeOperators[family(dt)], op)
}

// ValidateCondition checks an authored condition before it is persisted. It
// never runs against applicant answers.
func ValidateCondition(inputType InputType, op ComparisonOperator, values []any) error {
	if !IsLegalOperator(inputType, op) {
		return &AuthoringError{
			Kind:      IllegalOperator,
			InputType: inputType,
			Operator:  op,
			Message:   fmt.Sprintf("operator %q is not allowed for %s questions", op, inputType),
		}
	}

	if inputType.IsChoice() {
		switch op {
		case OpEquals:
			if len(values) == 0 {
				return &AuthoringError{
					Kind:      EmptyTargetList,
					InputType: inputType,
					Operator:  op,
					Message:   "select an option for this condition",
				}
			}
			if len(values) > 1 {
				return &AuthoringError{
					Kind:      TooManySelections,
					InputType: inputType,
					Operator:  op,
					Message:   "only one option allowed for this condition",
				}
			}
		case OpInList:
			if len(values) == 0 {
				return &AuthoringError{
					Kind:      EmptyTargetList,
					InputType: inputType,
					Operator:  op,
					Message:   "select at least one option for this condition",
				}
			}
		}
	}

	dt, _ := DataTypeFor(inputType)
	for _, v := range values {
		if _, err := Normalize(dt, v); err != nil {
			return &AuthoringError{
				Kind:      InvalidTarget,
				InputType: inputType,
				Operator:  op,
				Message:   fmt.Sprintf("target value %v is not a valid %s answer", v, inputType),
			}
		}
	}
	return nil
}

// ValidateAgainstQuestion runs ValidateCondition for a question and also
// requires choice targets to be among the question's options.
func ValidateAgainstQuestion(q Question, op ComparisonOperator, values []any) error {
	if err := ValidateCondition(q.InputType, op, values); err != nil {
		return err
	}
	if !q.InputType.IsChoice() || len(q.Options) == 0 {
		return nil
	}
	targets, err := Normalize(DataArray, values)
	if err != nil {
		return &AuthoringError{Kind: InvalidTarget, InputType: q.InputType, Operator: op, Message: err.Error()}
	}
	known := make(OptionSet, len(q.Options))
	for _, o := range q.Options {
		known[o.Value] = struct{}{}
	}
	for _, v := range targets.Set().Sorted() {
		if !known.Has(v) {
			return &AuthoringError{
				Kind:      InvalidTarget,
				InputType: q.InputType,
				Operator:  op,
				Message:   fmt.Sprintf("option %q is not defined on question %q", v, q.ID),
			}
		}
	}
	return nil
}
