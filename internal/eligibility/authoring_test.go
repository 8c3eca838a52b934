package eligibility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalOperatorTable(t *testing.T) {
	tests := []struct {
		inputType InputType
		expected  []ComparisonOperator
	}{
		{InputText, []ComparisonOperator{OpEquals, OpContains}},
		{InputTextarea, []ComparisonOperator{OpEquals, OpContains}},
		{InputNumber, []ComparisonOperator{OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual}},
		{InputDate, []ComparisonOperator{OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual}},
		{InputRadio, []ComparisonOperator{OpEquals, OpInList}},
		{InputMultiselect, []ComparisonOperator{OpEquals, OpInList}},
	}

	for _, tt := range tests {
		t.Run(string(tt.inputType), func(t *testing.T) {
			assert.Equal(t, tt.expected, LegalOperators(tt.inputType))

			// every authorable operator must be evaluable for the derived data type
			dt, ok := DataTypeFor(tt.inputType)
			require.True(t, ok)
			for _, op := range tt.expected {
				assert.True(t, supportsOperator(dt, op), "%s on %s", op, dt)
			}
		})
	}

	t.Run("returned slice is a copy", func(t *testing.T) {
		ops := LegalOperators(InputText)
		ops[0] = OpInList
		assert.Equal(t, OpEquals, LegalOperators(InputText)[0])
	})
}

func TestDataTypeFor(t *testing.T) {
	expected := map[InputType]DataType{
		InputText:        DataString,
		InputTextarea:    DataString,
		InputNumber:      DataDouble,
		InputDate:        DataDate,
		InputRadio:       DataArray,
		InputMultiselect: DataArray,
	}
	for in, dt := range expected {
		got, ok := DataTypeFor(in)
		assert.True(t, ok)
		assert.Equal(t, dt, got, in)
	}
	_, ok := DataTypeFor("SLIDER")
	assert.False(t, ok)
}

func TestValidateCondition(t *testing.T) {
	tests := []struct {
		name      string
		inputType InputType
		op        ComparisonOperator
		values    []any
		wantKind  AuthoringErrorKind
	}{
		{name: "multiselect equals with two values", inputType: InputMultiselect, op: OpEquals, values: []any{"a", "b"}, wantKind: TooManySelections},
		{name: "multiselect equals with one value", inputType: InputMultiselect, op: OpEquals, values: []any{"a"}},
		{name: "radio equals without a value", inputType: InputRadio, op: OpEquals, values: nil, wantKind: EmptyTargetList},
		{name: "radio in_list with values", inputType: InputRadio, op: OpInList, values: []any{"a", "b"}},
		{name: "in_list without values", inputType: InputMultiselect, op: OpInList, values: []any{}, wantKind: EmptyTargetList},
		{name: "contains on number", inputType: InputNumber, op: OpContains, values: []any{"1"}, wantKind: IllegalOperator},
		{name: "greater_than on text", inputType: InputText, op: OpGreaterThan, values: []any{"a"}, wantKind: IllegalOperator},
		{name: "in_list on date", inputType: InputDate, op: OpInList, values: []any{"2024-01-01"}, wantKind: IllegalOperator},
		{name: "unknown input type", inputType: "SLIDER", op: OpEquals, values: []any{"1"}, wantKind: IllegalOperator},
		{name: "non-numeric number target", inputType: InputNumber, op: OpGreaterThan, values: []any{"lots"}, wantKind: InvalidTarget},
		{name: "NaN number target", inputType: InputNumber, op: OpGreaterThan, values: []any{math.NaN()}, wantKind: InvalidTarget},
		{name: "infinite number target", inputType: InputNumber, op: OpLessThan, values: []any{math.Inf(1)}, wantKind: InvalidTarget},
		{name: "malformed date target", inputType: InputDate, op: OpLessThan, values: []any{"31/12/2024"}, wantKind: InvalidTarget},
		{name: "date triple target", inputType: InputDate, op: OpLessThan, values: []any{map[string]any{"day": "31", "month": "12", "year": "2024"}}},
		{name: "text contains", inputType: InputTextarea, op: OpContains, values: []any{"volunteer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCondition(tt.inputType, tt.op, tt.values)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsAuthoringError(err, tt.wantKind), "got %v", err)
		})
	}

	t.Run("too many selections message is user facing", func(t *testing.T) {
		err := ValidateCondition(InputMultiselect, OpEquals, []any{"a", "b"})
		assert.EqualError(t, err, "only one option allowed for this condition")
	})
}

func TestValidateAgainstQuestion(t *testing.T) {
	q := Question{
		ID:        "visaStatus",
		InputType: InputRadio,
		Options:   []Option{{Value: "settled", Label: "Settled"}, {Value: "citizen", Label: "Citizen"}},
	}

	assert.NoError(t, ValidateAgainstQuestion(q, OpInList, []any{"settled", map[string]any{"value": "citizen"}}))

	err := ValidateAgainstQuestion(q, OpInList, []any{"settled", "tourist"})
	assert.True(t, IsAuthoringError(err, InvalidTarget))

	free := Question{ID: "country", InputType: InputRadio}
	assert.NoError(t, ValidateAgainstQuestion(free, OpEquals, []any{"GB"}), "questions without options accept any value")
}
