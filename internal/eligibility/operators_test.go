package eligibility

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type operatorCase struct {
	pass   any
	fail   any
	target []any
}

// operatorTable holds one passing and one failing answer for every legal
// (input type, operator) pair.
var operatorTable = map[InputType]map[ComparisonOperator]operatorCase{
	InputText: {
		OpEquals:   {pass: "Computer Science", fail: "computer science", target: []any{"Computer Science"}},
		OpContains: {pass: "BSc Computer Science", fail: "BSc Physics", target: []any{"Computer"}},
	},
	InputTextarea: {
		OpEquals:   {pass: "I volunteer weekly", fail: "I volunteer", target: []any{"I volunteer weekly"}},
		OpContains: {pass: "I volunteer weekly", fail: "I work weekly", target: []any{"volunteer"}},
	},
	InputNumber: {
		OpEquals:             {pass: "3.50", fail: "3.4", target: []any{3.5}},
		OpNotEquals:          {pass: "2", fail: "3", target: []any{"3"}},
		OpGreaterThan:        {pass: "19", fail: "18", target: []any{18}},
		OpLessThan:           {pass: "17", fail: "18", target: []any{"18"}},
		OpGreaterThanOrEqual: {pass: "18", fail: "17", target: []any{"18"}},
		OpLessThanOrEqual:    {pass: 18, fail: "18.01", target: []any{"18"}},
	},
	InputDate: {
		OpEquals:             {pass: map[string]any{"day": "5", "month": "3", "year": "2024"}, fail: "2024-03-06", target: []any{"2024-03-05"}},
		OpNotEquals:          {pass: "2024-03-06", fail: "2024-03-05", target: []any{"2024-03-05"}},
		OpGreaterThan:        {pass: "2024-03-06", fail: "2024-03-05", target: []any{"2024-03-05"}},
		OpLessThan:           {pass: "2024-03-04", fail: "2024-03-05", target: []any{"2024-03-05"}},
		OpGreaterThanOrEqual: {pass: "2024-03-05", fail: "2024-03-04", target: []any{"2024-03-05"}},
		OpLessThanOrEqual:    {pass: "2024-03-05", fail: "2024-03-06", target: []any{"2024-03-05"}},
	},
	InputRadio: {
		OpEquals: {pass: "GB", fail: "FR", target: []any{"GB"}},
		OpInList: {pass: []any{"settled"}, fail: "student", target: []any{"settled", "citizen"}},
	},
	InputMultiselect: {
		OpEquals: {pass: []any{map[string]any{"value": "math", "label": "Maths"}}, fail: []any{"math", "physics"}, target: []any{"math"}},
		OpInList: {pass: []any{"art", "physics"}, fail: []any{"art", "music"}, target: []any{"physics", "chemistry"}},
	},
}

func TestEvaluate_OperatorTable(t *testing.T) {
	for inputType, ops := range operatorTable {
		require.ElementsMatch(t, LegalOperators(inputType), keys(ops), "table must cover every legal operator for %s", inputType)

		dt, ok := DataTypeFor(inputType)
		require.True(t, ok)

		for op, tc := range ops {
			t.Run(fmt.Sprintf("%s/%s", inputType, op), func(t *testing.T) {
				pass := mustEvaluate(t, op, dt, tc.pass, tc.target)
				fail := mustEvaluate(t, op, dt, tc.fail, tc.target)
				assert.True(t, pass, "expected %v %s %v to pass", tc.pass, op, tc.target)
				assert.False(t, fail, "expected %v %s %v to fail", tc.fail, op, tc.target)
			})
		}
	}
}

func TestEvaluate_NoAnswer(t *testing.T) {
	t.Run("empty answer fails every operator with a non-empty target", func(t *testing.T) {
		for inputType, ops := range operatorTable {
			dt, _ := DataTypeFor(inputType)
			for op, tc := range ops {
				for _, raw := range []any{nil, "", []any{}} {
					assert.False(t, mustEvaluate(t, op, dt, raw, tc.target), "%s %s with answer %#v", inputType, op, raw)
				}
			}
		}
	})

	t.Run("empty answer against empty target is vacuously satisfied", func(t *testing.T) {
		assert.True(t, mustEvaluate(t, OpEquals, DataString, nil, []any{""}))
		assert.True(t, mustEvaluate(t, OpInList, DataArray, nil, []any{}))
		assert.True(t, mustEvaluate(t, OpGreaterThan, DataDouble, "", nil))
	})

	t.Run("answer against empty target fails", func(t *testing.T) {
		assert.False(t, mustEvaluate(t, OpGreaterThan, DataDouble, "3", nil))
		assert.False(t, mustEvaluate(t, OpInList, DataArray, "a", []any{}))
	})
}

func TestEvaluate_Semantics(t *testing.T) {
	t.Run("numbers compare numerically not lexically", func(t *testing.T) {
		assert.True(t, mustEvaluate(t, OpGreaterThan, DataDouble, "10", []any{"9"}))
		assert.True(t, mustEvaluate(t, OpEquals, DataDouble, "1.50", []any{"1.5"}))
	})

	t.Run("contains is case-sensitive", func(t *testing.T) {
		assert.False(t, mustEvaluate(t, OpContains, DataString, "Engineering", []any{"engineering"}))
	})

	t.Run("DATE equality ignores time of day", func(t *testing.T) {
		assert.True(t, mustEvaluate(t, OpEquals, DataDate, "2024-03-05T22:00:00Z", []any{"2024-03-05"}))
	})

	t.Run("DATETIME orders by instant", func(t *testing.T) {
		assert.True(t, mustEvaluate(t, OpGreaterThan, DataDateTime, "2024-03-05T10:00:01Z", []any{"2024-03-05T10:00:00Z"}))
	})

	t.Run("equals on choices requires an exact single-element match", func(t *testing.T) {
		assert.True(t, mustEvaluate(t, OpEquals, DataArray, []any{"a", "a"}, []any{"a"}))
		assert.False(t, mustEvaluate(t, OpEquals, DataArray, []any{"a", "b"}, []any{"a"}))
	})

	t.Run("malformed target evaluates to false", func(t *testing.T) {
		assert.False(t, mustEvaluate(t, OpGreaterThan, DataDouble, "3", []any{"three"}))
	})
}

func TestEvaluate_ContractViolations(t *testing.T) {
	tests := []struct {
		name string
		op   ComparisonOperator
		dt   DataType
	}{
		{name: "unknown operator", op: ComparisonOperator("between"), dt: DataDouble},
		{name: "contains on numbers", op: OpContains, dt: DataDouble},
		{name: "in_list on text", op: OpInList, dt: DataString},
		{name: "ordering on choices", op: OpGreaterThan, dt: DataArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.op, tt.dt, Value{}, []any{"x"})
			assert.ErrorIs(t, err, ErrContractViolation)
		})
	}
}

func mustEvaluate(t *testing.T, op ComparisonOperator, dt DataType, raw any, target []any) bool {
	t.Helper()
	answer, err := Normalize(dt, raw)
	require.NoError(t, err)
	ok, err := Evaluate(op, dt, answer, target)
	require.NoError(t, err)
	return ok
}

func keys[K comparable, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
