package eligibility

import (
	"fmt"
	"strings"
)

// InputType declares which widget rendered a question.
type InputType string

const (
	InputText        InputType = "TEXT"
	InputTextarea    InputType = "TEXTAREA"
	InputNumber      InputType = "NUMBER"
	InputDate        InputType = "DATE"
	InputRadio       InputType = "RADIO"
	InputMultiselect InputType = "MULTISELECT"
)

// DataType declares the canonical comparison type of a question's answers.
type DataType string

const (
	DataString   DataType = "STRING"
	DataInteger  DataType = "INTEGER"
	DataDouble   DataType = "DOUBLE"
	DataDate     DataType = "DATE"
	DataDateTime DataType = "DATETIME"
	DataArray    DataType = "ARRAY"
)

// inputDataTypes is the single source of truth for the input type to data
// type derivation applied when a question is authored.
var inputDataTypes = map[InputType]DataType{
	InputText:        DataString,
	InputTextarea:    DataString,
	InputNumber:      DataDouble,
	InputDate:        DataDate,
	InputRadio:       DataArray,
	InputMultiselect: DataArray,
}

var validDataTypes = map[DataType]bool{
	DataString:   true,
	DataInteger:  true,
	DataDouble:   true,
	DataDate:     true,
	DataDateTime: true,
	DataArray:    true,
}

// ParseInputType constructs an InputType from external input. Matching is
// case-insensitive.
func ParseInputType(s string) (InputType, error) {
	t := InputType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unsupported input type %q", s)
	}
	return t, nil
}

// IsValid reports whether the input type is one of the supported widgets.
func (t InputType) IsValid() bool {
	_, ok := inputDataTypes[t]
	return ok
}

// IsChoice reports whether the question is answered by picking options.
func (t InputType) IsChoice() bool {
	return t == InputRadio || t == InputMultiselect
}

func (t InputType) String() string {
	return string(t)
}

// DataTypeFor returns the data type derived from an input type. The second
// result is false for unknown input types.
func DataTypeFor(t InputType) (DataType, bool) {
	dt, ok := inputDataTypes[t]
	return dt, ok
}

// ParseDataType constructs a DataType from external input.
func ParseDataType(s string) (DataType, error) {
	dt := DataType(strings.ToUpper(strings.TrimSpace(s)))
	if !dt.IsValid() {
		return "", fmt.Errorf("unsupported data type %q", s)
	}
	return dt, nil
}

// IsValid reports whether the data type is supported.
func (d DataType) IsValid() bool {
	return validDataTypes[d]
}

func (d DataType) String() string {
	return string(d)
}

// ComparisonOperator is the operator applied between an answer and the
// authored target values.
type ComparisonOperator string

const (
	OpEquals             ComparisonOperator = "equals"
	OpNotEquals          ComparisonOperator = "not_equals"
	OpContains           ComparisonOperator = "contains"
	OpGreaterThan        ComparisonOperator = "greater_than"
	OpLessThan           ComparisonOperator = "less_than"
	OpGreaterThanOrEqual ComparisonOperator = "greater_than_or_equal"
	OpLessThanOrEqual    ComparisonOperator = "less_than_or_equal"
	OpInList             ComparisonOperator = "in_list"
)

var validOperators = map[ComparisonOperator]bool{
	OpEquals:             true,
	OpNotEquals:          true,
	OpContains:           true,
	OpGreaterThan:        true,
	OpLessThan:           true,
	OpGreaterThanOrEqual: true,
	OpLessThanOrEqual:    true,
	OpInList:             true,
}

// ParseOperator constructs a ComparisonOperator from external input.
func ParseOperator(s string) (ComparisonOperator, error) {
	op := ComparisonOperator(strings.ToLower(strings.TrimSpace(s)))
	if !op.IsValid() {
		return "", fmt.Errorf("unsupported comparison operator %q", s)
	}
	return op, nil
}

// IsValid reports whether the operator is a known enum value.
func (o ComparisonOperator) IsValid() bool {
	return validOperators[o]
}

func (o ComparisonOperator) String() string {
	return string(o)
}

// Option is a selectable choice for RADIO and MULTISELECT questions.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Question is a single authored question.
type Question struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	QuestionText     string    `json:"questionText" yaml:"questionText"`
	InputType        InputType `json:"inputType" yaml:"inputType"`
	QuestionDataType DataType  `json:"questionDataType" yaml:"questionDataType"`
	Options          []Option  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Label returns the human-readable name used in eligibility explanations.
func (q Question) Label() string {
	switch {
	case q.QuestionText != "":
		return q.QuestionText
	case q.Name != "":
		return q.Name
	default:
		return q.ID
	}
}

// QuestionGroup is an ordered set of questions evaluated together.
type QuestionGroup struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Label returns the group name, falling back to its ID.
func (g QuestionGroup) Label() string {
	if g.Name != "" {
		return g.Name
	}
	return g.ID
}

// Question looks up a member question by ID.
func (g QuestionGroup) Question(questionID string) (Question, bool) {
	for _, q := range g.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return Question{}, false
}

// SimpleCondition constrains the answer to a single question.
type SimpleCondition struct {
	QuestionID         string             `json:"questionId" yaml:"questionId"`
	ComparisonOperator ComparisonOperator `json:"comparisonOperator" yaml:"comparisonOperator"`
	Values             []any              `json:"values" yaml:"values"`
}

// QuestionCondition is one member of a GroupCondition.
type QuestionCondition struct {
	QuestionID         string             `json:"questionId" yaml:"questionId"`
	ComparisonOperator ComparisonOperator `json:"comparisonOperator" yaml:"comparisonOperator"`
	Values             []any              `json:"values" yaml:"values"`
}

// GroupCondition bundles per-question conditions of one QuestionGroup.
// Invariant: every member question belongs to the group and the member list
// is non-empty.
type GroupCondition struct {
	GroupID            string              `json:"groupId" yaml:"groupId"`
	QuestionConditions []QuestionCondition `json:"questionConditions" yaml:"questionConditions"`
}

// CriterionKind tags the variant held by a Criterion.
type CriterionKind string

const (
	CriterionSimple CriterionKind = "simple"
	CriterionGroup  CriterionKind = "group"
)

// Criterion is one authored eligibility rule. Exactly one of Simple or Group is
// set, selected by Kind.
type Criterion struct {
	ID     string           `json:"id" yaml:"id"`
	Kind   CriterionKind    `json:"type" yaml:"type"`
	Label  string           `json:"label,omitempty" yaml:"label,omitempty"`
	Simple *SimpleCondition `json:"simple,omitempty" yaml:"simple,omitempty"`
	Group  *GroupCondition  `json:"group,omitempty" yaml:"group,omitempty"`
}

// NewSimpleCriterion builds a criterion over a single question.
func NewSimpleCriterion(id string, c SimpleCondition) Criterion {
	return Criterion{ID: id, Kind: CriterionSimple, Simple: &c}
}

// NewGroupCriterion builds a criterion over a question group.
func NewGroupCriterion(id string, c GroupCondition) Criterion {
	return Criterion{ID: id, Kind: CriterionGroup, Group: &c}
}

// Reference returns the question or group ID the criterion is attached to.
func (c Criterion) Reference() string {
	switch c.Kind {
	case CriterionSimple:
		if c.Simple != nil {
			return c.Simple.QuestionID
		}
	case CriterionGroup:
		if c.Group != nil {
			return c.Group.GroupID
		}
	}
	return ""
}

// Answers holds an applicant's raw answers keyed by question ID. Answers to
// grouped questions may additionally be nested in a map under the group ID.
type Answers map[string]any

// Lookup resolves the raw answer for a question. When groupID is set and the
// answers nest a map under it, the nested entry wins over the top-level key.
func (a Answers) Lookup(groupID, questionID string) (any, bool) {
	if groupID != "" {
		if nested, ok := asStringMap(a[groupID]); ok {
			if raw, ok := nested[questionID]; ok {
				return raw, true
			}
		}
	}
	raw, ok := a[questionID]
	return raw, ok
}
