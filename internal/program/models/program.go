package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"grantgate/internal/eligibility"
	id "grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
)

const maxNameLength = 128

// ErrQuestionReferenced is returned when a question's input or data type is
// changed while a criterion still constrains it. The criterion has to be
// removed and re-authored first.
var ErrQuestionReferenced = errors.New("question is referenced by a criterion")

// Program is the aggregate root for a grant program: the questions an
// applicant answers and the ordered criteria deciding eligibility.
//
// Invariants (checked by Validate):
//   - Name is non-empty and at most 128 characters
//   - Question IDs are unique across the program, grouped questions included,
//     and never collide with a group ID
//   - QuestionDataType equals the type derived from InputType
//   - Choice questions carry unique, non-empty option values; other input
//     types carry none
//   - Groups are non-empty
//   - Every criterion references an existing question or group, member
//     questions belong to the referenced group, and member lists are non-empty
//   - No question or group is referenced by more than one criterion
//   - Every condition passes the authoring rules for its question
type Program struct {
	ID          id.ProgramID                `json:"id" yaml:"id"`
	Name        string                      `json:"name" yaml:"name"`
	Description string                      `json:"description,omitempty" yaml:"description,omitempty"`
	Questions   []eligibility.Question      `json:"questions" yaml:"questions"`
	Groups      []eligibility.QuestionGroup `json:"groups" yaml:"groups"`
	Criteria    []eligibility.Criterion     `json:"criteria" yaml:"criteria"`
	CreatedAt   time.Time                   `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time                   `json:"updated_at" yaml:"-"`
}

// NewProgram builds a program, filling derived fields, and validates it.
func NewProgram(programID id.ProgramID, name, description string, questions []eligibility.Question,
	groups []eligibility.QuestionGroup, criteria []eligibility.Criterion, now time.Time,
) (*Program, error) {
	p := &Program{
		ID:          programID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Questions:   questions,
		Groups:      groups,
		Criteria:    criteria,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.Prepare()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Prepare fills fields that may be omitted when authoring: question data
// types derived from input types and criterion IDs.
func (p *Program) Prepare() {
	if p.Questions == nil {
		p.Questions = []eligibility.Question{}
	}
	if p.Groups == nil {
		p.Groups = []eligibility.QuestionGroup{}
	}
	if p.Criteria == nil {
		p.Criteria = []eligibility.Criterion{}
	}
	for i := range p.Questions {
		fillDataType(&p.Questions[i])
	}
	for gi := range p.Groups {
		for qi := range p.Groups[gi].Questions {
			fillDataType(&p.Groups[gi].Questions[qi])
		}
	}
	for i := range p.Criteria {
		if p.Criteria[i].ID == "" {
			p.Criteria[i].ID = uuid.NewString()
		}
	}
}

func fillDataType(q *eligibility.Question) {
	if q.QuestionDataType != "" {
		return
	}
	if dt, ok := eligibility.DataTypeFor(q.InputType); ok {
		q.QuestionDataType = dt
	}
}

// Validate checks every program invariant. Errors carry
// CodeInvariantViolation; authoring rule failures wrap the underlying
// *eligibility.AuthoringError.
func (p *Program) Validate() error {
	if p.Name == "" {
		return invariant("program name cannot be empty")
	}
	if len(p.Name) > maxNameLength {
		return invariant("program name must be 128 characters or less")
	}

	seen := map[string]string{}
	claim := func(ident, what string) error {
		if ident == "" {
			return invariant(what + " ID cannot be empty")
		}
		if prev, ok := seen[ident]; ok {
			return invariantf("%s ID %q is already used by a %s", what, ident, prev)
		}
		seen[ident] = what
		return nil
	}

	for _, q := range p.Questions {
		if err := claim(q.ID, "question"); err != nil {
			return err
		}
		if err := validateQuestion(q); err != nil {
			return err
		}
	}
	for _, g := range p.Groups {
		if err := claim(g.ID, "group"); err != nil {
			return err
		}
		if len(g.Questions) == 0 {
			return invariantf("group %q must contain at least one question", g.ID)
		}
		for _, q := range g.Questions {
			if err := claim(q.ID, "question"); err != nil {
				return err
			}
			if err := validateQuestion(q); err != nil {
				return err
			}
		}
	}

	return p.validateCriteria()
}

func validateQuestion(q eligibility.Question) error {
	if !q.InputType.IsValid() {
		return invariantf("question %q has unknown input type %q", q.ID, q.InputType)
	}
	expected, _ := eligibility.DataTypeFor(q.InputType)
	if q.QuestionDataType != expected {
		return invariantf("question %q of input type %s must have data type %s, got %q",
			q.ID, q.InputType, expected, q.QuestionDataType)
	}
	if !q.InputType.IsChoice() {
		if len(q.Options) > 0 {
			return invariantf("question %q of input type %s cannot define options", q.ID, q.InputType)
		}
		return nil
	}
	values := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o.Value) == "" {
			return invariantf("question %q has an option with an empty value", q.ID)
		}
		if _, dup := values[o.Value]; dup {
			return invariantf("question %q has duplicate option value %q", q.ID, o.Value)
		}
		values[o.Value] = struct{}{}
	}
	return nil
}

func (p *Program) validateCriteria() error {
	criterionIDs := map[string]struct{}{}
	referenced := map[string]string{}
	reference := func(ref, criterionID string) error {
		if prev, ok := referenced[ref]; ok {
			return invariantf("%q is already constrained by criterion %q", ref, prev)
		}
		referenced[ref] = criterionID
		return nil
	}

	for _, c := range p.Criteria {
		if c.ID == "" {
			return invariant("criterion ID cannot be empty")
		}
		if _, dup := criterionIDs[c.ID]; dup {
			return invariantf("criterion ID %q is used more than once", c.ID)
		}
		criterionIDs[c.ID] = struct{}{}

		switch c.Kind {
		case eligibility.CriterionSimple:
			if c.Simple == nil || c.Group != nil {
				return invariantf("criterion %q must carry exactly a simple condition", c.ID)
			}
			q, ok := p.FindQuestion(c.Simple.QuestionID)
			if !ok {
				return invariantf("criterion %q references unknown question %q", c.ID, c.Simple.QuestionID)
			}
			if err := reference(q.ID, c.ID); err != nil {
				return err
			}
			if err := authoring(c.ID, q, c.Simple.ComparisonOperator, c.Simple.Values); err != nil {
				return err
			}
		case eligibility.CriterionGroup:
			if c.Group == nil || c.Simple != nil {
				return invariantf("criterion %q must carry exactly a group condition", c.ID)
			}
			g, ok := p.FindGroup(c.Group.GroupID)
			if !ok {
				return invariantf("criterion %q references unknown group %q", c.ID, c.Group.GroupID)
			}
			if len(c.Group.QuestionConditions) == 0 {
				return invariantf("criterion %q must constrain at least one question of group %q", c.ID, g.ID)
			}
			if err := reference(g.ID, c.ID); err != nil {
				return err
			}
			members := map[string]struct{}{}
			for _, m := range c.Group.QuestionConditions {
				q, ok := g.Question(m.QuestionID)
				if !ok {
					return invariantf("criterion %q constrains question %q which is not in group %q", c.ID, m.QuestionID, g.ID)
				}
				if _, dup := members[q.ID]; dup {
					return invariantf("criterion %q constrains question %q more than once", c.ID, q.ID)
				}
				members[q.ID] = struct{}{}
				if err := reference(q.ID, c.ID); err != nil {
					return err
				}
				if err := authoring(c.ID, q, m.ComparisonOperator, m.Values); err != nil {
					return err
				}
			}
		default:
			return invariantf("criterion %q has unknown type %q", c.ID, c.Kind)
		}
	}
	return nil
}

func authoring(criterionID string, q eligibility.Question, op eligibility.ComparisonOperator, values []any) error {
	if err := eligibility.ValidateAgainstQuestion(q, op, values); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation,
			fmt.Sprintf("criterion %q on question %q: %s", criterionID, q.ID, err.Error()))
	}
	return nil
}

// FindQuestion looks up a top-level or grouped question.
func (p *Program) FindQuestion(questionID string) (eligibility.Question, bool) {
	for _, q := range p.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	for _, g := range p.Groups {
		if q, ok := g.Question(questionID); ok {
			return q, true
		}
	}
	return eligibility.Question{}, false
}

// FindGroup looks up a question group.
func (p *Program) FindGroup(groupID string) (eligibility.QuestionGroup, bool) {
	for _, g := range p.Groups {
		if g.ID == groupID {
			return g, true
		}
	}
	return eligibility.QuestionGroup{}, false
}

// IsQuestionReferenced reports whether any criterion constrains the question,
// directly or as a group member.
func (p *Program) IsQuestionReferenced(questionID string) bool {
	for _, c := range p.Criteria {
		switch {
		case c.Simple != nil && c.Simple.QuestionID == questionID:
			return true
		case c.Group != nil:
			for _, m := range c.Group.QuestionConditions {
				if m.QuestionID == questionID {
					return true
				}
			}
		}
	}
	return false
}

// ReplaceQuestion swaps in a new version of an existing question. Label, text
// and options may change freely; the input and data type of a referenced
// question may not. The program is left untouched when an error is returned.
func (p *Program) ReplaceQuestion(q eligibility.Question, now time.Time) error {
	fillDataType(&q)
	current, ok := p.FindQuestion(q.ID)
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "question not found")
	}
	if p.IsQuestionReferenced(q.ID) &&
		(current.InputType != q.InputType || current.QuestionDataType != q.QuestionDataType) {
		return fmt.Errorf("%w: question %q", ErrQuestionReferenced, q.ID)
	}

	next := p.Clone()
	next.setQuestion(q)
	if err := next.Validate(); err != nil {
		return err
	}
	p.Questions = next.Questions
	p.Groups = next.Groups
	p.UpdatedAt = now
	return nil
}

func (p *Program) setQuestion(q eligibility.Question) {
	for i := range p.Questions {
		if p.Questions[i].ID == q.ID {
			p.Questions[i] = q
			return
		}
	}
	for gi := range p.Groups {
		for qi := range p.Groups[gi].Questions {
			if p.Groups[gi].Questions[qi].ID == q.ID {
				p.Groups[gi].Questions[qi] = q
				return
			}
		}
	}
}

// AddCriterion appends a criterion, assigning an ID when absent. The program
// is left untouched when the result would break an invariant.
func (p *Program) AddCriterion(c eligibility.Criterion, now time.Time) (eligibility.Criterion, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	next := p.Clone()
	next.Criteria = append(next.Criteria, c)
	if err := next.Validate(); err != nil {
		return eligibility.Criterion{}, err
	}
	p.Criteria = next.Criteria
	p.UpdatedAt = now
	return c, nil
}

// Evaluate runs the eligibility engine over the program's criteria.
func (p *Program) Evaluate(answers eligibility.Answers) (eligibility.Result, error) {
	return eligibility.EvaluateAll(p.Criteria, p.Questions, p.Groups, answers)
}

func invariant(msg string) error {
	return dErrors.New(dErrors.CodeInvariantViolation, msg)
}

func invariantf(format string, args ...any) error {
	return dErrors.Newf(dErrors.CodeInvariantViolation, format, args...)
}
