package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"grantgate/internal/eligibility"
	id "grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
)

type ProgramSuite struct {
	suite.Suite
	now time.Time
}

func TestProgramSuite(t *testing.T) {
	suite.Run(t, new(ProgramSuite))
}

func (s *ProgramSuite) SetupTest() {
	s.now = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
}

func scholarship() (questions []eligibility.Question, groups []eligibility.QuestionGroup, criteria []eligibility.Criterion) {
	questions = []eligibility.Question{
		{ID: "age", Name: "age", QuestionText: "How old are you?", InputType: eligibility.InputNumber},
		{ID: "course", Name: "course", InputType: eligibility.InputText},
	}
	groups = []eligibility.QuestionGroup{{
		ID:   "residency",
		Name: "Residency",
		Questions: []eligibility.Question{
			{ID: "country", Name: "country", InputType: eligibility.InputRadio, Options: []eligibility.Option{{Value: "GB", Label: "United Kingdom"}, {Value: "FR", Label: "France"}}},
			{ID: "visaStatus", Name: "visaStatus", InputType: eligibility.InputRadio, Options: []eligibility.Option{{Value: "settled"}, {Value: "citizen"}, {Value: "student"}}},
		},
	}}
	criteria = []eligibility.Criterion{
		eligibility.NewSimpleCriterion("c-age", eligibility.SimpleCondition{QuestionID: "age", ComparisonOperator: eligibility.OpGreaterThanOrEqual, Values: []any{18}}),
		eligibility.NewGroupCriterion("c-res", eligibility.GroupCondition{
			GroupID: "residency",
			QuestionConditions: []eligibility.QuestionCondition{
				{QuestionID: "country", ComparisonOperator: eligibility.OpEquals, Values: []any{"GB"}},
				{QuestionID: "visaStatus", ComparisonOperator: eligibility.OpInList, Values: []any{"settled", "citizen"}},
			},
		}),
	}
	return questions, groups, criteria
}

func (s *ProgramSuite) newProgram() *Program {
	questions, groups, criteria := scholarship()
	p, err := NewProgram(id.NewProgramID(), "STEM Bursary", "", questions, groups, criteria, s.now)
	s.Require().NoError(err)
	return p
}

func (s *ProgramSuite) TestNewProgram() {
	s.Run("derives data types and keeps criterion order", func() {
		p := s.newProgram()
		s.Equal(eligibility.DataDouble, p.Questions[0].QuestionDataType)
		s.Equal(eligibility.DataArray, p.Groups[0].Questions[0].QuestionDataType)
		s.Equal("c-age", p.Criteria[0].ID)
		s.Equal(s.now, p.CreatedAt)
	})

	s.Run("grouped question outside any group criterion can stand alone", func() {
		questions, groups, criteria := scholarship()
		criteria[1].Group.QuestionConditions = criteria[1].Group.QuestionConditions[:1]
		criteria = append(criteria, eligibility.NewSimpleCriterion("c-visa", eligibility.SimpleCondition{
			QuestionID: "visaStatus", ComparisonOperator: eligibility.OpInList, Values: []any{"settled", "citizen"},
		}))
		_, err := NewProgram(id.NewProgramID(), "Bursary", "", questions, groups, criteria, s.now)
		s.Require().NoError(err)
	})

	s.Run("assigns missing criterion IDs", func() {
		questions, groups, criteria := scholarship()
		criteria[0].ID = ""
		p, err := NewProgram(id.NewProgramID(), "Bursary", "", questions, groups, criteria, s.now)
		s.Require().NoError(err)
		s.NotEmpty(p.Criteria[0].ID)
	})
}

func (s *ProgramSuite) TestInvariants() {
	tests := []struct {
		name   string
		mutate func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion)
	}{
		{"duplicate question ID across groups", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			g[0].Questions[0].ID = "age"
			return q, g, c[:1]
		}},
		{"group ID collides with question ID", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			g[0].ID = "course"
			return q, g, c[:1]
		}},
		{"declared data type disagrees with input type", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			q[1].QuestionDataType = eligibility.DataDate
			return q, g, c
		}},
		{"duplicate option value", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			g[0].Questions[0].Options = append(g[0].Questions[0].Options, eligibility.Option{Value: "GB"})
			return q, g, c
		}},
		{"options on a text question", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			q[1].Options = []eligibility.Option{{Value: "x"}}
			return q, g, c
		}},
		{"empty group", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			g = append(g, eligibility.QuestionGroup{ID: "finance"})
			return q, g, c
		}},
		{"criterion on unknown question", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			c[0].Simple.QuestionID = "gpa"
			return q, g, c
		}},
		{"member outside the group", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			c[1].Group.QuestionConditions[0].QuestionID = "age"
			return q, g, c[1:]
		}},
		{"empty member list", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			c[1].Group.QuestionConditions = nil
			return q, g, c
		}},
		{"question constrained twice", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			dup := eligibility.NewSimpleCriterion("c-age-2", eligibility.SimpleCondition{QuestionID: "age", ComparisonOperator: eligibility.OpLessThan, Values: []any{65}})
			return q, g, append(c, dup)
		}},
		{"grouped question constrained by its group and on its own", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			dup := eligibility.NewSimpleCriterion("c-country", eligibility.SimpleCondition{QuestionID: "country", ComparisonOperator: eligibility.OpEquals, Values: []any{"FR"}})
			return q, g, append(c, dup)
		}},
		{"grouped question constrained on its own before its group", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			first := eligibility.NewSimpleCriterion("c-visa", eligibility.SimpleCondition{QuestionID: "visaStatus", ComparisonOperator: eligibility.OpEquals, Values: []any{"citizen"}})
			return q, g, append([]eligibility.Criterion{first}, c...)
		}},
		{"duplicate criterion ID", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			c[1].ID = c[0].ID
			return q, g, c
		}},
		{"illegal operator", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			c[0].Simple.ComparisonOperator = eligibility.OpContains
			return q, g, c
		}},
		{"target not among options", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			c[1].Group.QuestionConditions[0].Values = []any{"DE"}
			return q, g, c
		}},
		{"unknown criterion type", func(q []eligibility.Question, g []eligibility.QuestionGroup, c []eligibility.Criterion) ([]eligibility.Question, []eligibility.QuestionGroup, []eligibility.Criterion) {
			c[0].Kind = "composite"
			return q, g, c
		}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			q, g, c := tt.mutate(scholarship())
			_, err := NewProgram(id.NewProgramID(), "Bursary", "", q, g, c, s.now)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation), "got %v", err)
		})
	}

	s.Run("empty name", func() {
		q, g, c := scholarship()
		_, err := NewProgram(id.NewProgramID(), "   ", "", q, g, c, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("authoring failures keep their kind", func() {
		q, g, c := scholarship()
		c[1].Group.QuestionConditions[0] = eligibility.QuestionCondition{
			QuestionID: "country", ComparisonOperator: eligibility.OpEquals, Values: []any{"GB", "FR"},
		}
		_, err := NewProgram(id.NewProgramID(), "Bursary", "", q, g, c, s.now)
		s.True(eligibility.IsAuthoringError(err, eligibility.TooManySelections))
	})
}

func (s *ProgramSuite) TestReplaceQuestion() {
	later := s.now.Add(time.Hour)

	s.Run("relabelling a referenced question is allowed", func() {
		p := s.newProgram()
		q := p.Questions[0]
		q.QuestionText = "Age on 1 September"
		s.Require().NoError(p.ReplaceQuestion(q, later))

		got, _ := p.FindQuestion("age")
		s.Equal("Age on 1 September", got.QuestionText)
		s.Equal(later, p.UpdatedAt)
	})

	s.Run("retyping a referenced question is rejected", func() {
		p := s.newProgram()
		q := p.Questions[0]
		q.InputType = eligibility.InputText
		q.QuestionDataType = ""

		err := p.ReplaceQuestion(q, later)
		s.True(errors.Is(err, ErrQuestionReferenced))
		got, _ := p.FindQuestion("age")
		s.Equal(eligibility.InputNumber, got.InputType, "program is unchanged")
	})

	s.Run("retyping a grouped member is rejected", func() {
		p := s.newProgram()
		q, _ := p.FindQuestion("visaStatus")
		q.InputType = eligibility.InputMultiselect
		s.ErrorIs(p.ReplaceQuestion(q, later), ErrQuestionReferenced)
	})

	s.Run("retyping an unreferenced question is allowed", func() {
		p := s.newProgram()
		q := p.Questions[1]
		q.InputType = eligibility.InputTextarea
		s.Require().NoError(p.ReplaceQuestion(q, later))
	})

	s.Run("removing an option still targeted by a criterion is rejected", func() {
		p := s.newProgram()
		q, _ := p.FindQuestion("country")
		q.Options = []eligibility.Option{{Value: "FR"}}
		err := p.ReplaceQuestion(q, later)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		got, _ := p.FindQuestion("country")
		s.Len(got.Options, 2)
	})

	s.Run("unknown question", func() {
		p := s.newProgram()
		err := p.ReplaceQuestion(eligibility.Question{ID: "gpa", InputType: eligibility.InputNumber}, later)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ProgramSuite) TestAddCriterion() {
	s.Run("appends and assigns an ID", func() {
		p := s.newProgram()
		c, err := p.AddCriterion(eligibility.NewSimpleCriterion("", eligibility.SimpleCondition{
			QuestionID: "course", ComparisonOperator: eligibility.OpContains, Values: []any{"Science"},
		}), s.now)
		s.Require().NoError(err)
		s.NotEmpty(c.ID)
		s.Len(p.Criteria, 3)
		s.Equal(c.ID, p.Criteria[2].ID)
	})

	s.Run("rejected criterion leaves the program unchanged", func() {
		p := s.newProgram()
		_, err := p.AddCriterion(eligibility.NewSimpleCriterion("", eligibility.SimpleCondition{
			QuestionID: "age", ComparisonOperator: eligibility.OpLessThan, Values: []any{65},
		}), s.now)
		s.Require().Error(err)
		s.Len(p.Criteria, 2)
	})
}

func (s *ProgramSuite) TestEvaluate() {
	p := s.newProgram()
	res, err := p.Evaluate(eligibility.Answers{
		"age":       "19",
		"residency": map[string]any{"country": "GB", "visaStatus": "citizen"},
	})
	s.Require().NoError(err)
	s.True(res.Eligible)
	s.Equal([]string{"How old are you?", "Residency"}, res.Passed)
}

func (s *ProgramSuite) TestClone() {
	p := s.newProgram()
	c := p.Clone()
	c.Questions[0].Name = "changed"
	c.Groups[0].Questions[0].Options[0].Value = "changed"
	c.Criteria[1].Group.QuestionConditions[0].Values[0] = "changed"

	s.Equal("age", p.Questions[0].Name)
	s.Equal("GB", p.Groups[0].Questions[0].Options[0].Value)
	s.Equal("GB", p.Criteria[1].Group.QuestionConditions[0].Values[0])
}
