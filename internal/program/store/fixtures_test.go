package store

import (
	"time"

	"grantgate/internal/eligibility"
	"grantgate/internal/program/models"
	id "grantgate/pkg/domain"
)

func newTestProgram(name string, createdAt time.Time) *models.Program {
	p, err := models.NewProgram(id.NewProgramID(), name, "test program",
		[]eligibility.Question{
			{ID: "age", Name: "age", InputType: eligibility.InputNumber},
			{ID: "subjects", Name: "subjects", InputType: eligibility.InputMultiselect,
				Options: []eligibility.Option{{Value: "math"}, {Value: "physics"}, {Value: "art"}}},
		},
		nil,
		[]eligibility.Criterion{
			eligibility.NewSimpleCriterion("c-age", eligibility.SimpleCondition{
				QuestionID: "age", ComparisonOperator: eligibility.OpGreaterThan, Values: []any{0.1},
			}),
		},
		createdAt,
	)
	if err != nil {
		panic(err)
	}
	return p
}
