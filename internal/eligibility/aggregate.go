package eligibility

import "fmt"

// CriterionOutcome records how a single criterion evaluated.
type CriterionOutcome struct {
	CriterionID string        `json:"criterionId"`
	Kind        CriterionKind `json:"kind"`
	Label       string        `json:"label"`
	Passed      bool          `json:"passed"`
}

// Result is the verdict for one applicant against a program's criteria.
// Passed and Failed hold criterion labels in criterion order.
type Result struct {
	Eligible bool               `json:"eligible"`
	Passed   []string           `json:"passed"`
	Failed   []string           `json:"failed"`
	Outcomes []CriterionOutcome `json:"outcomes"`
	Faults   []IntegrityFault   `json:"faults,omitempty"`
	// Malformed lists answers that failed normalization. Each one made its
	// criterion fail.
	Malformed []MalformedAnswer `json:"malformed,omitempty"`
}

// findings collects the data problems met while evaluating one criterion.
type findings struct {
	faults    []IntegrityFault
	malformed []MalformedAnswer
}

type questionRef struct {
	question Question
	groupID  string
}

// catalog indexes questions and groups for one evaluation. It is built per
// call so concurrent evaluations share nothing mutable.
type catalog struct {
	questions map[string]questionRef
	groups    map[string]QuestionGroup
}

func newCatalog(questions []Question, groups []QuestionGroup) catalog {
	c := catalog{
		questions: make(map[string]questionRef, len(questions)),
		groups:    make(map[string]QuestionGroup, len(groups)),
	}
	for _, g := range groups {
		c.groups[g.ID] = g
		for _, q := range g.Questions {
			c.questions[q.ID] = questionRef{question: q, groupID: g.ID}
		}
	}
	for _, q := range questions {
		c.questions[q.ID] = questionRef{question: q}
	}
	return c
}

// EvaluateAll evaluates every criterion and returns the overall verdict. The
// applicant is eligible when no criterion failed. Data problems in answers
// or dangling references fail the affected criterion; only contract
// violations are returned as errors.
func EvaluateAll(criteria []Criterion, questions []Question, groups []QuestionGroup, answers Answers) (Result, error) {
	cat := newCatalog(questions, groups)
	res := Result{
		Passed:   []string{},
		Failed:   []string{},
		Outcomes: make([]CriterionOutcome, 0, len(criteria)),
	}

	for _, c := range criteria {
		outcome, found, err := cat.evaluate(c, answers)
		if err != nil {
			return Result{}, fmt.Errorf("criterion %q: %w", c.ID, err)
		}
		for _, f := range found.faults {
			f.CriterionID = c.ID
			res.Faults = append(res.Faults, f)
		}
		for _, m := range found.malformed {
			m.CriterionID = c.ID
			res.Malformed = append(res.Malformed, m)
		}

		res.Outcomes = append(res.Outcomes, outcome)
		if outcome.Passed {
			res.Passed = append(res.Passed, outcome.Label)
		} else {
			res.Failed = append(res.Failed, outcome.Label)
		}
	}

	res.Eligible = len(res.Failed) == 0
	return res, nil
}

func (cat catalog) evaluate(c Criterion, answers Answers) (CriterionOutcome, findings, error) {
	out := CriterionOutcome{CriterionID: c.ID, Kind: c.Kind}

	switch c.Kind {
	case CriterionSimple:
		if c.Simple == nil {
			return out, findings{}, fmt.Errorf("%w: simple criterion without condition", ErrContractViolation)
		}
		ref, ok := cat.questions[c.Simple.QuestionID]
		out.Label = labelFor(c, ref.question.Label, c.Simple.QuestionID)
		if !ok {
			return out, findings{faults: []IntegrityFault{{QuestionID: c.Simple.QuestionID, Reason: "question not found"}}}, nil
		}
		raw, _ := answers.Lookup(ref.groupID, c.Simple.QuestionID)
		passed, nerr, err := evaluateCondition(ref.question, raw, *c.Simple)
		if err != nil {
			return out, findings{}, err
		}
		out.Passed = passed
		var found findings
		if nerr != nil {
			found.malformed = []MalformedAnswer{{GroupID: ref.groupID, QuestionID: c.Simple.QuestionID, Kind: nerr.Kind}}
		}
		return out, found, nil

	case CriterionGroup:
		if c.Group == nil {
			return out, findings{}, fmt.Errorf("%w: group criterion without condition", ErrContractViolation)
		}
		group, ok := cat.groups[c.Group.GroupID]
		out.Label = labelFor(c, group.Label, c.Group.GroupID)
		if !ok {
			return out, findings{faults: []IntegrityFault{{GroupID: c.Group.GroupID, Reason: "group not found"}}}, nil
		}
		g, err := EvaluateGroup(group, answers, *c.Group)
		if err != nil {
			return out, findings{}, err
		}
		out.Passed = g.Passed
		return out, findings{faults: g.Faults, malformed: g.Malformed}, nil

	default:
		return out, findings{}, fmt.Errorf("%w: unknown criterion kind %q", ErrContractViolation, c.Kind)
	}
}

// labelFor picks the criterion's explicit label, then the referenced
// question or group label, then the raw reference.
func labelFor(c Criterion, fallback func() string, ref string) string {
	if c.Label != "" {
		return c.Label
	}
	if l := fallback(); l != "" {
		return l
	}
	return ref
}
