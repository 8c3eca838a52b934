package models

import "grantgate/internal/eligibility"

// Clone returns a deep copy so stores can hand out programs without sharing
// slices or condition values with their callers.
func (p *Program) Clone() *Program {
	if p == nil {
		return nil
	}
	out := *p
	out.Questions = cloneQuestions(p.Questions)
	if p.Groups != nil {
		out.Groups = make([]eligibility.QuestionGroup, len(p.Groups))
		for i, g := range p.Groups {
			g.Questions = cloneQuestions(g.Questions)
			out.Groups[i] = g
		}
	}
	if p.Criteria != nil {
		out.Criteria = make([]eligibility.Criterion, len(p.Criteria))
		for i, c := range p.Criteria {
			out.Criteria[i] = cloneCriterion(c)
		}
	}
	return &out
}

func cloneQuestions(in []eligibility.Question) []eligibility.Question {
	if in == nil {
		return nil
	}
	out := make([]eligibility.Question, len(in))
	for i, q := range in {
		if q.Options != nil {
			q.Options = append([]eligibility.Option(nil), q.Options...)
		}
		out[i] = q
	}
	return out
}

func cloneCriterion(c eligibility.Criterion) eligibility.Criterion {
	if c.Simple != nil {
		simple := *c.Simple
		simple.Values = cloneValues(simple.Values)
		c.Simple = &simple
	}
	if c.Group != nil {
		group := *c.Group
		if group.QuestionConditions != nil {
			members := make([]eligibility.QuestionCondition, len(group.QuestionConditions))
			for i, m := range group.QuestionConditions {
				m.Values = cloneValues(m.Values)
				members[i] = m
			}
			group.QuestionConditions = members
		}
		c.Group = &group
	}
	return c
}

func cloneValues(in []any) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		return cloneValues(t)
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	default:
		return v
	}
}
