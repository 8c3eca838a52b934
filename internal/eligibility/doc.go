// Package eligibility decides whether an applicant's answers satisfy the
// eligibility criteria authored for a grant program.
//
// Evaluation is a pipeline of pure functions:
//
//	raw answer -> Normalize -> Value -> Evaluate(operator, target) -> bool
//
// EvaluateCondition and EvaluateGroup apply that pipeline to simple and
// group criteria, and EvaluateAll aggregates them into a Result. Nothing in
// this package performs I/O or keeps state between calls, so a single
// program definition can be evaluated for many applicants concurrently.
//
// ValidateCondition is the authoring-time counterpart: it rejects conditions
// the evaluator could not answer meaningfully before they are stored.
package eligibility
