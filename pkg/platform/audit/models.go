// Package audit records who changed a program and which eligibility verdicts
// were issued, so a decision can be traced back to the rules in force.
package audit

import (
	"context"
	"time"

	id "grantgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers verdicts and rule changes that an appeal may
	// need to reconstruct.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventProgramCreated       AuditEvent = "program_created"
	EventCriterionAdded       AuditEvent = "criterion_added"
	EventQuestionUpdated      AuditEvent = "question_updated"
	EventEligibilityEvaluated AuditEvent = "eligibility_evaluated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventProgramCreated:       CategoryCompliance,
	EventCriterionAdded:       CategoryCompliance,
	EventQuestionUpdated:      CategoryCompliance,
	EventEligibilityEvaluated: CategoryCompliance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from the program service to capture key actions.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	ProgramID id.ProgramID
	// Subject is what the action was about: an applicant reference, a
	// criterion ID or a question ID.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProgram(ctx context.Context, programID id.ProgramID, limit int) ([]Event, error)
}
