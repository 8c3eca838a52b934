// Package store persists grant programs. Implementations return
// pkg/platform/sentinel errors; the service translates them.
package store

import (
	"context"

	"grantgate/internal/program/models"
	id "grantgate/pkg/domain"
)

// Store is implemented by every program backend and by the Redis cache that
// decorates them.
//
// Execute loads the program, applies fn and persists the result atomically
// (mutex in memory, SELECT ... FOR UPDATE in PostgreSQL). When fn returns an
// error nothing is written and the error is returned unchanged.
type Store interface {
	Create(ctx context.Context, program *models.Program) error
	FindByID(ctx context.Context, programID id.ProgramID) (*models.Program, error)
	List(ctx context.Context) ([]*models.Program, error)
	Execute(ctx context.Context, programID id.ProgramID, fn func(*models.Program) error) (*models.Program, error)
}
