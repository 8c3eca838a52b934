// Package domain holds identifier primitives parsed at trust boundaries.
package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"

	dErrors "grantgate/pkg/domain-errors"
)

// ProgramID identifies a grant program. Construct it with NewProgramID or
// ParseProgramID; the nil UUID is never a valid program ID.
type ProgramID uuid.UUID

// NewProgramID returns a fresh random program ID.
func NewProgramID() ProgramID {
	return ProgramID(uuid.New())
}

// ParseProgramID parses a program ID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed or the
// nil UUID.
func ParseProgramID(s string) (ProgramID, error) {
	if s == "" {
		return ProgramID{}, dErrors.New(dErrors.CodeInvalidInput, "program ID cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ProgramID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid program ID")
	}
	if u == uuid.Nil {
		return ProgramID{}, dErrors.New(dErrors.CodeInvalidInput, "program ID cannot be nil")
	}
	return ProgramID(u), nil
}

// IsNil reports whether the ID is unset.
func (id ProgramID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ProgramID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText implements encoding.TextMarshaler so IDs serialize as strings
// in JSON and YAML.
func (id ProgramID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ProgramID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ProgramID{}
		return nil
	}
	parsed, err := ParseProgramID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer.
func (id ProgramID) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan implements sql.Scanner.
func (id *ProgramID) Scan(src any) error {
	var u uuid.UUID
	if err := u.Scan(src); err != nil {
		return fmt.Errorf("scan program ID: %w", err)
	}
	*id = ProgramID(u)
	return nil
}
