package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"grantgate/internal/program/models"
	id "grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// seedNamespace derives stable IDs for seeded programs that do not declare
// one, so restarting with the same file does not duplicate them.
var seedNamespace = uuid.MustParse("6f1c1f63-3a8e-4c55-9b0e-2f7c9a1d4b10")

type seedFile struct {
	Programs []*models.Program `yaml:"programs"`
}

// LoadPrograms reads program definitions from a YAML file and validates each
// of them.
func LoadPrograms(path string, now time.Time) ([]*models.Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read programs file: %w", err)
	}
	return ParsePrograms(raw, now)
}

// ParsePrograms decodes YAML program definitions. Unknown fields are
// rejected.
func ParsePrograms(raw []byte, now time.Time) ([]*models.Program, error) {
	var file seedFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode programs file: %w", err)
	}

	programs := make([]*models.Program, 0, len(file.Programs))
	for i, p := range file.Programs {
		if p == nil {
			return nil, fmt.Errorf("program %d is empty", i)
		}
		if p.ID.IsNil() {
			p.ID = id.ProgramID(uuid.NewSHA1(seedNamespace, []byte(p.Name)))
		}
		p.CreatedAt, p.UpdatedAt = now, now
		p.Prepare()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("program %d (%s): %w", i, p.Name, err)
		}
		programs = append(programs, p)
	}
	return programs, nil
}

// Seed inserts programs that are not yet stored. Existing programs are left
// untouched. It returns the number of programs created.
func Seed(ctx context.Context, s Store, programs []*models.Program) (int, error) {
	created := 0
	for _, p := range programs {
		err := s.Create(ctx, p)
		switch {
		case err == nil:
			created++
		case errors.Is(err, sentinel.ErrConflict):
		default:
			return created, fmt.Errorf("seed program %s: %w", p.ID, err)
		}
	}
	return created, nil
}
