package store

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"grantgate/internal/program/models"
	id "grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
	"grantgate/pkg/platform/tx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists programs in PostgreSQL. The aggregate is stored as a
// JSONB document; name and timestamps are duplicated into columns for listing.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed program store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies the embedded schema migrations in file-name order. Every
// migration is idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		stmt, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, program *models.Program) error {
	doc, err := json.Marshal(program)
	if err != nil {
		return fmt.Errorf("marshal program: %w", err)
	}
	res, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO programs (id, name, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		program.ID, program.Name, doc, program.CreatedAt, program.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert program: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert program: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, programID id.ProgramID) (*models.Program, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT document, created_at, updated_at FROM programs WHERE id = $1`, programID)
	p, err := scanProgram(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Program, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT document, created_at, updated_at FROM programs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	programs := []*models.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("list programs: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// Execute locks the row with SELECT ... FOR UPDATE for the duration of fn.
// An outer transaction carried in ctx is joined instead of opening a new one.
func (s *PostgresStore) Execute(ctx context.Context, programID id.ProgramID, fn func(*models.Program) error) (*models.Program, error) {
	var updated *models.Program
	err := tx.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		row := sqlTx.QueryRowContext(ctx, `
			SELECT document, created_at, updated_at FROM programs WHERE id = $1 FOR UPDATE`, programID)
		p, err := scanProgram(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock program: %w", err)
		}

		if err := fn(p); err != nil {
			return err
		}

		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal program: %w", err)
		}
		if _, err := sqlTx.ExecContext(ctx, `
			UPDATE programs SET name = $2, document = $3, updated_at = $4 WHERE id = $1`,
			programID, p.Name, doc, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update program: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgram(row rowScanner) (*models.Program, error) {
	var (
		doc     []byte
		program models.Program
	)
	if err := row.Scan(&doc, &program.CreatedAt, &program.UpdatedAt); err != nil {
		return nil, err
	}
	createdAt, updatedAt := program.CreatedAt, program.UpdatedAt

	// UseNumber keeps condition targets such as 0.1 exact.
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&program); err != nil {
		return nil, fmt.Errorf("decode program document: %w", err)
	}
	program.CreatedAt, program.UpdatedAt = createdAt.UTC(), updatedAt.UTC()
	return &program, nil
}
