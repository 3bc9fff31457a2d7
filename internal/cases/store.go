package cases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/caseflow-io/caseflow/pkg/apperr"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

// Store is the record store for case rows.
type Store interface {
	Insert(ctx context.Context, in CreateCaseInput, caseNumber string, createdBy int64) (schema.Case, error)
	GetByID(ctx context.Context, id int64) (schema.Case, error)
	List(ctx context.Context, limit, offset int) ([]schema.Case, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, changes map[string]any) (schema.Case, error)
	Delete(ctx context.Context, id int64) (int64, error)

	// ClearPersonRefs nulls out person_id on every case referencing the
	// given person. It returns the number of cases touched.
	ClearPersonRefs(ctx context.Context, personID int64) (int64, error)
}

// SQLStore implements Store over Postgres.
//
// Expected table:
//
//	CREATE TABLE cases (
//	    id          BIGSERIAL PRIMARY KEY,
//	    case_number TEXT NOT NULL UNIQUE,
//	    title       TEXT NOT NULL,
//	    description TEXT,
//	    status      TEXT NOT NULL DEFAULT 'open',
//	    priority    TEXT NOT NULL DEFAULT 'medium',
//	    assigned_to BIGINT,
//	    person_id   BIGINT,
//	    created_by  BIGINT NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open Postgres pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const caseColumns = "id, case_number, title, description, status, priority, assigned_to, person_id, created_by, created_at, updated_at"

func scanCase(row interface{ Scan(...any) error }) (schema.Case, error) {
	var c schema.Case
	err := row.Scan(&c.ID, &c.CaseNumber, &c.Title, &c.Description, &c.Status, &c.Priority,
		&c.AssignedTo, &c.PersonID, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *SQLStore) Insert(ctx context.Context, in CreateCaseInput, caseNumber string, createdBy int64) (schema.Case, error) {
	status := in.Status
	if status == "" {
		status = schema.CaseStatusOpen
	}
	priority := in.Priority
	if priority == "" {
		priority = schema.CasePriorityMedium
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO cases (case_number, title, description, status, priority, assigned_to, person_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+caseColumns,
		caseNumber, in.Title, in.Description, status, priority, in.AssignedTo, in.PersonID, createdBy)
	return scanCase(row)
}

func (s *SQLStore) GetByID(ctx context.Context, id int64) (schema.Case, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, id)
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Case{}, apperr.NotFound("case")
	}
	return c, err
}

func (s *SQLStore) List(ctx context.Context, limit, offset int) ([]schema.Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []schema.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cases`).Scan(&total)
	return total, err
}

func (s *SQLStore) Update(ctx context.Context, id int64, changes map[string]any) (schema.Case, error) {
	if len(changes) == 0 {
		return schema.Case{}, apperr.Validation("no updatable fields supplied")
	}

	columns := make([]string, 0, len(changes))
	for col := range changes {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	set := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		set = append(set, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, changes[col])
	}
	args = append(args, id)

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`UPDATE cases SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), caseColumns), args...)

	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Case{}, apperr.NotFound("case")
	}
	return c, err
}

func (s *SQLStore) Delete(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := s.db.QueryRowContext(ctx, `DELETE FROM cases WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("case")
	}
	return deleted, err
}

func (s *SQLStore) ClearPersonRefs(ctx context.Context, personID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cases SET person_id = NULL WHERE person_id = $1`, personID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
