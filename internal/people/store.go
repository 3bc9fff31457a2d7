package people

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

// Store is the record store for person rows. It signals a missing row with
// apperr.ErrNotFound rather than a raw sql error.
type Store interface {
	Insert(ctx context.Context, in CreatePersonInput, createdBy int64) (schema.Person, error)
	GetByID(ctx context.Context, id int64) (schema.Person, error)
	List(ctx context.Context, limit, offset int) ([]schema.Person, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, changes map[string]any) (schema.Person, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// SQLStore implements Store over Postgres.
//
// Expected table:
//
//	CREATE TABLE people (
//	    id         BIGSERIAL PRIMARY KEY,
//	    first_name TEXT NOT NULL,
//	    last_name  TEXT NOT NULL,
//	    email      TEXT,
//	    phone      TEXT,
//	    address    TEXT,
//	    created_by BIGINT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open Postgres pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const personColumns = "id, first_name, last_name, email, phone, address, created_by, created_at, updated_at"

func scanPerson(row interface{ Scan(...any) error }) (schema.Person, error) {
	var p schema.Person
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Address,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *SQLStore) Insert(ctx context.Context, in CreatePersonInput, createdBy int64) (schema.Person, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO people (first_name, last_name, email, phone, address, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+personColumns,
		in.FirstName, in.LastName, in.Email, in.Phone, in.Address, createdBy)
	return scanPerson(row)
}

func (s *SQLStore) GetByID(ctx context.Context, id int64) (schema.Person, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE id = $1`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Person{}, apperr.NotFound("person")
	}
	return p, err
}

func (s *SQLStore) List(ctx context.Context, limit, offset int) ([]schema.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+personColumns+` FROM people ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []schema.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&total)
	return total, err
}

// Update applies an allow-listed change set in one statement. Columns are
// ordered deterministically so the statement text is stable for a given set
// of fields.
func (s *SQLStore) Update(ctx context.Context, id int64, changes map[string]any) (schema.Person, error) {
	if len(changes) == 0 {
		return schema.Person{}, apperr.Validation("no updatable fields supplied")
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
		`UPDATE people SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), personColumns), args...)

	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Person{}, apperr.NotFound("person")
	}
	return p, err
}

func (s *SQLStore) Delete(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM people WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("person")
	}
	return deleted, err
}
