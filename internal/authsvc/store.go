// Package authsvc implements the auth service: account registration, login
// and profile lookup, issuing the tokens the other services verify.
package authsvc

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/caseflow-io/caseflow/pkg/apperr"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

// Account is a user row including the password hash. It never leaves this
// package; handlers return schema.User.
type Account struct {
	schema.User
	PasswordHash string
}

// Store is the record store for user accounts.
type Store interface {
	// Create inserts a new account. A duplicate email fails with
	// apperr.ErrConflict.
	Create(ctx context.Context, email, passwordHash, fullName, role string) (schema.User, error)

	// GetByEmail returns the account with its hash, or apperr.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (Account, error)

	// GetByID returns the public user shape, or apperr.ErrNotFound.
	GetByID(ctx context.Context, id int64) (schema.User, error)
}

// SQLStore implements Store over Postgres.
//
// Expected table:
//
//	CREATE TABLE users (
//	    id            BIGSERIAL PRIMARY KEY,
//	    email         TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL,
//	    full_name     TEXT,
//	    role          TEXT NOT NULL DEFAULT 'user',
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open Postgres pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, email, passwordHash, fullName, role string) (schema.User, error) {
	var existing int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		return schema.User{}, apperr.Conflict("email already registered")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return schema.User{}, err
	}

	var fn sql.NullString
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, full_name, role)
		 VALUES ($1, $2, $3, $4) RETURNING id, email, full_name, role, created_at`,
		email, passwordHash, nullable(fullName), role)

	var u schema.User
	if err := row.Scan(&u.ID, &u.Email, &fn, &u.Role, &u.CreatedAt); err != nil {
		return schema.User{}, err
	}
	u.FullName = fn.String
	return u, nil
}

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	var (
		a  Account
		fn sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, full_name, role, created_at FROM users WHERE email = $1`,
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &fn, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, apperr.NotFound("user")
	}
	if err != nil {
		return Account{}, err
	}
	a.FullName = fn.String
	return a, nil
}

func (s *SQLStore) GetByID(ctx context.Context, id int64) (schema.User, error) {
	var (
		u  schema.User
		fn sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, role, created_at FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Email, &fn, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.User{}, apperr.NotFound("user")
	}
	if err != nil {
		return schema.User{}, err
	}
	u.FullName = fn.String
	return u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// bcrypt cost matching the rest of the platform's deployments.
const hashCost = 10

// HashPassword derives the stored hash for a plaintext password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	return string(hash), err
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
