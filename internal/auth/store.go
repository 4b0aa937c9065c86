package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// ErrOperatorNotFound indicates the operator account does not exist.
var ErrOperatorNotFound = errors.New("operator not found")

// Store is the Postgres-backed operator source.
type Store struct {
	Pool *pgxpool.Pool
}

const operatorColumns = `id, username, name, role, created_at, updated_at`

// GetByUsername loads an operator and their password hash for login.
func (st *Store) GetByUsername(ctx context.Context, username string) (Operator, string, error) {
	if st == nil || st.Pool == nil {
		return Operator{}, "", errors.New("auth store not configured")
	}
	var (
		op   Operator
		hash string
	)
	err := st.Pool.QueryRow(ctx,
		`SELECT `+operatorColumns+`, password_hash FROM users WHERE username = $1`, username).
		Scan(&op.ID, &op.Username, &op.Name, &op.Role, &op.CreatedAt, &op.UpdatedAt, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Operator{}, "", ErrOperatorNotFound
		}
		return Operator{}, "", fmt.Errorf("get operator: %w", err)
	}
	return op, hash, nil
}

// GetByID loads an operator by identifier.
func (st *Store) GetByID(ctx context.Context, id string) (Operator, error) {
	if st == nil || st.Pool == nil {
		return Operator{}, errors.New("auth store not configured")
	}
	var op Operator
	err := st.Pool.QueryRow(ctx,
		`SELECT `+operatorColumns+` FROM users WHERE id = $1`, id).
		Scan(&op.ID, &op.Username, &op.Name, &op.Role, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Operator{}, ErrOperatorNotFound
		}
		return Operator{}, fmt.Errorf("get operator: %w", err)
	}
	return op, nil
}

// Create inserts a new operator account.
func (st *Store) Create(ctx context.Context, username, name, role, passwordHash string) (Operator, error) {
	if st == nil || st.Pool == nil {
		return Operator{}, errors.New("auth store not configured")
	}
	var op Operator
	err := st.Pool.QueryRow(ctx,
		`INSERT INTO users (id, username, name, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+operatorColumns,
		uuid.NewString(), username, name, role, passwordHash).
		Scan(&op.ID, &op.Username, &op.Name, &op.Role, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Operator{}, common.NewAppError("USERNAME_TAKEN", "username is already registered", 409, err)
		}
		return Operator{}, fmt.Errorf("create operator: %w", err)
	}
	return op, nil
}
