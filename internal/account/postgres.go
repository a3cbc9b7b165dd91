package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 5 * time.Second

// PostgresStore persists accounts in the accounts table. Balance columns are
// written here only once, at insert; all later balance changes go through the
// ledger store's atomic operations.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

const accountColumns = `id, full_name, email, phone, password_hash, account_number, account_type, balance, is_active, created_at`

func (s *PostgresStore) Insert(ctx context.Context, a *Account) error {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.Pool.Exec(queryCtx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.FullName, a.Email, a.Phone, a.PasswordHash, a.AccountNumber, a.AccountType, a.Balance, a.IsActive, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return ErrEmailTaken
			}
			if strings.Contains(pgErr.ConstraintName, "account_number") {
				return ErrNumberTaken
			}
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.getBy(ctx, "id", id)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.getBy(ctx, "email", email)
}

func (s *PostgresStore) GetByNumber(ctx context.Context, number string) (*Account, error) {
	return s.getBy(ctx, "account_number", number)
}

func (s *PostgresStore) getBy(ctx context.Context, column, value string) (*Account, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var a Account
	err := s.Pool.QueryRow(queryCtx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE `+column+` = $1
	`, value).Scan(
		&a.ID, &a.FullName, &a.Email, &a.Phone, &a.PasswordHash,
		&a.AccountNumber, &a.AccountType, &a.Balance, &a.IsActive, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by %s: %w", column, err)
	}
	return &a, nil
}
