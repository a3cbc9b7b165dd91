package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	queryTimeout = 5 * time.Second
	maxRetries   = 3
)

// PostgresStore executes ledger operations inside SERIALIZABLE transactions.
// Both legs of a transfer and the Transaction record commit in one database
// transaction, so a crash can never leave money in limbo. Serialization
// failures (SQLSTATE 40001) are retried with linear backoff.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

// withSerializableTx runs fn inside a SERIALIZABLE read-write transaction,
// retrying on serialization failure.
func (s *PostgresStore) withSerializableTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "40001" {
			time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
			continue
		}
		return err
	}
	return fmt.Errorf("failed after %d retries due to serialization failure: %w", maxRetries, err)
}

func (s *PostgresStore) runTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	conn, err := s.Pool.Acquire(queryCtx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(queryCtx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(queryCtx)

	if err := fn(queryCtx, tx); err != nil {
		return err
	}
	return tx.Commit(queryCtx)
}

// lockBalance locks one account row and returns its balance.
func lockBalance(ctx context.Context, tx pgx.Tx, accountID string) (float64, error) {
	var balance float64
	err := tx.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE id = $1 AND is_active FOR UPDATE
	`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("account %s not found or inactive", accountID)
		}
		return 0, fmt.Errorf("failed to lock account: %w", err)
	}
	return balance, nil
}

// lockPair locks two account rows in ascending id order so concurrent
// transfers touching the same pair cannot deadlock.
func lockPair(ctx context.Context, tx pgx.Tx, aID, bID string) (aBalance, bBalance float64, err error) {
	first, second := aID, bID
	if bID < aID {
		first, second = bID, aID
	}

	firstBal, err := lockBalance(ctx, tx, first)
	if err != nil {
		return 0, 0, err
	}
	secondBal, err := lockBalance(ctx, tx, second)
	if err != nil {
		return 0, 0, err
	}

	if first == aID {
		return firstBal, secondBal, nil
	}
	return secondBal, firstBal, nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn *Transaction) error {
	var key any
	if txn.IdempotencyKey != "" {
		key = txn.IdempotencyKey
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (
			id, idempotency_key, sender_account, recipient_account,
			amount, description, transaction_type, status, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, txn.ID, key, txn.SenderAccount, txn.RecipientAccount,
		txn.Amount, txn.Description, txn.TransactionType, txn.Status, txn.CreatedAt, txn.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) AdjustBalance(ctx context.Context, accountID string, delta float64) (float64, error) {
	var newBalance float64
	err := s.withSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		balance, err := lockBalance(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if delta < 0 && balance+delta < 0 {
			return ErrInsufficientFunds
		}
		return tx.QueryRow(ctx, `
			UPDATE accounts SET balance = balance + $2 WHERE id = $1 RETURNING balance
		`, accountID, delta).Scan(&newBalance)
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *PostgresStore) ExecuteTransfer(ctx context.Context, txn *Transaction, senderID, recipientID string) (*Transaction, error) {
	// A replayed idempotency key returns the original record without
	// touching any balance. The unique index on idempotency_key closes the
	// race between two in-flight replays: the loser's insert fails and the
	// whole transaction, balance updates included, rolls back.
	if txn.IdempotencyKey != "" {
		if existing, err := s.findByIdempotencyKey(ctx, txn.IdempotencyKey); err != nil {
			return nil, err
		} else if existing != nil {
			return existing, nil
		}
	}

	err := s.withSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		senderBal, _, err := lockPair(ctx, tx, senderID, recipientID)
		if err != nil {
			return err
		}
		if senderBal < txn.Amount {
			return ErrInsufficientFunds
		}

		if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance - $2 WHERE id = $1`, senderID, txn.Amount); err != nil {
			return fmt.Errorf("failed to debit sender: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2 WHERE id = $1`, recipientID, txn.Amount); err != nil {
			return fmt.Errorf("failed to credit recipient: %w", err)
		}
		return insertTransaction(ctx, tx, txn)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && txn.IdempotencyKey != "" {
			existing, lookupErr := s.findByIdempotencyKey(ctx, txn.IdempotencyKey)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return txn, nil
}

func (s *PostgresStore) ExecuteInvestment(ctx context.Context, inv *Investment, txn *Transaction) error {
	return s.withSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		balance, err := lockBalance(ctx, tx, inv.AccountID)
		if err != nil {
			return err
		}
		if balance < inv.Amount {
			return ErrInsufficientFunds
		}

		if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance - $2 WHERE id = $1`, inv.AccountID, inv.Amount); err != nil {
			return fmt.Errorf("failed to debit owner: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO investments (
				id, account_id, investment_type, amount, current_value,
				expected_return, duration_months, created_at, maturity_date
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, inv.ID, inv.AccountID, inv.InvestmentType, inv.Amount, inv.CurrentValue,
			inv.ExpectedReturn, inv.DurationMonths, inv.CreatedAt, inv.MaturityDate); err != nil {
			return fmt.Errorf("failed to insert investment: %w", err)
		}
		return insertTransaction(ctx, tx, txn)
	})
}

func (s *PostgresStore) ExecuteDisbursement(ctx context.Context, txn *Transaction, recipientID string) error {
	return s.withSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := lockBalance(ctx, tx, recipientID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2 WHERE id = $1`, recipientID, txn.Amount); err != nil {
			return fmt.Errorf("failed to credit recipient: %w", err)
		}
		return insertTransaction(ctx, tx, txn)
	})
}

func (s *PostgresStore) findByIdempotencyKey(ctx context.Context, key string) (*Transaction, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	txn, err := scanTransaction(s.Pool.QueryRow(queryCtx, `
		SELECT id, COALESCE(idempotency_key, ''), sender_account, recipient_account,
		       amount, description, transaction_type, status, created_at, completed_at
		FROM transactions WHERE idempotency_key = $1
	`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return txn, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, accountNumber string) ([]*Transaction, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.Pool.Query(queryCtx, `
		SELECT id, COALESCE(idempotency_key, ''), sender_account, recipient_account,
		       amount, description, transaction_type, status, created_at, completed_at
		FROM transactions
		WHERE sender_account = $1 OR recipient_account = $1
		ORDER BY created_at DESC
	`, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListInvestments(ctx context.Context, accountID string) ([]*Investment, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.Pool.Query(queryCtx, `
		SELECT id, account_id, investment_type, amount, current_value,
		       expected_return, duration_months, created_at, maturity_date
		FROM investments
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", err)
	}
	defer rows.Close()

	var out []*Investment
	for rows.Next() {
		var inv Investment
		if err := rows.Scan(
			&inv.ID, &inv.AccountID, &inv.InvestmentType, &inv.Amount, &inv.CurrentValue,
			&inv.ExpectedReturn, &inv.DurationMonths, &inv.CreatedAt, &inv.MaturityDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		out = append(out, &inv)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var txn Transaction
	err := row.Scan(
		&txn.ID, &txn.IdempotencyKey, &txn.SenderAccount, &txn.RecipientAccount,
		&txn.Amount, &txn.Description, &txn.TransactionType, &txn.Status, &txn.CreatedAt, &txn.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
