package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 5 * time.Second

const loanColumns = `
	id, account_id, loan_type, amount, interest_rate, tenure_months, emi,
	status, purpose, created_at, decided_at, disbursed_at, remaining_due, monthly_income
`

// PostgresStore persists loans in the loans table.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func (s *PostgresStore) Insert(ctx context.Context, l *Loan) error {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.Pool.Exec(queryCtx, `
		INSERT INTO loans (
			id, account_id, loan_type, amount, interest_rate, tenure_months, emi,
			status, purpose, created_at, decided_at, disbursed_at, remaining_due, monthly_income
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, l.ID, l.AccountID, l.LoanType, l.Amount, l.InterestRate, l.TenureMonths, l.EMI,
		l.Status, l.Purpose, l.CreatedAt, l.DecidedAt, l.DisbursedAt, l.RemainingDue, l.MonthlyIncome)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Loan, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	l, err := scanLoan(s.Pool.QueryRow(queryCtx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query loan: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) ListByAccount(ctx context.Context, accountID string) ([]*Loan, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.Pool.Query(queryCtx,
		`SELECT `+loanColumns+` FROM loans WHERE account_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var out []*Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// TransitionStatus flips the status only if the row still holds the expected
// one. The conditional UPDATE is the compare-and-swap: when it matches no row,
// a second query distinguishes a missing loan from a lifecycle violation.
func (s *PostgresStore) TransitionStatus(ctx context.Context, id string, from, to Status, at time.Time) (*Loan, error) {
	// disbursed -> approved is not part of the public lifecycle; it is the
	// revert path taken when the ledger credit fails after the status flip.
	revert := from == StatusDisbursed && to == StatusApproved
	if !CanTransition(from, to) && !revert {
		return nil, &InvalidTransitionError{LoanID: id, From: from, To: to}
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// The revert clears the disbursement timestamp and leaves the original
	// decision timestamp untouched.
	set := "decided_at = $4"
	args := []any{id, from, to, at}
	switch {
	case revert:
		set = "disbursed_at = NULL"
		args = args[:3]
	case to == StatusDisbursed:
		set = "disbursed_at = $4"
	}

	l, err := scanLoan(s.Pool.QueryRow(queryCtx, `
		UPDATE loans SET status = $3, `+set+`
		WHERE id = $1 AND status = $2
		RETURNING `+loanColumns, args...))
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to transition loan: %w", err)
	}

	current, getErr := s.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, &InvalidTransitionError{LoanID: id, From: current.Status, To: to}
}

func scanLoan(row pgx.Row) (*Loan, error) {
	var l Loan
	err := row.Scan(
		&l.ID, &l.AccountID, &l.LoanType, &l.Amount, &l.InterestRate, &l.TenureMonths, &l.EMI,
		&l.Status, &l.Purpose, &l.CreatedAt, &l.DecidedAt, &l.DisbursedAt, &l.RemainingDue, &l.MonthlyIncome,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
