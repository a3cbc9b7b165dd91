// Package ledger is the balance-mutation core: every change to an account
// balance funnels through the atomic operations of a Store implementation, and
// each committed operation emits its Transaction record in the same atomic
// step. Multi-account operations lock accounts in ascending id order so
// concurrent transfers can never deadlock.
package ledger

import (
	"context"
	"errors"
	"time"
)

// SystemAccount is the sender recorded on system-originated credits such as
// loan disbursements.
const SystemAccount = "NEXBANK"

// InvestmentPool is the recipient recorded on investment purchases; money
// leaving a customer account into a product is parked against this sentinel.
const InvestmentPool = "NEXBANK-POOL"

// TransactionType is the closed set of ledger operation kinds.
type TransactionType string

const (
	TypeTransfer         TransactionType = "transfer"
	TypeDeposit          TransactionType = "deposit"
	TypeWithdrawal       TransactionType = "withdrawal"
	TypeInvestment       TransactionType = "investment"
	TypeLoanDisbursement TransactionType = "loan_disbursement"
	TypeLoanPayment      TransactionType = "loan_payment"
)

// TransactionStatus is the closed set of transaction states.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Transaction is the immutable record of a committed balance movement.
type Transaction struct {
	ID               string            `json:"id"`
	IdempotencyKey   string            `json:"-"`
	SenderAccount    string            `json:"sender_account"`
	RecipientAccount string            `json:"recipient_account"`
	Amount           float64           `json:"amount"`
	Description      string            `json:"description"`
	TransactionType  TransactionType   `json:"transaction_type"`
	Status           TransactionStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
}

// InvestmentType is the closed set of investment products.
type InvestmentType string

const (
	InvestMutualFund   InvestmentType = "mutual_fund"
	InvestFixedDeposit InvestmentType = "fixed_deposit"
	InvestEquity       InvestmentType = "equity"
	InvestBonds        InvestmentType = "bonds"
	InvestGold         InvestmentType = "gold"
)

// ValidInvestmentType reports whether t is a known product.
func ValidInvestmentType(t InvestmentType) bool {
	switch t {
	case InvestMutualFund, InvestFixedDeposit, InvestEquity, InvestBonds, InvestGold:
		return true
	}
	return false
}

// Investment records a product purchase. CurrentValue equals the principal at
// creation and is not revalued by this core.
type Investment struct {
	ID             string         `json:"id"`
	AccountID      string         `json:"account_id"`
	InvestmentType InvestmentType `json:"investment_type"`
	Amount         float64        `json:"amount"`
	CurrentValue   float64        `json:"current_value"`
	ExpectedReturn float64        `json:"expected_return"`
	DurationMonths int            `json:"duration_months"`
	CreatedAt      time.Time      `json:"created_at"`
	MaturityDate   time.Time      `json:"maturity_date"`
}

var (
	// ErrInvalidAmount rejects non-positive amounts before any mutation.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds rejects debits that would drive a balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrRecipientNotFound rejects transfers to unknown account numbers.
	ErrRecipientNotFound = errors.New("recipient account not found")

	// ErrSameAccount rejects transfers from an account to itself.
	ErrSameAccount = errors.New("sender and recipient must differ")

	// ErrInvalidInvestmentType rejects unknown products.
	ErrInvalidInvestmentType = errors.New("invalid investment type")

	// ErrInconsistency signals that a multi-leg operation was observed
	// partially applied. Stores are built so this cannot happen (single
	// atomic section spanning both legs); if it is ever returned it is a
	// fatal operator-facing failure, never a retryable client error.
	ErrInconsistency = errors.New("ledger inconsistency: partial balance movement detected")
)

// Store executes balance movements atomically: the balance effects and the
// Transaction (and Investment) records of one call commit together or not at
// all. Implementations serialize concurrent operations per account while
// letting operations on disjoint accounts proceed in parallel.
type Store interface {
	// AdjustBalance atomically applies delta to one account and returns the
	// new balance. A negative delta larger than the balance fails with
	// ErrInsufficientFunds and changes nothing.
	AdjustBalance(ctx context.Context, accountID string, delta float64) (float64, error)

	// ExecuteTransfer debits the sender, credits the recipient and records
	// txn in one atomic step. If txn.IdempotencyKey matches a previously
	// recorded transaction, that transaction is returned and no money moves.
	ExecuteTransfer(ctx context.Context, txn *Transaction, senderID, recipientID string) (*Transaction, error)

	// ExecuteInvestment debits the owner and records the investment and its
	// transaction in one atomic step.
	ExecuteInvestment(ctx context.Context, inv *Investment, txn *Transaction) error

	// ExecuteDisbursement credits the recipient from the system and records
	// txn in one atomic step.
	ExecuteDisbursement(ctx context.Context, txn *Transaction, recipientID string) error

	// ListTransactions returns transactions involving the account number,
	// newest first.
	ListTransactions(ctx context.Context, accountNumber string) ([]*Transaction, error)

	// ListInvestments returns the account's investments, newest first.
	ListInvestments(ctx context.Context, accountID string) ([]*Investment, error)
}
