// Package loan manages loan applications and their lifecycle. A loan moves
// through a fixed state machine; money only moves at disbursement, and that
// movement is delegated to the ledger engine.
package loan

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is the closed set of loan states.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusDisbursed Status = "disbursed"
)

// AllowedTransitions is the full lifecycle. Rejected and disbursed are
// terminal.
var AllowedTransitions = map[Status][]Status{
	StatusApplied:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusDisbursed},
	StatusRejected:  {},
	StatusDisbursed: {},
}

// CanTransition reports whether a loan may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a lifecycle violation, including repeats of
// an already-applied transition.
type InvalidTransitionError struct {
	LoanID string
	From   Status
	To     Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("loan %s: invalid transition %s -> %s", e.LoanID, e.From, e.To)
}

// Type is the closed set of loan products.
type Type string

const (
	TypePersonal  Type = "personal"
	TypeHome      Type = "home"
	TypeCar       Type = "car"
	TypeEducation Type = "education"
	TypeBusiness  Type = "business"
)

// ValidType reports whether t is a known loan product.
func ValidType(t Type) bool {
	switch t {
	case TypePersonal, TypeHome, TypeCar, TypeEducation, TypeBusiness:
		return true
	}
	return false
}

// Loan is a loan application and, after approval, the contract being serviced.
type Loan struct {
	ID            string     `json:"id"`
	AccountID     string     `json:"account_id"`
	LoanType      Type       `json:"loan_type"`
	Amount        float64    `json:"amount"`
	InterestRate  float64    `json:"interest_rate"`
	TenureMonths  int        `json:"tenure_months"`
	EMI           float64    `json:"emi"`
	Status        Status     `json:"status"`
	Purpose       string     `json:"purpose"`
	CreatedAt     time.Time  `json:"created_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	DisbursedAt   *time.Time `json:"disbursed_at,omitempty"`
	RemainingDue  float64    `json:"remaining_due"`
	MonthlyIncome float64    `json:"monthly_income,omitempty"`
}

var (
	// ErrNotFound covers both unknown loan ids and loans owned by another
	// account, so responses do not reveal other customers' loans.
	ErrNotFound = errors.New("loan not found")

	// ErrInvalidType rejects unknown loan products.
	ErrInvalidType = errors.New("invalid loan type")
)

// Store persists loans. TransitionStatus is compare-and-swap: it moves the
// loan from the expected status to the new one, or fails with
// InvalidTransitionError carrying the status actually found.
type Store interface {
	Insert(ctx context.Context, l *Loan) error
	Get(ctx context.Context, id string) (*Loan, error)
	ListByAccount(ctx context.Context, accountID string) ([]*Loan, error)
	TransitionStatus(ctx context.Context, id string, from, to Status, at time.Time) (*Loan, error)
}
