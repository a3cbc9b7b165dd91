package loan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/nexbank/internal/finance"
	"github.com/example/nexbank/internal/ledger"
)

// Disburser credits a loan's amount to its account. Satisfied by the ledger
// service.
type Disburser interface {
	DisburseLoan(ctx context.Context, accountID string, amount float64, loanID string) (*ledger.Transaction, error)
}

// Service drives loan applications through their lifecycle.
type Service struct {
	store  Store
	ledger Disburser
	logger *slog.Logger
}

func NewService(store Store, disburser Disburser, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, ledger: disburser, logger: logger}
}

// ApplyRequest opens a loan application.
type ApplyRequest struct {
	AccountID     string
	LoanType      Type
	Amount        float64
	TenureMonths  int
	Purpose       string
	MonthlyIncome float64
}

// Apply records a new application in the applied state. The interest rate is
// fixed by the product table and the EMI is computed up front so the applicant
// sees the exact monthly cost before any decision is made.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*Loan, error) {
	if !ValidType(req.LoanType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, req.LoanType)
	}
	if req.Amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	rate := finance.LoanAnnualRate(string(req.LoanType))
	emi, err := finance.EMI(req.Amount, rate, req.TenureMonths)
	if err != nil {
		return nil, err
	}

	l := &Loan{
		ID:            uuid.NewString(),
		AccountID:     req.AccountID,
		LoanType:      req.LoanType,
		Amount:        req.Amount,
		InterestRate:  rate,
		TenureMonths:  req.TenureMonths,
		EMI:           emi,
		Status:        StatusApplied,
		Purpose:       req.Purpose,
		CreatedAt:     time.Now().UTC(),
		RemainingDue:  finance.Round2(emi * float64(req.TenureMonths)),
		MonthlyIncome: req.MonthlyIncome,
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("loan application recorded",
		"loan_id", l.ID, "type", l.LoanType, "amount", l.Amount, "emi", l.EMI)
	return l, nil
}

// Approve moves an applied loan to approved. Approving a loan that is already
// approved, rejected or disbursed fails with InvalidTransitionError.
func (s *Service) Approve(ctx context.Context, accountID, loanID string) (*Loan, error) {
	return s.decide(ctx, accountID, loanID, StatusApproved)
}

// Reject moves an applied loan to rejected.
func (s *Service) Reject(ctx context.Context, accountID, loanID string) (*Loan, error) {
	return s.decide(ctx, accountID, loanID, StatusRejected)
}

func (s *Service) decide(ctx context.Context, accountID, loanID string, to Status) (*Loan, error) {
	l, err := s.owned(ctx, accountID, loanID)
	if err != nil {
		return nil, err
	}
	decided, err := s.store.TransitionStatus(ctx, l.ID, StatusApplied, to, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("loan decision recorded", "loan_id", decided.ID, "status", decided.Status)
	return decided, nil
}

// Disburse moves an approved loan to disbursed and credits the amount through
// the ledger. The status flips first so a concurrent disbursement of the same
// loan fails its compare-and-swap; if the credit then fails, the status is
// reverted so the loan can be retried.
func (s *Service) Disburse(ctx context.Context, accountID, loanID string) (*Loan, error) {
	l, err := s.owned(ctx, accountID, loanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	disbursed, err := s.store.TransitionStatus(ctx, l.ID, StatusApproved, StatusDisbursed, now)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.DisburseLoan(ctx, accountID, disbursed.Amount, disbursed.ID); err != nil {
		if _, revertErr := s.store.TransitionStatus(ctx, disbursed.ID, StatusDisbursed, StatusApproved, now); revertErr != nil {
			s.logger.Error("failed to revert loan after disbursement failure",
				"loan_id", disbursed.ID, "error", revertErr)
		}
		return nil, fmt.Errorf("failed to disburse loan: %w", err)
	}

	s.logger.Info("loan disbursed", "loan_id", disbursed.ID, "amount", disbursed.Amount)
	return disbursed, nil
}

// Get returns one of the account's loans.
func (s *Service) Get(ctx context.Context, accountID, loanID string) (*Loan, error) {
	return s.owned(ctx, accountID, loanID)
}

// List returns the account's loans, newest first.
func (s *Service) List(ctx context.Context, accountID string) ([]*Loan, error) {
	return s.store.ListByAccount(ctx, accountID)
}

func (s *Service) owned(ctx context.Context, accountID, loanID string) (*Loan, error) {
	l, err := s.store.Get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.AccountID != accountID {
		return nil, ErrNotFound
	}
	return l, nil
}
