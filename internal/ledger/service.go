package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/nexbank/internal/account"
	"github.com/example/nexbank/internal/finance"
)

// AccountDirectory resolves accounts for the engine. Lookups never mutate.
type AccountDirectory interface {
	GetByID(ctx context.Context, id string) (*account.Account, error)
	GetByNumber(ctx context.Context, number string) (*account.Account, error)
}

// Service orchestrates multi-account money movements. All validation happens
// before the store call; a validation failure leaves balances and records
// untouched.
type Service struct {
	store    Store
	accounts AccountDirectory
	logger   *slog.Logger
}

func NewService(store Store, accounts AccountDirectory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, accounts: accounts, logger: logger}
}

// TransferRequest moves Amount from the sender to the account with
// RecipientNumber. IdempotencyKey, when set, deduplicates client retries.
type TransferRequest struct {
	SenderID        string
	RecipientNumber string
	Amount          float64
	Description     string
	IdempotencyKey  string
}

// Transfer performs an all-or-nothing peer transfer and returns its record.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*Transaction, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	sender, err := s.accounts.GetByID(ctx, req.SenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender: %w", err)
	}
	if sender.AccountNumber == req.RecipientNumber {
		return nil, ErrSameAccount
	}

	recipient, err := s.accounts.GetByNumber(ctx, req.RecipientNumber)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	now := time.Now().UTC()
	txn := &Transaction{
		ID:               uuid.NewString(),
		IdempotencyKey:   req.IdempotencyKey,
		SenderAccount:    sender.AccountNumber,
		RecipientAccount: recipient.AccountNumber,
		Amount:           req.Amount,
		Description:      req.Description,
		TransactionType:  TypeTransfer,
		Status:           StatusCompleted,
		CreatedAt:        now,
		CompletedAt:      &now,
	}

	recorded, err := s.store.ExecuteTransfer(ctx, txn, sender.ID, recipient.ID)
	if err != nil {
		if errors.Is(err, ErrInconsistency) {
			s.logger.Error("transfer left ledger inconsistent",
				"sender", sender.AccountNumber, "recipient", recipient.AccountNumber, "amount", req.Amount)
		}
		return nil, err
	}

	s.logger.Info("transfer completed",
		"transaction_id", recorded.ID, "amount", recorded.Amount,
		"sender", recorded.SenderAccount, "recipient", recorded.RecipientAccount)
	return recorded, nil
}

// InvestmentRequest purchases a product for the owner.
type InvestmentRequest struct {
	OwnerID        string
	InvestmentType InvestmentType
	Amount         float64
	DurationMonths int
}

// PurchaseInvestment debits the owner and records the investment with its
// projected return, all in one atomic step.
func (s *Service) PurchaseInvestment(ctx context.Context, req InvestmentRequest) (*Investment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !ValidInvestmentType(req.InvestmentType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInvestmentType, req.InvestmentType)
	}

	owner, err := s.accounts.GetByID(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner: %w", err)
	}

	_, expectedReturn, err := finance.InvestmentReturn(req.Amount, string(req.InvestmentType), req.DurationMonths)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv := &Investment{
		ID:             uuid.NewString(),
		AccountID:      owner.ID,
		InvestmentType: req.InvestmentType,
		Amount:         req.Amount,
		CurrentValue:   req.Amount,
		ExpectedReturn: expectedReturn,
		DurationMonths: req.DurationMonths,
		CreatedAt:      now,
		MaturityDate:   now.AddDate(0, req.DurationMonths, 0),
	}
	txn := &Transaction{
		ID:               uuid.NewString(),
		SenderAccount:    owner.AccountNumber,
		RecipientAccount: InvestmentPool,
		Amount:           req.Amount,
		Description:      fmt.Sprintf("Investment in %s", req.InvestmentType),
		TransactionType:  TypeInvestment,
		Status:           StatusCompleted,
		CreatedAt:        now,
		CompletedAt:      &now,
	}

	if err := s.store.ExecuteInvestment(ctx, inv, txn); err != nil {
		return nil, err
	}

	s.logger.Info("investment purchased",
		"investment_id", inv.ID, "type", inv.InvestmentType, "amount", inv.Amount)
	return inv, nil
}

// DisburseLoan credits an approved loan's amount to the account, with the
// system sentinel as the recorded sender.
func (s *Service) DisburseLoan(ctx context.Context, accountID string, amount float64, loanID string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	recipient, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	now := time.Now().UTC()
	txn := &Transaction{
		ID:               uuid.NewString(),
		SenderAccount:    SystemAccount,
		RecipientAccount: recipient.AccountNumber,
		Amount:           amount,
		Description:      fmt.Sprintf("Loan disbursement %s", loanID),
		TransactionType:  TypeLoanDisbursement,
		Status:           StatusCompleted,
		CreatedAt:        now,
		CompletedAt:      &now,
	}

	if err := s.store.ExecuteDisbursement(ctx, txn, recipient.ID); err != nil {
		return nil, err
	}

	s.logger.Info("loan disbursed", "loan_id", loanID, "amount", amount, "recipient", recipient.AccountNumber)
	return txn, nil
}

// History returns the account's transactions, newest first.
func (s *Service) History(ctx context.Context, accountID string) ([]*Transaction, error) {
	a, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	return s.store.ListTransactions(ctx, a.AccountNumber)
}

// Investments returns the account's investments, newest first.
func (s *Service) Investments(ctx context.Context, accountID string) ([]*Investment, error) {
	return s.store.ListInvestments(ctx, accountID)
}
