package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/nexbank/internal/auth"
)

// numberAttempts bounds the collision-retry loop for account numbers. The
// 8-hex-digit space makes a second collision in a row vanishingly unlikely.
const numberAttempts = 5

// RegisterRequest carries the fields needed to open an account.
type RegisterRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	AccountType Type   `json:"account_type"`
}

// Service handles account lifecycle and credential checks.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register opens a new account with the fixed starting balance. The account
// number is regenerated and the insert retried if the store reports a number
// collision.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	if req.AccountType == "" {
		req.AccountType = TypeSavings
	}
	if !ValidType(req.AccountType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, req.AccountType)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &Account{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		PasswordHash: hash,
		AccountType:  req.AccountType,
		Balance:      StartingBalance,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		a.AccountNumber = NewNumber()
		err = s.store.Insert(ctx, a)
		if err == nil {
			return a, nil
		}
		if errors.Is(err, ErrNumberTaken) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to allocate account number after %d attempts: %w", numberAttempts, err)
}

// Authenticate verifies an email/password pair. It returns
// ErrInvalidCredentials for both unknown emails and wrong passwords so the
// response does not reveal which accounts exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !auth.VerifyPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// GetByID returns the account with the given id.
func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.store.GetByID(ctx, id)
}

// GetByNumber returns the account with the given account number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Account, error) {
	return s.store.GetByNumber(ctx, number)
}
