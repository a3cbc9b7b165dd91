// Package account owns customer identity: registration, credential checks and
// account lookups. Balances are mutated exclusively by the ledger engine; this
// package only sets the opening balance at registration.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StartingBalance is credited to every account at registration.
const StartingBalance = 10000.00

// NumberPrefix prefixes every generated account number.
const NumberPrefix = "NEX"

// Type is the closed set of account categories.
type Type string

const (
	TypeSavings Type = "savings"
	TypeCurrent Type = "current"
)

// ValidType reports whether t is a known account category.
func ValidType(t Type) bool {
	switch t {
	case TypeSavings, TypeCurrent:
		return true
	}
	return false
}

// Account is a customer with a single balance-bearing bank account.
type Account struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	PasswordHash  string    `json:"-"`
	AccountNumber string    `json:"account_number"`
	AccountType   Type      `json:"account_type"`
	Balance       float64   `json:"balance"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNumberTaken        = errors.New("account number already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidType        = errors.New("invalid account type")
)

// Store persists accounts. Insert must fail with ErrEmailTaken or
// ErrNumberTaken when the respective unique constraint is violated.
type Store interface {
	Insert(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByNumber(ctx context.Context, number string) (*Account, error)
}

// NewNumber generates a candidate account number: NEX followed by the first 8
// hex characters of a fresh UUID, uppercased. Uniqueness is enforced by the
// store; callers retry on ErrNumberTaken.
func NewNumber() string {
	return NumberPrefix + strings.ToUpper(uuid.NewString()[:8])
}
