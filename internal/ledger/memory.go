package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/nexbank/internal/account"
)

// memAccount pairs an account with the mutex that serializes its balance.
type memAccount struct {
	mu  sync.Mutex
	acc account.Account
}

// MemoryStore is an in-process bank: it implements both the account.Store and
// the ledger Store interfaces over the same map, so services share one source
// of truth without a database. Multi-account operations take the per-account
// locks in ascending account-id order; records are appended before any lock is
// released, so no observer can see a debited sender without its transaction.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*memAccount
	byEmail  map[string]string
	byNumber map[string]string

	recMu        sync.Mutex
	transactions []*Transaction
	byIdemKey    map[string]*Transaction
	investments  []*Investment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]*memAccount),
		byEmail:   make(map[string]string),
		byNumber:  make(map[string]string),
		byIdemKey: make(map[string]*Transaction),
	}
}

// Insert implements account.Store.
func (s *MemoryStore) Insert(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[a.Email]; ok {
		return account.ErrEmailTaken
	}
	if _, ok := s.byNumber[a.AccountNumber]; ok {
		return account.ErrNumberTaken
	}

	s.byID[a.ID] = &memAccount{acc: *a}
	s.byEmail[a.Email] = a.ID
	s.byNumber[a.AccountNumber] = a.ID
	return nil
}

// GetByID implements account.Store.
func (s *MemoryStore) GetByID(_ context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	ma, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, account.ErrNotFound
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	cp := ma.acc
	return &cp, nil
}

// GetByEmail implements account.Store.
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, account.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// GetByNumber implements account.Store.
func (s *MemoryStore) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	s.mu.RLock()
	id, ok := s.byNumber[number]
	s.mu.RUnlock()
	if !ok {
		return nil, account.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *MemoryStore) lookup(id string) (*memAccount, error) {
	s.mu.RLock()
	ma, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok || !ma.acc.IsActive {
		return nil, fmt.Errorf("account %s not found or inactive", id)
	}
	return ma, nil
}

// lockOrdered locks the given accounts in ascending id order and returns the
// unlock function. Duplicate ids are locked once.
func lockOrdered(accounts ...*memAccount) func() {
	uniq := accounts[:0]
	seen := make(map[*memAccount]bool, len(accounts))
	for _, ma := range accounts {
		if !seen[ma] {
			seen[ma] = true
			uniq = append(uniq, ma)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].acc.ID < uniq[j].acc.ID })
	for _, ma := range uniq {
		ma.mu.Lock()
	}
	return func() {
		for i := len(uniq) - 1; i >= 0; i-- {
			uniq[i].mu.Unlock()
		}
	}
}

func (s *MemoryStore) record(txn *Transaction) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	s.transactions = append(s.transactions, txn)
	if txn.IdempotencyKey != "" {
		s.byIdemKey[txn.IdempotencyKey] = txn
	}
}

func (s *MemoryStore) AdjustBalance(_ context.Context, accountID string, delta float64) (float64, error) {
	ma, err := s.lookup(accountID)
	if err != nil {
		return 0, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	if delta < 0 && ma.acc.Balance+delta < 0 {
		return 0, ErrInsufficientFunds
	}
	ma.acc.Balance += delta
	return ma.acc.Balance, nil
}

func (s *MemoryStore) ExecuteTransfer(_ context.Context, txn *Transaction, senderID, recipientID string) (*Transaction, error) {
	sender, err := s.lookup(senderID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.lookup(recipientID)
	if err != nil {
		return nil, err
	}

	unlock := lockOrdered(sender, recipient)
	defer unlock()

	// Checked under the sender lock: a concurrent replay of the same key
	// serializes here, so exactly one of the two moves money.
	if txn.IdempotencyKey != "" {
		s.recMu.Lock()
		existing := s.byIdemKey[txn.IdempotencyKey]
		s.recMu.Unlock()
		if existing != nil {
			return existing, nil
		}
	}

	if sender.acc.Balance < txn.Amount {
		return nil, ErrInsufficientFunds
	}

	sender.acc.Balance -= txn.Amount
	recipient.acc.Balance += txn.Amount
	s.record(txn)
	return txn, nil
}

func (s *MemoryStore) ExecuteInvestment(_ context.Context, inv *Investment, txn *Transaction) error {
	owner, err := s.lookup(inv.AccountID)
	if err != nil {
		return err
	}

	owner.mu.Lock()
	defer owner.mu.Unlock()

	if owner.acc.Balance < inv.Amount {
		return ErrInsufficientFunds
	}

	owner.acc.Balance -= inv.Amount
	s.recMu.Lock()
	s.investments = append(s.investments, inv)
	s.recMu.Unlock()
	s.record(txn)
	return nil
}

func (s *MemoryStore) ExecuteDisbursement(_ context.Context, txn *Transaction, recipientID string) error {
	recipient, err := s.lookup(recipientID)
	if err != nil {
		return err
	}

	recipient.mu.Lock()
	defer recipient.mu.Unlock()

	recipient.acc.Balance += txn.Amount
	s.record(txn)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, accountNumber string) ([]*Transaction, error) {
	s.recMu.Lock()
	defer s.recMu.Unlock()

	var out []*Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		txn := s.transactions[i]
		if txn.SenderAccount == accountNumber || txn.RecipientAccount == accountNumber {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListInvestments(_ context.Context, accountID string) ([]*Investment, error) {
	s.recMu.Lock()
	defer s.recMu.Unlock()

	var out []*Investment
	for i := len(s.investments) - 1; i >= 0; i-- {
		if s.investments[i].AccountID == accountID {
			out = append(out, s.investments[i])
		}
	}
	return out, nil
}
