package loan

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps loans in a map. Status transitions happen under the store
// lock, so the compare-and-swap semantics match the Postgres store.
type MemoryStore struct {
	mu    sync.Mutex
	loans map[string]*Loan
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{loans: make(map[string]*Loan)}
}

func (s *MemoryStore) Insert(_ context.Context, l *Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.loans[l.ID] = &cp
	s.order = append(s.order, l.ID)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *MemoryStore) ListByAccount(_ context.Context, accountID string) ([]*Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Loan
	for i := len(s.order) - 1; i >= 0; i-- {
		if l := s.loans[s.order[i]]; l.AccountID == accountID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) TransitionStatus(_ context.Context, id string, from, to Status, at time.Time) (*Loan, error) {
	revert := from == StatusDisbursed && to == StatusApproved
	if !CanTransition(from, to) && !revert {
		return nil, &InvalidTransitionError{LoanID: id, From: from, To: to}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[id]
	if !ok {
		return nil, ErrNotFound
	}
	if l.Status != from {
		return nil, &InvalidTransitionError{LoanID: id, From: l.Status, To: to}
	}

	l.Status = to
	switch {
	case revert:
		// The loan is approved again as if the disbursement never happened;
		// the original decision timestamp stays.
		l.DisbursedAt = nil
	case to == StatusDisbursed:
		t := at
		l.DisbursedAt = &t
	default:
		t := at
		l.DecidedAt = &t
	}
	cp := *l
	return &cp, nil
}
