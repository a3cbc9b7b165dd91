package loan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nexbank/internal/ledger"
)

// mockDisburser records disbursement calls and can be told to fail.
type mockDisburser struct {
	calls []string
	err   error
}

func (m *mockDisburser) DisburseLoan(_ context.Context, accountID string, amount float64, loanID string) (*ledger.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, loanID)
	return &ledger.Transaction{ID: "txn-" + loanID, Amount: amount}, nil
}

func newTestService(t *testing.T) (*Service, *MemoryStore, *mockDisburser) {
	t.Helper()
	store := NewMemoryStore()
	disburser := &mockDisburser{}
	return NewService(store, disburser, nil), store, disburser
}

func TestApplyComputesEMI(t *testing.T) {
	svc, _, _ := newTestService(t)

	l, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID:    "acc-1",
		LoanType:     TypePersonal,
		Amount:       100000,
		TenureMonths: 24,
		Purpose:      "renovation",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusApplied, l.Status)
	assert.Equal(t, 10.5, l.InterestRate)
	assert.InDelta(t, 4637.60, l.EMI, 0.005)
	assert.InDelta(t, 4637.60*24, l.RemainingDue, 0.5)
}

func TestApplyRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: "payday", Amount: 1000, TenureMonths: 12,
	})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypePersonal, Amount: 0, TenureMonths: 12,
	})
	assert.Error(t, err)

	_, err = svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypePersonal, Amount: 1000, TenureMonths: 0,
	})
	assert.Error(t, err)
}

func TestApproveThenDisburse(t *testing.T) {
	svc, _, disburser := newTestService(t)

	l, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypeHome, Amount: 2000000, TenureMonths: 240,
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), "acc-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedAt)

	disbursed, err := svc.Disburse(context.Background(), "acc-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDisbursed, disbursed.Status)
	require.NotNil(t, disbursed.DisbursedAt)
	assert.Equal(t, []string{l.ID}, disburser.calls)
}

func TestApproveTwiceFails(t *testing.T) {
	svc, _, _ := newTestService(t)

	l, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypeCar, Amount: 300000, TenureMonths: 48,
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), "acc-1", l.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), "acc-1", l.ID)
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, StatusApproved, transition.From)
}

func TestRejectIsTerminal(t *testing.T) {
	svc, _, disburser := newTestService(t)

	l, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypeEducation, Amount: 500000, TenureMonths: 60,
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), "acc-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)

	_, err = svc.Approve(context.Background(), "acc-1", l.ID)
	var transition *InvalidTransitionError
	assert.ErrorAs(t, err, &transition)

	_, err = svc.Disburse(context.Background(), "acc-1", l.ID)
	assert.ErrorAs(t, err, &transition)
	assert.Empty(t, disburser.calls)
}

func TestDisburseWithoutApprovalFails(t *testing.T) {
	svc, _, disburser := newTestService(t)

	l, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypeBusiness, Amount: 1000000, TenureMonths: 36,
	})
	require.NoError(t, err)

	_, err = svc.Disburse(context.Background(), "acc-1", l.ID)
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Empty(t, disburser.calls)
}

func TestDisburseRevertsOnLedgerFailure(t *testing.T) {
	svc, store, disburser := newTestService(t)
	disburser.err = errors.New("ledger down")

	l, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypePersonal, Amount: 100000, TenureMonths: 24,
	})
	require.NoError(t, err)
	approved, err := svc.Approve(context.Background(), "acc-1", l.ID)
	require.NoError(t, err)
	require.NotNil(t, approved.DecidedAt)

	_, err = svc.Disburse(context.Background(), "acc-1", l.ID)
	require.Error(t, err)

	// The reverted loan looks like it was never disbursed: the decision
	// timestamp survives and no disbursement timestamp lingers.
	current, err := store.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, current.Status)
	require.NotNil(t, current.DecidedAt)
	assert.True(t, current.DecidedAt.Equal(*approved.DecidedAt))
	assert.Nil(t, current.DisbursedAt)

	// A retry after the outage succeeds.
	disburser.err = nil
	disbursed, err := svc.Disburse(context.Background(), "acc-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDisbursed, disbursed.Status)
	require.NotNil(t, disbursed.DisbursedAt)
}

func TestOwnershipHidesOtherAccountsLoans(t *testing.T) {
	svc, _, _ := newTestService(t)

	l, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypePersonal, Amount: 100000, TenureMonths: 24,
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "acc-2", l.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Approve(context.Background(), "acc-2", l.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "acc-1", "no-such-loan")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypePersonal, Amount: 50000, TenureMonths: 12,
	})
	require.NoError(t, err)
	second, err := svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-1", LoanType: TypeCar, Amount: 300000, TenureMonths: 48,
	})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), ApplyRequest{
		AccountID: "acc-2", LoanType: TypeHome, Amount: 2000000, TenureMonths: 240,
	})
	require.NoError(t, err)

	loans, err := svc.List(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, second.ID, loans[0].ID)
	assert.Equal(t, first.ID, loans[1].ID)
}
