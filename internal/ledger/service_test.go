package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nexbank/internal/account"
)

func newTestAccount(t *testing.T, store *MemoryStore, balance float64) *account.Account {
	t.Helper()
	a := &account.Account{
		ID:            uuid.NewString(),
		FullName:      "Test Customer",
		Email:         uuid.NewString() + "@example.com",
		Phone:         "5550000",
		PasswordHash:  "x",
		AccountNumber: account.NewNumber(),
		AccountType:   account.TypeSavings,
		Balance:       balance,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Insert(context.Background(), a))
	return a
}

func balanceOf(t *testing.T, store *MemoryStore, id string) float64 {
	t.Helper()
	a, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a.Balance
}

func TestTransferMovesMoneyAndRecords(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	sender := newTestAccount(t, store, 10000)
	recipient := newTestAccount(t, store, 10000)

	txn, err := svc.Transfer(context.Background(), TransferRequest{
		SenderID:        sender.ID,
		RecipientNumber: recipient.AccountNumber,
		Amount:          1000,
		Description:     "rent",
	})
	require.NoError(t, err)

	assert.Equal(t, 9000.0, balanceOf(t, store, sender.ID))
	assert.Equal(t, 11000.0, balanceOf(t, store, recipient.ID))

	assert.Equal(t, sender.AccountNumber, txn.SenderAccount)
	assert.Equal(t, recipient.AccountNumber, txn.RecipientAccount)
	assert.Equal(t, TypeTransfer, txn.TransactionType)
	assert.Equal(t, StatusCompleted, txn.Status)
	require.NotNil(t, txn.CompletedAt)

	history, err := svc.History(context.Background(), sender.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, txn.ID, history[0].ID)
}

func TestTransferInsufficientFundsLeavesNoTrace(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	sender := newTestAccount(t, store, 500)
	recipient := newTestAccount(t, store, 10000)

	_, err := svc.Transfer(context.Background(), TransferRequest{
		SenderID:        sender.ID,
		RecipientNumber: recipient.AccountNumber,
		Amount:          1000,
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, 500.0, balanceOf(t, store, sender.ID))
	assert.Equal(t, 10000.0, balanceOf(t, store, recipient.ID))

	history, err := svc.History(context.Background(), sender.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTransferValidation(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	sender := newTestAccount(t, store, 10000)

	_, err := svc.Transfer(context.Background(), TransferRequest{
		SenderID: sender.ID, RecipientNumber: "NEXFFFFFFFF", Amount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Transfer(context.Background(), TransferRequest{
		SenderID: sender.ID, RecipientNumber: "NEXFFFFFFFF", Amount: -5,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Transfer(context.Background(), TransferRequest{
		SenderID: sender.ID, RecipientNumber: sender.AccountNumber, Amount: 100,
	})
	assert.ErrorIs(t, err, ErrSameAccount)

	_, err = svc.Transfer(context.Background(), TransferRequest{
		SenderID: sender.ID, RecipientNumber: "NEXFFFFFFFF", Amount: 100,
	})
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	// Nothing above should have touched the balance.
	assert.Equal(t, 10000.0, balanceOf(t, store, sender.ID))
}

func TestTransferIdempotencyReplay(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	sender := newTestAccount(t, store, 10000)
	recipient := newTestAccount(t, store, 10000)

	req := TransferRequest{
		SenderID:        sender.ID,
		RecipientNumber: recipient.AccountNumber,
		Amount:          1000,
		IdempotencyKey:  "retry-abc",
	}

	first, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 9000.0, balanceOf(t, store, sender.ID))
	assert.Equal(t, 11000.0, balanceOf(t, store, recipient.ID))

	history, err := svc.History(context.Background(), sender.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestConcurrentTransfersConserveMoney(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	a := newTestAccount(t, store, 10000)
	b := newTestAccount(t, store, 10000)
	c := newTestAccount(t, store, 10000)

	accounts := []*account.Account{a, b, c}
	const workers = 8
	const transfersPerWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < transfersPerWorker; i++ {
				from := accounts[(seed+i)%len(accounts)]
				to := accounts[(seed+i+1)%len(accounts)]
				// Failures from drained balances are fine; partial
				// application is not.
				_, _ = svc.Transfer(context.Background(), TransferRequest{
					SenderID:        from.ID,
					RecipientNumber: to.AccountNumber,
					Amount:          10,
				})
			}
		}(w)
	}
	wg.Wait()

	total := balanceOf(t, store, a.ID) + balanceOf(t, store, b.ID) + balanceOf(t, store, c.ID)
	assert.Equal(t, 30000.0, total)
}

func TestConcurrentTransfersOverdrawAtMostOneSucceeds(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	// 100 in the account, ten racing transfers of 80: only one can clear.
	sender := newTestAccount(t, store, 100)
	recipient := newTestAccount(t, store, 0)

	const attempts = 10
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), TransferRequest{
				SenderID:        sender.ID,
				RecipientNumber: recipient.AccountNumber,
				Amount:          80,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 20.0, balanceOf(t, store, sender.ID))
	assert.Equal(t, 80.0, balanceOf(t, store, recipient.ID))
}

func TestServiceResolvesRecipientsThroughAccountService(t *testing.T) {
	store := NewMemoryStore()
	accounts := account.NewService(store)
	svc := NewService(store, accounts, nil)

	sender, err := accounts.Register(context.Background(), account.RegisterRequest{
		FullName: "Sender", Email: "sender@example.com", Password: "pw-sender",
	})
	require.NoError(t, err)
	recipient, err := accounts.Register(context.Background(), account.RegisterRequest{
		FullName: "Recipient", Email: "recipient@example.com", Password: "pw-recipient",
	})
	require.NoError(t, err)

	_, err = svc.Transfer(context.Background(), TransferRequest{
		SenderID:        sender.ID,
		RecipientNumber: recipient.AccountNumber,
		Amount:          2500,
	})
	require.NoError(t, err)

	assert.Equal(t, account.StartingBalance-2500, balanceOf(t, store, sender.ID))
	assert.Equal(t, account.StartingBalance+2500, balanceOf(t, store, recipient.ID))
}

func TestPurchaseInvestment(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	owner := newTestAccount(t, store, 10000)

	inv, err := svc.PurchaseInvestment(context.Background(), InvestmentRequest{
		OwnerID:        owner.ID,
		InvestmentType: InvestMutualFund,
		Amount:         5000,
		DurationMonths: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, 5000.0, balanceOf(t, store, owner.ID))
	assert.Equal(t, 5000.0, inv.Amount)
	assert.Equal(t, 5000.0, inv.CurrentValue)
	assert.InDelta(t, 634.13, inv.ExpectedReturn, 0.005)

	// The debit is recorded against the investment pool sentinel.
	history, err := svc.History(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, TypeInvestment, history[0].TransactionType)
	assert.Equal(t, InvestmentPool, history[0].RecipientAccount)

	list, err := svc.Investments(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, inv.ID, list[0].ID)
}

func TestPurchaseInvestmentRejectsBadInput(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	owner := newTestAccount(t, store, 1000)

	_, err := svc.PurchaseInvestment(context.Background(), InvestmentRequest{
		OwnerID: owner.ID, InvestmentType: InvestGold, Amount: 0, DurationMonths: 12,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.PurchaseInvestment(context.Background(), InvestmentRequest{
		OwnerID: owner.ID, InvestmentType: "crypto", Amount: 100, DurationMonths: 12,
	})
	assert.ErrorIs(t, err, ErrInvalidInvestmentType)

	_, err = svc.PurchaseInvestment(context.Background(), InvestmentRequest{
		OwnerID: owner.ID, InvestmentType: InvestGold, Amount: 5000, DurationMonths: 12,
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, 1000.0, balanceOf(t, store, owner.ID))
}

func TestDisburseLoanCreditsRecipient(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, store, nil)

	recipient := newTestAccount(t, store, 10000)

	txn, err := svc.DisburseLoan(context.Background(), recipient.ID, 50000, "loan-1")
	require.NoError(t, err)

	assert.Equal(t, 60000.0, balanceOf(t, store, recipient.ID))
	assert.Equal(t, SystemAccount, txn.SenderAccount)
	assert.Equal(t, TypeLoanDisbursement, txn.TransactionType)
}

func TestAdjustBalance(t *testing.T) {
	store := NewMemoryStore()
	a := newTestAccount(t, store, 100)

	got, err := store.AdjustBalance(context.Background(), a.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 150.0, got)

	_, err = store.AdjustBalance(context.Background(), a.ID, -200)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 150.0, balanceOf(t, store, a.ID))
}
