package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/nexbank/internal/account"
	"github.com/example/nexbank/internal/auth"
	"github.com/example/nexbank/internal/ledger"
	"github.com/example/nexbank/internal/loan"
	"github.com/example/nexbank/internal/security"
)

// IdempotencyKeyHeader lets clients retry a transfer safely: replays with the
// same key return the original transaction without moving money again.
const IdempotencyKeyHeader = "Idempotency-Key"

const recentTransactionLimit = 5

type dashboardResponse struct {
	User               *account.Account      `json:"user"`
	TotalInvestments   float64               `json:"total_investments"`
	TotalLoans         float64               `json:"total_loans"`
	RecentTransactions []*ledger.Transaction `json:"recent_transactions"`
}

func handleDashboard(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		a, err := deps.Accounts.GetByID(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		investments, err := deps.Ledger.Investments(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		totalInvestments := 0.0
		for _, inv := range investments {
			totalInvestments += inv.Amount
		}

		loans, err := deps.Loans.List(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		totalLoans := 0.0
		for _, l := range loans {
			if l.Status == loan.StatusApproved || l.Status == loan.StatusDisbursed {
				totalLoans += l.Amount
			}
		}

		transactions, err := deps.Ledger.History(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if len(transactions) > recentTransactionLimit {
			transactions = transactions[:recentTransactionLimit]
		}

		writeJSON(w, r, http.StatusOK, dashboardResponse{
			User:               a,
			TotalInvestments:   totalInvestments,
			TotalLoans:         totalLoans,
			RecentTransactions: transactions,
		})
	}
}

type transferRequest struct {
	RecipientAccount string  `json:"recipient_account"`
	Amount           float64 `json:"amount"`
	Description      string  `json:"description"`
}

func handleTransfer(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		txn, err := deps.Ledger.Transfer(r.Context(), ledger.TransferRequest{
			SenderID:        id,
			RecipientNumber: req.RecipientAccount,
			Amount:          req.Amount,
			Description:     req.Description,
			IdempotencyKey:  r.Header.Get(IdempotencyKeyHeader),
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if deps.Auditor != nil {
			deps.Auditor.Record(id, "transactions.transfer", "transaction_id="+txn.ID)
		}
		writeJSON(w, r, http.StatusOK, txn)
	}
}

func handleListTransactions(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		transactions, err := deps.Ledger.History(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeList(w, r, http.StatusOK, transactions)
	}
}

type investmentRequest struct {
	InvestmentType string  `json:"investment_type"`
	Amount         float64 `json:"amount"`
	DurationMonths int     `json:"duration_months"`
}

func handleCreateInvestment(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		var req investmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		inv, err := deps.Ledger.PurchaseInvestment(r.Context(), ledger.InvestmentRequest{
			OwnerID:        id,
			InvestmentType: ledger.InvestmentType(req.InvestmentType),
			Amount:         req.Amount,
			DurationMonths: req.DurationMonths,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if deps.Auditor != nil {
			deps.Auditor.Record(id, "investments.create", "investment_id="+inv.ID)
		}
		writeJSON(w, r, http.StatusOK, inv)
	}
}

func handleListInvestments(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		investments, err := deps.Ledger.Investments(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeList(w, r, http.StatusOK, investments)
	}
}
