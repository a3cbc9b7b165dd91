package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/nexbank/internal/auth"
	"github.com/example/nexbank/internal/loan"
	"github.com/example/nexbank/internal/security"
)

type loanApplyRequest struct {
	LoanType      string  `json:"loan_type"`
	Amount        float64 `json:"amount"`
	TenureMonths  int     `json:"tenure_months"`
	Purpose       string  `json:"purpose"`
	MonthlyIncome float64 `json:"monthly_income"`
}

func handleLoanApply(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		var req loanApplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		l, err := deps.Loans.Apply(r.Context(), loan.ApplyRequest{
			AccountID:     id,
			LoanType:      loan.Type(req.LoanType),
			Amount:        req.Amount,
			TenureMonths:  req.TenureMonths,
			Purpose:       req.Purpose,
			MonthlyIncome: req.MonthlyIncome,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if deps.Auditor != nil {
			deps.Auditor.Record(id, "loans.apply", "loan_id="+l.ID)
		}
		writeJSON(w, r, http.StatusOK, l)
	}
}

func handleListLoans(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		loans, err := deps.Loans.List(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeList(w, r, http.StatusOK, loans)
	}
}

func handleLoanDecision(deps Dependencies, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		loanID := chi.URLParam(r, "loan_id")
		if loanID == "" {
			security.WriteJSONError(w, r, http.StatusBadRequest, "validation_error")
			return
		}

		var l *loan.Loan
		var err error
		switch action {
		case "approve":
			l, err = deps.Loans.Approve(r.Context(), id, loanID)
		case "reject":
			l, err = deps.Loans.Reject(r.Context(), id, loanID)
		case "disburse":
			l, err = deps.Loans.Disburse(r.Context(), id, loanID)
		default:
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if deps.Auditor != nil {
			deps.Auditor.Record(id, "loans."+action, "loan_id="+l.ID)
		}
		writeJSON(w, r, http.StatusOK, l)
	}
}
