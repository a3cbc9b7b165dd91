package api

import (
	"errors"
	"net/http"

	"github.com/example/nexbank/internal/account"
	"github.com/example/nexbank/internal/chat"
	"github.com/example/nexbank/internal/finance"
	"github.com/example/nexbank/internal/ledger"
	"github.com/example/nexbank/internal/loan"
	"github.com/example/nexbank/internal/security"
)

// writeDomainError maps a service error to its status and stable code. The
// mapping is the single place where domain errors meet HTTP, so handlers stay
// free of status logic.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var transition *loan.InvalidTransitionError

	switch {
	case errors.Is(err, account.ErrEmailTaken):
		security.WriteJSONError(w, r, http.StatusBadRequest, "email_registered")
	case errors.Is(err, account.ErrInvalidCredentials):
		security.WriteJSONError(w, r, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, account.ErrNotFound):
		security.WriteJSONError(w, r, http.StatusNotFound, "account_not_found")
	case errors.Is(err, account.ErrInvalidType),
		errors.Is(err, chat.ErrInvalidCategory),
		errors.Is(err, ledger.ErrInvalidInvestmentType),
		errors.Is(err, loan.ErrInvalidType):
		security.WriteJSONError(w, r, http.StatusBadRequest, "validation_error")
	case errors.Is(err, ledger.ErrInvalidAmount):
		security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_amount")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		security.WriteJSONError(w, r, http.StatusBadRequest, "insufficient_funds")
	case errors.Is(err, ledger.ErrSameAccount):
		security.WriteJSONError(w, r, http.StatusBadRequest, "same_account")
	case errors.Is(err, ledger.ErrRecipientNotFound):
		security.WriteJSONError(w, r, http.StatusNotFound, "recipient_not_found")
	case errors.Is(err, loan.ErrNotFound):
		security.WriteJSONError(w, r, http.StatusNotFound, "loan_not_found")
	case errors.As(err, &transition):
		security.WriteJSONError(w, r, http.StatusConflict, "invalid_loan_status")
	case errors.Is(err, finance.ErrInvalidLoanTerms):
		security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_loan_terms")
	default:
		security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
	}
}
