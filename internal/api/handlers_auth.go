package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/nexbank/internal/account"
	"github.com/example/nexbank/internal/auth"
	"github.com/example/nexbank/internal/security"
)

type tokenResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        *account.Account `json:"user"`
}

func (deps Dependencies) issueToken(w http.ResponseWriter, r *http.Request, a *account.Account, status int) {
	token, err := deps.Tokens.Issue(a.ID)
	if err != nil {
		deps.Logger.Error("failed to issue token", "error", err)
		security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, r, status, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        a,
	})
}

func handleRegister(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req account.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		a, err := deps.Accounts.Register(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if deps.Auditor != nil {
			deps.Auditor.Record(a.ID, "auth.register", "account_number="+a.AccountNumber)
		}
		deps.issueToken(w, r, a, http.StatusOK)
	}
}

func handleLogin(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		a, err := deps.Accounts.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if deps.Auditor != nil {
			deps.Auditor.Record(a.ID, "auth.login", "")
		}
		deps.issueToken(w, r, a, http.StatusOK)
	}
}

func handleMe(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())
		a, err := deps.Accounts.GetByID(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, a)
	}
}

// Tokens are stateless, so logout is a client-side discard; the endpoint
// exists so the trail records the session end.
func handleLogout(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Auditor != nil {
			id, _ := auth.AccountIDFromContext(r.Context())
			deps.Auditor.Record(id, "auth.logout", "")
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"message": "logged out"})
	}
}
