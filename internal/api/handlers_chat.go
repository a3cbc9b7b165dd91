package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/nexbank/internal/auth"
	"github.com/example/nexbank/internal/chat"
	"github.com/example/nexbank/internal/security"
)

type chatRequest struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

func handleChatSend(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		m, err := deps.Chat.Send(r.Context(), id, req.Message, chat.Category(req.Category))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, m)
	}
}

func handleChatHistory(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.AccountIDFromContext(r.Context())

		messages, err := deps.Chat.History(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeList(w, r, http.StatusOK, messages)
	}
}
