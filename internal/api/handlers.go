package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/coin-ledger/internal/events/memory"
	"github.com/sheikh-saqib/coin-ledger/internal/ledger"
	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

type handler struct {
	ledger *ledger.Ledger
	events *memory.Bus
	logger *zap.Logger
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// submit handles POST /transactions.
func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	caller, _ := participantFrom(r.Context())

	var sub models.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.ledger.Submit(r.Context(), caller, sub)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	caller, _ := participantFrom(r.Context())

	accounts, err := h.ledger.Accounts(r.Context(), caller)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *handler) getAccount(w http.ResponseWriter, r *http.Request) {
	caller, _ := participantFrom(r.Context())

	account, err := h.ledger.Account(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *handler) createAccount(w http.ResponseWriter, r *http.Request) {
	caller, _ := participantFrom(r.Context())

	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil || account.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.ledger.CreateAccount(r.Context(), caller, account); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *handler) removeAccount(w http.ResponseWriter, r *http.Request) {
	caller, _ := participantFrom(r.Context())

	if err := h.ledger.RemoveAccount(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recentEvents handles GET /events?limit=n.
func (h *handler) recentEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.events.Recent(limit))
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrUnknownKind), errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAccountExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
