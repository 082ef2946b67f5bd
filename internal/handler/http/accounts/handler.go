package accounts_http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"transfers/internal/app/accounts"
	"transfers/internal/domain"
	"transfers/internal/handler/http/httputil"
)

type AccountHandler struct {
	service    accounts.AccountService
	adminToken string
	logger     *zap.Logger
}

func NewAccountHandler(s accounts.AccountService, adminToken string, l *zap.Logger) *AccountHandler {
	return &AccountHandler{service: s, adminToken: adminToken, logger: l}
}

type RegisterAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AccountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
}

func toAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (h *AccountHandler) RegisterAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for RegisterAccount", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if !strings.Contains(req.Email, "@") {
		http.Error(w, "a valid email is required", http.StatusBadRequest)
		return
	}

	account, err := h.service.Register(r.Context(), strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		httputil.WriteError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, h.logger, http.StatusCreated, toAccountResponse(*account))
}

func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		http.Error(w, "account id is required", http.StatusBadRequest)
		return
	}

	account, err := h.service.Get(r.Context(), accountID)
	if err != nil {
		httputil.WriteError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, h.logger, http.StatusOK, toAccountResponse(*account))
}

func (h *AccountHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Admin-Token")
	if h.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
		h.logger.Warn("Rejected account deletion without valid admin token")
		httputil.WriteError(w, h.logger, domain.ErrForbidden)
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		http.Error(w, "account id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), accountID); err != nil {
		httputil.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
