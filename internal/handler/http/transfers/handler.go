package transfers_http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"transfers/internal/app/transfers"
	"transfers/internal/domain"
	"transfers/internal/handler/http/httputil"
)

type TransferHandler struct {
	service transfers.TransferService
	logger  *zap.Logger
}

func NewTransferHandler(s transfers.TransferService, l *zap.Logger) *TransferHandler {
	return &TransferHandler{service: s, logger: l}
}

type CreateTransferRequest struct {
	SenderID       string `json:"sender_id"`
	RecipientEmail string `json:"recipient_email"`
	// Amount arrives as a string so malformed values fail the engine's own
	// validation instead of JSON decoding.
	Amount string `json:"amount"`
}

type TransferResponse struct {
	ID           int64  `json:"id"`
	SenderID     string `json:"sender_id"`
	ReceiverID   string `json:"receiver_id"`
	SenderName   string `json:"sender_name"`
	ReceiverName string `json:"receiver_name"`
	Amount       string `json:"amount"`
	CreatedAt    string `json:"created_at"`
}

func toTransferResponse(t domain.Transfer) TransferResponse {
	return TransferResponse{
		ID:           t.ID,
		SenderID:     t.SenderID,
		ReceiverID:   t.ReceiverID,
		SenderName:   t.SenderName,
		ReceiverName: t.ReceiverName,
		Amount:       t.Amount.String(),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (h *TransferHandler) CreateTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateTransfer", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SenderID == "" {
		http.Error(w, "sender_id is required", http.StatusBadRequest)
		return
	}
	if req.RecipientEmail == "" {
		http.Error(w, "recipient_email is required", http.StatusBadRequest)
		return
	}

	transfer, err := h.service.Transfer(r.Context(), req.SenderID, req.RecipientEmail, req.Amount)
	if err != nil {
		httputil.WriteError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, h.logger, http.StatusCreated, toTransferResponse(*transfer))
}

func (h *TransferHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		http.Error(w, "account id is required", http.StatusBadRequest)
		return
	}

	history, err := h.service.History(r.Context(), accountID)
	if err != nil {
		httputil.WriteError(w, h.logger, err)
		return
	}

	resp := make([]TransferResponse, 0, len(history))
	for _, t := range history {
		resp = append(resp, toTransferResponse(t))
	}
	httputil.WriteJSON(w, h.logger, http.StatusOK, resp)
}
