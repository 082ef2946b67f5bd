package transfers_http

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"transfers/internal/app/transfers"
)

func RegisterRoutes(r chi.Router, s transfers.TransferService, l *zap.Logger) {
	handler := NewTransferHandler(s, l.With(zap.String("component", "TransferHTTPHandler")))

	r.Post("/transfers", handler.CreateTransferHandler)
	r.Get("/accounts/{id}/transfers", handler.HistoryHandler)
}
