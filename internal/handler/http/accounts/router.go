package accounts_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"transfers/internal/app/accounts"
)

func RegisterRoutes(r chi.Router, s accounts.AccountService, adminToken string, l *zap.Logger) {
	handler := NewAccountHandler(s, adminToken, l.With(zap.String("component", "AccountHTTPHandler")))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/accounts", handler.RegisterAccountHandler)
	r.Get("/accounts/{id}", handler.GetAccountHandler)
	r.Delete("/accounts/{id}", handler.DeleteAccountHandler)
}
