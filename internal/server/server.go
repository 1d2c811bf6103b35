// Package server exposes the ledger over a JSON HTTP API for operators.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/venuepulse/ledger/internal/auth"
	"github.com/venuepulse/ledger/internal/middleware"
	"github.com/venuepulse/ledger/internal/service"
	"github.com/venuepulse/ledger/internal/storage"
)

// Server holds the handlers' dependencies.
type Server struct {
	store         storage.Store
	purchases     *service.PurchaseService
	payouts       *service.PayoutService
	pool          *service.PoolService
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager
}

// New creates a Server.
func New(
	store storage.Store,
	purchases *service.PurchaseService,
	payouts *service.PayoutService,
	pool *service.PoolService,
	authenticator *auth.PasswordAuthenticator,
	jwtManager *auth.JWTManager,
) *Server {
	return &Server{
		store:         store,
		purchases:     purchases,
		payouts:       payouts,
		pool:          pool,
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// Router builds the HTTP routing table. Registration, login, liveness and
// metrics are public; every ledger route requires a valid operator token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/operators", s.handleRegisterOperator)
	r.Post("/api/operators/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.jwtManager))

		r.Post("/api/payees", s.handleCreatePayee)
		r.Get("/api/payees/{id}", s.handleGetPayee)
		r.Delete("/api/payees/{id}", s.handleDeletePayee)
		r.Post("/api/payees/{id}/approve", s.handleApprovePayee)
		r.Post("/api/payees/{id}/payout", s.handleMarkPaid)
		r.Get("/api/payees/{id}/payouts", s.handlePayoutHistory)

		r.Post("/api/purchases", s.handleRecordPurchase)
		r.Post("/api/checkins", s.handleRecordCheckin)

		r.Get("/api/pool", s.handleGetPool)
		r.Post("/api/pool/distribute", s.handleDistributePool)
	})

	return r
}
