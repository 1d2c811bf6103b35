package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/venuepulse/ledger/internal/middleware"
	"github.com/venuepulse/ledger/internal/models"
)

type payeeResponse struct {
	ID                string `json:"id"`
	Kind              string `json:"kind"`
	DisplayName       string `json:"display_name"`
	PayoutDestination string `json:"payout_destination"`
	PendingEarnings   int64  `json:"pending_earnings"`
	TotalEarnings     int64  `json:"total_earnings"`
	Status            string `json:"status"`
	CreatedAt         int64  `json:"created_at"`
}

func toPayeeResponse(p *models.Payee) payeeResponse {
	return payeeResponse{
		ID:                p.ID,
		Kind:              string(p.Kind),
		DisplayName:       p.DisplayName,
		PayoutDestination: p.PayoutDestination,
		PendingEarnings:   p.PendingEarnings,
		TotalEarnings:     p.TotalEarnings,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
	}
}

type payoutResponse struct {
	ID          string `json:"id"`
	PayeeID     string `json:"payee_id"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	ExternalRef string `json:"external_ref,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	PaidAt      int64  `json:"paid_at,omitempty"`
}

func toPayoutResponse(p *models.PayoutRecord) payoutResponse {
	return payoutResponse{
		ID:          p.ID,
		PayeeID:     p.PayeeID,
		Amount:      p.Amount,
		Status:      string(p.Status),
		ExternalRef: p.ExternalRef,
		CreatedAt:   p.CreatedAt,
		PaidAt:      p.PaidAt,
	}
}

func (s *Server) handleCreatePayee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind              string `json:"kind"`
		DisplayName       string `json:"display_name"`
		PayoutDestination string `json:"payout_destination"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	kind := models.PayeeKind(req.Kind)
	if !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "kind must be affiliate or venue"})
		return
	}
	if req.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "display_name is required"})
		return
	}

	payee := &models.Payee{
		Kind:              kind,
		DisplayName:       req.DisplayName,
		PayoutDestination: req.PayoutDestination,
	}
	if err := s.store.CreatePayee(r.Context(), payee); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayeeResponse(payee))
}

func (s *Server) handleGetPayee(w http.ResponseWriter, r *http.Request) {
	payee, err := s.store.GetPayee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayeeResponse(payee))
}

func (s *Server) handleApprovePayee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.ApprovePayee(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	payee, err := s.store.GetPayee(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayeeResponse(payee))
}

func (s *Server) handleDeletePayee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeletePayee(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	slog.Info("Payee removed by operator",
		"payee_id", id,
		"operator_id", middleware.GetOperatorID(r.Context()),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	payout, err := s.payouts.MarkPayeePaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	slog.Info("Payout triggered by operator",
		"payout_id", payout.ID,
		"payee_id", payout.PayeeID,
		"amount_cents", payout.Amount,
		"operator_id", middleware.GetOperatorID(r.Context()),
	)
	writeJSON(w, http.StatusOK, toPayoutResponse(payout))
}

func (s *Server) handlePayoutHistory(w http.ResponseWriter, r *http.Request) {
	payouts, err := s.payouts.PayoutHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]payoutResponse, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, toPayoutResponse(p))
	}
	writeJSON(w, http.StatusOK, struct {
		Payouts []payoutResponse `json:"payouts"`
	}{Payouts: out})
}
