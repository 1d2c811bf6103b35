package server

import (
	"net/http"

	"github.com/venuepulse/ledger/internal/models"
)

type purchaseResponse struct {
	ID            string `json:"id"`
	VenueID       string `json:"venue_id"`
	PromoterID    string `json:"promoter_id,omitempty"`
	Amount        int64  `json:"amount"`
	PromoterShare int64  `json:"promoter_share"`
	PoolShare     int64  `json:"pool_share"`
	VenueShare    int64  `json:"venue_share"`
	PlatformShare int64  `json:"platform_share"`
	SplitVersion  int    `json:"split_version"`
	CreatedAt     int64  `json:"created_at"`
}

func toPurchaseResponse(p *models.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:            p.ID,
		VenueID:       p.VenueID,
		PromoterID:    p.PromoterID,
		Amount:        p.Amount,
		PromoterShare: p.PromoterShare,
		PoolShare:     p.PoolShare,
		VenueShare:    p.VenueShare,
		PlatformShare: p.PlatformShare,
		SplitVersion:  p.SplitVersion,
		CreatedAt:     p.CreatedAt,
	}
}

func (s *Server) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VenueID    string `json:"venue_id"`
		PromoterID string `json:"promoter_id"`
		Amount     int64  `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.VenueID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "venue_id is required"})
		return
	}

	purchase, err := s.purchases.RecordPurchase(r.Context(), req.VenueID, req.PromoterID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseResponse(purchase))
}

func (s *Server) handleRecordCheckin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VenueID string `json:"venue_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.VenueID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "venue_id is required"})
		return
	}

	if err := s.pool.RecordCheckin(r.Context(), req.VenueID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
