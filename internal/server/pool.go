package server

import (
	"log/slog"
	"net/http"

	"github.com/venuepulse/ledger/internal/middleware"
)

type venueCheckinsResponse struct {
	VenueID  string `json:"venue_id"`
	Checkins int64  `json:"checkins"`
}

type poolPeriodResponse struct {
	ID          string                  `json:"id"`
	PeriodStart int64                   `json:"period_start"`
	PeriodEnd   int64                   `json:"period_end"`
	Balance     int64                   `json:"balance"`
	Status      string                  `json:"status"`
	Checkins    []venueCheckinsResponse `json:"checkins"`
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	period, checkins, err := s.pool.CurrentPeriod(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := poolPeriodResponse{
		ID:          period.ID,
		PeriodStart: period.PeriodStart,
		PeriodEnd:   period.PeriodEnd,
		Balance:     period.Balance,
		Status:      string(period.Status),
		Checkins:    make([]venueCheckinsResponse, 0, len(checkins)),
	}
	for _, c := range checkins {
		resp.Checkins = append(resp.Checkins, venueCheckinsResponse{VenueID: c.VenueID, Checkins: c.Checkins})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDistributePool(w http.ResponseWriter, r *http.Request) {
	result, err := s.pool.Distribute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	slog.Info("Pool distribution triggered by operator",
		"period_id", result.PeriodID,
		"operator_id", middleware.GetOperatorID(r.Context()),
	)
	writeJSON(w, http.StatusOK, struct {
		PeriodID       string `json:"period_id"`
		Balance        int64  `json:"balance"`
		Distributed    int64  `json:"distributed"`
		Carried        int64  `json:"carried"`
		VenuesCredited int    `json:"venues_credited"`
		TotalCheckins  int64  `json:"total_checkins"`
	}{
		PeriodID:       result.PeriodID,
		Balance:        result.Balance,
		Distributed:    result.Distributed,
		Carried:        result.Carried,
		VenuesCredited: result.VenuesCredited,
		TotalCheckins:  result.TotalCheckins,
	})
}
