package server

import (
	"net/http"

	"github.com/venuepulse/ledger/internal/models"
)

type operatorResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

func toOperatorResponse(op *models.Operator) operatorResponse {
	return operatorResponse{
		ID:          op.ID,
		Email:       op.Email,
		DisplayName: op.DisplayName,
		CreatedAt:   op.CreatedAt,
	}
}

func (s *Server) handleRegisterOperator(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	op, err := s.authenticator.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOperatorResponse(op))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	op, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.jwtManager.Generate(op)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Token    string           `json:"token"`
		Operator operatorResponse `json:"operator"`
	}{Token: token, Operator: toOperatorResponse(op)})
}
