package server

import (
	"errors"
	"net/http"

	"github.com/foliohq/folio/internal/models"
	"github.com/foliohq/folio/internal/services/auth"
)

type authRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`

	// Optional guest portfolio, uploaded one-way into the account.
	Portfolio *models.Portfolio `json:"portfolio,omitempty"`
}

type authResponse struct {
	User      *models.User      `json:"user"`
	Token     string            `json:"token"`
	Portfolio *models.Portfolio `json:"portfolio"`
}

// handleAuth handles POST /api/auth with action login or register.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req authRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var user *models.User
	var err error

	switch req.Action {
	case "login":
		user, err = s.app.Auth.Login(r.Context(), req.Email, req.Password)
	case "register":
		user, err = s.app.Auth.Register(r.Context(), req.Email, req.Password, req.Code, req.Portfolio)
	default:
		WriteError(w, http.StatusBadRequest, "action must be login or register")
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteErrorWithCode(w, http.StatusUnauthorized, "invalid email or password", "invalid_credentials")
		return
	case errors.Is(err, auth.ErrInvalidCode):
		WriteErrorWithCode(w, http.StatusBadRequest, "invalid or expired verification code", "invalid_code")
		return
	case errors.Is(err, auth.ErrDuplicateUser):
		WriteErrorWithCode(w, http.StatusConflict, "email already registered", "duplicate_user")
		return
	case err != nil:
		s.logger.Error().Err(err).Str("action", req.Action).Msg("Auth request failed")
		WriteError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	// Login may carry a guest portfolio to push into the account.
	if req.Action == "login" && req.Portfolio != nil {
		if err := s.app.Portfolios.Replace(r.Context(), user.Email, req.Portfolio); err != nil {
			s.logger.Error().Err(err).Str("email", user.Email).Msg("Guest portfolio upload failed")
			WriteError(w, http.StatusInternalServerError, "failed to store portfolio")
			return
		}
	}

	p, err := s.app.Portfolios.Get(r.Context(), user.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Portfolio load failed")
		WriteError(w, http.StatusInternalServerError, "failed to load portfolio")
		return
	}

	token, err := signSessionToken(user.Email, s.app.Config)
	if err != nil {
		s.logger.Error().Err(err).Msg("Token signing failed")
		WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	WriteJSON(w, http.StatusOK, authResponse{User: user, Token: token, Portfolio: p})
}

// handleSendCode handles POST /api/auth/send-code.
func (s *Server) handleSendCode(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if !s.sendCodeLimiter.Allow() {
		WriteError(w, http.StatusTooManyRequests, "too many verification requests, try again shortly")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.app.Auth.RequestCode(r.Context(), req.Email); err != nil {
		s.logger.Error().Err(err).Msg("Verification code send failed")
		WriteError(w, http.StatusBadGateway, "failed to send verification code")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
