package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"poe-item-bank/internal/middleware"
	"poe-item-bank/internal/service"
	"poe-item-bank/pkg/apierror"
	"poe-item-bank/pkg/response"
)

// AuthHandler handles admin login and session endpoints.
type AuthHandler struct {
	sessions *service.SessionService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Username == "" || req.Password == "" {
		response.Error(w, apierror.BadRequest("username and password are required"))
		return
	}

	token, session, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, LoginResponse{
		Token:     token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	if err := h.sessions.Logout(r.Context(), token); err != nil {
		response.Error(w, apierror.InternalError("failed to close session"))
		return
	}
	response.OK(w, map[string]string{"status": "logged_out"})
}

// Session handles GET /api/v1/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized(""))
		return
	}
	response.OK(w, session)
}
