package handler

import (
	"context"
	"net/http"
	"strings"

	"go-repair-shop/internal/middleware"
	"go-repair-shop/internal/model"
	"go-repair-shop/pkg/apierror"
)

type authService interface {
	Login(ctx context.Context, username string, password string) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID int64) (model.AuthUser, error)
}

type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(payload.Username) == "" || payload.Password == "" {
		writeError(w, apierror.Validation(missingCredentials(payload)))
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func missingCredentials(payload model.LoginRequest) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(payload.Username) == "" {
		fields["username"] = "is required"
	}
	if payload.Password == "" {
		fields["password"] = "is required"
	}
	return fields
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, badRequest("refresh_token is required", "refresh_token"))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Logout(r.Context(), strings.TrimSpace(payload.RefreshToken)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, err := h.service.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Verify reports whether the bearer token is still accepted. Reaching the
// handler means RequireAuth already validated it.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, err := h.service.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.VerifyResponse{Valid: true, User: user})
}
