package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/kellyw/taskdeck/internal/auth"
	"github.com/kellyw/taskdeck/internal/model"
	"github.com/kellyw/taskdeck/internal/service"
)

// OAuthExchanger produces the authorization URL and trades a returned code
// for verified identity claims. auth.GoogleProvider implements it; tests
// substitute a stub.
type OAuthExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.OAuthClaims, error)
}

// AuthHandler serves the sign-in and sign-out endpoints.
type AuthHandler struct {
	auths    *service.AuthService
	provider OAuthExchanger
	secure   bool
	logger   *slog.Logger
}

// NewAuthHandler creates the handler. secure controls the Secure flag on the
// session cookie and should be true everywhere except local development.
func NewAuthHandler(auths *service.AuthService, provider OAuthExchanger, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auths: auths, provider: provider, secure: secure, logger: logger}
}

type oauthSignInRequest struct {
	Code string `json:"code"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// HandleGoogleAuthURL starts the Google flow: it mints a state nonce and
// returns the authorization URL for the browser to follow.
//
// GET /api/auth/google/url
func (h *AuthHandler) HandleGoogleAuthURL(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"url":   h.provider.AuthURL(state),
		"state": state,
	})
}

// HandleGoogleSignIn completes the Google authorization-code flow: the
// browser sends the code, the server exchanges it and resolves the identity
// to an account.
//
// POST /api/auth/google
func (h *AuthHandler) HandleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req oauthSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "authorization code is required"})
		return
	}

	claims, err := h.provider.Exchange(r.Context(), req.Code)
	if err != nil {
		h.logger.Warn("OAuth code exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "could not verify the authorization code"})
		return
	}

	result, err := h.auths.SignInWithOAuth(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{Token: result.Token, User: result.User})
}

// HandleLogin signs in by username or email plus password.
//
// POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	result, err := h.auths.SignInWithPassword(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "invalid credentials"})
			return
		}
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{Token: result.Token, User: result.User})
}

// HandleLogout clears the session cookie. The JWT itself stays valid until
// expiry; this only removes it from the browser.
//
// POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
