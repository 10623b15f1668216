package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bensuskins/nutrition-hub/internal/middleware"
	"github.com/bensuskins/nutrition-hub/internal/services"
)

const afterLoginPath = "/api/me"

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login starts the OIDC flow. Without an OIDC provider it signs in the
// local dev user instead.
func (handler *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !handler.authService.OIDCConfigured() {
		handler.devLogin(w, r)
		return
	}

	state, err := handler.authService.GenerateState()
	if err != nil {
		slog.Error("generating state", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, handler.authService.LoginURL(state), http.StatusFound)
}

func (handler *AuthHandler) devLogin(w http.ResponseWriter, r *http.Request) {
	user, err := handler.authService.DevLogin(r.Context())
	if err != nil {
		slog.Error("dev login", "error", err)
		writeMessage(w, http.StatusInternalServerError, "login failed")
		return
	}
	if err := handler.authService.SetSession(w, user.ID); err != nil {
		slog.Error("setting session", "error", err)
		writeMessage(w, http.StatusInternalServerError, "session error")
		return
	}
	slog.Warn("signed in dev user, OIDC is not configured", "user_id", user.ID)
	http.Redirect(w, r, afterLoginPath, http.StatusFound)
}

func (handler *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "missing state cookie")
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		writeMessage(w, http.StatusBadRequest, "invalid state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeMessage(w, http.StatusBadRequest, "missing code")
		return
	}

	user, err := handler.authService.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("handling callback", "error", err)
		writeMessage(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	if err := handler.authService.SetSession(w, user.ID); err != nil {
		slog.Error("setting session", "error", err)
		writeMessage(w, http.StatusInternalServerError, "session error")
		return
	}

	http.Redirect(w, r, afterLoginPath, http.StatusFound)
}

func (handler *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	handler.authService.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetUser(r.Context()))
}
