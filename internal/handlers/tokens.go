package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/middleware"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/services"
	"github.com/go-chi/chi/v5"
)

type TokenHandler struct {
	authService *services.AuthService
	baseURL     string
}

func NewTokenHandler(authService *services.AuthService, baseURL string) *TokenHandler {
	return &TokenHandler{
		authService: authService,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
	}
}

type tokenRequest struct {
	Name          string `json:"name"`
	Scope         string `json:"scope"`
	ExpiresInDays int    `json:"expires_in_days"`
}

func (handler *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokens, err := handler.authService.ListTokens(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, "loading tokens")
		return
	}
	if tokens == nil {
		tokens = []models.APIToken{}
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (handler *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request tokenRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if strings.TrimSpace(request.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	if request.Scope != "" && request.Scope != models.TokenScopeICal {
		writeMessage(w, http.StatusBadRequest, "scope must be empty or \"ical\"")
		return
	}
	if request.ExpiresInDays < 0 {
		writeMessage(w, http.StatusBadRequest, "expires_in_days must not be negative")
		return
	}

	ttl := time.Duration(request.ExpiresInDays) * 24 * time.Hour
	raw, created, err := handler.authService.IssueToken(r.Context(), user.ID, request.Name, request.Scope, ttl)
	if err != nil {
		writeError(w, err, "creating token")
		return
	}

	response := map[string]interface{}{
		"id":         created.ID,
		"name":       created.Name,
		"scope":      created.Scope,
		"expires_at": created.ExpiresAt,
		"token":      raw,
	}
	if created.Scope == models.TokenScopeICal {
		response["feed_url"] = handler.baseURL + "/ical/meals?token=" + raw
	}
	writeJSON(w, http.StatusCreated, response)
}

func (handler *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if err := handler.authService.RevokeToken(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "deleting token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
