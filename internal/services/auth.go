package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/config"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

const (
	sessionCookieName = "session"
	sessionMaxAge     = 86400 * 30
	devSubject        = "dev-admin"
)

var (
	ErrOIDCNotConfigured = errors.New("OIDC not configured")
	ErrInvalidToken      = errors.New("invalid api token")
	ErrTokenExpired      = errors.New("api token expired")
	ErrTokenScope        = errors.New("api token not valid for this scope")
)

type AuthService struct {
	oauthConfig  *oauth2.Config
	oidcVerifier *oidc.IDTokenVerifier
	secureCookie *securecookie.SecureCookie
	userRepo     repository.UserRepository
	tokenRepo    repository.APITokenRepository
}

type SessionData struct {
	UserID string `json:"user_id"`
}

func NewAuthService(ctx context.Context, cfg config.Config, userRepo repository.UserRepository, tokenRepo repository.APITokenRepository) (*AuthService, error) {
	service := &AuthService{
		secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
	}
	service.secureCookie.MaxAge(sessionMaxAge)

	if cfg.OIDCIssuer == "" {
		slog.Warn("OIDC not configured, dev login enabled")
		return service, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("creating OIDC provider: %w", err)
	}

	service.oauthConfig = &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	service.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})
	return service, nil
}

func (service *AuthService) OIDCConfigured() bool {
	return service.oauthConfig != nil
}

func (service *AuthService) LoginURL(state string) string {
	if service.oauthConfig == nil {
		return ""
	}
	return service.oauthConfig.AuthCodeURL(state)
}

func (service *AuthService) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func (service *AuthService) HandleCallback(ctx context.Context, code string) (models.User, error) {
	if service.oauthConfig == nil {
		return models.User{}, ErrOIDCNotConfigured
	}

	token, err := service.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return models.User{}, fmt.Errorf("exchanging code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return models.User{}, errors.New("no id_token in response")
	}

	idToken, err := service.oidcVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return models.User{}, fmt.Errorf("verifying id token: %w", err)
	}

	var claims struct {
		Subject           string `json:"sub"`
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Picture           string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return models.User{}, fmt.Errorf("parsing claims: %w", err)
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.PreferredUsername
	}
	if displayName == "" {
		displayName = claims.Email
	}

	return service.provisionUser(ctx, claims.Subject, claims.Email, displayName, claims.Picture)
}

// DevLogin signs in a fixed local admin. Only available without OIDC.
func (service *AuthService) DevLogin(ctx context.Context) (models.User, error) {
	if service.OIDCConfigured() {
		return models.User{}, errors.New("dev login disabled when OIDC is configured")
	}
	return service.provisionUser(ctx, devSubject, "dev@localhost", "Dev Admin", "")
}

func (service *AuthService) provisionUser(ctx context.Context, subject, email, name, avatarURL string) (models.User, error) {
	existingUser, err := service.userRepo.FindByOIDCSubject(ctx, subject)
	if err == nil {
		if err := service.userRepo.UpdateProfile(ctx, existingUser.ID, name, email, avatarURL); err != nil {
			slog.Warn("failed to update user profile on login", "error", err)
		}
		existingUser.Name = name
		existingUser.Email = email
		existingUser.AvatarURL = avatarURL
		return existingUser, nil
	}
	if !repository.IsNotFound(err) {
		return models.User{}, fmt.Errorf("looking up user: %w", err)
	}

	userCount, err := service.userRepo.Count(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("counting users: %w", err)
	}

	role := models.RoleMember
	if userCount == 0 {
		role = models.RoleAdmin
	}

	created, err := service.userRepo.Create(ctx, models.User{
		OIDCSubject: subject,
		Email:       email,
		Name:        name,
		AvatarURL:   avatarURL,
		Role:        role,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("provisioned new user", "id", created.ID, "name", created.Name, "role", created.Role)
	return created, nil
}

func (service *AuthService) SetSession(w http.ResponseWriter, userID string) error {
	encoded, err := json.Marshal(SessionData{UserID: userID})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode(sessionCookieName, string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   sessionMaxAge,
	})
	return nil
}

func (service *AuthService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode(sessionCookieName, cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	return session, nil
}

func (service *AuthService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (service *AuthService) GetCurrentUser(r *http.Request) (models.User, error) {
	session, err := service.GetSession(r)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.userRepo.FindByID(r.Context(), session.UserID)
	if err != nil {
		return models.User{}, fmt.Errorf("finding user: %w", err)
	}
	return user, nil
}

// IssueToken creates an API token for userID and returns the raw secret,
// which is not recoverable afterwards. A zero ttl never expires.
func (service *AuthService) IssueToken(ctx context.Context, userID string, name string, scope string, ttl time.Duration) (string, models.APIToken, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", models.APIToken{}, fmt.Errorf("generating token: %w", err)
	}
	raw := hex.EncodeToString(bytes)

	token := models.APIToken{
		Name:            strings.TrimSpace(name),
		TokenHash:       repository.HashToken(raw),
		Scope:           scope,
		CreatedByUserID: userID,
	}
	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		token.ExpiresAt = &expiresAt
	}

	created, err := service.tokenRepo.Create(ctx, token)
	if err != nil {
		return "", models.APIToken{}, fmt.Errorf("issuing token: %w", err)
	}
	return raw, created, nil
}

func (service *AuthService) RevokeToken(ctx context.Context, userID string, id string) error {
	return service.tokenRepo.Delete(ctx, userID, id)
}

func (service *AuthService) ListTokens(ctx context.Context, userID string) ([]models.APIToken, error) {
	return service.tokenRepo.FindByUserID(ctx, userID)
}

// AuthenticateToken resolves a raw API token to its owner. An empty scope
// accepts only unscoped tokens; scoped tokens are limited to their scope.
func (service *AuthService) AuthenticateToken(ctx context.Context, raw string, scope string) (models.User, error) {
	if raw == "" {
		return models.User{}, ErrInvalidToken
	}

	token, err := service.tokenRepo.FindByTokenHash(ctx, repository.HashToken(raw))
	if err != nil {
		if repository.IsNotFound(err) {
			return models.User{}, ErrInvalidToken
		}
		return models.User{}, fmt.Errorf("finding token: %w", err)
	}
	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
		return models.User{}, ErrTokenExpired
	}
	if token.Scope != scope {
		return models.User{}, ErrTokenScope
	}

	user, err := service.userRepo.FindByID(ctx, token.CreatedByUserID)
	if err != nil {
		return models.User{}, fmt.Errorf("finding token owner: %w", err)
	}
	return user, nil
}
