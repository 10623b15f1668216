package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/bensuskins/nutrition-hub/internal/models"
)

func TestTokenHandler_CreateListDelete(t *testing.T) {
	server := setupTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/tokens", map[string]interface{}{"name": "Calendar", "scope": "ical", "expires_in_days": 30})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	created := decodeResponse[map[string]interface{}](t, recorder)
	raw, _ := created["token"].(string)
	if raw == "" {
		t.Fatal("expected raw token in response")
	}
	feedURL, _ := created["feed_url"].(string)
	if !strings.HasPrefix(feedURL, "http://localhost:8080/ical/meals?token=") {
		t.Errorf("unexpected feed url %q", feedURL)
	}
	if created["expires_at"] == nil {
		t.Error("expected an expiry")
	}

	recorder = server.do(t, http.MethodGet, "/api/tokens", nil)
	tokens := decodeResponse[[]models.APIToken](t, recorder)
	if len(tokens) != 1 || tokens[0].Scope != models.TokenScopeICal {
		t.Fatalf("expected one ical token, got %+v", tokens)
	}

	if recorder := server.do(t, http.MethodDelete, "/api/tokens/"+tokens[0].ID, nil); recorder.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", recorder.Code)
	}
	if recorder := server.do(t, http.MethodDelete, "/api/tokens/"+tokens[0].ID, nil); recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", recorder.Code)
	}
}

func TestTokenHandler_CreateValidation(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing name", body: map[string]interface{}{"name": " "}},
		{name: "unknown scope", body: map[string]interface{}{"name": "CLI", "scope": "admin"}},
		{name: "negative expiry", body: map[string]interface{}{"name": "CLI", "expires_in_days": -1}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := server.do(t, http.MethodPost, "/api/tokens", testCase.body)
			if recorder.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", recorder.Code)
			}
		})
	}
}
