package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/go-chi/chi/v5"
)

func setupMealFeed(t *testing.T) (mealFixture, chi.Router) {
	t.Helper()
	fixture := setupMealFixture(t)
	handler := NewMealFeedHandler(fixture.server.authService, fixture.server.mealRepo)
	handler.now = func() time.Time { return time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC) }

	router := chi.NewRouter()
	router.Get("/ical/meals", handler.Feed)
	return fixture, router
}

func TestMealFeedHandler_TokenScopes(t *testing.T) {
	fixture, router := setupMealFeed(t)
	ctx := context.Background()
	userID := fixture.server.user.ID

	icalToken, _, err := fixture.server.authService.IssueToken(ctx, userID, "Calendar", models.TokenScopeICal, 0)
	if err != nil {
		t.Fatalf("issuing ical token: %v", err)
	}
	apiToken, _, err := fixture.server.authService.IssueToken(ctx, userID, "CLI", "", 0)
	if err != nil {
		t.Fatalf("issuing api token: %v", err)
	}

	tests := []struct {
		name     string
		token    string
		expected int
	}{
		{name: "missing token", token: "", expected: http.StatusUnauthorized},
		{name: "unknown token", token: "not-a-token", expected: http.StatusUnauthorized},
		{name: "unscoped token", token: apiToken, expected: http.StatusUnauthorized},
		{name: "ical token", token: icalToken, expected: http.StatusOK},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/ical/meals?token="+testCase.token, nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)
			if recorder.Code != testCase.expected {
				t.Errorf("expected %d, got %d", testCase.expected, recorder.Code)
			}
		})
	}
}

func TestMealFeedHandler_SerializesMeals(t *testing.T) {
	fixture, router := setupMealFeed(t)
	fixture.createLunch(t, "2026-03-10T12:30:00Z")
	fixture.createLunch(t, "2026-01-01T12:30:00Z")

	token, _, err := fixture.server.authService.IssueToken(context.Background(), fixture.server.user.ID, "Calendar", models.TokenScopeICal, 0)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/ical/meals?token="+token, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if contentType := recorder.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/calendar") {
		t.Errorf("unexpected content type %q", contentType)
	}

	calendar, err := ical.ParseCalendar(strings.NewReader(recorder.Body.String()))
	if err != nil {
		t.Fatalf("parsing feed: %v", err)
	}
	events := calendar.Events()
	if len(events) != 1 {
		t.Fatalf("expected only the meal inside the feed window, got %d events", len(events))
	}

	summary := events[0].GetProperty(ical.ComponentPropertySummary)
	if summary == nil || summary.Value != "[Lunch] Lunch" {
		t.Errorf("unexpected summary %v", summary)
	}
	start, err := events[0].GetStartAt()
	if err != nil {
		t.Fatalf("reading start: %v", err)
	}
	if !start.Equal(time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", start)
	}
	description := events[0].GetProperty(ical.ComponentPropertyDescription)
	if description == nil || !strings.Contains(description.Value, "438 kcal") {
		t.Errorf("expected calorie total in description, got %v", description)
	}
}

func TestMealFeedHandler_RejectsBadDays(t *testing.T) {
	fixture, router := setupMealFeed(t)
	token, _, err := fixture.server.authService.IssueToken(context.Background(), fixture.server.user.ID, "Calendar", models.TokenScopeICal, 0)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	for _, days := range []string{"0", "abc", "1000"} {
		request := httptest.NewRequest(http.MethodGet, "/ical/meals?days="+days+"&token="+token, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("days=%s: expected 400, got %d", days, recorder.Code)
		}
	}
}
