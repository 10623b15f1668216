package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/bensuskins/nutrition-hub/internal/services"
)

const (
	defaultFeedDays = 14
	maxFeedDays     = 366
	mealEventLength = 30 * time.Minute
)

// MealFeedHandler publishes a user's logged meals as an iCalendar feed.
// It authenticates with an ical-scoped token in the query string because
// calendar clients cannot send headers.
type MealFeedHandler struct {
	authService *services.AuthService
	mealRepo    repository.MealRepository
	now         func() time.Time
}

func NewMealFeedHandler(authService *services.AuthService, mealRepo repository.MealRepository) *MealFeedHandler {
	return &MealFeedHandler{
		authService: authService,
		mealRepo:    mealRepo,
		now:         time.Now,
	}
}

func (handler *MealFeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := handler.authService.AuthenticateToken(r.Context(), token, models.TokenScopeICal)
	if err != nil {
		slog.Debug("rejecting ical feed token", "error", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	days := defaultFeedDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxFeedDays {
			http.Error(w, fmt.Sprintf("days must be between 1 and %d", maxFeedDays), http.StatusBadRequest)
			return
		}
		days = parsed
	}

	now := handler.now()
	meals, err := handler.mealRepo.FindInRange(r.Context(), user.ID, now.AddDate(0, 0, -days), now.Add(24*time.Hour))
	if err != nil {
		slog.Error("finding meals for ical", "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=meals.ics")
	w.Write([]byte(buildMealCalendar(meals, user.Name).Serialize()))
}

func buildMealCalendar(meals []models.Meal, ownerName string) *ical.Calendar {
	calendarName := "Nutrition Hub"
	if ownerName != "" {
		calendarName = ownerName + "'s Meals"
	}

	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId("-//Nutrition Hub//Meals//EN")
	calendar.SetXWRCalName(calendarName)

	for _, meal := range meals {
		event := calendar.AddEvent("meal-" + meal.ID + "@nutrition-hub")
		event.SetSummary(fmt.Sprintf("[%s] %s", capitalizeFirst(string(meal.MealType)), meal.Name))
		event.SetDescription(describeMeal(meal))
		event.SetStartAt(meal.MealTime)
		event.SetEndAt(meal.MealTime.Add(mealEventLength))
		event.SetDtStampTime(meal.UpdatedAt)
	}
	return calendar
}

func describeMeal(meal models.Meal) string {
	totals := meal.NutritionTotals
	lines := []string{
		fmt.Sprintf("Calories: %.0f kcal", totals.Calories),
		fmt.Sprintf("Protein: %.1f g", totals.Protein),
		fmt.Sprintf("Carbs: %.1f g", totals.Carbs),
		fmt.Sprintf("Fat: %.1f g", totals.Fat),
	}
	if meal.Notes != nil && *meal.Notes != "" {
		lines = append(lines, "", *meal.Notes)
	}
	return strings.Join(lines, "\n")
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
