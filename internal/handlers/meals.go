package handlers

import (
	"net/http"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/middleware"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/bensuskins/nutrition-hub/internal/services"
	"github.com/go-chi/chi/v5"
)

type MealHandler struct {
	mealService     *services.MealService
	defaultLocation *time.Location
}

func NewMealHandler(mealService *services.MealService, defaultLocation *time.Location) *MealHandler {
	return &MealHandler{
		mealService:     mealService,
		defaultLocation: defaultLocation,
	}
}

type mealRequest struct {
	Name      string                `json:"name"`
	MealType  models.MealType       `json:"meal_type"`
	MealTime  *time.Time            `json:"meal_time"`
	FoodItems []models.MealFoodItem `json:"food_items"`
	Notes     *string               `json:"notes"`
	Tags      []string              `json:"tags"`
}

func (request mealRequest) input() services.MealInput {
	input := services.MealInput{
		Name:      request.Name,
		MealType:  request.MealType,
		FoodItems: request.FoodItems,
		Notes:     trimmedOrNil(request.Notes),
		Tags:      request.Tags,
	}
	if request.MealTime != nil {
		input.MealTime = *request.MealTime
	}
	return input
}

type mealItemRequest struct {
	FoodItemID string  `json:"food_item_id"`
	Servings   float64 `json:"servings"`
}

type mealResponse struct {
	models.Meal
	Warnings nutrition.Warnings `json:"warnings,omitempty"`
}

func (handler *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	query := r.URL.Query()

	limit, offset, err := pagination(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := repository.MealFilter{UserID: user.ID, Limit: limit, Offset: offset}

	if raw := query.Get("date"); raw != "" {
		loc, err := location(r, handler.defaultLocation)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		date, err := parseDate(raw, loc)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		from, to := nutrition.DayBounds(date, loc)
		filter.From = &from
		filter.To = &to
	}
	if raw := query.Get("meal_type"); raw != "" {
		mealType := models.MealType(raw)
		if !mealType.Valid() {
			writeMessage(w, http.StatusBadRequest, "invalid meal_type")
			return
		}
		filter.MealType = &mealType
	}

	meals, total, err := handler.mealService.List(r.Context(), filter)
	if err != nil {
		writeError(w, err, "loading meals")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(meals, total, limit, offset))
}

func (handler *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	meal, err := handler.mealService.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "loading meal")
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

func (handler *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request mealRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	meal, warnings, err := handler.mealService.Create(r.Context(), user.ID, request.input())
	if err != nil {
		writeError(w, err, "creating meal")
		return
	}
	writeJSON(w, http.StatusCreated, mealResponse{Meal: meal, Warnings: warnings})
}

func (handler *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request mealRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	meal, warnings, err := handler.mealService.Update(r.Context(), user.ID, chi.URLParam(r, "id"), request.input())
	if err != nil {
		writeError(w, err, "updating meal")
		return
	}
	writeJSON(w, http.StatusOK, mealResponse{Meal: meal, Warnings: warnings})
}

func (handler *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if err := handler.mealService.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "deleting meal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *MealHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request mealItemRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	meal, warnings, err := handler.mealService.AddItem(r.Context(), user.ID, chi.URLParam(r, "id"), request.FoodItemID, request.Servings)
	if err != nil {
		writeError(w, err, "adding meal item")
		return
	}
	writeJSON(w, http.StatusOK, mealResponse{Meal: meal, Warnings: warnings})
}

func (handler *MealHandler) SetServings(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request struct {
		Servings float64 `json:"servings"`
	}
	if !decodeJSON(w, r, &request) {
		return
	}

	meal, warnings, err := handler.mealService.SetServings(r.Context(), user.ID, chi.URLParam(r, "id"), chi.URLParam(r, "foodItemID"), request.Servings)
	if err != nil {
		writeError(w, err, "updating servings")
		return
	}
	writeJSON(w, http.StatusOK, mealResponse{Meal: meal, Warnings: warnings})
}

func (handler *MealHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	meal, warnings, err := handler.mealService.RemoveItem(r.Context(), user.ID, chi.URLParam(r, "id"), chi.URLParam(r, "foodItemID"))
	if err != nil {
		writeError(w, err, "removing meal item")
		return
	}
	writeJSON(w, http.StatusOK, mealResponse{Meal: meal, Warnings: warnings})
}

func (handler *MealHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	meal, warnings, err := handler.mealService.Recompute(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "recomputing meal")
		return
	}
	writeJSON(w, http.StatusOK, mealResponse{Meal: meal, Warnings: warnings})
}
