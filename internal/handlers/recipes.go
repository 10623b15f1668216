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

type RecipeHandler struct {
	recipeService *services.RecipeService
}

func NewRecipeHandler(recipeService *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

type recipeRequest struct {
	Title        string                    `json:"title"`
	Description  *string                   `json:"description"`
	Ingredients  []models.RecipeIngredient `json:"ingredients"`
	Instructions string                    `json:"instructions"`
	Servings     int                       `json:"servings"`
	PrepTime     *string                   `json:"prep_time"`
	CookTime     *string                   `json:"cook_time"`
	SourceURL    *string                   `json:"source_url"`
	Tags         []string                  `json:"tags"`
}

func (request recipeRequest) input() services.RecipeInput {
	return services.RecipeInput{
		Title:        request.Title,
		Description:  trimmedOrNil(request.Description),
		Ingredients:  request.Ingredients,
		Instructions: request.Instructions,
		Servings:     request.Servings,
		PrepTime:     trimmedOrNil(request.PrepTime),
		CookTime:     trimmedOrNil(request.CookTime),
		SourceURL:    trimmedOrNil(request.SourceURL),
		Tags:         request.Tags,
	}
}

type analyzeRequest struct {
	Ingredients []models.RecipeIngredient `json:"ingredients"`
	Servings    int                       `json:"servings"`
}

type analyzeResponse struct {
	Nutrition nutrition.RecipeNutrition `json:"nutrition"`
	Warnings  nutrition.Warnings        `json:"warnings,omitempty"`
}

type logRecipeRequest struct {
	MealType models.MealType `json:"meal_type"`
	MealTime *time.Time      `json:"meal_time"`
	Portions float64         `json:"portions"`
	Notes    *string         `json:"notes"`
	Tags     []string        `json:"tags"`
}

func (handler *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	query := r.URL.Query()

	limit, offset, err := pagination(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	recipes, total, err := handler.recipeService.List(r.Context(), repository.RecipeFilter{
		UserID: user.ID,
		Query:  query.Get("q"),
		Tag:    query.Get("tag"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, err, "loading recipes")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(recipes, total, limit, offset))
}

func (handler *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	recipe, err := handler.recipeService.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "loading recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (handler *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request recipeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	recipe, err := handler.recipeService.Create(r.Context(), user.ID, request.input())
	if err != nil {
		writeError(w, err, "creating recipe")
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (handler *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request recipeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	recipe, err := handler.recipeService.Update(r.Context(), user.ID, chi.URLParam(r, "id"), request.input())
	if err != nil {
		writeError(w, err, "updating recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (handler *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if err := handler.recipeService.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "deleting recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analyze computes nutrition for an ingredient list without saving it.
func (handler *RecipeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request analyzeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	result, warnings, err := handler.recipeService.Analyze(r.Context(), user.ID, request.Ingredients, request.Servings)
	if err != nil {
		writeError(w, err, "analyzing recipe")
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Nutrition: result, Warnings: warnings})
}

func (handler *RecipeHandler) Log(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request logRecipeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	input := services.LogRecipeInput{
		MealType: request.MealType,
		Portions: request.Portions,
		Notes:    trimmedOrNil(request.Notes),
		Tags:     request.Tags,
	}
	if request.MealTime != nil {
		input.MealTime = *request.MealTime
	}

	meal, warnings, err := handler.recipeService.LogAsMeal(r.Context(), user.ID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err, "logging recipe")
		return
	}
	writeJSON(w, http.StatusCreated, mealResponse{Meal: meal, Warnings: warnings})
}
