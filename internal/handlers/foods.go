package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bensuskins/nutrition-hub/internal/middleware"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/bensuskins/nutrition-hub/internal/services"
	"github.com/go-chi/chi/v5"
)

type FoodHandler struct {
	foodService *services.FoodService
}

func NewFoodHandler(foodService *services.FoodService) *FoodHandler {
	return &FoodHandler{foodService: foodService}
}

type foodRequest struct {
	Name        string           `json:"name"`
	Brand       *string          `json:"brand"`
	Barcode     *string          `json:"barcode"`
	ServingSize float64          `json:"serving_size"`
	ServingUnit string           `json:"serving_unit"`
	Nutrition   models.Nutrition `json:"nutrition"`
	// IsFavorite applies on create only; updates keep the stored flag.
	IsFavorite bool `json:"is_favorite"`
}

func (request foodRequest) item() models.FoodItem {
	unit, ok := models.ParseServingUnit(request.ServingUnit)
	if !ok {
		unit = models.ServingUnit(request.ServingUnit)
	}
	return models.FoodItem{
		Name:        request.Name,
		Brand:       trimmedOrNil(request.Brand),
		Barcode:     trimmedOrNil(request.Barcode),
		ServingSize: request.ServingSize,
		ServingUnit: unit,
		Nutrition:   request.Nutrition,
		IsFavorite:  request.IsFavorite,
	}
}

type importRequest struct {
	FdcID       string   `json:"fdc_id"`
	ServingSize *float64 `json:"serving_size"`
	ServingUnit *string  `json:"serving_unit"`
	IsFavorite  bool     `json:"is_favorite"`
}

type importResponse struct {
	FoodItem models.FoodItem    `json:"food_item"`
	Warnings nutrition.Warnings `json:"warnings,omitempty"`
}

func (handler *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	query := r.URL.Query()

	limit, offset, err := pagination(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	favorite, err := parseBool(query.Get("favorite"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	custom, err := parseBool(query.Get("custom"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := handler.foodService.List(r.Context(), repository.FoodItemFilter{
		UserID:     user.ID,
		IsFavorite: favorite,
		IsCustom:   custom,
		Query:      query.Get("q"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, err, "loading foods")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(items, total, limit, offset))
}

func (handler *FoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	item, err := handler.foodService.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "loading food")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (handler *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request foodRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := handler.foodService.Create(r.Context(), user.ID, request.item())
	if err != nil {
		writeError(w, err, "creating food")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request foodRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := handler.foodService.Update(r.Context(), user.ID, chi.URLParam(r, "id"), request.item())
	if err != nil {
		writeError(w, err, "updating food")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (handler *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if err := handler.foodService.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "deleting food")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *FoodHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	item, err := handler.foodService.ToggleFavorite(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "toggling favorite")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (handler *FoodHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeMessage(w, http.StatusBadRequest, "q is required")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeMessage(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = parsed
	}
	pageSize, _, err := pagination(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := handler.foodService.Search(r.Context(), user.ID, query, pageSize, page)
	if err != nil {
		writeError(w, err, "searching foods")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (handler *FoodHandler) Import(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request importRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if strings.TrimSpace(request.FdcID) == "" {
		writeMessage(w, http.StatusBadRequest, "fdc_id is required")
		return
	}

	opts, err := importOptions(request.ServingSize, request.ServingUnit, request.IsFavorite)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	item, warnings, err := handler.foodService.ImportFromUSDA(r.Context(), user.ID, request.FdcID, opts)
	if err != nil {
		writeError(w, err, "importing food")
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{FoodItem: item, Warnings: warnings})
}

// Details previews a FoodData Central record without saving it.
func (handler *FoodHandler) Details(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	opts, err := queryImportOptions(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	item, warnings, err := handler.foodService.Details(r.Context(), user.ID, chi.URLParam(r, "fdcID"), opts)
	if err != nil {
		writeError(w, err, "loading food details")
		return
	}
	writeJSON(w, http.StatusOK, importResponse{FoodItem: item, Warnings: warnings})
}

func (handler *FoodHandler) Barcode(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	opts, err := queryImportOptions(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := handler.foodService.LookupBarcode(r.Context(), user.ID, chi.URLParam(r, "code"), opts)
	if err != nil {
		writeError(w, err, "looking up barcode")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func queryImportOptions(r *http.Request) (nutrition.ImportOptions, error) {
	query := r.URL.Query()

	var servingSize *float64
	if raw := query.Get("serving_size"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nutrition.ImportOptions{}, errors.New("invalid serving_size")
		}
		servingSize = &parsed
	}
	var servingUnit *string
	if raw := query.Get("serving_unit"); raw != "" {
		servingUnit = &raw
	}
	favorite, err := parseBool(query.Get("favorite"))
	if err != nil {
		return nutrition.ImportOptions{}, err
	}
	return importOptions(servingSize, servingUnit, favorite != nil && *favorite)
}

func importOptions(servingSize *float64, servingUnit *string, favorite bool) (nutrition.ImportOptions, error) {
	opts := nutrition.ImportOptions{ServingSize: servingSize, IsFavorite: favorite}
	if servingUnit != nil {
		unit, ok := models.ParseServingUnit(*servingUnit)
		if !ok {
			return nutrition.ImportOptions{}, models.ErrInvalidServingUnit
		}
		opts.ServingUnit = &unit
	}
	return opts, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
