package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bensuskins/nutrition-hub/internal/fooddata"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
)

const (
	BarcodeSourceDatabase = "database"
	BarcodeSourceExternal = "external"
)

type FoodSearcher interface {
	SearchFoods(ctx context.Context, query string, pageSize int, page int) (fooddata.SearchPage, error)
	FoodDetails(ctx context.Context, fdcID string) (nutrition.ExternalFood, error)
}

type BarcodeLookup interface {
	LookupBarcode(ctx context.Context, code string) (nutrition.BarcodeFood, error)
}

type mealRecomputer interface {
	RecomputeForFoodItem(ctx context.Context, userID string, foodItemID string) error
}

type FoodService struct {
	foodRepo repository.FoodItemRepository
	meals    mealRecomputer
	searcher FoodSearcher
	barcodes BarcodeLookup
}

func NewFoodService(
	foodRepo repository.FoodItemRepository,
	meals mealRecomputer,
	searcher FoodSearcher,
	barcodes BarcodeLookup,
) *FoodService {
	return &FoodService{
		foodRepo: foodRepo,
		meals:    meals,
		searcher: searcher,
		barcodes: barcodes,
	}
}

type SearchResult struct {
	TotalHits   int               `json:"total_hits"`
	CurrentPage int               `json:"current_page"`
	TotalPages  int               `json:"total_pages"`
	Foods       []models.FoodItem `json:"foods"`
}

type BarcodeResult struct {
	Source   string             `json:"source"`
	FoodItem models.FoodItem    `json:"food_item"`
	Warnings nutrition.Warnings `json:"warnings,omitempty"`
}

func (service *FoodService) Get(ctx context.Context, userID string, id string) (models.FoodItem, error) {
	return service.foodRepo.FindByID(ctx, userID, id)
}

func (service *FoodService) List(ctx context.Context, filter repository.FoodItemFilter) ([]models.FoodItem, int, error) {
	return service.foodRepo.FindAll(ctx, filter)
}

// Create stores a user-defined entry.
func (service *FoodService) Create(ctx context.Context, userID string, item models.FoodItem) (models.FoodItem, error) {
	item.ID = ""
	item.UserID = userID
	item.IsCustom = true
	item.Name = strings.TrimSpace(item.Name)
	if err := item.Validate(); err != nil {
		return models.FoodItem{}, err
	}
	return service.foodRepo.Create(ctx, item)
}

// Update replaces the editable fields of an entry and refreshes the totals of
// every meal that references it. The favorite flag is left to ToggleFavorite.
func (service *FoodService) Update(ctx context.Context, userID string, id string, changes models.FoodItem) (models.FoodItem, error) {
	existing, err := service.foodRepo.FindByID(ctx, userID, id)
	if err != nil {
		return models.FoodItem{}, err
	}

	existing.Name = strings.TrimSpace(changes.Name)
	existing.Brand = changes.Brand
	existing.Barcode = changes.Barcode
	existing.ServingSize = changes.ServingSize
	existing.ServingUnit = changes.ServingUnit
	existing.Nutrition = changes.Nutrition
	if err := existing.Validate(); err != nil {
		return models.FoodItem{}, err
	}

	updated, err := service.foodRepo.Update(ctx, existing)
	if err != nil {
		return models.FoodItem{}, err
	}

	// The edit is committed; stale meal totals are repaired by Recompute.
	if err := service.meals.RecomputeForFoodItem(ctx, userID, id); err != nil {
		slog.Error("recomputing meals after food edit", "food_item_id", id, "error", err)
	}
	return updated, nil
}

// Delete removes the entry. Meals keep their references and stored totals.
func (service *FoodService) Delete(ctx context.Context, userID string, id string) error {
	return service.foodRepo.Delete(ctx, userID, id)
}

func (service *FoodService) ToggleFavorite(ctx context.Context, userID string, id string) (models.FoodItem, error) {
	item, err := service.foodRepo.FindByID(ctx, userID, id)
	if err != nil {
		return models.FoodItem{}, err
	}
	toggled := item.ToggleFavorite()
	if err := service.foodRepo.SetFavorite(ctx, userID, id, toggled.IsFavorite); err != nil {
		return models.FoodItem{}, err
	}
	return toggled, nil
}

// Search queries FoodData Central and returns unsaved previews.
func (service *FoodService) Search(ctx context.Context, userID string, query string, pageSize int, page int) (SearchResult, error) {
	found, err := service.searcher.SearchFoods(ctx, query, pageSize, page)
	if err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{
		TotalHits:   found.TotalHits,
		CurrentPage: found.CurrentPage,
		TotalPages:  found.TotalPages,
		Foods:       make([]models.FoodItem, 0, len(found.Foods)),
	}
	for _, raw := range found.Foods {
		item, _, err := nutrition.FromExternalSearchResult(raw, nutrition.ImportOptions{UserID: userID})
		if err != nil {
			slog.Warn("skipping search result", "fdc_id", raw.ID, "error", err)
			continue
		}
		result.Foods = append(result.Foods, item)
	}
	return result, nil
}

// Details fetches a FoodData Central record and converts it without saving.
func (service *FoodService) Details(ctx context.Context, userID string, fdcID string, opts nutrition.ImportOptions) (models.FoodItem, nutrition.Warnings, error) {
	item, warnings, err := service.fetchUSDA(ctx, userID, fdcID, opts)
	if err != nil {
		return models.FoodItem{}, nil, err
	}
	warnings.Log(slog.Default(), "converting usda food")
	return item, warnings, nil
}

// ImportFromUSDA fetches a FoodData Central record and saves it to the
// user's catalog, applying any serving override.
func (service *FoodService) ImportFromUSDA(ctx context.Context, userID string, fdcID string, opts nutrition.ImportOptions) (models.FoodItem, nutrition.Warnings, error) {
	item, warnings, err := service.fetchUSDA(ctx, userID, fdcID, opts)
	if err != nil {
		return models.FoodItem{}, nil, err
	}
	warnings.Log(slog.Default(), "importing usda food")

	created, err := service.save(ctx, item)
	if err != nil {
		return models.FoodItem{}, nil, err
	}
	return created, warnings, nil
}

func (service *FoodService) fetchUSDA(ctx context.Context, userID string, fdcID string, opts nutrition.ImportOptions) (models.FoodItem, nutrition.Warnings, error) {
	raw, err := service.searcher.FoodDetails(ctx, fdcID)
	if err != nil {
		return models.FoodItem{}, nil, err
	}

	opts.UserID = userID
	item, warnings, err := nutrition.FromExternalSearchResult(raw, opts)
	if err != nil {
		return models.FoodItem{}, nil, err
	}
	if item.Name == "" {
		item.Name = "FoodData Central " + fdcID
	}
	return item, warnings, nil
}

// LookupBarcode checks the user's catalog first, then Open Food Facts. An
// external hit is saved so later lookups resolve locally.
func (service *FoodService) LookupBarcode(ctx context.Context, userID string, code string, opts nutrition.ImportOptions) (BarcodeResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return BarcodeResult{}, nutrition.ErrMissingBarcode
	}

	existing, err := service.foodRepo.FindByBarcode(ctx, userID, code)
	if err == nil {
		return BarcodeResult{Source: BarcodeSourceDatabase, FoodItem: existing}, nil
	}
	if !repository.IsNotFound(err) {
		return BarcodeResult{}, err
	}

	raw, err := service.barcodes.LookupBarcode(ctx, code)
	if err != nil {
		return BarcodeResult{}, err
	}

	opts.UserID = userID
	item, warnings, err := nutrition.FromBarcodeLookup(raw, opts)
	if err != nil {
		return BarcodeResult{}, err
	}
	if item.Name == "" {
		item.Name = "Product " + code
	}
	warnings.Log(slog.Default(), "importing barcode product")

	created, err := service.save(ctx, item)
	if err != nil {
		return BarcodeResult{}, err
	}
	return BarcodeResult{Source: BarcodeSourceExternal, FoodItem: created, Warnings: warnings}, nil
}

func (service *FoodService) save(ctx context.Context, item models.FoodItem) (models.FoodItem, error) {
	if err := item.Validate(); err != nil {
		return models.FoodItem{}, fmt.Errorf("validating imported food: %w", err)
	}
	created, err := service.foodRepo.Create(ctx, item)
	if err != nil {
		return models.FoodItem{}, err
	}
	return created, nil
}
