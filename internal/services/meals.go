package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
)

type MealInput struct {
	Name      string
	MealType  models.MealType
	MealTime  time.Time
	FoodItems []models.MealFoodItem
	Notes     *string
	Tags      []string
}

// MealService owns meal persistence. NutritionTotals is recomputed from the
// catalog on every write so stored totals never drift from the items.
type MealService struct {
	mealRepo repository.MealRepository
	foodRepo repository.FoodItemRepository
}

func NewMealService(mealRepo repository.MealRepository, foodRepo repository.FoodItemRepository) *MealService {
	return &MealService{
		mealRepo: mealRepo,
		foodRepo: foodRepo,
	}
}

func (service *MealService) Get(ctx context.Context, userID string, id string) (models.Meal, error) {
	return service.mealRepo.FindByID(ctx, userID, id)
}

func (service *MealService) List(ctx context.Context, filter repository.MealFilter) ([]models.Meal, int, error) {
	return service.mealRepo.FindAll(ctx, filter)
}

func (service *MealService) Create(ctx context.Context, userID string, input MealInput) (models.Meal, nutrition.Warnings, error) {
	meal := models.Meal{UserID: userID}
	if err := applyInput(&meal, input); err != nil {
		return models.Meal{}, nil, err
	}
	if err := service.requireCatalogEntries(ctx, userID, meal.FoodItems); err != nil {
		return models.Meal{}, nil, err
	}

	warnings, err := service.computeTotals(ctx, &meal)
	if err != nil {
		return models.Meal{}, nil, err
	}

	created, err := service.mealRepo.Create(ctx, meal)
	if err != nil {
		return models.Meal{}, nil, err
	}
	return created, warnings, nil
}

func (service *MealService) Update(ctx context.Context, userID string, id string, input MealInput) (models.Meal, nutrition.Warnings, error) {
	meal, err := service.mealRepo.FindByID(ctx, userID, id)
	if err != nil {
		return models.Meal{}, nil, err
	}
	if err := applyInput(&meal, input); err != nil {
		return models.Meal{}, nil, err
	}
	if err := service.requireCatalogEntries(ctx, userID, meal.FoodItems); err != nil {
		return models.Meal{}, nil, err
	}
	return service.save(ctx, meal)
}

// AddItem adds servings of a catalog entry to the meal, merging with an
// existing line for the same entry.
func (service *MealService) AddItem(ctx context.Context, userID string, mealID string, foodItemID string, servings float64) (models.Meal, nutrition.Warnings, error) {
	if err := validateServings(servings); err != nil {
		return models.Meal{}, nil, err
	}
	meal, err := service.mealRepo.FindByID(ctx, userID, mealID)
	if err != nil {
		return models.Meal{}, nil, err
	}
	if err := service.requireCatalogEntries(ctx, userID, []models.MealFoodItem{{FoodItemID: foodItemID, Servings: servings}}); err != nil {
		return models.Meal{}, nil, err
	}

	merged := false
	for i := range meal.FoodItems {
		if meal.FoodItems[i].FoodItemID == foodItemID {
			meal.FoodItems[i].Servings += servings
			merged = true
			break
		}
	}
	if !merged {
		meal.FoodItems = append(meal.FoodItems, models.MealFoodItem{FoodItemID: foodItemID, Servings: servings})
	}
	return service.save(ctx, meal)
}

// RemoveItem drops every line for foodItemID. A meal cannot become empty.
func (service *MealService) RemoveItem(ctx context.Context, userID string, mealID string, foodItemID string) (models.Meal, nutrition.Warnings, error) {
	meal, err := service.mealRepo.FindByID(ctx, userID, mealID)
	if err != nil {
		return models.Meal{}, nil, err
	}

	remaining := make([]models.MealFoodItem, 0, len(meal.FoodItems))
	for _, item := range meal.FoodItems {
		if item.FoodItemID != foodItemID {
			remaining = append(remaining, item)
		}
	}
	if len(remaining) == len(meal.FoodItems) {
		return models.Meal{}, nil, fmt.Errorf("removing %s: %w", foodItemID, ErrUnknownFoodItem)
	}
	if len(remaining) == 0 {
		return models.Meal{}, nil, ErrEmptyMeal
	}

	meal.FoodItems = remaining
	return service.save(ctx, meal)
}

func (service *MealService) SetServings(ctx context.Context, userID string, mealID string, foodItemID string, servings float64) (models.Meal, nutrition.Warnings, error) {
	if err := validateServings(servings); err != nil {
		return models.Meal{}, nil, err
	}
	meal, err := service.mealRepo.FindByID(ctx, userID, mealID)
	if err != nil {
		return models.Meal{}, nil, err
	}

	found := false
	for i := range meal.FoodItems {
		if meal.FoodItems[i].FoodItemID == foodItemID {
			meal.FoodItems[i].Servings = servings
			found = true
		}
	}
	if !found {
		return models.Meal{}, nil, fmt.Errorf("setting servings for %s: %w", foodItemID, ErrUnknownFoodItem)
	}
	return service.save(ctx, meal)
}

func (service *MealService) Delete(ctx context.Context, userID string, id string) error {
	return service.mealRepo.Delete(ctx, userID, id)
}

// Recompute refreshes the stored totals of one meal from the current catalog.
func (service *MealService) Recompute(ctx context.Context, userID string, id string) (models.Meal, nutrition.Warnings, error) {
	meal, err := service.mealRepo.FindByID(ctx, userID, id)
	if err != nil {
		return models.Meal{}, nil, err
	}
	return service.save(ctx, meal)
}

func (service *MealService) RecomputeForFoodItem(ctx context.Context, userID string, foodItemID string) error {
	meals, err := service.mealRepo.FindByFoodItem(ctx, userID, foodItemID)
	if err != nil {
		return err
	}
	for _, meal := range meals {
		if _, _, err := service.save(ctx, meal); err != nil {
			return fmt.Errorf("recomputing meal %s: %w", meal.ID, err)
		}
	}
	if len(meals) > 0 {
		slog.Debug("recomputed meal totals", "food_item_id", foodItemID, "meals", len(meals))
	}
	return nil
}

func (service *MealService) save(ctx context.Context, meal models.Meal) (models.Meal, nutrition.Warnings, error) {
	warnings, err := service.computeTotals(ctx, &meal)
	if err != nil {
		return models.Meal{}, nil, err
	}
	updated, err := service.mealRepo.Update(ctx, meal)
	if err != nil {
		return models.Meal{}, nil, err
	}
	return updated, warnings, nil
}

func (service *MealService) computeTotals(ctx context.Context, meal *models.Meal) (nutrition.Warnings, error) {
	entries, err := service.foodRepo.FindByIDs(ctx, meal.UserID, foodItemIDs(meal.FoodItems))
	if err != nil {
		return nil, fmt.Errorf("loading catalog entries: %w", err)
	}

	total, warnings := nutrition.ComputeMealTotal(*meal, nutrition.CatalogFromItems(entries))
	warnings.Log(slog.Default(), "computing meal totals")
	meal.NutritionTotals = total
	return warnings, nil
}

func (service *MealService) requireCatalogEntries(ctx context.Context, userID string, items []models.MealFoodItem) error {
	return requireFoodItems(ctx, service.foodRepo, userID, foodItemIDs(items))
}

func requireFoodItems(ctx context.Context, foodRepo repository.FoodItemRepository, userID string, ids []string) error {
	entries, err := foodRepo.FindByIDs(ctx, userID, ids)
	if err != nil {
		return fmt.Errorf("loading catalog entries: %w", err)
	}
	lookup := nutrition.CatalogFromItems(entries)
	for _, id := range ids {
		if _, ok := lookup(id); !ok {
			return fmt.Errorf("%s: %w", id, ErrUnknownFoodItem)
		}
	}
	return nil
}

func applyInput(meal *models.Meal, input MealInput) error {
	if !input.MealType.Valid() {
		return fmt.Errorf("%q: %w", input.MealType, models.ErrInvalidMealType)
	}
	if len(input.FoodItems) == 0 {
		return ErrEmptyMeal
	}

	items := make([]models.MealFoodItem, 0, len(input.FoodItems))
	for _, item := range input.FoodItems {
		item.FoodItemID = strings.TrimSpace(item.FoodItemID)
		if item.FoodItemID == "" {
			return ErrFoodItemRequired
		}
		if err := validateServings(item.Servings); err != nil {
			return err
		}
		items = append(items, item)
	}

	meal.Name = strings.TrimSpace(input.Name)
	if meal.Name == "" {
		meal.Name = strings.ToUpper(string(input.MealType[:1])) + string(input.MealType[1:])
	}
	meal.MealType = input.MealType
	meal.MealTime = input.MealTime
	if meal.MealTime.IsZero() {
		meal.MealTime = time.Now()
	}
	meal.FoodItems = items
	meal.Notes = input.Notes
	meal.Tags = models.NormalizeTags(input.Tags)
	return nil
}

func validateServings(servings float64) error {
	if !(servings > 0) || math.IsInf(servings, 0) {
		return fmt.Errorf("servings %v: %w", servings, nutrition.ErrInvalidServing)
	}
	return nil
}

func foodItemIDs(items []models.MealFoodItem) []string {
	seen := make(map[string]bool, len(items))
	var ids []string
	for _, item := range items {
		if !seen[item.FoodItemID] {
			seen[item.FoodItemID] = true
			ids = append(ids, item.FoodItemID)
		}
	}
	return ids
}
