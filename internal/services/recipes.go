package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
)

type RecipeInput struct {
	Title        string
	Description  *string
	Ingredients  []models.RecipeIngredient
	Instructions string
	Servings     int
	PrepTime     *string
	CookTime     *string
	SourceURL    *string
	Tags         []string
}

type LogRecipeInput struct {
	MealType models.MealType
	MealTime time.Time
	Portions float64
	Notes    *string
	Tags     []string
}

// RecipeView is a recipe with its nutrition resolved against the catalog at
// read time.
type RecipeView struct {
	models.Recipe
	Nutrition nutrition.RecipeNutrition `json:"nutrition"`
	Warnings  nutrition.Warnings        `json:"warnings,omitempty"`
}

type RecipeService struct {
	recipeRepo repository.RecipeRepository
	foodRepo   repository.FoodItemRepository
	meals      *MealService
}

func NewRecipeService(recipeRepo repository.RecipeRepository, foodRepo repository.FoodItemRepository, meals *MealService) *RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		foodRepo:   foodRepo,
		meals:      meals,
	}
}

func (service *RecipeService) Get(ctx context.Context, userID string, id string) (RecipeView, error) {
	recipe, err := service.recipeRepo.FindByID(ctx, userID, id)
	if err != nil {
		return RecipeView{}, err
	}
	return service.view(ctx, recipe)
}

// List resolves every listed recipe with a single catalog query.
func (service *RecipeService) List(ctx context.Context, filter repository.RecipeFilter) ([]RecipeView, int, error) {
	recipes, total, err := service.recipeRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	var ids []string
	for _, recipe := range recipes {
		ids = append(ids, ingredientIDs(recipe.Ingredients)...)
	}
	entries, err := service.foodRepo.FindByIDs(ctx, filter.UserID, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("loading catalog entries: %w", err)
	}
	lookup := nutrition.CatalogFromItems(entries)

	views := make([]RecipeView, 0, len(recipes))
	for _, recipe := range recipes {
		views = append(views, resolveRecipe(recipe, lookup))
	}
	return views, total, nil
}

func (service *RecipeService) Create(ctx context.Context, userID string, input RecipeInput) (RecipeView, error) {
	recipe := models.Recipe{UserID: userID}
	if err := applyRecipeInput(&recipe, input); err != nil {
		return RecipeView{}, err
	}
	if err := requireFoodItems(ctx, service.foodRepo, userID, ingredientIDs(recipe.Ingredients)); err != nil {
		return RecipeView{}, err
	}

	created, err := service.recipeRepo.Create(ctx, recipe)
	if err != nil {
		return RecipeView{}, err
	}
	return service.view(ctx, created)
}

func (service *RecipeService) Update(ctx context.Context, userID string, id string, input RecipeInput) (RecipeView, error) {
	recipe, err := service.recipeRepo.FindByID(ctx, userID, id)
	if err != nil {
		return RecipeView{}, err
	}
	if err := applyRecipeInput(&recipe, input); err != nil {
		return RecipeView{}, err
	}
	if err := requireFoodItems(ctx, service.foodRepo, userID, ingredientIDs(recipe.Ingredients)); err != nil {
		return RecipeView{}, err
	}

	updated, err := service.recipeRepo.Update(ctx, recipe)
	if err != nil {
		return RecipeView{}, err
	}
	return service.view(ctx, updated)
}

func (service *RecipeService) Delete(ctx context.Context, userID string, id string) error {
	return service.recipeRepo.Delete(ctx, userID, id)
}

// Analyze computes nutrition for an unsaved ingredient list. Unknown catalog
// entries are reported as warnings rather than rejected.
func (service *RecipeService) Analyze(ctx context.Context, userID string, ingredients []models.RecipeIngredient, servings int) (nutrition.RecipeNutrition, nutrition.Warnings, error) {
	cleaned, err := cleanIngredients(ingredients)
	if err != nil {
		return nutrition.RecipeNutrition{}, nil, err
	}
	if servings == 0 {
		servings = 1
	}
	if servings < 0 {
		return nutrition.RecipeNutrition{}, nil, ErrInvalidRecipeServes
	}

	view, err := service.view(ctx, models.Recipe{UserID: userID, Ingredients: cleaned, Servings: servings})
	if err != nil {
		return nutrition.RecipeNutrition{}, nil, err
	}
	return view.Nutrition, view.Warnings, nil
}

// LogAsMeal records portions of the recipe's servings as a new meal.
func (service *RecipeService) LogAsMeal(ctx context.Context, userID string, recipeID string, input LogRecipeInput) (models.Meal, nutrition.Warnings, error) {
	recipe, err := service.recipeRepo.FindByID(ctx, userID, recipeID)
	if err != nil {
		return models.Meal{}, nil, err
	}

	portions := input.Portions
	if portions == 0 {
		portions = 1
	}
	if err := validateServings(portions); err != nil {
		return models.Meal{}, nil, err
	}

	return service.meals.Create(ctx, userID, MealInput{
		Name:      recipe.Title,
		MealType:  input.MealType,
		MealTime:  input.MealTime,
		FoodItems: nutrition.PortionItems(recipe, portions),
		Notes:     input.Notes,
		Tags:      input.Tags,
	})
}

func (service *RecipeService) view(ctx context.Context, recipe models.Recipe) (RecipeView, error) {
	entries, err := service.foodRepo.FindByIDs(ctx, recipe.UserID, ingredientIDs(recipe.Ingredients))
	if err != nil {
		return RecipeView{}, fmt.Errorf("loading catalog entries: %w", err)
	}
	return resolveRecipe(recipe, nutrition.CatalogFromItems(entries)), nil
}

func resolveRecipe(recipe models.Recipe, lookup nutrition.CatalogLookup) RecipeView {
	computed, warnings := nutrition.ComputeRecipeNutrition(recipe, lookup)
	warnings.Log(slog.Default(), "computing recipe nutrition")
	return RecipeView{Recipe: recipe, Nutrition: computed, Warnings: warnings}
}

func applyRecipeInput(recipe *models.Recipe, input RecipeInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if input.Servings <= 0 {
		return fmt.Errorf("servings %d: %w", input.Servings, ErrInvalidRecipeServes)
	}
	ingredients, err := cleanIngredients(input.Ingredients)
	if err != nil {
		return err
	}

	recipe.Title = title
	recipe.Description = input.Description
	recipe.Ingredients = ingredients
	recipe.Instructions = strings.TrimSpace(input.Instructions)
	recipe.Servings = input.Servings
	recipe.PrepTime = input.PrepTime
	recipe.CookTime = input.CookTime
	recipe.SourceURL = input.SourceURL
	recipe.Tags = models.NormalizeTags(input.Tags)
	return nil
}

func cleanIngredients(ingredients []models.RecipeIngredient) ([]models.RecipeIngredient, error) {
	if len(ingredients) == 0 {
		return nil, ErrIngredientsRequired
	}
	cleaned := make([]models.RecipeIngredient, 0, len(ingredients))
	for _, ingredient := range ingredients {
		ingredient.FoodItemID = strings.TrimSpace(ingredient.FoodItemID)
		if ingredient.FoodItemID == "" {
			return nil, ErrFoodItemRequired
		}
		if err := validateServings(ingredient.Servings); err != nil {
			return nil, err
		}
		ingredient.Note = strings.TrimSpace(ingredient.Note)
		cleaned = append(cleaned, ingredient)
	}
	return cleaned, nil
}

func ingredientIDs(ingredients []models.RecipeIngredient) []string {
	items := make([]models.MealFoodItem, 0, len(ingredients))
	for _, ingredient := range ingredients {
		items = append(items, models.MealFoodItem{FoodItemID: ingredient.FoodItemID})
	}
	return foodItemIDs(items)
}
