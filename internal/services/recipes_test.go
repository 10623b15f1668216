package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/bensuskins/nutrition-hub/internal/services"
)

func (f fixture) createStew(t *testing.T, apple models.FoodItem, chicken models.FoodItem) services.RecipeView {
	t.Helper()
	view, err := f.recipes.Create(context.Background(), f.user.ID, services.RecipeInput{
		Title:        "  Chicken stew ",
		Instructions: "Simmer everything.",
		Servings:     4,
		Ingredients: []models.RecipeIngredient{
			{FoodItemID: apple.ID, Servings: 2},
			{FoodItemID: chicken.ID, Servings: 3},
		},
		Tags: []string{"batch", " batch"},
	})
	if err != nil {
		t.Fatalf("creating recipe: %v", err)
	}
	return view
}

func TestRecipeService_CreateComputesNutrition(t *testing.T) {
	f := setupServices(t)
	apple, chicken := f.appleAndChicken(t)

	view := f.createStew(t, apple, chicken)

	if view.ID == "" || view.Title != "Chicken stew" || view.UserID != f.user.ID {
		t.Errorf("unexpected recipe: %+v", view.Recipe)
	}
	if len(view.Tags) != 1 || view.Tags[0] != "batch" {
		t.Errorf("expected normalized tags, got %v", view.Tags)
	}
	if !approximately(view.Nutrition.Total.Calories, 685) {
		t.Errorf("expected 685 kcal for the batch, got %v", view.Nutrition.Total.Calories)
	}
	if !approximately(view.Nutrition.PerServing.Calories, 171.25) {
		t.Errorf("expected 171.25 kcal per serving, got %v", view.Nutrition.PerServing.Calories)
	}
	if !approximately(view.Nutrition.PerServing.Protein, 23.5) {
		t.Errorf("expected 23.5 g protein per serving, got %v", view.Nutrition.PerServing.Protein)
	}
	if len(view.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", view.Warnings)
	}
}

func TestRecipeService_CreateValidation(t *testing.T) {
	f := setupServices(t)
	apple, _ := f.appleAndChicken(t)
	ingredients := []models.RecipeIngredient{{FoodItemID: apple.ID, Servings: 1}}

	tests := []struct {
		name    string
		input   services.RecipeInput
		wantErr error
	}{
		{name: "missing title", input: services.RecipeInput{Servings: 1, Ingredients: ingredients}, wantErr: services.ErrTitleRequired},
		{name: "zero servings", input: services.RecipeInput{Title: "Soup", Ingredients: ingredients}, wantErr: services.ErrInvalidRecipeServes},
		{name: "no ingredients", input: services.RecipeInput{Title: "Soup", Servings: 1}, wantErr: services.ErrIngredientsRequired},
		{
			name:    "blank ingredient",
			input:   services.RecipeInput{Title: "Soup", Servings: 1, Ingredients: []models.RecipeIngredient{{Servings: 1}}},
			wantErr: services.ErrFoodItemRequired,
		},
		{
			name:    "negative ingredient servings",
			input:   services.RecipeInput{Title: "Soup", Servings: 1, Ingredients: []models.RecipeIngredient{{FoodItemID: apple.ID, Servings: -1}}},
			wantErr: nutrition.ErrInvalidServing,
		},
		{
			name:    "unknown ingredient",
			input:   services.RecipeInput{Title: "Soup", Servings: 1, Ingredients: []models.RecipeIngredient{{FoodItemID: "missing", Servings: 1}}},
			wantErr: services.ErrUnknownFoodItem,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := f.recipes.Create(context.Background(), f.user.ID, testCase.input)
			if !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
			if !services.IsValidation(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestRecipeService_DeletedIngredientWarns(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	apple, chicken := f.appleAndChicken(t)
	stew := f.createStew(t, apple, chicken)

	if err := f.foods.Delete(ctx, f.user.ID, chicken.ID); err != nil {
		t.Fatalf("deleting food: %v", err)
	}

	view, err := f.recipes.Get(ctx, f.user.ID, stew.ID)
	if err != nil {
		t.Fatalf("loading recipe: %v", err)
	}
	if !approximately(view.Nutrition.Total.Calories, 190) {
		t.Errorf("expected only the apples to count, got %v", view.Nutrition.Total.Calories)
	}
	if len(view.Warnings) != 1 || !errors.Is(view.Warnings[0], nutrition.ErrMissingReference) {
		t.Errorf("expected one missing reference warning, got %v", view.Warnings)
	}
}

func TestRecipeService_UpdateListAndDelete(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	apple, chicken := f.appleAndChicken(t)
	stew := f.createStew(t, apple, chicken)

	updated, err := f.recipes.Update(ctx, f.user.ID, stew.ID, services.RecipeInput{
		Title:       "Apple snack",
		Servings:    2,
		Ingredients: []models.RecipeIngredient{{FoodItemID: apple.ID, Servings: 2}},
	})
	if err != nil {
		t.Fatalf("updating recipe: %v", err)
	}
	if !approximately(updated.Nutrition.PerServing.Calories, 95) {
		t.Errorf("expected 95 kcal per serving, got %v", updated.Nutrition.PerServing.Calories)
	}

	views, total, err := f.recipes.List(ctx, repository.RecipeFilter{UserID: f.user.ID, Query: "apple"})
	if err != nil {
		t.Fatalf("listing recipes: %v", err)
	}
	if total != 1 || len(views) != 1 || !approximately(views[0].Nutrition.Total.Calories, 190) {
		t.Errorf("unexpected listing: %d %+v", total, views)
	}

	if err := f.recipes.Delete(ctx, f.user.ID, stew.ID); err != nil {
		t.Fatalf("deleting recipe: %v", err)
	}
	if _, err := f.recipes.Get(ctx, f.user.ID, stew.ID); !services.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if _, err := f.recipes.Update(ctx, f.user.ID, stew.ID, services.RecipeInput{Title: "x", Servings: 1, Ingredients: []models.RecipeIngredient{{FoodItemID: apple.ID, Servings: 1}}}); !services.IsNotFound(err) {
		t.Errorf("expected not found updating deleted recipe, got %v", err)
	}
}

func TestRecipeService_Analyze(t *testing.T) {
	f := setupServices(t)
	apple, chicken := f.appleAndChicken(t)

	result, warnings, err := f.recipes.Analyze(context.Background(), f.user.ID, []models.RecipeIngredient{
		{FoodItemID: apple.ID, Servings: 2},
		{FoodItemID: chicken.ID, Servings: 3},
		{FoodItemID: "unknown", Servings: 1},
	}, 4)
	if err != nil {
		t.Fatalf("analyzing: %v", err)
	}
	if !approximately(result.PerServing.Calories, 171.25) {
		t.Errorf("expected 171.25 kcal per serving, got %v", result.PerServing.Calories)
	}
	if len(warnings) != 1 || warnings[0].FoodItemID != "unknown" {
		t.Errorf("expected a warning for the unknown entry, got %v", warnings)
	}

	result, _, err = f.recipes.Analyze(context.Background(), f.user.ID, []models.RecipeIngredient{{FoodItemID: apple.ID, Servings: 1}}, 0)
	if err != nil {
		t.Fatalf("analyzing without servings: %v", err)
	}
	if result.Servings != 1 || !approximately(result.PerServing.Calories, 95) {
		t.Errorf("expected a single serving by default, got %+v", result)
	}

	if _, _, err := f.recipes.Analyze(context.Background(), f.user.ID, nil, 1); !errors.Is(err, services.ErrIngredientsRequired) {
		t.Errorf("expected ingredients required, got %v", err)
	}

	_, total, _ := f.recipes.List(context.Background(), repository.RecipeFilter{UserID: f.user.ID})
	if total != 0 {
		t.Errorf("expected analysis not to save a recipe, got %d", total)
	}
}

func TestRecipeService_LogAsMeal(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	apple, chicken := f.appleAndChicken(t)
	stew := f.createStew(t, apple, chicken)
	mealTime := time.Date(2024, 3, 4, 18, 30, 0, 0, time.UTC)

	meal, warnings, err := f.recipes.LogAsMeal(ctx, f.user.ID, stew.ID, services.LogRecipeInput{
		MealType: models.MealTypeDinner,
		MealTime: mealTime,
		Portions: 2,
	})
	if err != nil {
		t.Fatalf("logging recipe: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if meal.Name != "Chicken stew" || meal.MealType != models.MealTypeDinner || !meal.MealTime.Equal(mealTime) {
		t.Errorf("unexpected meal: %+v", meal)
	}
	if !approximately(meal.NutritionTotals.Calories, 2*171.25) {
		t.Errorf("expected two portions of 171.25 kcal, got %v", meal.NutritionTotals.Calories)
	}
	if len(meal.FoodItems) != 2 || !approximately(meal.FoodItems[1].Servings, 1.5) {
		t.Errorf("expected scaled lines, got %+v", meal.FoodItems)
	}

	stored, err := f.meals.Get(ctx, f.user.ID, meal.ID)
	if err != nil {
		t.Fatalf("loading logged meal: %v", err)
	}
	if !approximately(stored.NutritionTotals.Calories, meal.NutritionTotals.Calories) {
		t.Errorf("expected stored totals to match, got %v", stored.NutritionTotals.Calories)
	}

	if _, _, err := f.recipes.LogAsMeal(ctx, f.user.ID, stew.ID, services.LogRecipeInput{MealType: models.MealTypeDinner, Portions: -1}); !errors.Is(err, nutrition.ErrInvalidServing) {
		t.Errorf("expected invalid serving for negative portions, got %v", err)
	}
	if _, _, err := f.recipes.LogAsMeal(ctx, f.user.ID, "missing", services.LogRecipeInput{MealType: models.MealTypeDinner}); !services.IsNotFound(err) {
		t.Errorf("expected not found for unknown recipe, got %v", err)
	}
}
