package nutrition_test

import (
	"testing"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
)

func TestComputeRecipeNutrition(t *testing.T) {
	recipe := models.Recipe{
		ID:       "salad",
		Servings: 4,
		Ingredients: []models.RecipeIngredient{
			{FoodItemID: "apple", Servings: 4},
			{FoodItemID: "chicken", Servings: 2},
			{FoodItemID: "deleted-item", Servings: 1},
		},
	}

	result, warnings := nutrition.ComputeRecipeNutrition(recipe, nutrition.CatalogFromItems(testCatalog()))

	if !approxEqual(result.Total.Calories, 464) {
		t.Errorf("expected 464 kcal for the batch, got %v", result.Total.Calories)
	}
	if !approxEqual(result.PerServing.Calories, 116) {
		t.Errorf("expected 116 kcal per serving, got %v", result.PerServing.Calories)
	}
	if result.PerServing.Fiber == nil || !approxEqual(*result.PerServing.Fiber, 2.4) {
		t.Errorf("expected 2.4 g fiber per serving, got %v", result.PerServing.Fiber)
	}
	if result.PerServing.Sugar != nil {
		t.Errorf("expected unknown sugar to stay unknown, got %v", *result.PerServing.Sugar)
	}
	if result.Servings != 4 {
		t.Errorf("expected 4 servings, got %d", result.Servings)
	}
	if len(warnings) != 1 || warnings[0].Kind != nutrition.WarningMissingReference {
		t.Fatalf("expected one missing reference warning, got %+v", warnings)
	}
	if warnings[0].MealID != "salad" || warnings[0].FoodItemID != "deleted-item" {
		t.Errorf("unexpected warning context: %+v", warnings[0])
	}
}

func TestComputeRecipeNutrition_WithoutServings(t *testing.T) {
	recipe := models.Recipe{
		Ingredients: []models.RecipeIngredient{{FoodItemID: "chicken", Servings: 1}},
	}

	result, warnings := nutrition.ComputeRecipeNutrition(recipe, nutrition.CatalogFromItems(testCatalog()))
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if !approxEqual(result.PerServing.Calories, result.Total.Calories) {
		t.Errorf("expected the whole batch as one serving, got %v of %v", result.PerServing.Calories, result.Total.Calories)
	}
}

func TestPortionItems(t *testing.T) {
	recipe := models.Recipe{
		Servings: 4,
		Ingredients: []models.RecipeIngredient{
			{FoodItemID: "apple", Servings: 4},
			{FoodItemID: "chicken", Servings: 2},
			{FoodItemID: "apple", Servings: 2, Note: "for garnish"},
		},
	}

	tests := []struct {
		name     string
		portions float64
		apple    float64
		chicken  float64
	}{
		{name: "one portion", portions: 1, apple: 1.5, chicken: 0.5},
		{name: "half portion", portions: 0.5, apple: 0.75, chicken: 0.25},
		{name: "whole batch", portions: 4, apple: 6, chicken: 2},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			items := nutrition.PortionItems(recipe, testCase.portions)
			if len(items) != 2 {
				t.Fatalf("expected repeated ingredients merged into 2 lines, got %+v", items)
			}
			if items[0].FoodItemID != "apple" || !approxEqual(items[0].Servings, testCase.apple) {
				t.Errorf("expected %v apple servings, got %+v", testCase.apple, items[0])
			}
			if items[1].FoodItemID != "chicken" || !approxEqual(items[1].Servings, testCase.chicken) {
				t.Errorf("expected %v chicken servings, got %+v", testCase.chicken, items[1])
			}
		})
	}
}

func TestPortionItems_MatchesPerServingNutrition(t *testing.T) {
	recipe := models.Recipe{
		Servings: 3,
		Ingredients: []models.RecipeIngredient{
			{FoodItemID: "apple", Servings: 2},
			{FoodItemID: "chicken", Servings: 1.5},
		},
	}
	lookup := nutrition.CatalogFromItems(testCatalog())

	perServing, _ := nutrition.ComputeRecipeNutrition(recipe, lookup)
	meal := models.Meal{FoodItems: nutrition.PortionItems(recipe, 1)}
	total, _ := nutrition.ComputeMealTotal(meal, lookup)

	if !approxEqual(total.Calories, perServing.PerServing.Calories) || !approxEqual(total.Protein, perServing.PerServing.Protein) {
		t.Errorf("expected one portion to equal per-serving nutrition, got %+v vs %+v", total, perServing.PerServing)
	}
}
