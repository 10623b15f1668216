package nutrition

import "github.com/bensuskins/nutrition-hub/internal/models"

type RecipeNutrition struct {
	Servings   int              `json:"servings"`
	Total      models.Nutrition `json:"total"`
	PerServing models.Nutrition `json:"per_serving"`
}

// ComputeRecipeNutrition sums the recipe's ingredients against the catalog
// and splits the total across its servings. Warnings carry the recipe id in
// their MealID field. A recipe with no positive servings count reports the
// whole batch as one serving.
func ComputeRecipeNutrition(recipe models.Recipe, lookup CatalogLookup) (RecipeNutrition, Warnings) {
	batch := models.Meal{ID: recipe.ID, FoodItems: ingredientLines(recipe.Ingredients, 1)}
	total, warnings := ComputeMealTotal(batch, lookup)

	result := RecipeNutrition{Servings: recipe.Servings, Total: total, PerServing: total}
	if recipe.Servings > 0 {
		result.PerServing = total.Divide(float64(recipe.Servings))
	}
	return result, warnings
}

// PortionItems returns the meal lines for eating portions of the recipe's
// servings. Repeated ingredients are merged into one line.
func PortionItems(recipe models.Recipe, portions float64) []models.MealFoodItem {
	factor := portions
	if recipe.Servings > 0 {
		factor = portions / float64(recipe.Servings)
	}

	var merged []models.MealFoodItem
	index := make(map[string]int)
	for _, line := range ingredientLines(recipe.Ingredients, factor) {
		if position, ok := index[line.FoodItemID]; ok {
			merged[position].Servings += line.Servings
			continue
		}
		index[line.FoodItemID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

func ingredientLines(ingredients []models.RecipeIngredient, factor float64) []models.MealFoodItem {
	lines := make([]models.MealFoodItem, 0, len(ingredients))
	for _, ingredient := range ingredients {
		lines = append(lines, models.MealFoodItem{
			FoodItemID: ingredient.FoodItemID,
			Servings:   ingredient.Servings * factor,
		})
	}
	return lines
}
