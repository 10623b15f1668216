package services

import (
	"errors"

	"github.com/bensuskins/nutrition-hub/internal/fooddata"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
)

var (
	ErrEmptyMeal        = errors.New("meal must contain at least one food item")
	ErrFoodItemRequired = errors.New("food item id is required")
	ErrUnknownFoodItem  = errors.New("food item not found in catalog")

	ErrTitleRequired       = errors.New("recipe title is required")
	ErrIngredientsRequired = errors.New("recipe must contain at least one ingredient")
	ErrInvalidRecipeServes = errors.New("recipe servings must be positive")
)

var validationErrors = []error{
	ErrEmptyMeal,
	ErrFoodItemRequired,
	ErrUnknownFoodItem,
	models.ErrNegativeNutrient,
	models.ErrNonFiniteNutrient,
	models.ErrNameRequired,
	models.ErrInvalidServingSize,
	models.ErrInvalidServingUnit,
	models.ErrInvalidMealType,
	nutrition.ErrInvalidServing,
	ErrTitleRequired,
	ErrIngredientsRequired,
	ErrInvalidRecipeServes,
	nutrition.ErrInvalidRange,
	nutrition.ErrRangeTooLong,
	nutrition.ErrMissingBarcode,
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means the requested record does not exist,
// locally or upstream.
func IsNotFound(err error) bool {
	return repository.IsNotFound(err) ||
		errors.Is(err, fooddata.ErrFoodNotFound) ||
		errors.Is(err, fooddata.ErrProductNotFound)
}
