package nutrition

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrMissingReference   = errors.New("meal references a food item that is not in the catalog")
	ErrInvalidServing     = errors.New("servings must be positive")
	ErrUnresolvedNutrient = errors.New("nutrient not present in external record")
	ErrNoGoal             = errors.New("no goal set")
	ErrInvalidRange       = errors.New("end date is before start date")
	ErrRangeTooLong       = fmt.Errorf("date range exceeds %d days", MaxRangeDays)
	ErrMissingBarcode     = errors.New("barcode is required")
)

type WarningKind string

const (
	WarningMissingReference   WarningKind = "missing_reference"
	WarningInvalidServing     WarningKind = "invalid_serving"
	WarningUnresolvedNutrient WarningKind = "unresolved_nutrient"
)

// Warning is a non-fatal anomaly found while aggregating or importing.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	MealID     string      `json:"meal_id,omitempty"`
	FoodItemID string      `json:"food_item_id,omitempty"`
	Nutrient   string      `json:"nutrient,omitempty"`
	Message    string      `json:"message"`
}

func (warning Warning) Error() string {
	return warning.Message
}

func (warning Warning) Unwrap() error {
	switch warning.Kind {
	case WarningMissingReference:
		return ErrMissingReference
	case WarningInvalidServing:
		return ErrInvalidServing
	case WarningUnresolvedNutrient:
		return ErrUnresolvedNutrient
	}
	return nil
}

type Warnings []Warning

// Err joins the warnings into a single error, or nil when there are none.
func (warnings Warnings) Err() error {
	if len(warnings) == 0 {
		return nil
	}
	errs := make([]error, len(warnings))
	for i, warning := range warnings {
		errs[i] = warning
	}
	return errors.Join(errs...)
}

func (warnings Warnings) Log(logger *slog.Logger, msg string) {
	for _, warning := range warnings {
		logger.Warn(msg,
			"kind", warning.Kind,
			"meal_id", warning.MealID,
			"food_item_id", warning.FoodItemID,
			"nutrient", warning.Nutrient,
			"detail", warning.Message,
		)
	}
}

func missingReference(mealID, foodItemID string) Warning {
	return Warning{
		Kind:       WarningMissingReference,
		MealID:     mealID,
		FoodItemID: foodItemID,
		Message:    fmt.Sprintf("food item %s not found, counted as zero", foodItemID),
	}
}

func invalidServing(mealID, foodItemID string, servings float64) Warning {
	return Warning{
		Kind:       WarningInvalidServing,
		MealID:     mealID,
		FoodItemID: foodItemID,
		Message:    fmt.Sprintf("food item %s has %v servings, counted as zero", foodItemID, servings),
	}
}

func unresolvedNutrient(sourceID, nutrient string) Warning {
	return Warning{
		Kind:       WarningUnresolvedNutrient,
		FoodItemID: sourceID,
		Nutrient:   nutrient,
		Message:    fmt.Sprintf("%s missing from external record %s", nutrient, sourceID),
	}
}
