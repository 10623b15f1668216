package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	ErrNegativeNutrient   = errors.New("nutrient value is negative")
	ErrNonFiniteNutrient  = errors.New("nutrient value is not a finite number")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidServingSize = errors.New("serving size must be positive")
	ErrInvalidServingUnit = errors.New("unknown serving unit")
	ErrInvalidMealType    = errors.New("unknown meal type")
)

// Nutrition is a nutrient profile. The optional fields are nil when the value
// is unknown; unknown is not the same as zero.
type Nutrition struct {
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	Fiber       *float64 `json:"fiber,omitempty"`
	Sugar       *float64 `json:"sugar,omitempty"`
	Sodium      *float64 `json:"sodium,omitempty"`
	Cholesterol *float64 `json:"cholesterol,omitempty"`
}

func Float(value float64) *float64 {
	return &value
}

func (nutrition Nutrition) Scale(factor float64) Nutrition {
	return Nutrition{
		Calories:    nutrition.Calories * factor,
		Protein:     nutrition.Protein * factor,
		Carbs:       nutrition.Carbs * factor,
		Fat:         nutrition.Fat * factor,
		Fiber:       scaleOptional(nutrition.Fiber, factor),
		Sugar:       scaleOptional(nutrition.Sugar, factor),
		Sodium:      scaleOptional(nutrition.Sodium, factor),
		Cholesterol: scaleOptional(nutrition.Cholesterol, factor),
	}
}

// Add sums field by field. An absent optional field contributes zero; the
// result stays absent only when both sides are absent.
func (nutrition Nutrition) Add(other Nutrition) Nutrition {
	return Nutrition{
		Calories:    nutrition.Calories + other.Calories,
		Protein:     nutrition.Protein + other.Protein,
		Carbs:       nutrition.Carbs + other.Carbs,
		Fat:         nutrition.Fat + other.Fat,
		Fiber:       addOptional(nutrition.Fiber, other.Fiber),
		Sugar:       addOptional(nutrition.Sugar, other.Sugar),
		Sodium:      addOptional(nutrition.Sodium, other.Sodium),
		Cholesterol: addOptional(nutrition.Cholesterol, other.Cholesterol),
	}
}

// Divide returns the receiver unchanged for a zero divisor.
func (nutrition Nutrition) Divide(divisor float64) Nutrition {
	if divisor == 0 {
		return nutrition
	}
	return Nutrition{
		Calories:    nutrition.Calories / divisor,
		Protein:     nutrition.Protein / divisor,
		Carbs:       nutrition.Carbs / divisor,
		Fat:         nutrition.Fat / divisor,
		Fiber:       divideOptional(nutrition.Fiber, divisor),
		Sugar:       divideOptional(nutrition.Sugar, divisor),
		Sodium:      divideOptional(nutrition.Sodium, divisor),
		Cholesterol: divideOptional(nutrition.Cholesterol, divisor),
	}
}

func (nutrition Nutrition) Validate() error {
	fields := []struct {
		name  string
		value *float64
	}{
		{"calories", &nutrition.Calories},
		{"protein", &nutrition.Protein},
		{"carbs", &nutrition.Carbs},
		{"fat", &nutrition.Fat},
		{"fiber", nutrition.Fiber},
		{"sugar", nutrition.Sugar},
		{"sodium", nutrition.Sodium},
		{"cholesterol", nutrition.Cholesterol},
	}
	for _, field := range fields {
		if field.value == nil {
			continue
		}
		if math.IsNaN(*field.value) || math.IsInf(*field.value, 0) {
			return fmt.Errorf("%s: %w", field.name, ErrNonFiniteNutrient)
		}
		if *field.value < 0 {
			return fmt.Errorf("%s: %w", field.name, ErrNegativeNutrient)
		}
	}
	return nil
}

func scaleOptional(value *float64, factor float64) *float64 {
	if value == nil {
		return nil
	}
	return Float(*value * factor)
}

func addOptional(left, right *float64) *float64 {
	switch {
	case left == nil && right == nil:
		return nil
	case left == nil:
		return Float(*right)
	case right == nil:
		return Float(*left)
	}
	return Float(*left + *right)
}

func divideOptional(value *float64, divisor float64) *float64 {
	if value == nil {
		return nil
	}
	return Float(*value / divisor)
}

type ServingUnit string

const (
	UnitGram       ServingUnit = "g"
	UnitMilliliter ServingUnit = "ml"
	UnitOunce      ServingUnit = "oz"
	UnitCup        ServingUnit = "cup"
	UnitTablespoon ServingUnit = "tbsp"
	UnitTeaspoon   ServingUnit = "tsp"
	UnitServing    ServingUnit = "serving"
	UnitPiece      ServingUnit = "piece"
)

var servingUnitAliases = map[string]ServingUnit{
	"g":           UnitGram,
	"grm":         UnitGram,
	"gram":        UnitGram,
	"grams":       UnitGram,
	"ml":          UnitMilliliter,
	"mlt":         UnitMilliliter,
	"milliliter":  UnitMilliliter,
	"milliliters": UnitMilliliter,
	"oz":          UnitOunce,
	"cup":         UnitCup,
	"tbsp":        UnitTablespoon,
	"tsp":         UnitTeaspoon,
	"serving":     UnitServing,
	"piece":       UnitPiece,
}

func (unit ServingUnit) Valid() bool {
	switch unit {
	case UnitGram, UnitMilliliter, UnitOunce, UnitCup, UnitTablespoon, UnitTeaspoon, UnitServing, UnitPiece:
		return true
	}
	return false
}

// ParseServingUnit maps a free-form unit onto the vocabulary, accepting the
// spellings used by external food databases.
func ParseServingUnit(raw string) (ServingUnit, bool) {
	unit, ok := servingUnitAliases[strings.ToLower(strings.TrimSpace(raw))]
	return unit, ok
}

func (item FoodItem) Validate() error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrNameRequired
	}
	if !(item.ServingSize > 0) || math.IsInf(item.ServingSize, 0) {
		return ErrInvalidServingSize
	}
	if !item.ServingUnit.Valid() {
		return fmt.Errorf("%q: %w", item.ServingUnit, ErrInvalidServingUnit)
	}
	if err := item.Nutrition.Validate(); err != nil {
		return fmt.Errorf("validating nutrition: %w", err)
	}
	return nil
}

// NormalizeTags trims, deduplicates and sorts tags so they behave as a set.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var normalized []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	sort.Strings(normalized)
	return normalized
}
