package nutrition

import (
	"math"
	"strings"

	"github.com/bensuskins/nutrition-hub/internal/models"
)

const (
	defaultServingSize = 100
	defaultServingUnit = models.UnitGram
)

type ExternalNutrient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ExternalFood is a record from an external nutrient database. Nutrient
// values describe the reported serving, or 100 g when none is reported.
type ExternalFood struct {
	ID              string             `json:"id"`
	Description     string             `json:"description"`
	BrandOwner      *string            `json:"brand_owner,omitempty"`
	ServingSize     *float64           `json:"serving_size,omitempty"`
	ServingSizeUnit string             `json:"serving_size_unit,omitempty"`
	Nutrients       []ExternalNutrient `json:"nutrients"`
}

type BarcodeFood struct {
	ExternalFood
	Barcode string `json:"barcode"`
}

type ImportOptions struct {
	UserID      string
	ServingSize *float64
	ServingUnit *models.ServingUnit
	IsFavorite  bool
}

type nutrientField string

const (
	fieldCalories    nutrientField = "calories"
	fieldProtein     nutrientField = "protein"
	fieldCarbs       nutrientField = "carbs"
	fieldFat         nutrientField = "fat"
	fieldFiber       nutrientField = "fiber"
	fieldSugar       nutrientField = "sugar"
	fieldSodium      nutrientField = "sodium"
	fieldCholesterol nutrientField = "cholesterol"
)

// canonicalNutrients is the fixed FoodData Central vocabulary. Keys are
// lower-cased; matching is exact after lower-casing.
var canonicalNutrients = map[string]nutrientField{
	"energy":                       fieldCalories,
	"protein":                      fieldProtein,
	"carbohydrate, by difference":  fieldCarbs,
	"total lipid (fat)":            fieldFat,
	"fiber, total dietary":         fieldFiber,
	"sugars, total including nlea": fieldSugar,
	"sodium, na":                   fieldSodium,
	"cholesterol":                  fieldCholesterol,
}

var nutrientFieldOrder = []nutrientField{
	fieldCalories, fieldProtein, fieldCarbs, fieldFat,
	fieldFiber, fieldSugar, fieldSodium, fieldCholesterol,
}

func FromExternalSearchResult(raw ExternalFood, opts ImportOptions) (models.FoodItem, Warnings, error) {
	return reconcile(raw, opts)
}

// FromBarcodeLookup is FromExternalSearchResult for barcode payloads; the
// barcode is carried onto the entry.
func FromBarcodeLookup(raw BarcodeFood, opts ImportOptions) (models.FoodItem, Warnings, error) {
	barcode := strings.TrimSpace(raw.Barcode)
	if barcode == "" {
		return models.FoodItem{}, nil, ErrMissingBarcode
	}
	item, warnings, err := reconcile(raw.ExternalFood, opts)
	if err != nil {
		return models.FoodItem{}, nil, err
	}
	item.Barcode = &barcode
	return item, warnings, nil
}

func reconcile(raw ExternalFood, opts ImportOptions) (models.FoodItem, Warnings, error) {
	if opts.ServingSize != nil && !validServingSize(*opts.ServingSize) {
		return models.FoodItem{}, nil, ErrInvalidServing
	}

	nutrition, warnings := mapNutrients(raw.ID, raw.Nutrients)
	servingSize, servingUnit := sourceServing(raw)

	if opts.ServingSize != nil {
		nutrition = nutrition.Scale(*opts.ServingSize / servingSize)
		servingSize = *opts.ServingSize
	}
	if opts.ServingUnit != nil && opts.ServingUnit.Valid() {
		servingUnit = *opts.ServingUnit
	}

	item := models.FoodItem{
		UserID:      opts.UserID,
		Name:        strings.TrimSpace(raw.Description),
		ServingSize: servingSize,
		ServingUnit: servingUnit,
		Nutrition:   nutrition,
		IsCustom:    false,
		IsFavorite:  opts.IsFavorite,
	}
	if raw.BrandOwner != nil && strings.TrimSpace(*raw.BrandOwner) != "" {
		brand := strings.TrimSpace(*raw.BrandOwner)
		item.Brand = &brand
	}
	if raw.ID != "" {
		id := raw.ID
		item.FdcID = &id
	}
	return item, warnings, nil
}

// sourceServing falls back to 100 g when the record has no usable serving.
func sourceServing(raw ExternalFood) (float64, models.ServingUnit) {
	if raw.ServingSize == nil || !validServingSize(*raw.ServingSize) {
		return defaultServingSize, defaultServingUnit
	}
	unit, ok := models.ParseServingUnit(raw.ServingSizeUnit)
	if !ok {
		if strings.TrimSpace(raw.ServingSizeUnit) == "" {
			unit = defaultServingUnit
		} else {
			unit = models.UnitServing
		}
	}
	return *raw.ServingSize, unit
}

func mapNutrients(sourceID string, nutrients []ExternalNutrient) (models.Nutrition, Warnings) {
	found := make(map[nutrientField]float64)
	for _, nutrient := range nutrients {
		field, ok := canonicalNutrients[strings.ToLower(nutrient.Name)]
		if !ok {
			continue
		}
		if _, seen := found[field]; seen {
			continue
		}
		// FoodData Central lists Energy in both kcal and kJ.
		if field == fieldCalories && nutrient.Unit != "" && !strings.EqualFold(nutrient.Unit, "kcal") {
			continue
		}
		if math.IsNaN(nutrient.Value) || math.IsInf(nutrient.Value, 0) || nutrient.Value < 0 {
			continue
		}
		found[field] = nutrient.Value
	}

	var warnings Warnings
	for _, field := range nutrientFieldOrder {
		if _, ok := found[field]; !ok {
			warnings = append(warnings, unresolvedNutrient(sourceID, string(field)))
		}
	}

	nutrition := models.Nutrition{
		Calories:    found[fieldCalories],
		Protein:     found[fieldProtein],
		Carbs:       found[fieldCarbs],
		Fat:         found[fieldFat],
		Fiber:       optionalField(found, fieldFiber),
		Sugar:       optionalField(found, fieldSugar),
		Sodium:      optionalField(found, fieldSodium),
		Cholesterol: optionalField(found, fieldCholesterol),
	}
	return nutrition, warnings
}

func optionalField(found map[nutrientField]float64, field nutrientField) *float64 {
	value, ok := found[field]
	if !ok {
		return nil
	}
	return models.Float(value)
}

func validServingSize(size float64) bool {
	return size > 0 && !math.IsInf(size, 0)
}
