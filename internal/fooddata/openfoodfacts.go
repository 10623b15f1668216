package fooddata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
)

const openFoodFactsService = "openfoodfacts"

type OpenFoodFactsClient struct {
	baseURL string
	client  *http.Client
}

func NewOpenFoodFactsClient(baseURL string, timeout time.Duration) *OpenFoodFactsClient {
	return &OpenFoodFactsClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// nutrimentKey maps an Open Food Facts per-100 g key onto the FoodData
// Central name the importer understands. Open Food Facts reports sodium and
// cholesterol in grams; FoodData Central uses milligrams.
type nutrimentKey struct {
	key        string
	name       string
	unit       string
	multiplier float64
}

var nutrimentKeys = []nutrimentKey{
	{key: "energy-kcal_100g", name: "Energy", unit: "kcal", multiplier: 1},
	{key: "proteins_100g", name: "Protein", unit: "g", multiplier: 1},
	{key: "carbohydrates_100g", name: "Carbohydrate, by difference", unit: "g", multiplier: 1},
	{key: "fat_100g", name: "Total lipid (fat)", unit: "g", multiplier: 1},
	{key: "fiber_100g", name: "Fiber, total dietary", unit: "g", multiplier: 1},
	{key: "sugars_100g", name: "Sugars, total including NLEA", unit: "g", multiplier: 1},
	{key: "sodium_100g", name: "Sodium, Na", unit: "mg", multiplier: 1000},
	{key: "cholesterol_100g", name: "Cholesterol", unit: "mg", multiplier: 1000},
}

type openFoodFactsResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Product struct {
		ProductName string                   `json:"product_name"`
		Brands      string                   `json:"brands"`
		Nutriments  map[string]flexibleFloat `json:"nutriments"`
	} `json:"product"`
}

func (c *OpenFoodFactsClient) LookupBarcode(ctx context.Context, code string) (nutrition.BarcodeFood, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nutrition.BarcodeFood{}, nutrition.ErrMissingBarcode
	}

	var response openFoodFactsResponse
	endpoint := c.baseURL + "/api/v0/product/" + url.PathEscape(code) + ".json"
	if err := getJSON(ctx, c.client, openFoodFactsService, endpoint, ErrProductNotFound, &response); err != nil {
		return nutrition.BarcodeFood{}, fmt.Errorf("looking up barcode %s: %w", code, err)
	}
	if response.Status != 1 {
		return nutrition.BarcodeFood{}, fmt.Errorf("looking up barcode %s: %w", code, ErrProductNotFound)
	}

	servingSize := 100.0
	food := nutrition.BarcodeFood{
		ExternalFood: nutrition.ExternalFood{
			Description:     strings.TrimSpace(response.Product.ProductName),
			ServingSize:     &servingSize,
			ServingSizeUnit: string(models.UnitGram),
		},
		Barcode: code,
	}
	if response.Code != "" {
		food.Barcode = response.Code
	}

	if brand := firstBrand(response.Product.Brands); brand != "" {
		food.BrandOwner = &brand
	}

	for _, mapping := range nutrimentKeys {
		value, ok := response.Product.Nutriments[mapping.key]
		if !ok || !value.set {
			continue
		}
		food.Nutrients = append(food.Nutrients, nutrition.ExternalNutrient{
			Name:  mapping.name,
			Value: value.value * mapping.multiplier,
			Unit:  mapping.unit,
		})
	}
	return food, nil
}

func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}
