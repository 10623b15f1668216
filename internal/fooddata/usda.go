package fooddata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/nutrition"
)

const usdaService = "usda"

type USDAClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewUSDAClient(baseURL string, apiKey string, timeout time.Duration) *USDAClient {
	return &USDAClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  newHTTPClient(timeout),
	}
}

type SearchPage struct {
	TotalHits   int                      `json:"total_hits"`
	CurrentPage int                      `json:"current_page"`
	TotalPages  int                      `json:"total_pages"`
	Foods       []nutrition.ExternalFood `json:"foods"`
}

// usdaNutrient covers both shapes FoodData Central uses: search results carry
// nutrientName/value/unitName, detail records nest nutrient{name,unitName}
// next to amount.
type usdaNutrient struct {
	NutrientName string   `json:"nutrientName"`
	UnitName     string   `json:"unitName"`
	Value        *float64 `json:"value"`
	Amount       *float64 `json:"amount"`
	Nutrient     *struct {
		Name     string `json:"name"`
		UnitName string `json:"unitName"`
	} `json:"nutrient"`
}

type usdaFood struct {
	FdcID           int            `json:"fdcId"`
	Description     string         `json:"description"`
	BrandOwner      string         `json:"brandOwner"`
	BrandName       string         `json:"brandName"`
	ServingSize     *float64       `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []usdaNutrient `json:"foodNutrients"`
}

type usdaSearchResponse struct {
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	Foods       []usdaFood `json:"foods"`
}

func (c *USDAClient) SearchFoods(ctx context.Context, query string, pageSize int, page int) (SearchPage, error) {
	if pageSize <= 0 {
		pageSize = 25
	}
	if page <= 0 {
		page = 1
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("pageNumber", strconv.Itoa(page))

	var response usdaSearchResponse
	if err := getJSON(ctx, c.client, usdaService, c.baseURL+"/foods/search?"+params.Encode(), ErrFoodNotFound, &response); err != nil {
		return SearchPage{}, fmt.Errorf("searching foods: %w", err)
	}

	result := SearchPage{
		TotalHits:   response.TotalHits,
		CurrentPage: response.CurrentPage,
		TotalPages:  response.TotalPages,
		Foods:       make([]nutrition.ExternalFood, 0, len(response.Foods)),
	}
	for _, food := range response.Foods {
		result.Foods = append(result.Foods, food.external())
	}
	return result, nil
}

func (c *USDAClient) FoodDetails(ctx context.Context, fdcID string) (nutrition.ExternalFood, error) {
	fdcID = strings.TrimSpace(fdcID)
	if fdcID == "" {
		return nutrition.ExternalFood{}, ErrFoodNotFound
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)

	var food usdaFood
	endpoint := c.baseURL + "/food/" + url.PathEscape(fdcID) + "?" + params.Encode()
	if err := getJSON(ctx, c.client, usdaService, endpoint, ErrFoodNotFound, &food); err != nil {
		return nutrition.ExternalFood{}, fmt.Errorf("fetching food %s: %w", fdcID, err)
	}
	return food.external(), nil
}

func (food usdaFood) external() nutrition.ExternalFood {
	external := nutrition.ExternalFood{
		ID:              strconv.Itoa(food.FdcID),
		Description:     strings.TrimSpace(food.Description),
		ServingSize:     food.ServingSize,
		ServingSizeUnit: food.ServingSizeUnit,
	}

	brand := strings.TrimSpace(food.BrandOwner)
	if brand == "" {
		brand = strings.TrimSpace(food.BrandName)
	}
	if brand != "" {
		external.BrandOwner = &brand
	}

	for _, raw := range food.FoodNutrients {
		if nutrient, ok := raw.external(); ok {
			external.Nutrients = append(external.Nutrients, nutrient)
		}
	}
	return external
}

func (raw usdaNutrient) external() (nutrition.ExternalNutrient, bool) {
	if raw.Nutrient != nil && raw.Nutrient.Name != "" {
		if raw.Amount == nil {
			return nutrition.ExternalNutrient{}, false
		}
		return nutrition.ExternalNutrient{Name: raw.Nutrient.Name, Value: *raw.Amount, Unit: raw.Nutrient.UnitName}, true
	}
	if raw.NutrientName != "" && raw.Value != nil {
		return nutrition.ExternalNutrient{Name: raw.NutrientName, Value: *raw.Value, Unit: raw.UnitName}, true
	}
	return nutrition.ExternalNutrient{}, false
}
