package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

const TokenScopeICal = "ical"

type User struct {
	ID          string    `json:"id"`
	OIDCSubject string    `json:"-"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type APIToken struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	TokenHash       string     `json:"-"`
	Scope           string     `json:"scope,omitempty"`
	CreatedByUserID string     `json:"created_by_user_id"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

var MealTypes = []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack}

func (mealType MealType) Valid() bool {
	switch mealType {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// FoodItem is a catalog entry. Nutrition describes exactly one serving of
// ServingSize ServingUnit.
type FoodItem struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	Brand       *string     `json:"brand,omitempty"`
	Barcode     *string     `json:"barcode,omitempty"`
	FdcID       *string     `json:"fdc_id,omitempty"`
	ServingSize float64     `json:"serving_size"`
	ServingUnit ServingUnit `json:"serving_unit"`
	Nutrition   Nutrition   `json:"nutrition"`
	IsCustom    bool        `json:"is_custom"`
	IsFavorite  bool        `json:"is_favorite"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToggleFavorite returns a copy with IsFavorite flipped.
func (item FoodItem) ToggleFavorite() FoodItem {
	item.IsFavorite = !item.IsFavorite
	return item
}

type MealFoodItem struct {
	FoodItemID string  `json:"food_item_id"`
	Servings   float64 `json:"servings"`
}

// Meal is a logged meal. NutritionTotals is derived from FoodItems and is
// only ever written by the meal service.
type Meal struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Name            string         `json:"name"`
	MealType        MealType       `json:"meal_type"`
	MealTime        time.Time      `json:"meal_time"`
	FoodItems       []MealFoodItem `json:"food_items"`
	NutritionTotals Nutrition      `json:"nutrition_totals"`
	Notes           *string        `json:"notes,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type RecipeIngredient struct {
	FoodItemID string  `json:"food_item_id"`
	Servings   float64 `json:"servings"`
	Note       string  `json:"note,omitempty"`
}

// Recipe is a reusable list of catalog ingredients that yields Servings
// portions. Its nutrition is derived on read, never stored.
type Recipe struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Title        string             `json:"title"`
	Description  *string            `json:"description,omitempty"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions string             `json:"instructions"`
	Servings     int                `json:"servings"`
	PrepTime     *string            `json:"prep_time,omitempty"`
	CookTime     *string            `json:"cook_time,omitempty"`
	SourceURL    *string            `json:"source_url,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
