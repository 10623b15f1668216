package services_test

import (
	"context"
	"testing"

	"github.com/bensuskins/nutrition-hub/internal/fooddata"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/bensuskins/nutrition-hub/internal/services"
	"github.com/bensuskins/nutrition-hub/internal/testutil"
	"github.com/google/uuid"
)

type fakeSearcher struct {
	page    fooddata.SearchPage
	details map[string]nutrition.ExternalFood
}

func (f *fakeSearcher) SearchFoods(ctx context.Context, query string, pageSize int, page int) (fooddata.SearchPage, error) {
	return f.page, nil
}

func (f *fakeSearcher) FoodDetails(ctx context.Context, fdcID string) (nutrition.ExternalFood, error) {
	food, ok := f.details[fdcID]
	if !ok {
		return nutrition.ExternalFood{}, fooddata.ErrFoodNotFound
	}
	return food, nil
}

type fakeBarcodes struct {
	products map[string]nutrition.BarcodeFood
	calls    int
}

func (f *fakeBarcodes) LookupBarcode(ctx context.Context, code string) (nutrition.BarcodeFood, error) {
	f.calls++
	product, ok := f.products[code]
	if !ok {
		return nutrition.BarcodeFood{}, fooddata.ErrProductNotFound
	}
	return product, nil
}

type fixture struct {
	user     models.User
	foodRepo *repository.SQLiteFoodItemRepository
	mealRepo *repository.SQLiteMealRepository
	goalRepo *repository.SQLiteGoalRepository
	foods    *services.FoodService
	meals    *services.MealService
	stats    *services.StatsService
	goals    *services.GoalService
	recipes  *services.RecipeService
	searcher *fakeSearcher
	barcodes *fakeBarcodes
}

func setupServices(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	user, err := userRepo.Create(context.Background(), models.User{OIDCSubject: "sub-" + uuid.New().String(), Name: "Test User"})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	f := fixture{
		user:     user,
		foodRepo: repository.NewFoodItemRepository(db),
		mealRepo: repository.NewMealRepository(db),
		goalRepo: repository.NewGoalRepository(db),
		searcher: &fakeSearcher{details: map[string]nutrition.ExternalFood{}},
		barcodes: &fakeBarcodes{products: map[string]nutrition.BarcodeFood{}},
	}
	f.meals = services.NewMealService(f.mealRepo, f.foodRepo)
	f.foods = services.NewFoodService(f.foodRepo, f.meals, f.searcher, f.barcodes)
	f.stats = services.NewStatsService(f.mealRepo, f.goalRepo)
	f.goals = services.NewGoalService(f.goalRepo)
	f.recipes = services.NewRecipeService(repository.NewRecipeRepository(db), f.foodRepo, f.meals)
	return f
}

func (f fixture) createFood(t *testing.T, name string, size float64, unit models.ServingUnit, values models.Nutrition) models.FoodItem {
	t.Helper()
	item, err := f.foods.Create(context.Background(), f.user.ID, models.FoodItem{
		Name:        name,
		ServingSize: size,
		ServingUnit: unit,
		Nutrition:   values,
	})
	if err != nil {
		t.Fatalf("creating food %s: %v", name, err)
	}
	return item
}

func (f fixture) appleAndChicken(t *testing.T) (models.FoodItem, models.FoodItem) {
	t.Helper()
	apple := f.createFood(t, "Apple", 1, models.UnitPiece, models.Nutrition{Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3, Fiber: models.Float(4.4)})
	chicken := f.createFood(t, "Chicken", 100, models.UnitGram, models.Nutrition{Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6})
	return apple, chicken
}
