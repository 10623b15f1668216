package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/bensuskins/nutrition-hub/internal/testutil"
)

func newMeal(userID string, name string, mealType models.MealType, mealTime time.Time, foodItemIDs ...string) models.Meal {
	meal := models.Meal{
		UserID:          userID,
		Name:            name,
		MealType:        mealType,
		MealTime:        mealTime,
		NutritionTotals: models.Nutrition{Calories: 100},
	}
	for _, id := range foodItemIDs {
		meal.FoodItems = append(meal.FoodItems, models.MealFoodItem{FoodItemID: id, Servings: 1})
	}
	return meal
}

func TestMealRepository_CreateAndFindByID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	user := createTestUser(t, repository.NewUserRepository(db))
	repo := repository.NewMealRepository(db)
	ctx := context.Background()

	notes := "post-run"
	meal := newMeal(user.ID, "Lunch", models.MealTypeLunch, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), "food-1", "food-2")
	meal.FoodItems[1].Servings = 1.5
	meal.Notes = &notes
	meal.Tags = []string{"high-protein"}
	meal.NutritionTotals.Fiber = models.Float(3)

	created, err := repo.Create(ctx, meal)
	if err != nil {
		t.Fatalf("creating meal: %v", err)
	}

	found, err := repo.FindByID(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("finding meal: %v", err)
	}
	if len(found.FoodItems) != 2 || found.FoodItems[1].Servings != 1.5 {
		t.Errorf("food items did not round-trip: %+v", found.FoodItems)
	}
	if !found.MealTime.Equal(meal.MealTime) {
		t.Errorf("expected meal time %v, got %v", meal.MealTime, found.MealTime)
	}
	if found.NutritionTotals.Calories != 100 || found.NutritionTotals.Fiber == nil || *found.NutritionTotals.Fiber != 3 {
		t.Errorf("totals did not round-trip: %+v", found.NutritionTotals)
	}
	if found.NutritionTotals.Sugar != nil {
		t.Errorf("expected absent sugar, got %v", *found.NutritionTotals.Sugar)
	}
	if found.Notes == nil || *found.Notes != "post-run" {
		t.Errorf("expected notes, got %v", found.Notes)
	}
	if len(found.Tags) != 1 || found.Tags[0] != "high-protein" {
		t.Errorf("expected tags, got %v", found.Tags)
	}
}

func TestMealRepository_FindInRange(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	user := createTestUser(t, repository.NewUserRepository(db))
	repo := repository.NewMealRepository(db)
	ctx := context.Background()

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}

	repo.Create(ctx, newMeal(user.ID, "Late dinner", models.MealTypeDinner, time.Date(2024, 3, 1, 23, 30, 0, 0, newYork)))
	repo.Create(ctx, newMeal(user.ID, "Breakfast", models.MealTypeBreakfast, time.Date(2024, 3, 2, 8, 0, 0, 0, newYork)))
	repo.Create(ctx, newMeal(user.ID, "Next day", models.MealTypeLunch, time.Date(2024, 3, 3, 0, 0, 0, 0, newYork)))

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, newYork)
	to := from.AddDate(0, 0, 1)

	meals, err := repo.FindInRange(ctx, user.ID, from, to)
	if err != nil {
		t.Fatalf("finding meals in range: %v", err)
	}
	if len(meals) != 1 || meals[0].Name != "Breakfast" {
		t.Errorf("expected only Breakfast, got %+v", meals)
	}
}

func TestMealRepository_FindAll(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	user := createTestUser(t, repository.NewUserRepository(db))
	repo := repository.NewMealRepository(db)
	ctx := context.Background()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.Create(ctx, newMeal(user.ID, "Oats", models.MealTypeBreakfast, day.Add(8*time.Hour)))
	repo.Create(ctx, newMeal(user.ID, "Salad", models.MealTypeLunch, day.Add(12*time.Hour)))
	repo.Create(ctx, newMeal(user.ID, "Soup", models.MealTypeDinner, day.Add(19*time.Hour)))
	repo.Create(ctx, newMeal(user.ID, "Toast", models.MealTypeBreakfast, day.AddDate(0, 0, 1).Add(8*time.Hour)))

	lunch := models.MealTypeLunch
	to := day.AddDate(0, 0, 1)

	tests := []struct {
		name          string
		filter        repository.MealFilter
		expectedTotal int
		expectedFirst string
	}{
		{name: "all, newest first", filter: repository.MealFilter{}, expectedTotal: 4, expectedFirst: "Toast"},
		{name: "single day", filter: repository.MealFilter{From: &day, To: &to}, expectedTotal: 3, expectedFirst: "Soup"},
		{name: "meal type", filter: repository.MealFilter{MealType: &lunch}, expectedTotal: 1, expectedFirst: "Salad"},
		{name: "paged", filter: repository.MealFilter{Limit: 2, Offset: 2}, expectedTotal: 4, expectedFirst: "Salad"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			filter := testCase.filter
			filter.UserID = user.ID
			meals, total, err := repo.FindAll(ctx, filter)
			if err != nil {
				t.Fatalf("finding meals: %v", err)
			}
			if total != testCase.expectedTotal {
				t.Errorf("expected total %d, got %d", testCase.expectedTotal, total)
			}
			if len(meals) == 0 || meals[0].Name != testCase.expectedFirst {
				t.Errorf("expected first meal %s, got %+v", testCase.expectedFirst, meals)
			}
		})
	}
}

func TestMealRepository_FindByFoodItem(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	user := createTestUser(t, repository.NewUserRepository(db))
	repo := repository.NewMealRepository(db)
	ctx := context.Background()

	now := time.Now()
	repo.Create(ctx, newMeal(user.ID, "With apple", models.MealTypeSnack, now, "apple", "pear"))
	repo.Create(ctx, newMeal(user.ID, "Without apple", models.MealTypeSnack, now, "pear"))

	meals, err := repo.FindByFoodItem(ctx, user.ID, "apple")
	if err != nil {
		t.Fatalf("finding meals by food item: %v", err)
	}
	if len(meals) != 1 || meals[0].Name != "With apple" {
		t.Errorf("expected only 'With apple', got %+v", meals)
	}
}

func TestMealRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	owner := createTestUser(t, userRepo)
	other := createTestUser(t, userRepo)
	repo := repository.NewMealRepository(db)
	ctx := context.Background()

	created, _ := repo.Create(ctx, newMeal(owner.ID, "Lunch", models.MealTypeLunch, time.Now(), "food-1"))
	created.Name = "Big lunch"
	created.FoodItems[0].Servings = 2

	if _, err := repo.Update(ctx, created); err != nil {
		t.Fatalf("updating meal: %v", err)
	}
	found, _ := repo.FindByID(ctx, owner.ID, created.ID)
	if found.Name != "Big lunch" || found.FoodItems[0].Servings != 2 {
		t.Errorf("update not persisted: %+v", found)
	}

	if err := repo.Delete(ctx, other.ID, created.ID); !repository.IsNotFound(err) {
		t.Errorf("expected not found deleting other user's meal, got %v", err)
	}
	if err := repo.Delete(ctx, owner.ID, created.ID); err != nil {
		t.Fatalf("deleting meal: %v", err)
	}
	if _, err := repo.FindByID(ctx, owner.ID, created.ID); !repository.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}
