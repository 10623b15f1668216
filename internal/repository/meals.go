package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/google/uuid"
)

// MealFilter selects meals whose meal_time falls in [From, To).
type MealFilter struct {
	UserID   string
	From     *time.Time
	To       *time.Time
	MealType *models.MealType
	Limit    int
	Offset   int
}

type MealRepository interface {
	FindByID(ctx context.Context, userID string, id string) (models.Meal, error)
	FindAll(ctx context.Context, filter MealFilter) ([]models.Meal, int, error)
	FindInRange(ctx context.Context, userID string, from time.Time, to time.Time) ([]models.Meal, error)
	FindByFoodItem(ctx context.Context, userID string, foodItemID string) ([]models.Meal, error)
	Create(ctx context.Context, meal models.Meal) (models.Meal, error)
	Update(ctx context.Context, meal models.Meal) (models.Meal, error)
	Delete(ctx context.Context, userID string, id string) error
}

type SQLiteMealRepository struct {
	database *sql.DB
}

func NewMealRepository(database *sql.DB) *SQLiteMealRepository {
	return &SQLiteMealRepository{database: database}
}

const mealColumns = "id, user_id, name, meal_type, meal_time, food_items, nutrition_totals, notes, tags, created_at, updated_at"

func scanMeal(scanner rowScanner) (models.Meal, error) {
	var meal models.Meal
	var foodItemsJSON, totalsJSON, tagsJSON string
	if err := scanner.Scan(
		&meal.ID, &meal.UserID, &meal.Name, &meal.MealType, &meal.MealTime,
		&foodItemsJSON, &totalsJSON, &meal.Notes, &tagsJSON,
		&meal.CreatedAt, &meal.UpdatedAt,
	); err != nil {
		return models.Meal{}, err
	}
	if err := json.Unmarshal([]byte(foodItemsJSON), &meal.FoodItems); err != nil {
		return models.Meal{}, fmt.Errorf("unmarshalling food items: %w", err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &meal.NutritionTotals); err != nil {
		return models.Meal{}, fmt.Errorf("unmarshalling nutrition totals: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &meal.Tags); err != nil {
		return models.Meal{}, fmt.Errorf("unmarshalling tags: %w", err)
	}
	return meal, nil
}

func (repository *SQLiteMealRepository) query(ctx context.Context, query string, args ...any) ([]models.Meal, error) {
	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning meal: %w", err)
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}

func (repository *SQLiteMealRepository) FindByID(ctx context.Context, userID string, id string) (models.Meal, error) {
	meal, err := scanMeal(repository.database.QueryRowContext(ctx,
		"SELECT "+mealColumns+" FROM meals WHERE id = ? AND user_id = ?", id, userID,
	))
	if err != nil {
		return models.Meal{}, fmt.Errorf("finding meal by id: %w", err)
	}
	return meal, nil
}

func (repository *SQLiteMealRepository) FindAll(ctx context.Context, filter MealFilter) ([]models.Meal, int, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}

	if filter.From != nil {
		where = append(where, "meal_time >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where = append(where, "meal_time < ?")
		args = append(args, filter.To.UTC())
	}
	if filter.MealType != nil {
		where = append(where, "meal_type = ?")
		args = append(args, *filter.MealType)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM meals WHERE "+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting meals: %w", err)
	}

	query := "SELECT " + mealColumns + " FROM meals WHERE " + clause + " ORDER BY meal_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	meals, err := repository.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("finding meals: %w", err)
	}
	return meals, total, nil
}

func (repository *SQLiteMealRepository) FindInRange(ctx context.Context, userID string, from time.Time, to time.Time) ([]models.Meal, error) {
	meals, err := repository.query(ctx,
		"SELECT "+mealColumns+" FROM meals WHERE user_id = ? AND meal_time >= ? AND meal_time < ? ORDER BY meal_time ASC",
		userID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("finding meals in range: %w", err)
	}
	return meals, nil
}

// FindByFoodItem returns the meals whose item list references foodItemID.
func (repository *SQLiteMealRepository) FindByFoodItem(ctx context.Context, userID string, foodItemID string) ([]models.Meal, error) {
	meals, err := repository.query(ctx,
		`SELECT `+mealColumns+` FROM meals
		WHERE user_id = ? AND EXISTS (
			SELECT 1 FROM json_each(meals.food_items) WHERE json_extract(json_each.value, '$.food_item_id') = ?
		)
		ORDER BY meal_time ASC`,
		userID, foodItemID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding meals by food item: %w", err)
	}
	return meals, nil
}

func marshalMealColumns(meal models.Meal) (string, string, string, error) {
	foodItems := meal.FoodItems
	if foodItems == nil {
		foodItems = []models.MealFoodItem{}
	}
	tags := meal.Tags
	if tags == nil {
		tags = []string{}
	}

	foodItemsJSON, err := json.Marshal(foodItems)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling food items: %w", err)
	}
	totalsJSON, err := json.Marshal(meal.NutritionTotals)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling nutrition totals: %w", err)
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling tags: %w", err)
	}
	return string(foodItemsJSON), string(totalsJSON), string(tagsJSON), nil
}

func (repository *SQLiteMealRepository) Create(ctx context.Context, meal models.Meal) (models.Meal, error) {
	if meal.ID == "" {
		meal.ID = uuid.New().String()
	}
	now := time.Now()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	foodItemsJSON, totalsJSON, tagsJSON, err := marshalMealColumns(meal)
	if err != nil {
		return models.Meal{}, err
	}

	_, err = repository.database.ExecContext(ctx,
		"INSERT INTO meals ("+mealColumns+") VALUES ("+placeholders(11)+")",
		meal.ID, meal.UserID, meal.Name, meal.MealType, meal.MealTime.UTC(),
		foodItemsJSON, totalsJSON, meal.Notes, tagsJSON,
		meal.CreatedAt, meal.UpdatedAt,
	)
	if err != nil {
		return models.Meal{}, fmt.Errorf("creating meal: %w", err)
	}
	return meal, nil
}

func (repository *SQLiteMealRepository) Update(ctx context.Context, meal models.Meal) (models.Meal, error) {
	meal.UpdatedAt = time.Now()

	foodItemsJSON, totalsJSON, tagsJSON, err := marshalMealColumns(meal)
	if err != nil {
		return models.Meal{}, err
	}

	result, err := repository.database.ExecContext(ctx,
		`UPDATE meals SET name = ?, meal_type = ?, meal_time = ?, food_items = ?, nutrition_totals = ?,
			notes = ?, tags = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		meal.Name, meal.MealType, meal.MealTime.UTC(), foodItemsJSON, totalsJSON,
		meal.Notes, tagsJSON, meal.UpdatedAt,
		meal.ID, meal.UserID,
	)
	if err != nil {
		return models.Meal{}, fmt.Errorf("updating meal: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return models.Meal{}, fmt.Errorf("updating meal: %w", err)
	}
	return meal, nil
}

func (repository *SQLiteMealRepository) Delete(ctx context.Context, userID string, id string) error {
	result, err := repository.database.ExecContext(ctx,
		"DELETE FROM meals WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting meal: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("deleting meal: %w", err)
	}
	return nil
}
