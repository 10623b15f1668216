package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/google/uuid"
)

type FoodItemFilter struct {
	UserID     string
	IsFavorite *bool
	IsCustom   *bool
	Query      string
	Limit      int
	Offset     int
}

type FoodItemRepository interface {
	FindByID(ctx context.Context, userID string, id string) (models.FoodItem, error)
	FindByIDs(ctx context.Context, userID string, ids []string) ([]models.FoodItem, error)
	FindByBarcode(ctx context.Context, userID string, barcode string) (models.FoodItem, error)
	FindByFdcID(ctx context.Context, userID string, fdcID string) (models.FoodItem, error)
	FindAll(ctx context.Context, filter FoodItemFilter) ([]models.FoodItem, int, error)
	Create(ctx context.Context, item models.FoodItem) (models.FoodItem, error)
	Update(ctx context.Context, item models.FoodItem) (models.FoodItem, error)
	SetFavorite(ctx context.Context, userID string, id string, favorite bool) error
	Delete(ctx context.Context, userID string, id string) error
}

type SQLiteFoodItemRepository struct {
	database *sql.DB
}

func NewFoodItemRepository(database *sql.DB) *SQLiteFoodItemRepository {
	return &SQLiteFoodItemRepository{database: database}
}

const foodItemColumns = "id, user_id, name, brand, barcode, fdc_id, serving_size, serving_unit, " +
	nutritionColumns + ", is_custom, is_favorite, created_at, updated_at"

func scanFoodItem(scanner rowScanner) (models.FoodItem, error) {
	var item models.FoodItem
	targets := []any{&item.ID, &item.UserID, &item.Name, &item.Brand, &item.Barcode, &item.FdcID, &item.ServingSize, &item.ServingUnit}
	targets = append(targets, nutritionTargets(&item.Nutrition)...)
	targets = append(targets, &item.IsCustom, &item.IsFavorite, &item.CreatedAt, &item.UpdatedAt)
	err := scanner.Scan(targets...)
	return item, err
}

func (repository *SQLiteFoodItemRepository) findOne(ctx context.Context, where string, args ...any) (models.FoodItem, error) {
	return scanFoodItem(repository.database.QueryRowContext(ctx,
		"SELECT "+foodItemColumns+" FROM food_items WHERE "+where+" ORDER BY created_at ASC LIMIT 1", args...,
	))
}

func (repository *SQLiteFoodItemRepository) FindByID(ctx context.Context, userID string, id string) (models.FoodItem, error) {
	item, err := repository.findOne(ctx, "user_id = ? AND id = ?", userID, id)
	if err != nil {
		return models.FoodItem{}, fmt.Errorf("finding food item by id: %w", err)
	}
	return item, nil
}

func (repository *SQLiteFoodItemRepository) FindByBarcode(ctx context.Context, userID string, barcode string) (models.FoodItem, error) {
	item, err := repository.findOne(ctx, "user_id = ? AND barcode = ?", userID, barcode)
	if err != nil {
		return models.FoodItem{}, fmt.Errorf("finding food item by barcode: %w", err)
	}
	return item, nil
}

func (repository *SQLiteFoodItemRepository) FindByFdcID(ctx context.Context, userID string, fdcID string) (models.FoodItem, error) {
	item, err := repository.findOne(ctx, "user_id = ? AND fdc_id = ?", userID, fdcID)
	if err != nil {
		return models.FoodItem{}, fmt.Errorf("finding food item by fdc id: %w", err)
	}
	return item, nil
}

// FindByIDs returns the entries that exist; ids with no matching row are
// silently absent from the result.
func (repository *SQLiteFoodItemRepository) FindByIDs(ctx context.Context, userID string, ids []string) ([]models.FoodItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := []any{userID}
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+foodItemColumns+" FROM food_items WHERE user_id = ? AND id IN ("+placeholders(len(ids))+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("finding food items by ids: %w", err)
	}
	defer rows.Close()

	var items []models.FoodItem
	for rows.Next() {
		item, err := scanFoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning food item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (repository *SQLiteFoodItemRepository) FindAll(ctx context.Context, filter FoodItemFilter) ([]models.FoodItem, int, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}

	if filter.IsFavorite != nil {
		where = append(where, "is_favorite = ?")
		args = append(args, *filter.IsFavorite)
	}
	if filter.IsCustom != nil {
		where = append(where, "is_custom = ?")
		args = append(args, *filter.IsCustom)
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		where = append(where, "(name LIKE ? OR brand LIKE ?)")
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM food_items WHERE "+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting food items: %w", err)
	}

	query := "SELECT " + foodItemColumns + " FROM food_items WHERE " + clause + " ORDER BY is_favorite DESC, name ASC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("finding food items: %w", err)
	}
	defer rows.Close()

	var items []models.FoodItem
	for rows.Next() {
		item, err := scanFoodItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning food item: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (repository *SQLiteFoodItemRepository) Create(ctx context.Context, item models.FoodItem) (models.FoodItem, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	values := []any{item.ID, item.UserID, item.Name, item.Brand, item.Barcode, item.FdcID, item.ServingSize, item.ServingUnit}
	values = append(values, nutritionValues(item.Nutrition)...)
	values = append(values, item.IsCustom, item.IsFavorite, item.CreatedAt, item.UpdatedAt)

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO food_items ("+foodItemColumns+") VALUES ("+placeholders(len(values))+")",
		values...,
	)
	if err != nil {
		return models.FoodItem{}, fmt.Errorf("creating food item: %w", err)
	}
	return item, nil
}

func (repository *SQLiteFoodItemRepository) Update(ctx context.Context, item models.FoodItem) (models.FoodItem, error) {
	item.UpdatedAt = time.Now()

	values := []any{item.Name, item.Brand, item.Barcode, item.FdcID, item.ServingSize, item.ServingUnit}
	values = append(values, nutritionValues(item.Nutrition)...)
	values = append(values, item.IsCustom, item.IsFavorite, item.UpdatedAt, item.ID, item.UserID)

	result, err := repository.database.ExecContext(ctx,
		`UPDATE food_items SET name = ?, brand = ?, barcode = ?, fdc_id = ?, serving_size = ?, serving_unit = ?,
			calories = ?, protein = ?, carbs = ?, fat = ?, fiber = ?, sugar = ?, sodium = ?, cholesterol = ?,
			is_custom = ?, is_favorite = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		values...,
	)
	if err != nil {
		return models.FoodItem{}, fmt.Errorf("updating food item: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return models.FoodItem{}, fmt.Errorf("updating food item: %w", err)
	}
	return item, nil
}

func (repository *SQLiteFoodItemRepository) SetFavorite(ctx context.Context, userID string, id string, favorite bool) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE food_items SET is_favorite = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		favorite, time.Now(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("setting favorite: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("setting favorite: %w", err)
	}
	return nil
}

func (repository *SQLiteFoodItemRepository) Delete(ctx context.Context, userID string, id string) error {
	result, err := repository.database.ExecContext(ctx,
		"DELETE FROM food_items WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting food item: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("deleting food item: %w", err)
	}
	return nil
}
