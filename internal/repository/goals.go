package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
)

// GoalRepository stores one daily nutrition target per user.
type GoalRepository interface {
	Get(ctx context.Context, userID string) (models.Nutrition, error)
	Upsert(ctx context.Context, userID string, goal models.Nutrition) error
	Delete(ctx context.Context, userID string) error
}

type SQLiteGoalRepository struct {
	database *sql.DB
}

func NewGoalRepository(database *sql.DB) *SQLiteGoalRepository {
	return &SQLiteGoalRepository{database: database}
}

func (repository *SQLiteGoalRepository) Get(ctx context.Context, userID string) (models.Nutrition, error) {
	var goal models.Nutrition
	err := repository.database.QueryRowContext(ctx,
		"SELECT "+nutritionColumns+" FROM nutrition_goals WHERE user_id = ?", userID,
	).Scan(nutritionTargets(&goal)...)
	if err != nil {
		return models.Nutrition{}, fmt.Errorf("finding nutrition goal: %w", err)
	}
	return goal, nil
}

func (repository *SQLiteGoalRepository) Upsert(ctx context.Context, userID string, goal models.Nutrition) error {
	args := append([]any{userID}, nutritionValues(goal)...)
	args = append(args, time.Now())

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO nutrition_goals (user_id, `+nutritionColumns+`, updated_at) VALUES (`+placeholders(10)+`)
		ON CONFLICT(user_id) DO UPDATE SET
			calories = excluded.calories, protein = excluded.protein, carbs = excluded.carbs, fat = excluded.fat,
			fiber = excluded.fiber, sugar = excluded.sugar, sodium = excluded.sodium, cholesterol = excluded.cholesterol,
			updated_at = excluded.updated_at`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("upserting nutrition goal: %w", err)
	}
	return nil
}

func (repository *SQLiteGoalRepository) Delete(ctx context.Context, userID string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM nutrition_goals WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("deleting nutrition goal: %w", err)
	}
	return nil
}
