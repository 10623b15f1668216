package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/bensuskins/nutrition-hub/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// IsNotFound reports whether err came from a lookup that matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

const nutritionColumns = "calories, protein, carbs, fat, fiber, sugar, sodium, cholesterol"

func nutritionTargets(nutrition *models.Nutrition) []any {
	return []any{
		&nutrition.Calories, &nutrition.Protein, &nutrition.Carbs, &nutrition.Fat,
		&nutrition.Fiber, &nutrition.Sugar, &nutrition.Sodium, &nutrition.Cholesterol,
	}
}

func nutritionValues(nutrition models.Nutrition) []any {
	return []any{
		nutrition.Calories, nutrition.Protein, nutrition.Carbs, nutrition.Fat,
		nutrition.Fiber, nutrition.Sugar, nutrition.Sodium, nutrition.Cholesterol,
	}
}

func placeholders(count int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
