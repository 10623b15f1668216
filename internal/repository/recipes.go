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

// RecipeFilter narrows a listing. Query matches title or description, Tag
// matches one stored tag exactly.
type RecipeFilter struct {
	UserID string
	Query  string
	Tag    string
	Limit  int
	Offset int
}

type RecipeRepository interface {
	FindByID(ctx context.Context, userID string, id string) (models.Recipe, error)
	FindAll(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int, error)
	Create(ctx context.Context, recipe models.Recipe) (models.Recipe, error)
	Update(ctx context.Context, recipe models.Recipe) (models.Recipe, error)
	Delete(ctx context.Context, userID string, id string) error
}

type SQLiteRecipeRepository struct {
	database *sql.DB
}

func NewRecipeRepository(database *sql.DB) *SQLiteRecipeRepository {
	return &SQLiteRecipeRepository{database: database}
}

const recipeColumns = `id, user_id, title, description, ingredients, instructions, servings,
	prep_time, cook_time, source_url, tags, created_at, updated_at`

func scanRecipe(scanner rowScanner) (models.Recipe, error) {
	var recipe models.Recipe
	var ingredientsJSON, tagsJSON string
	if err := scanner.Scan(
		&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.Description,
		&ingredientsJSON, &recipe.Instructions, &recipe.Servings,
		&recipe.PrepTime, &recipe.CookTime, &recipe.SourceURL, &tagsJSON,
		&recipe.CreatedAt, &recipe.UpdatedAt,
	); err != nil {
		return models.Recipe{}, err
	}
	if err := json.Unmarshal([]byte(ingredientsJSON), &recipe.Ingredients); err != nil {
		return models.Recipe{}, fmt.Errorf("unmarshalling ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &recipe.Tags); err != nil {
		return models.Recipe{}, fmt.Errorf("unmarshalling tags: %w", err)
	}
	return recipe, nil
}

func (repository *SQLiteRecipeRepository) FindByID(ctx context.Context, userID string, id string) (models.Recipe, error) {
	recipe, err := scanRecipe(repository.database.QueryRowContext(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE id = ? AND user_id = ?", id, userID,
	))
	if err != nil {
		return models.Recipe{}, fmt.Errorf("finding recipe by id: %w", err)
	}
	return recipe, nil
}

func (repository *SQLiteRecipeRepository) FindAll(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}

	if query := strings.TrimSpace(filter.Query); query != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(recipes.tags) WHERE json_each.value = ?)")
		args = append(args, tag)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM recipes WHERE "+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting recipes: %w", err)
	}

	query := "SELECT " + recipeColumns + " FROM recipes WHERE " + clause + " ORDER BY title ASC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("finding recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, total, rows.Err()
}

func marshalRecipeColumns(recipe models.Recipe) (string, string, error) {
	ingredients := recipe.Ingredients
	if ingredients == nil {
		ingredients = []models.RecipeIngredient{}
	}
	tags := recipe.Tags
	if tags == nil {
		tags = []string{}
	}

	ingredientsJSON, err := json.Marshal(ingredients)
	if err != nil {
		return "", "", fmt.Errorf("marshalling ingredients: %w", err)
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("marshalling tags: %w", err)
	}
	return string(ingredientsJSON), string(tagsJSON), nil
}

func (repository *SQLiteRecipeRepository) Create(ctx context.Context, recipe models.Recipe) (models.Recipe, error) {
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	ingredientsJSON, tagsJSON, err := marshalRecipeColumns(recipe)
	if err != nil {
		return models.Recipe{}, err
	}

	_, err = repository.database.ExecContext(ctx,
		"INSERT INTO recipes ("+recipeColumns+") VALUES ("+placeholders(13)+")",
		recipe.ID, recipe.UserID, recipe.Title, recipe.Description,
		ingredientsJSON, recipe.Instructions, recipe.Servings,
		recipe.PrepTime, recipe.CookTime, recipe.SourceURL, tagsJSON,
		recipe.CreatedAt, recipe.UpdatedAt,
	)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("creating recipe: %w", err)
	}
	return recipe, nil
}

func (repository *SQLiteRecipeRepository) Update(ctx context.Context, recipe models.Recipe) (models.Recipe, error) {
	recipe.UpdatedAt = time.Now()

	ingredientsJSON, tagsJSON, err := marshalRecipeColumns(recipe)
	if err != nil {
		return models.Recipe{}, err
	}

	result, err := repository.database.ExecContext(ctx,
		`UPDATE recipes SET title = ?, description = ?, ingredients = ?, instructions = ?, servings = ?,
			prep_time = ?, cook_time = ?, source_url = ?, tags = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		recipe.Title, recipe.Description, ingredientsJSON, recipe.Instructions, recipe.Servings,
		recipe.PrepTime, recipe.CookTime, recipe.SourceURL, tagsJSON, recipe.UpdatedAt,
		recipe.ID, recipe.UserID,
	)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("updating recipe: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return models.Recipe{}, fmt.Errorf("updating recipe: %w", err)
	}
	return recipe, nil
}

func (repository *SQLiteRecipeRepository) Delete(ctx context.Context, userID string, id string) error {
	result, err := repository.database.ExecContext(ctx,
		"DELETE FROM recipes WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}
	return nil
}
