package services

import (
	"context"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/repository"
)

type GoalService struct {
	goalRepo repository.GoalRepository
}

func NewGoalService(goalRepo repository.GoalRepository) *GoalService {
	return &GoalService{goalRepo: goalRepo}
}

func (service *GoalService) Get(ctx context.Context, userID string) (models.Nutrition, error) {
	return service.goalRepo.Get(ctx, userID)
}

// Set replaces the user's daily goal. A zero field means no goal for that
// nutrient.
func (service *GoalService) Set(ctx context.Context, userID string, goal models.Nutrition) (models.Nutrition, error) {
	if err := goal.Validate(); err != nil {
		return models.Nutrition{}, err
	}
	if err := service.goalRepo.Upsert(ctx, userID, goal); err != nil {
		return models.Nutrition{}, err
	}
	return goal, nil
}

func (service *GoalService) Clear(ctx context.Context, userID string) error {
	return service.goalRepo.Delete(ctx, userID)
}
