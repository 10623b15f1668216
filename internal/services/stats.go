package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
)

type StatsService struct {
	mealRepo repository.MealRepository
	goalRepo repository.GoalRepository
}

func NewStatsService(mealRepo repository.MealRepository, goalRepo repository.GoalRepository) *StatsService {
	return &StatsService{
		mealRepo: mealRepo,
		goalRepo: goalRepo,
	}
}

func (service *StatsService) Daily(ctx context.Context, userID string, date time.Time, loc *time.Location) (nutrition.DailyStats, error) {
	start, end := nutrition.DayBounds(date, loc)

	meals, err := service.mealRepo.FindInRange(ctx, userID, start, end)
	if err != nil {
		return nutrition.DailyStats{}, fmt.Errorf("loading meals: %w", err)
	}
	goal, err := service.goal(ctx, userID)
	if err != nil {
		return nutrition.DailyStats{}, err
	}
	return nutrition.ComputeDailyStats(meals, date, loc, goal), nil
}

// Weekly covers the calendar days from start through endInclusive.
func (service *StatsService) Weekly(ctx context.Context, userID string, start time.Time, endInclusive time.Time, loc *time.Location) (nutrition.WeeklyStats, error) {
	from, _ := nutrition.DayBounds(start, loc)
	lastDay, to := nutrition.DayBounds(endInclusive, loc)
	if lastDay.Before(from) {
		return nutrition.WeeklyStats{}, nutrition.ErrInvalidRange
	}
	if nutrition.RangeDays(from, lastDay) > nutrition.MaxRangeDays {
		return nutrition.WeeklyStats{}, nutrition.ErrRangeTooLong
	}

	meals, err := service.mealRepo.FindInRange(ctx, userID, from, to)
	if err != nil {
		return nutrition.WeeklyStats{}, fmt.Errorf("loading meals: %w", err)
	}
	goal, err := service.goal(ctx, userID)
	if err != nil {
		return nutrition.WeeklyStats{}, err
	}
	return nutrition.ComputeWeeklyStats(meals, start, endInclusive, loc, goal)
}

func (service *StatsService) goal(ctx context.Context, userID string) (*models.Nutrition, error) {
	goal, err := service.goalRepo.Get(ctx, userID)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading goal: %w", err)
	}
	return &goal, nil
}
