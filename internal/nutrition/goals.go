package nutrition

import (
	"math"

	"github.com/bensuskins/nutrition-hub/internal/models"
)

// GoalProgress holds percent-of-goal per macro. A nil field means no goal is
// set for that macro.
type GoalProgress struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

func Progress(current, goal models.Nutrition) GoalProgress {
	return GoalProgress{
		Calories: percentOfGoal(current.Calories, goal.Calories),
		Protein:  percentOfGoal(current.Protein, goal.Protein),
		Carbs:    percentOfGoal(current.Carbs, goal.Carbs),
		Fat:      percentOfGoal(current.Fat, goal.Fat),
	}
}

// PercentOfGoal is the single-field form of Progress; it returns ErrNoGoal
// when the target is zero, negative or not a number.
func PercentOfGoal(current, target float64) (float64, error) {
	percent := percentOfGoal(current, target)
	if percent == nil {
		return 0, ErrNoGoal
	}
	return *percent, nil
}

func percentOfGoal(current, target float64) *float64 {
	if !(target > 0) || math.IsInf(target, 0) {
		return nil
	}
	percent := current / target * 100
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	return models.Float(math.Min(percent, 100))
}
