// Package nutrition derives meal, daily and weekly nutrition totals from a
// food catalog and logged meals, reconciles external food records into
// catalog entries, and computes progress against goals.
//
// Everything here is pure: inputs are plain values, outputs are new values,
// and anomalies are reported as Warnings instead of errors.
package nutrition

import (
	"time"

	"github.com/bensuskins/nutrition-hub/internal/models"
)

const dateLayout = "2006-01-02"

// MaxRangeDays bounds the number of calendar days ComputeWeeklyStats emits.
const MaxRangeDays = 366

// CatalogLookup resolves a food item id to its catalog entry.
type CatalogLookup func(id string) (models.FoodItem, bool)

func CatalogFromItems(items []models.FoodItem) CatalogLookup {
	index := make(map[string]models.FoodItem, len(items))
	for _, item := range items {
		index[item.ID] = item
	}
	return func(id string) (models.FoodItem, bool) {
		item, ok := index[id]
		return item, ok
	}
}

// ComputeMealTotal scales each referenced entry by its servings and sums the
// results. Unresolved references and non-positive servings contribute zero
// and are reported as warnings.
func ComputeMealTotal(meal models.Meal, lookup CatalogLookup) (models.Nutrition, Warnings) {
	var total models.Nutrition
	var warnings Warnings

	for _, mealItem := range meal.FoodItems {
		if !(mealItem.Servings > 0) {
			warnings = append(warnings, invalidServing(meal.ID, mealItem.FoodItemID, mealItem.Servings))
			continue
		}
		entry, ok := lookup(mealItem.FoodItemID)
		if !ok {
			warnings = append(warnings, missingReference(meal.ID, mealItem.FoodItemID))
			continue
		}
		total = total.Add(entry.Nutrition.Scale(mealItem.Servings))
	}

	return total, warnings
}

type MealTypeBreakdown struct {
	Count     int              `json:"count"`
	Nutrition models.Nutrition `json:"nutrition"`
}

// MacroPercentages is the share of total calories coming from each macro,
// using 4 kcal/g for protein and carbs and 9 kcal/g for fat.
type MacroPercentages struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type DailyStats struct {
	Date             string                                `json:"date"`
	Total            models.Nutrition                      `json:"total"`
	Goal             *models.Nutrition                     `json:"goal,omitempty"`
	Progress         *GoalProgress                         `json:"progress,omitempty"`
	ByMealType       map[models.MealType]MealTypeBreakdown `json:"by_meal"`
	MealCount        int                                   `json:"meal_count"`
	MacroPercentages MacroPercentages                      `json:"macro_percentages"`
}

type DayNutrition struct {
	Date      string           `json:"date"`
	Nutrition models.Nutrition `json:"nutrition"`
	MealCount int              `json:"meal_count"`
}

type WeeklyStats struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Total     models.Nutrition  `json:"total"`
	Average   models.Nutrition  `json:"average"`
	Goal      *models.Nutrition `json:"goal,omitempty"`
	Progress  *GoalProgress     `json:"progress,omitempty"`
	Days      []DayNutrition    `json:"daily_stats"`
}

// DayBounds returns [midnight, next midnight) in loc for the calendar date
// carried by date's own year, month and day. date is read as a calendar date,
// not an instant: it is not converted to loc first, so callers holding an
// instant must pass date.In(loc).
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	year, month, day := date.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	end := time.Date(year, month, day+1, 0, 0, 0, 0, loc)
	return start, end
}

func ComputeDailyStats(meals []models.Meal, date time.Time, loc *time.Location, goal *models.Nutrition) DailyStats {
	start, end := DayBounds(date, loc)

	stats := DailyStats{
		Date:       start.Format(dateLayout),
		ByMealType: make(map[models.MealType]MealTypeBreakdown),
	}

	for _, meal := range meals {
		if meal.MealTime.Before(start) || !meal.MealTime.Before(end) {
			continue
		}
		stats.Total = stats.Total.Add(meal.NutritionTotals)
		stats.MealCount++

		breakdown := stats.ByMealType[meal.MealType]
		breakdown.Count++
		breakdown.Nutrition = breakdown.Nutrition.Add(meal.NutritionTotals)
		stats.ByMealType[meal.MealType] = breakdown
	}

	stats.MacroPercentages = ComputeMacroPercentages(stats.Total)
	if goal != nil {
		stats.Goal = goal
		progress := Progress(stats.Total, *goal)
		stats.Progress = &progress
	}
	return stats
}

// ComputeWeeklyStats emits one entry per calendar day in [start, endInclusive],
// zero-valued for days without meals. The average divides by the number of
// days in the range, not the number of days with meals.
func ComputeWeeklyStats(meals []models.Meal, start, endInclusive time.Time, loc *time.Location, goal *models.Nutrition) (WeeklyStats, error) {
	if loc == nil {
		loc = time.UTC
	}
	firstDay, _ := DayBounds(start, loc)
	lastDay, _ := DayBounds(endInclusive, loc)
	if lastDay.Before(firstDay) {
		return WeeklyStats{}, ErrInvalidRange
	}
	if RangeDays(firstDay, lastDay) > MaxRangeDays {
		return WeeklyStats{}, ErrRangeTooLong
	}

	byDate := make(map[string][]models.Meal)
	for _, meal := range meals {
		key := meal.MealTime.In(loc).Format(dateLayout)
		byDate[key] = append(byDate[key], meal)
	}

	year, month, day := firstDay.Date()
	stats := WeeklyStats{
		StartDate: firstDay.Format(dateLayout),
		EndDate:   lastDay.Format(dateLayout),
	}
	for offset := 0; ; offset++ {
		current := time.Date(year, month, day+offset, 0, 0, 0, 0, loc)
		if current.After(lastDay) {
			break
		}
		key := current.Format(dateLayout)

		entry := DayNutrition{Date: key}
		for _, meal := range byDate[key] {
			entry.Nutrition = entry.Nutrition.Add(meal.NutritionTotals)
			entry.MealCount++
		}
		stats.Days = append(stats.Days, entry)
		stats.Total = stats.Total.Add(entry.Nutrition)
	}

	stats.Average = stats.Total.Divide(float64(len(stats.Days)))
	if goal != nil {
		stats.Goal = goal
		progress := Progress(stats.Average, *goal)
		stats.Progress = &progress
	}
	return stats, nil
}

// RangeDays counts the calendar days from first through last inclusive.
func RangeDays(first, last time.Time) int {
	firstYear, firstMonth, firstDay := first.Date()
	lastYear, lastMonth, lastDay := last.Date()
	start := time.Date(firstYear, firstMonth, firstDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(lastYear, lastMonth, lastDay, 0, 0, 0, 0, time.UTC)
	return int((end.Unix()-start.Unix())/(24*60*60)) + 1
}

func ComputeMacroPercentages(total models.Nutrition) MacroPercentages {
	if !(total.Calories > 0) {
		return MacroPercentages{}
	}
	return MacroPercentages{
		Protein: total.Protein * 4 / total.Calories * 100,
		Carbs:   total.Carbs * 4 / total.Calories * 100,
		Fat:     total.Fat * 9 / total.Calories * 100,
	}
}
