package usecase

import (
	"math"

	"github.com/nutriplan/backend/internal/domain"
)

// RecomputeDayTotals returns a copy of the day with TotalCalories and
// DailyMacros overwritten by sums over every item in every meal group.
// Accumulation happens in float64 and each total is rounded once at the end,
// so per-item rounding error never compounds. Meal items are not touched.
// Idempotent: recomputing an already-consistent day is a no-op.
func RecomputeDayTotals(day domain.DayPlan) domain.DayPlan {
	var calories, protein, carbs, fats float64

	for _, group := range day.Meals {
		for _, item := range group.Items {
			calories += item.Calories
			protein += item.Macros.Protein
			carbs += item.Macros.Carbs
			fats += item.Macros.Fats
		}
	}

	out := day
	out.TotalCalories = int(math.Round(calories))
	out.DailyMacros = domain.MacroNutrients{
		Protein: math.Round(protein),
		Carbs:   math.Round(carbs),
		Fats:    math.Round(fats),
	}
	return out
}

// NormalizePlanTotals recomputes every day's aggregates in place on a freshly
// generated plan, so a gateway response whose stated totals drift from its
// item sums is corrected before the plan is ever committed.
func NormalizePlanTotals(plan *domain.NutritionPlanResponse) {
	for i := range plan.Days {
		plan.Days[i] = RecomputeDayTotals(plan.Days[i])
	}
}
