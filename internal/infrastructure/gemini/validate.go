package gemini

import (
	"fmt"
	"math"
	"strings"

	"github.com/nutriplan/backend/internal/domain"
)

// swapCalorieTolerance is the allowed relative calorie drift for a
// replacement meal.
const swapCalorieTolerance = 0.10

// validatePlan checks a decoded plan against the response schema: the exact
// requested day count, sequential "Day N" labels, and well-formed items
// throughout. Downstream components (aggregator, session) assume data that
// passed here unconditionally.
func validatePlan(plan *domain.NutritionPlanResponse, wantDays int) error {
	if plan == nil || len(plan.Days) == 0 {
		return fmt.Errorf("%w: plan has no days", domain.ErrMalformedResponse)
	}
	if len(plan.Days) != wantDays {
		return fmt.Errorf("%w: expected %d days, got %d", domain.ErrMalformedResponse, wantDays, len(plan.Days))
	}

	for i, day := range plan.Days {
		wantLabel := fmt.Sprintf("Day %d", i+1)
		if !strings.EqualFold(strings.TrimSpace(day.Day), wantLabel) {
			return fmt.Errorf("%w: day %d labeled %q, want %q", domain.ErrMalformedResponse, i, day.Day, wantLabel)
		}
		if len(day.Meals) == 0 {
			return fmt.Errorf("%w: %s has no meals", domain.ErrMalformedResponse, wantLabel)
		}
		for _, group := range day.Meals {
			if strings.TrimSpace(group.Type) == "" {
				return fmt.Errorf("%w: %s has a meal group without a type", domain.ErrMalformedResponse, wantLabel)
			}
			if len(group.Items) == 0 {
				return fmt.Errorf("%w: %s %s has no items", domain.ErrMalformedResponse, wantLabel, group.Type)
			}
			for _, item := range group.Items {
				if err := validateItem(&item); err != nil {
					return fmt.Errorf("%w in %s %s", err, wantLabel, group.Type)
				}
			}
		}
	}
	return nil
}

// validateAlternative checks a decoded replacement item: well-formed, a
// distinctly different dish name, calories within tolerance of the current
// item.
func validateAlternative(item, current *domain.MealItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(item.Name), strings.TrimSpace(current.Name)) {
		return fmt.Errorf("%w: replacement names the same dish %q", domain.ErrMalformedResponse, item.Name)
	}
	if current.Calories > 0 {
		drift := math.Abs(item.Calories-current.Calories) / current.Calories
		if drift > swapCalorieTolerance {
			return fmt.Errorf("%w: replacement calories %.0f outside ±10%% of %.0f",
				domain.ErrMalformedResponse, item.Calories, current.Calories)
		}
	}
	return nil
}

// validateAnalysis checks a decoded food analysis result.
func validateAnalysis(analysis *domain.FoodAnalysis) error {
	if strings.TrimSpace(analysis.Name) == "" {
		return fmt.Errorf("%w: analysis has no name", domain.ErrMalformedResponse)
	}
	if analysis.Calories < 0 {
		return fmt.Errorf("%w: negative calories", domain.ErrMalformedResponse)
	}
	if analysis.Macros.Protein < 0 || analysis.Macros.Carbs < 0 || analysis.Macros.Fats < 0 {
		return fmt.Errorf("%w: negative macro value", domain.ErrMalformedResponse)
	}
	return nil
}

func validateItem(item *domain.MealItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: meal item has no name", domain.ErrMalformedResponse)
	}
	if item.Calories < 0 {
		return fmt.Errorf("%w: meal item %q has negative calories", domain.ErrMalformedResponse, item.Name)
	}
	if item.Macros.Protein < 0 || item.Macros.Carbs < 0 || item.Macros.Fats < 0 {
		return fmt.Errorf("%w: meal item %q has a negative macro value", domain.ErrMalformedResponse, item.Name)
	}
	return nil
}
