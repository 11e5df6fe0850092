package gemini

import (
	"fmt"
	"strings"

	"github.com/nutriplan/backend/internal/domain"
)

// buildPlanPrompt renders the full-plan prompt from the profile and the
// resolved day count. The day count has already been through the duration
// mapping policy; this prompt always asks for exactly req.Days days labeled
// "Day 1".."Day N".
func buildPlanPrompt(req *domain.PlanRequest) string {
	p := req.Profile
	var b strings.Builder

	b.WriteString("You are a professional nutritionist. Create a complete meal plan as a single JSON object.\n\n")

	b.WriteString("USER PROFILE:\n")
	b.WriteString(fmt.Sprintf("- Age: %d years\n", p.Age))
	b.WriteString(fmt.Sprintf("- Sex: %s\n", p.Sex))
	b.WriteString(fmt.Sprintf("- Height: %g cm\n", p.HeightCM))
	b.WriteString(fmt.Sprintf("- Weight: %g kg\n", p.WeightKG))
	b.WriteString(fmt.Sprintf("- Activity level: %s\n", p.ActivityLevel))
	b.WriteString(fmt.Sprintf("- Goal: %s\n", p.Goal))
	if p.CalculatedBMR != nil {
		b.WriteString(fmt.Sprintf("- BMR: %.1f kcal\n", *p.CalculatedBMR))
	}
	if p.CalculatedTDEE != nil {
		b.WriteString(fmt.Sprintf("- TDEE: %d kcal\n", *p.CalculatedTDEE))
	}
	if p.TargetCalories != nil {
		b.WriteString(fmt.Sprintf("- Daily calorie target: %d kcal\n", *p.TargetCalories))
	}
	if p.DietaryPreference != "" {
		b.WriteString(fmt.Sprintf("- Dietary preference: %s\n", p.DietaryPreference))
	}
	if len(p.Allergies) > 0 {
		b.WriteString(fmt.Sprintf("- Allergies (strictly avoid): %s\n", strings.Join(p.Allergies, ", ")))
	}
	if p.Cuisine != "" {
		b.WriteString(fmt.Sprintf("- Preferred cuisine: %s\n", p.Cuisine))
	}

	b.WriteString("\nPLAN REQUIREMENTS:\n")
	b.WriteString(fmt.Sprintf("- Exactly %d days, labeled sequentially \"Day 1\" through \"Day %d\".\n", req.Days, req.Days))
	b.WriteString(fmt.Sprintf("- %d main meals per day", p.MealsPerDay))
	if p.IncludeSnacks {
		b.WriteString(fmt.Sprintf(" plus %d snack(s), labeled \"Snack 1\", \"Snack 2\", ...", p.SnackCount))
	}
	b.WriteString(".\n")
	b.WriteString("- Each day's total calories should be close to the daily calorie target.\n")
	b.WriteString("- Every ingredient line must carry an explicit quantity.\n")
	b.WriteString("- Include a consolidated shopping list grouped by category.\n")

	b.WriteString("\nRespond with ONLY a JSON object, no markdown, matching exactly this shape:\n")
	b.WriteString(planSchemaExample)

	return b.String()
}

// buildAlternativePrompt renders the single-replacement prompt. The
// replacement must be a distinctly different dish within ±10% of the
// current item's calories, honoring the same profile constraints.
func buildAlternativePrompt(req *domain.AlternativeMealRequest) string {
	p := req.Profile
	var b strings.Builder

	b.WriteString("You are a professional nutritionist. Suggest ONE alternative dish for a meal plan as a single JSON object.\n\n")

	b.WriteString("MEAL BEING REPLACED:\n")
	b.WriteString(fmt.Sprintf("- Meal type: %s\n", req.MealType))
	b.WriteString(fmt.Sprintf("- Current dish: %s\n", req.Current.Name))
	b.WriteString(fmt.Sprintf("- Current calories: %.0f kcal\n", req.Current.Calories))

	b.WriteString("\nCONSTRAINTS:\n")
	b.WriteString(fmt.Sprintf("- The new dish must be clearly different from %q.\n", req.Current.Name))
	b.WriteString(fmt.Sprintf("- Calories must stay within 10%% of %.0f kcal.\n", req.Current.Calories))
	if p.DietaryPreference != "" {
		b.WriteString(fmt.Sprintf("- Dietary preference: %s\n", p.DietaryPreference))
	}
	if len(p.Allergies) > 0 {
		b.WriteString(fmt.Sprintf("- Allergies (strictly avoid): %s\n", strings.Join(p.Allergies, ", ")))
	}
	if p.Cuisine != "" {
		b.WriteString(fmt.Sprintf("- Preferred cuisine: %s\n", p.Cuisine))
	}

	b.WriteString("\nRespond with ONLY a JSON object, no markdown, matching exactly this shape:\n")
	b.WriteString(mealItemSchemaExample)

	return b.String()
}

// buildAnalysisPrompt renders the food-analysis prompt; when an image is
// attached, it rides alongside as an inline data part.
func buildAnalysisPrompt(description string) string {
	var b strings.Builder

	b.WriteString("You are a nutrition analyst. Estimate the nutritional content of the meal ")
	if strings.TrimSpace(description) != "" {
		b.WriteString(fmt.Sprintf("described as: %q", strings.TrimSpace(description)))
		b.WriteString(". If an image is attached, use it to refine the estimate.\n")
	} else {
		b.WriteString("shown in the attached image.\n")
	}

	b.WriteString("\nRespond with ONLY a JSON object, no markdown, matching exactly this shape:\n")
	b.WriteString(analysisSchemaExample)

	return b.String()
}

const planSchemaExample = `{
  "safeCalorieRange": "1400-1800 kcal",
  "summary": "one paragraph describing the plan",
  "days": [
    {
      "day": "Day 1",
      "meals": [
        {
          "type": "Breakfast",
          "items": [
            {
              "name": "dish name",
              "description": "short description",
              "calories": 400,
              "macros": {"protein": 20, "carbs": 40, "fats": 10},
              "recipeTip": "optional tip",
              "ingredients": ["200 g oats", "250 ml milk"],
              "instructions": ["step one", "step two"]
            }
          ]
        }
      ],
      "totalCalories": 2000,
      "dailyMacros": {"protein": 100, "carbs": 220, "fats": 60}
    }
  ],
  "shoppingList": [
    {"category": "Produce", "items": ["6 bananas", "500 g spinach"]}
  ]
}`

const mealItemSchemaExample = `{
  "name": "dish name",
  "description": "short description",
  "calories": 400,
  "macros": {"protein": 20, "carbs": 40, "fats": 10},
  "recipeTip": "optional tip",
  "ingredients": ["200 g oats", "250 ml milk"],
  "instructions": ["step one", "step two"]
}`

const analysisSchemaExample = `{
  "name": "meal name",
  "calories": 520,
  "macros": {"protein": 30, "carbs": 45, "fats": 22}
}`
