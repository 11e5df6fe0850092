package domain

// MacroNutrients holds macro totals in grams. The 4/4/9 kcal-per-gram energy
// equivalence is a display convention, not enforced on input.
type MacroNutrients struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// MealItem is a single dish inside a meal group. Items are created by the
// content gateway and only ever replaced wholesale, never partially mutated.
type MealItem struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Calories     float64        `json:"calories"`
	Macros       MacroNutrients `json:"macros"`
	RecipeTip    string         `json:"recipeTip,omitempty"`
	Ingredients  []string       `json:"ingredients,omitempty"`
	Instructions []string       `json:"instructions,omitempty"`
}

// MealGroup groups items under a semantic label (Breakfast, Lunch, Snack 1).
// A day may carry multiple groups of the same type.
type MealGroup struct {
	Type  string     `json:"type"`
	Items []MealItem `json:"items"`
}

// DayPlan is one day of a plan. TotalCalories and DailyMacros must always
// equal the rounded sums over all items; the aggregator restores this after
// every structural change.
type DayPlan struct {
	Day           string         `json:"day"`
	Meals         []MealGroup    `json:"meals"`
	TotalCalories int            `json:"totalCalories"`
	DailyMacros   MacroNutrients `json:"dailyMacros"`
}

// ShoppingCategory is one section of the consolidated shopping list.
type ShoppingCategory struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// NutritionPlanResponse is the full generated plan. The session controller
// exclusively owns the current instance; regeneration replaces it wholesale.
type NutritionPlanResponse struct {
	SafeCalorieRange string             `json:"safeCalorieRange"`
	Summary          string             `json:"summary"`
	Days             []DayPlan          `json:"days"`
	ShoppingList     []ShoppingCategory `json:"shoppingList"`
}

// SwapRequest identifies the meal item slot being replaced and carries the
// item currently occupying it.
type SwapRequest struct {
	DayIndex   int      `json:"dayIndex"`
	GroupIndex int      `json:"groupIndex"`
	ItemIndex  int      `json:"itemIndex"`
	Current    MealItem `json:"current"`
	MealType   string   `json:"mealType"`
}

// PlanRequest is what the content gateway receives for a full generation:
// the profile with derived energy fields attached plus the resolved day count.
type PlanRequest struct {
	Profile UserProfile
	Days    int
}

// AlternativeMealRequest asks the gateway for a single replacement item
// constrained to the original profile's diet/cuisine/allergy settings.
type AlternativeMealRequest struct {
	Profile  UserProfile
	Current  MealItem
	MealType string
}

// Clone returns a deep copy of the day. Meal items hold slices, so a shallow
// struct copy would still share ingredient/instruction backing arrays.
func (d DayPlan) Clone() DayPlan {
	out := d
	out.Meals = make([]MealGroup, len(d.Meals))
	for i, g := range d.Meals {
		ng := g
		ng.Items = make([]MealItem, len(g.Items))
		for j, it := range g.Items {
			ni := it
			ni.Ingredients = append([]string(nil), it.Ingredients...)
			ni.Instructions = append([]string(nil), it.Instructions...)
			ng.Items[j] = ni
		}
		out.Meals[i] = ng
	}
	return out
}
