package domain

import "time"

// FoodAnalysis is the reduced schema returned by AI food analysis from a
// description and/or photo.
type FoodAnalysis struct {
	Name     string         `json:"name"`
	Calories float64        `json:"calories"`
	Macros   MacroNutrients `json:"macros"`
}

// FoodLogEntry is an immutable logged meal, independent of the plan. Entries
// are created by user action (manual or AI-assisted) and deleted by id.
type FoodLogEntry struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Calories  float64        `json:"calories"`
	Macros    MacroNutrients `json:"macros"`
	Timestamp time.Time      `json:"timestamp"`
	DayNumber int            `json:"dayNumber"`
}

// FavoriteMeal is a saved snapshot of a meal item the user liked.
type FavoriteMeal struct {
	ID      string    `json:"id"`
	Item    MealItem  `json:"item"`
	SavedAt time.Time `json:"savedAt"`
}
