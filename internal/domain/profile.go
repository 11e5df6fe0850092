package domain

import "fmt"

// Sex is the biological sex category used to select the BMR formula branch.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ActivityLevel is one of five ordinal activity categories, each mapped to a
// fixed TDEE multiplier.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// ActivityMultipliers is the single source of truth for valid activity levels
// and their TDEE multipliers.
var ActivityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// Goal is the calorie-target goal. Surplus/bulking is deliberately unsupported.
type Goal string

const (
	GoalMaintenance Goal = "maintenance"
	GoalDeficit     Goal = "deficit"
)

// UserProfile carries the biometrics and preferences a plan is generated
// from. The Calculated* fields are derived once per submission; nil means
// "not yet computed".
type UserProfile struct {
	Age               int           `json:"age" binding:"required"`
	Sex               Sex           `json:"sex" binding:"required"`
	HeightCM          float64       `json:"heightCm" binding:"required"`
	WeightKG          float64       `json:"weightKg" binding:"required"`
	ActivityLevel     ActivityLevel `json:"activityLevel" binding:"required"`
	DietaryPreference string        `json:"dietaryPreference,omitempty"`
	Allergies         []string      `json:"allergies,omitempty"`
	MealsPerDay       int           `json:"mealsPerDay"`
	IncludeSnacks     bool          `json:"includeSnacks"`
	SnackCount        int           `json:"snackCount,omitempty"`
	Cuisine           string        `json:"cuisine,omitempty"`
	DurationDays      int           `json:"durationDays"`
	Goal              Goal          `json:"goal" binding:"required"`

	CalculatedBMR  *float64 `json:"calculatedBmr,omitempty"`
	CalculatedTDEE *int     `json:"calculatedTdee,omitempty"`
	TargetCalories *int     `json:"targetCalories,omitempty"`
}

// validDurations are the plan lengths a user may request. 30 is approximated
// downstream as four 7-day weeks (28 generated days).
var validDurations = map[int]bool{1: true, 3: true, 5: true, 7: true, 30: true}

// Validate checks all field ranges and enum memberships. Out-of-range input
// is rejected here, before the energy model or any gateway call.
func (p *UserProfile) Validate() error {
	if p.Age < 15 || p.Age > 100 {
		return fmt.Errorf("%w: age must be 15-100, got %d", ErrInvalidProfile, p.Age)
	}
	switch p.Sex {
	case SexMale, SexFemale, SexOther:
	default:
		return fmt.Errorf("%w: unknown sex category %q", ErrInvalidProfile, p.Sex)
	}
	if p.HeightCM < 100 || p.HeightCM > 250 {
		return fmt.Errorf("%w: height must be 100-250 cm, got %g", ErrInvalidProfile, p.HeightCM)
	}
	if p.WeightKG < 30 || p.WeightKG > 300 {
		return fmt.Errorf("%w: weight must be 30-300 kg, got %g", ErrInvalidProfile, p.WeightKG)
	}
	if _, ok := ActivityMultipliers[p.ActivityLevel]; !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, p.ActivityLevel)
	}
	if p.MealsPerDay < 2 || p.MealsPerDay > 4 {
		return fmt.Errorf("%w: meals per day must be 2-4, got %d", ErrInvalidProfile, p.MealsPerDay)
	}
	if p.IncludeSnacks && (p.SnackCount < 1 || p.SnackCount > 3) {
		return fmt.Errorf("%w: snack count must be 1-3, got %d", ErrInvalidProfile, p.SnackCount)
	}
	if !validDurations[p.DurationDays] {
		return fmt.Errorf("%w: duration must be one of 1, 3, 5, 7, 30 days, got %d", ErrInvalidProfile, p.DurationDays)
	}
	switch p.Goal {
	case GoalMaintenance, GoalDeficit:
	default:
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, p.Goal)
	}
	return nil
}
