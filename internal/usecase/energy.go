package usecase

import (
	"fmt"
	"math"

	"github.com/nutriplan/backend/internal/domain"
)

// Deficit policy constants. The floor guarantees a deficit target never drops
// below 1200 kcal and never undercuts BMR without an explicit bound.
const (
	deficitKcal       = 500
	minimumSafeKcal   = 1200
	floorTDEEFraction = 0.85
)

// EnergyTargets is the output of the energy model: BMR stays a real number
// until displayed, TDEE and the target are rounded at computation.
type EnergyTargets struct {
	BMR            float64 `json:"bmr"`
	TDEE           int     `json:"tdee"`
	TargetCalories int     `json:"targetCalories"`
}

// ComputeEnergyTargets derives BMR (Mifflin-St Jeor), TDEE, and a
// safety-bounded calorie target from the profile. Pure function of the
// profile's biometric and categorical fields; profiles reaching this point
// are assumed range-validated.
func ComputeEnergyTargets(profile *domain.UserProfile) (EnergyTargets, error) {
	multiplier, ok := domain.ActivityMultipliers[profile.ActivityLevel]
	if !ok {
		return EnergyTargets{}, fmt.Errorf("%w: unknown activity level %q", domain.ErrInvalidProfile, profile.ActivityLevel)
	}

	// Mifflin-St Jeor: male gets +5, female and other share the -161 offset
	bmr := 10*profile.WeightKG + 6.25*profile.HeightCM - 5*float64(profile.Age)
	if profile.Sex == domain.SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := int(math.Round(bmr * multiplier))

	target := tdee
	if profile.Goal == domain.GoalDeficit {
		candidate := tdee - deficitKcal
		if float64(candidate) > bmr {
			target = candidate
		} else {
			// Candidate would dip at or below BMR: fall back to a capped
			// fraction of TDEE instead.
			target = int(math.Round(float64(tdee) * floorTDEEFraction))
		}
		// The safe minimum applies to every deficit target, whichever
		// branch produced it.
		if target < minimumSafeKcal {
			target = minimumSafeKcal
		}
	}

	return EnergyTargets{BMR: bmr, TDEE: tdee, TargetCalories: target}, nil
}

// AttachEnergyTargets computes the energy targets and populates the derived
// fields on the profile, so every downstream gateway request carries them.
func AttachEnergyTargets(profile *domain.UserProfile) error {
	targets, err := ComputeEnergyTargets(profile)
	if err != nil {
		return err
	}
	profile.CalculatedBMR = &targets.BMR
	profile.CalculatedTDEE = &targets.TDEE
	profile.TargetCalories = &targets.TargetCalories
	return nil
}
