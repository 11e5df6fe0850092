package usecase

import (
	"errors"
	"testing"

	"github.com/nutriplan/backend/internal/domain"
)

func baseProfile() *domain.UserProfile {
	return &domain.UserProfile{
		Age:           30,
		Sex:           domain.SexFemale,
		HeightCM:      170,
		WeightKG:      70,
		ActivityLevel: domain.ActivityModerate,
		MealsPerDay:   3,
		DurationDays:  7,
		Goal:          domain.GoalMaintenance,
	}
}

func TestComputeEnergyTargets(t *testing.T) {
	t.Run("moderate female maintenance", func(t *testing.T) {
		// 10*70 + 6.25*170 - 5*30 - 161 = 1451.5
		targets, err := ComputeEnergyTargets(baseProfile())
		if err != nil {
			t.Fatalf("ComputeEnergyTargets() error = %v", err)
		}
		if targets.BMR != 1451.5 {
			t.Errorf("BMR = %v, want 1451.5", targets.BMR)
		}
		if targets.TDEE != 2250 {
			t.Errorf("TDEE = %d, want 2250", targets.TDEE)
		}
		if targets.TargetCalories != 2250 {
			t.Errorf("TargetCalories = %d, want 2250", targets.TargetCalories)
		}
	})

	t.Run("deficit above BMR uses tdee minus 500", func(t *testing.T) {
		profile := baseProfile()
		profile.Goal = domain.GoalDeficit

		targets, err := ComputeEnergyTargets(profile)
		if err != nil {
			t.Fatalf("ComputeEnergyTargets() error = %v", err)
		}
		if targets.TargetCalories != 1750 {
			t.Errorf("TargetCalories = %d, want 1750", targets.TargetCalories)
		}
	})

	t.Run("deficit at or below BMR applies safety floor", func(t *testing.T) {
		// Small sedentary profile: BMR = 10*40 + 6.25*145 - 5*70 - 161 =
		// 795.25, TDEE = round(795.25*1.2) = 954, candidate = 454 <= BMR,
		// floor = max(1200, round(954*0.85)=811) = 1200.
		profile := &domain.UserProfile{
			Age:           70,
			Sex:           domain.SexFemale,
			HeightCM:      145,
			WeightKG:      40,
			ActivityLevel: domain.ActivitySedentary,
			MealsPerDay:   3,
			DurationDays:  7,
			Goal:          domain.GoalDeficit,
		}

		targets, err := ComputeEnergyTargets(profile)
		if err != nil {
			t.Fatalf("ComputeEnergyTargets() error = %v", err)
		}
		if targets.TargetCalories != 1200 {
			t.Errorf("TargetCalories = %d, want 1200 (safety floor)", targets.TargetCalories)
		}
	})

	t.Run("deficit candidate above BMR still clamped to floor", func(t *testing.T) {
		// BMR = 10*30 + 6.25*170 - 5*100 - 161 = 701.5, TDEE =
		// round(701.5*1.725) = 1210, candidate = 710 clears BMR but not
		// the safe minimum.
		profile := &domain.UserProfile{
			Age:           100,
			Sex:           domain.SexFemale,
			HeightCM:      170,
			WeightKG:      30,
			ActivityLevel: domain.ActivityActive,
			MealsPerDay:   3,
			DurationDays:  7,
			Goal:          domain.GoalDeficit,
		}

		targets, err := ComputeEnergyTargets(profile)
		if err != nil {
			t.Fatalf("ComputeEnergyTargets() error = %v", err)
		}
		if targets.TargetCalories != 1200 {
			t.Errorf("TargetCalories = %d, want 1200 (safety floor)", targets.TargetCalories)
		}
	})

	t.Run("male offset", func(t *testing.T) {
		profile := baseProfile()
		profile.Sex = domain.SexMale

		targets, err := ComputeEnergyTargets(profile)
		if err != nil {
			t.Fatalf("ComputeEnergyTargets() error = %v", err)
		}
		// 1451.5 + 161 + 5 = 1617.5
		if targets.BMR != 1617.5 {
			t.Errorf("BMR = %v, want 1617.5", targets.BMR)
		}
	})

	t.Run("other shares the female offset", func(t *testing.T) {
		female := baseProfile()
		other := baseProfile()
		other.Sex = domain.SexOther

		ft, err := ComputeEnergyTargets(female)
		if err != nil {
			t.Fatalf("ComputeEnergyTargets() error = %v", err)
		}
		ot, err := ComputeEnergyTargets(other)
		if err != nil {
			t.Fatalf("ComputeEnergyTargets() error = %v", err)
		}
		if ft != ot {
			t.Errorf("other targets = %+v, want same as female %+v", ot, ft)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		profile := baseProfile()
		first, err := ComputeEnergyTargets(profile)
		if err != nil {
			t.Fatalf("ComputeEnergyTargets() error = %v", err)
		}
		for i := 0; i < 10; i++ {
			again, err := ComputeEnergyTargets(profile)
			if err != nil {
				t.Fatalf("ComputeEnergyTargets() error = %v", err)
			}
			if again != first {
				t.Fatalf("run %d = %+v, want %+v", i, again, first)
			}
		}
	})

	t.Run("unknown activity level rejected", func(t *testing.T) {
		profile := baseProfile()
		profile.ActivityLevel = "extreme"

		_, err := ComputeEnergyTargets(profile)
		if !errors.Is(err, domain.ErrInvalidProfile) {
			t.Errorf("error = %v, want ErrInvalidProfile", err)
		}
	})
}

func TestDeficitFloorInvariant(t *testing.T) {
	// Across a sweep of valid biometrics, a deficit target never drops
	// below 1200 kcal and never lands at or below BMR unless floored.
	for _, sex := range []domain.Sex{domain.SexMale, domain.SexFemale, domain.SexOther} {
		for _, level := range []domain.ActivityLevel{
			domain.ActivitySedentary, domain.ActivityLight, domain.ActivityModerate,
			domain.ActivityActive, domain.ActivityVeryActive,
		} {
			for age := 15; age <= 100; age += 17 {
				for weight := 30.0; weight <= 300; weight += 54 {
					profile := &domain.UserProfile{
						Age:           age,
						Sex:           sex,
						HeightCM:      170,
						WeightKG:      weight,
						ActivityLevel: level,
						MealsPerDay:   3,
						DurationDays:  7,
						Goal:          domain.GoalDeficit,
					}
					targets, err := ComputeEnergyTargets(profile)
					if err != nil {
						t.Fatalf("ComputeEnergyTargets(%+v) error = %v", profile, err)
					}
					if targets.TargetCalories < 1200 {
						t.Errorf("target %d < 1200 for %s/%s age=%d weight=%g",
							targets.TargetCalories, sex, level, age, weight)
					}
					if candidate := targets.TDEE - 500; float64(candidate) > targets.BMR && candidate >= 1200 && targets.TargetCalories != candidate {
						t.Errorf("target %d, want candidate %d for %s/%s age=%d weight=%g",
							targets.TargetCalories, candidate, sex, level, age, weight)
					}
				}
			}
		}
	}
}

func TestAttachEnergyTargets(t *testing.T) {
	profile := baseProfile()

	if err := AttachEnergyTargets(profile); err != nil {
		t.Fatalf("AttachEnergyTargets() error = %v", err)
	}

	if profile.CalculatedBMR == nil || *profile.CalculatedBMR != 1451.5 {
		t.Errorf("CalculatedBMR = %v, want 1451.5", profile.CalculatedBMR)
	}
	if profile.CalculatedTDEE == nil || *profile.CalculatedTDEE != 2250 {
		t.Errorf("CalculatedTDEE = %v, want 2250", profile.CalculatedTDEE)
	}
	if profile.TargetCalories == nil || *profile.TargetCalories != 2250 {
		t.Errorf("TargetCalories = %v, want 2250", profile.TargetCalories)
	}
}
