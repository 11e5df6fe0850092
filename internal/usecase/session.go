package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutriplan/backend/internal/domain"
)

// SessionState is the lifecycle state of the plan session.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateGenerating SessionState = "generating"
	StateReady      SessionState = "ready"
	StateFailed     SessionState = "failed"
)

// Day counts used by the duration-mapping policy: a 30-day request is
// approximated as four synthetic 7-day weeks.
const (
	maxExactDays = 7
	extendedDays = 28
	sessionKey   = "session:current"
	sessionTTL   = 30 * 24 * time.Hour
)

// sessionSnapshot is the persisted shape of the session, checkpointed to the
// key-value store after every commit so a restarted process can restore it.
type sessionSnapshot struct {
	Profile *domain.UserProfile           `json:"profile"`
	Plan    *domain.NutritionPlanResponse `json:"plan"`
	Version string                        `json:"version"`
}

// PlanSessionConfig holds configuration for the plan session.
type PlanSessionConfig struct {
	// SnapshotTTL bounds how long a checkpointed session survives in the
	// store. Zero means the 30-day default.
	SnapshotTTL time.Duration
}

// PlanSession owns the current profile and plan. It is the only component
// allowed to mutate the plan; every mutation is copy-then-replace under the
// write mutex, so rollback on failure is just "don't commit". Swap requests
// may run concurrently; each commit re-checks the generation token so results
// for a plan that was reset or regenerated mid-flight are discarded.
type PlanSession struct {
	gateway domain.ContentGateway
	store   domain.KeyValueStore
	ttl     time.Duration

	mu      sync.Mutex
	state   SessionState
	profile *domain.UserProfile
	plan    *domain.NutritionPlanResponse
	version string
}

// NewPlanSession creates a plan session in the Idle state.
func NewPlanSession(gateway domain.ContentGateway, store domain.KeyValueStore, config PlanSessionConfig) *PlanSession {
	ttl := config.SnapshotTTL
	if ttl == 0 {
		ttl = sessionTTL
	}
	return &PlanSession{
		gateway: gateway,
		store:   store,
		ttl:     ttl,
		state:   StateIdle,
		version: uuid.New().String(),
	}
}

// State returns the current lifecycle state.
func (s *PlanSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentPlan returns the held plan and the profile it was generated from,
// or ErrNoActivePlan when the session is not Ready.
func (s *PlanSession) CurrentPlan() (*domain.NutritionPlanResponse, *domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.plan == nil {
		return nil, nil, domain.ErrNoActivePlan
	}
	return s.plan, s.profile, nil
}

// GeneratePlan validates the profile, derives energy targets, maps the
// requested duration to a day count, and asks the gateway for a full plan.
// On success the plan replaces any previous one and the session is Ready;
// on failure nothing is stored and the session lands in Failed.
func (s *PlanSession) GeneratePlan(ctx context.Context, profile *domain.UserProfile) (*domain.NutritionPlanResponse, error) {
	if profile == nil {
		return nil, domain.ErrInvalidRequest
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state = StateGenerating
	s.mu.Unlock()

	if err := AttachEnergyTargets(profile); err != nil {
		s.fail()
		return nil, err
	}

	days := profile.DurationDays
	if days > maxExactDays {
		days = extendedDays
	}

	plan, err := s.gateway.GeneratePlan(ctx, &domain.PlanRequest{Profile: *profile, Days: days})
	if err != nil {
		s.fail()
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	NormalizePlanTotals(plan)

	s.mu.Lock()
	s.profile = profile
	s.plan = plan
	s.state = StateReady
	s.version = uuid.New().String()
	s.mu.Unlock()

	s.checkpoint(ctx)
	return plan, nil
}

// SwapMeal replaces a single meal item with a gateway-generated alternative
// constrained to a different dish within ±10% of the current item's calories.
// The prior plan stays untouched until the replacement is validated; only the
// affected day is cloned before editing. A swap whose plan was reset or
// regenerated while the gateway call was in flight is discarded with
// ErrStaleOperation.
func (s *PlanSession) SwapMeal(ctx context.Context, req *domain.SwapRequest) (*domain.DayPlan, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}

	s.mu.Lock()
	if s.state != StateReady || s.plan == nil {
		s.mu.Unlock()
		return nil, domain.ErrNoActivePlan
	}
	if err := s.checkIndicesLocked(req); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	profile := *s.profile
	version := s.version
	s.mu.Unlock()

	replacement, err := s.gateway.GenerateAlternativeMeal(ctx, &domain.AlternativeMealRequest{
		Profile:  profile,
		Current:  req.Current,
		MealType: req.MealType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSwapFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != version || s.state != StateReady {
		log.Printf("[Session] discarding stale swap for day=%d group=%d item=%d", req.DayIndex, req.GroupIndex, req.ItemIndex)
		return nil, domain.ErrStaleOperation
	}
	// Indices were valid against this same plan version before the call, but
	// another swap may have landed meanwhile; slot positions are stable under
	// item replacement, so only re-check bounds.
	if err := s.checkIndicesLocked(req); err != nil {
		return nil, err
	}

	day := s.plan.Days[req.DayIndex].Clone()
	day.Meals[req.GroupIndex].Items[req.ItemIndex] = *replacement
	day = RecomputeDayTotals(day)

	// Day-level copy-on-write: clone the days slice, reuse every other day.
	days := make([]domain.DayPlan, len(s.plan.Days))
	copy(days, s.plan.Days)
	days[req.DayIndex] = day

	next := *s.plan
	next.Days = days
	s.plan = &next

	committed := day
	s.checkpointLocked(ctx)
	return &committed, nil
}

// Reset clears the profile and plan from any state and returns to Idle.
func (s *PlanSession) Reset(ctx context.Context) {
	s.mu.Lock()
	s.profile = nil
	s.plan = nil
	s.state = StateIdle
	s.version = uuid.New().String()
	s.mu.Unlock()

	if err := s.store.Delete(ctx, sessionKey); err != nil {
		log.Printf("[Session] failed to clear checkpoint: %v", err)
	}
}

// Restore loads a checkpointed session from the store, if one exists.
// Called once at startup; a missing or undecodable snapshot is not an error.
func (s *PlanSession) Restore(ctx context.Context) bool {
	value, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return false
	}
	snapshot, ok := decodeSnapshot(value)
	if !ok || snapshot.Plan == nil || snapshot.Profile == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = snapshot.Profile
	s.plan = snapshot.Plan
	s.state = StateReady
	s.version = snapshot.Version
	return true
}

func (s *PlanSession) fail() {
	s.mu.Lock()
	s.state = StateFailed
	s.mu.Unlock()
}

// checkIndicesLocked validates the swap slot against the held plan.
// Caller must hold s.mu.
func (s *PlanSession) checkIndicesLocked(req *domain.SwapRequest) error {
	if req.DayIndex < 0 || req.DayIndex >= len(s.plan.Days) {
		return fmt.Errorf("%w: day index %d out of range", domain.ErrInvalidRequest, req.DayIndex)
	}
	day := s.plan.Days[req.DayIndex]
	if req.GroupIndex < 0 || req.GroupIndex >= len(day.Meals) {
		return fmt.Errorf("%w: group index %d out of range", domain.ErrInvalidRequest, req.GroupIndex)
	}
	if req.ItemIndex < 0 || req.ItemIndex >= len(day.Meals[req.GroupIndex].Items) {
		return fmt.Errorf("%w: item index %d out of range", domain.ErrInvalidRequest, req.ItemIndex)
	}
	return nil
}

func (s *PlanSession) checkpoint(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpointLocked(ctx)
}

// checkpointLocked persists the current session. Caller must hold s.mu.
// A checkpoint failure is logged, never surfaced: persistence is best-effort.
func (s *PlanSession) checkpointLocked(ctx context.Context) {
	snapshot := sessionSnapshot{Profile: s.profile, Plan: s.plan, Version: s.version}
	if err := s.store.Set(ctx, sessionKey, snapshot, s.ttl); err != nil {
		log.Printf("[Session] checkpoint failed: %v", err)
	}
}

// decodeSnapshot handles both a typed snapshot and the map form a JSON
// round-tripping store hands back.
func decodeSnapshot(value interface{}) (sessionSnapshot, bool) {
	if snapshot, ok := value.(sessionSnapshot); ok {
		return snapshot, true
	}
	raw, ok := value.(map[string]interface{})
	if !ok {
		return sessionSnapshot{}, false
	}
	snapshot := sessionSnapshot{}
	if v, ok := raw["version"].(string); ok {
		snapshot.Version = v
	}
	if v, ok := raw["profile"].(map[string]interface{}); ok {
		snapshot.Profile = mapToProfile(v)
	}
	if v, ok := raw["plan"].(map[string]interface{}); ok {
		snapshot.Plan = mapToPlan(v)
	}
	return snapshot, snapshot.Profile != nil && snapshot.Plan != nil
}

func mapToProfile(raw map[string]interface{}) *domain.UserProfile {
	p := &domain.UserProfile{}
	if v, ok := raw["age"].(float64); ok {
		p.Age = int(v)
	}
	if v, ok := raw["sex"].(string); ok {
		p.Sex = domain.Sex(v)
	}
	if v, ok := raw["heightCm"].(float64); ok {
		p.HeightCM = v
	}
	if v, ok := raw["weightKg"].(float64); ok {
		p.WeightKG = v
	}
	if v, ok := raw["activityLevel"].(string); ok {
		p.ActivityLevel = domain.ActivityLevel(v)
	}
	if v, ok := raw["dietaryPreference"].(string); ok {
		p.DietaryPreference = v
	}
	if v, ok := raw["allergies"].([]interface{}); ok {
		for _, a := range v {
			if s, ok := a.(string); ok {
				p.Allergies = append(p.Allergies, s)
			}
		}
	}
	if v, ok := raw["mealsPerDay"].(float64); ok {
		p.MealsPerDay = int(v)
	}
	if v, ok := raw["includeSnacks"].(bool); ok {
		p.IncludeSnacks = v
	}
	if v, ok := raw["snackCount"].(float64); ok {
		p.SnackCount = int(v)
	}
	if v, ok := raw["cuisine"].(string); ok {
		p.Cuisine = v
	}
	if v, ok := raw["durationDays"].(float64); ok {
		p.DurationDays = int(v)
	}
	if v, ok := raw["goal"].(string); ok {
		p.Goal = domain.Goal(v)
	}
	if v, ok := raw["calculatedBmr"].(float64); ok {
		p.CalculatedBMR = &v
	}
	if v, ok := raw["calculatedTdee"].(float64); ok {
		tdee := int(v)
		p.CalculatedTDEE = &tdee
	}
	if v, ok := raw["targetCalories"].(float64); ok {
		target := int(v)
		p.TargetCalories = &target
	}
	return p
}

func mapToPlan(raw map[string]interface{}) *domain.NutritionPlanResponse {
	plan := &domain.NutritionPlanResponse{}
	if v, ok := raw["safeCalorieRange"].(string); ok {
		plan.SafeCalorieRange = v
	}
	if v, ok := raw["summary"].(string); ok {
		plan.Summary = v
	}
	if days, ok := raw["days"].([]interface{}); ok {
		for _, d := range days {
			dm, ok := d.(map[string]interface{})
			if !ok {
				continue
			}
			plan.Days = append(plan.Days, mapToDay(dm))
		}
	}
	if cats, ok := raw["shoppingList"].([]interface{}); ok {
		for _, c := range cats {
			cm, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			category := domain.ShoppingCategory{}
			if v, ok := cm["category"].(string); ok {
				category.Category = v
			}
			if items, ok := cm["items"].([]interface{}); ok {
				for _, it := range items {
					if s, ok := it.(string); ok {
						category.Items = append(category.Items, s)
					}
				}
			}
			plan.ShoppingList = append(plan.ShoppingList, category)
		}
	}
	return plan
}

func mapToDay(raw map[string]interface{}) domain.DayPlan {
	day := domain.DayPlan{}
	if v, ok := raw["day"].(string); ok {
		day.Day = v
	}
	if v, ok := raw["totalCalories"].(float64); ok {
		day.TotalCalories = int(math.Round(v))
	}
	if v, ok := raw["dailyMacros"].(map[string]interface{}); ok {
		day.DailyMacros = mapToMacros(v)
	}
	if groups, ok := raw["meals"].([]interface{}); ok {
		for _, g := range groups {
			gm, ok := g.(map[string]interface{})
			if !ok {
				continue
			}
			group := domain.MealGroup{}
			if v, ok := gm["type"].(string); ok {
				group.Type = v
			}
			if items, ok := gm["items"].([]interface{}); ok {
				for _, it := range items {
					im, ok := it.(map[string]interface{})
					if !ok {
						continue
					}
					group.Items = append(group.Items, mapToMealItem(im))
				}
			}
			day.Meals = append(day.Meals, group)
		}
	}
	return day
}

func mapToMealItem(raw map[string]interface{}) domain.MealItem {
	item := domain.MealItem{}
	if v, ok := raw["name"].(string); ok {
		item.Name = v
	}
	if v, ok := raw["description"].(string); ok {
		item.Description = v
	}
	if v, ok := raw["calories"].(float64); ok {
		item.Calories = v
	}
	if v, ok := raw["macros"].(map[string]interface{}); ok {
		item.Macros = mapToMacros(v)
	}
	if v, ok := raw["recipeTip"].(string); ok {
		item.RecipeTip = v
	}
	if v, ok := raw["ingredients"].([]interface{}); ok {
		for _, ing := range v {
			if s, ok := ing.(string); ok {
				item.Ingredients = append(item.Ingredients, s)
			}
		}
	}
	if v, ok := raw["instructions"].([]interface{}); ok {
		for _, step := range v {
			if s, ok := step.(string); ok {
				item.Instructions = append(item.Instructions, s)
			}
		}
	}
	return item
}

func mapToMacros(raw map[string]interface{}) domain.MacroNutrients {
	m := domain.MacroNutrients{}
	if v, ok := raw["protein"].(float64); ok {
		m.Protein = v
	}
	if v, ok := raw["carbs"].(float64); ok {
		m.Carbs = v
	}
	if v, ok := raw["fats"].(float64); ok {
		m.Fats = v
	}
	return m
}
