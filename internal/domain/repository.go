package domain

import (
	"context"
	"time"
)

// ContentGateway defines the interface to the external generative content
// provider. All three calls are request/response, fail closed, and return
// schema-validated data; the rest of the system assumes well-formed results.
type ContentGateway interface {
	GeneratePlan(ctx context.Context, req *PlanRequest) (*NutritionPlanResponse, error)
	GenerateAlternativeMeal(ctx context.Context, req *AlternativeMealRequest) (*MealItem, error)
	AnalyzeFood(ctx context.Context, description string, imageBytes []byte) (*FoodAnalysis, error)
}

// KeyValueStore is the injected persistence boundary for session state and
// favorites. Values survive within the store's TTL.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FoodLogRepository persists food log entries.
type FoodLogRepository interface {
	Save(ctx context.Context, entry *FoodLogEntry) error
	List(ctx context.Context, dayNumber int) ([]FoodLogEntry, error)
	Delete(ctx context.Context, id string) error
}
