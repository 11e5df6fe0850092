package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nutriplan/backend/internal/domain"
)

// FoodLogService records eaten meals, either entered manually or analyzed by
// the content gateway from a description and/or photo. Entries are immutable
// after creation and deleted by id.
type FoodLogService struct {
	repo    domain.FoodLogRepository
	gateway domain.ContentGateway
}

// NewFoodLogService creates a food log service.
func NewFoodLogService(repo domain.FoodLogRepository, gateway domain.ContentGateway) *FoodLogService {
	return &FoodLogService{repo: repo, gateway: gateway}
}

// LogManual records a user-entered meal.
func (s *FoodLogService) LogManual(ctx context.Context, name string, calories float64, macros domain.MacroNutrients, dayNumber int) (*domain.FoodLogEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidRequest)
	}
	if calories < 0 || macros.Protein < 0 || macros.Carbs < 0 || macros.Fats < 0 {
		return nil, fmt.Errorf("%w: calories and macros must be non-negative", domain.ErrInvalidRequest)
	}
	if dayNumber < 1 {
		return nil, fmt.Errorf("%w: day number must be positive", domain.ErrInvalidRequest)
	}

	entry := &domain.FoodLogEntry{
		ID:        uuid.New().String(),
		Name:      name,
		Calories:  calories,
		Macros:    macros,
		Timestamp: time.Now().UTC(),
		DayNumber: dayNumber,
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// LogFromAnalysis sends the description and/or image to the gateway for
// nutritional analysis and records the result. At least one of the two
// inputs must be present.
func (s *FoodLogService) LogFromAnalysis(ctx context.Context, description string, imageBytes []byte, dayNumber int) (*domain.FoodLogEntry, error) {
	if strings.TrimSpace(description) == "" && len(imageBytes) == 0 {
		return nil, fmt.Errorf("%w: description or image is required", domain.ErrInvalidRequest)
	}

	analysis, err := s.gateway.AnalyzeFood(ctx, description, imageBytes)
	if err != nil {
		return nil, err
	}

	return s.LogManual(ctx, analysis.Name, analysis.Calories, analysis.Macros, dayNumber)
}

// Entries lists logged entries; dayNumber 0 means all days.
func (s *FoodLogService) Entries(ctx context.Context, dayNumber int) ([]domain.FoodLogEntry, error) {
	return s.repo.List(ctx, dayNumber)
}

// Delete removes an entry by id.
func (s *FoodLogService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidRequest)
	}
	return s.repo.Delete(ctx, id)
}
