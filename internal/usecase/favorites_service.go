package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutriplan/backend/internal/domain"
)

const (
	favoritesKey = "favorites:list"
	favoritesTTL = 365 * 24 * time.Hour
)

// FavoritesService keeps saved meal-item snapshots in the injected store.
// The list lives under a single key; read-modify-write is serialized by mu.
type FavoritesService struct {
	store domain.KeyValueStore
	mu    sync.Mutex
}

// NewFavoritesService creates a favorites service.
func NewFavoritesService(store domain.KeyValueStore) *FavoritesService {
	return &FavoritesService{store: store}
}

// Add saves a snapshot of the given meal item and returns it with its id.
func (s *FavoritesService) Add(ctx context.Context, item domain.MealItem) (*domain.FavoriteMeal, error) {
	if item.Name == "" {
		return nil, fmt.Errorf("%w: meal name is required", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	favorites, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	favorite := domain.FavoriteMeal{
		ID:      uuid.New().String(),
		Item:    item,
		SavedAt: time.Now().UTC(),
	}
	favorites = append(favorites, favorite)

	if err := s.store.Set(ctx, favoritesKey, favorites, favoritesTTL); err != nil {
		return nil, err
	}
	return &favorite, nil
}

// Remove deletes a favorite by id.
func (s *FavoritesService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := favorites[:0]
	found := false
	for _, f := range favorites {
		if f.ID == id {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return domain.ErrNotFound
	}

	return s.store.Set(ctx, favoritesKey, kept, favoritesTTL)
}

// List returns all saved favorites; an empty store yields an empty list.
func (s *FavoritesService) List(ctx context.Context) ([]domain.FavoriteMeal, error) {
	value, err := s.store.Get(ctx, favoritesKey)
	if errors.Is(err, domain.ErrCacheMiss) {
		return []domain.FavoriteMeal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading favorites: %w", err)
	}

	if favorites, ok := value.([]domain.FavoriteMeal); ok {
		return favorites, nil
	}

	// JSON round-tripping stores hand the list back as []interface{}.
	raw, ok := value.([]interface{})
	if !ok {
		return []domain.FavoriteMeal{}, nil
	}
	favorites := make([]domain.FavoriteMeal, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		favorite := domain.FavoriteMeal{}
		if v, ok := m["id"].(string); ok {
			favorite.ID = v
		}
		if v, ok := m["savedAt"].(string); ok {
			if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
				favorite.SavedAt = ts
			}
		}
		if v, ok := m["item"].(map[string]interface{}); ok {
			favorite.Item = mapToMealItem(v)
		}
		favorites = append(favorites, favorite)
	}
	return favorites, nil
}
