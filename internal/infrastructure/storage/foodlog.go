package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/nutriplan/backend/internal/domain"
)

// MemoryFoodLog is a thread-safe in-memory food log repository. Entries are
// immutable once saved; only deletion by id is supported.
type MemoryFoodLog struct {
	entries map[string]domain.FoodLogEntry
	mutex   sync.RWMutex
}

// NewMemoryFoodLog creates a new in-memory food log
func NewMemoryFoodLog() *MemoryFoodLog {
	return &MemoryFoodLog{
		entries: make(map[string]domain.FoodLogEntry),
	}
}

// Save stores an entry keyed by its id
func (l *MemoryFoodLog) Save(ctx context.Context, entry *domain.FoodLogEntry) error {
	if entry == nil || entry.ID == "" {
		return domain.ErrInvalidRequest
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.entries[entry.ID] = *entry
	return nil
}

// List returns entries for the given day, oldest first. dayNumber 0 means
// all days.
func (l *MemoryFoodLog) List(ctx context.Context, dayNumber int) ([]domain.FoodLogEntry, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	out := make([]domain.FoodLogEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		if dayNumber != 0 && entry.DayNumber != dayNumber {
			continue
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// Delete removes an entry by id
func (l *MemoryFoodLog) Delete(ctx context.Context, id string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, exists := l.entries[id]; !exists {
		return domain.ErrNotFound
	}
	delete(l.entries, id)
	return nil
}

// Size returns the current number of entries (for debugging/monitoring)
func (l *MemoryFoodLog) Size() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.entries)
}
