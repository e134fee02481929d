package repository

import (
	"context"
	"sync"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
)

// MemoryRatings keeps rated movies in process memory. Nothing survives a
// restart; that is a stated limitation of this backend, not a defect.
type MemoryRatings struct {
	mu    sync.Mutex
	rated []domain.RatedMovie
}

// NewMemoryRatings constructs an empty in-memory rating store.
func NewMemoryRatings() *MemoryRatings {
	return &MemoryRatings{}
}

// Upsert updates the entry for the movie if present, otherwise appends it.
func (m *MemoryRatings) Upsert(_ context.Context, _ string, entry domain.RatedMovie) ([]domain.RatedMovie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rated {
		if m.rated[i].ID == entry.ID {
			m.rated[i].Rating = entry.Rating
			return m.snapshot(), nil
		}
	}
	m.rated = append(m.rated, entry)
	return m.snapshot(), nil
}

// Delete removes the entry for the movie. Deleting an absent movie is a no-op.
func (m *MemoryRatings) Delete(_ context.Context, _ string, movieID int64) ([]domain.RatedMovie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rated {
		if m.rated[i].ID == movieID {
			m.rated = append(m.rated[:i], m.rated[i+1:]...)
			break
		}
	}
	return m.snapshot(), nil
}

// List returns all rated movies in insertion order.
func (m *MemoryRatings) List(_ context.Context, _ string) ([]domain.RatedMovie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), nil
}

// Clear drops every entry. The store is only ever emptied by this explicit
// action, never as a side effect.
func (m *MemoryRatings) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rated = nil
}

func (m *MemoryRatings) snapshot() []domain.RatedMovie {
	out := make([]domain.RatedMovie, len(m.rated))
	copy(out, m.rated)
	return out
}
