package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/petspot/petspot-backend/internal/announcement/domain"
	"github.com/petspot/petspot-backend/pkg/errors"
)

// MemoryRepository is a process-local AnnouncementRepository for development
// without PostgreSQL. It enforces the same microchip uniqueness.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Announcement
	now   func() time.Time
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]*domain.Announcement),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of a
func (m *MemoryRepository) Create(_ context.Context, a *domain.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.HasMicrochip() {
		for _, other := range m.items {
			if other.HasMicrochip() && *other.MicrochipNumber == *a.MicrochipNumber {
				return errors.DuplicateMicrochip()
			}
		}
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := m.now()
	// Keep creation order stable even within one clock tick
	for _, other := range m.items {
		if !now.After(other.CreatedAt) {
			now = other.CreatedAt.Add(time.Microsecond)
		}
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	cp := *a
	m.items[a.ID] = &cp
	return nil
}

// GetByID returns a copy of the stored announcement
func (m *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.items[id]
	if !ok {
		return nil, errors.NotFound("announcement")
	}
	cp := *a
	return &cp, nil
}

// List returns announcements newest first
func (m *MemoryRepository) List(_ context.Context, filter domain.ListFilter) ([]*domain.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Announcement, 0, len(m.items))
	for _, a := range m.items {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*domain.Announcement{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// UpdatePhotoURL records the stored photo location
func (m *MemoryRepository) UpdatePhotoURL(_ context.Context, id, photoURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok {
		return errors.NotFound("announcement")
	}
	a.PhotoURL = &photoURL
	a.UpdatedAt = m.now()
	return nil
}

// Delete removes an announcement
func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return errors.NotFound("announcement")
	}
	delete(m.items, id)
	return nil
}
