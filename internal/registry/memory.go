// Package registry holds the in-process activity registry.
package registry

import (
	"context"
	"fmt"
	"sync"

	"example.com/mergington/internal/domain"
)

// InMemoryRepository stores activities for the lifetime of the process.
// The set of names is fixed at construction.
type InMemoryRepository struct {
	mu         sync.RWMutex
	names      []string
	activities map[string]*domain.Activity
}

// NewInMemoryRepository constructs a repository populated with seed.
func NewInMemoryRepository(seed []domain.Activity) (*InMemoryRepository, error) {
	repo := &InMemoryRepository{
		names:      make([]string, 0, len(seed)),
		activities: make(map[string]*domain.Activity, len(seed)),
	}
	for _, activity := range seed {
		if err := activity.Validate(); err != nil {
			return nil, err
		}
		if _, exists := repo.activities[activity.Name]; exists {
			return nil, fmt.Errorf("duplicate activity %q", activity.Name)
		}
		stored := activity.Clone()
		repo.activities[activity.Name] = &stored
		repo.names = append(repo.names, activity.Name)
	}
	return repo, nil
}

// List implements domain.Repository. Activities come back in seed order.
func (r *InMemoryRepository) List(ctx context.Context) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Activity, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.activities[name].Clone())
	}
	return out, nil
}

// Get returns the activity, or nil when the name is unknown.
func (r *InMemoryRepository) Get(ctx context.Context, name string) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[name]
	if !ok {
		return nil, nil
	}
	out := activity.Clone()
	return &out, nil
}

// AddParticipant appends email to the roster.
func (r *InMemoryRepository) AddParticipant(ctx context.Context, name, email string, enforceCapacity bool) (domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if activity.HasParticipant(email) {
		return domain.Activity{}, domain.ErrAlreadySignedUp
	}
	if enforceCapacity && activity.IsFull() {
		return domain.Activity{}, domain.ErrActivityFull
	}
	activity.Participants = append(activity.Participants, email)
	return activity.Clone(), nil
}

// RemoveParticipant deletes the single roster entry equal to email.
func (r *InMemoryRepository) RemoveParticipant(ctx context.Context, name, email string) (domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	for i, existing := range activity.Participants {
		if existing == email {
			activity.Participants = append(activity.Participants[:i], activity.Participants[i+1:]...)
			return activity.Clone(), nil
		}
	}
	return domain.Activity{}, domain.ErrNotSignedUp
}
