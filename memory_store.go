package convpolicy

import (
	"context"
	"slices"
	"sync"
)

// ProfileAdapter is the pluggable persistence backend for user profiles.
//
// Profiles are opaque serialized records keyed by user id. Load returns
// (nil, nil) when the user has no stored profile.
type ProfileAdapter interface {
	Save(ctx context.Context, userID string, data []byte) error
	Load(ctx context.Context, userID string) ([]byte, error)
}

// InMemoryProfileAdapter is a thread-safe in-memory ProfileAdapter for
// development and tests. Data is lost on restart.
type InMemoryProfileAdapter struct {
	mu       sync.RWMutex
	profiles map[string][]byte
}

// NewInMemoryProfileAdapter creates an empty adapter.
func NewInMemoryProfileAdapter() *InMemoryProfileAdapter {
	return &InMemoryProfileAdapter{profiles: make(map[string][]byte)}
}

func (a *InMemoryProfileAdapter) Save(_ context.Context, userID string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profiles[userID] = slices.Clone(data)
	return nil
}

func (a *InMemoryProfileAdapter) Load(_ context.Context, userID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.profiles[userID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(data), nil
}

// Users lists stored user ids, sorted.
func (a *InMemoryProfileAdapter) Users() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.profiles))
	for id := range a.profiles {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
