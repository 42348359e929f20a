package convpolicy

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// PreferenceRegistry lazily creates and memoizes one PreferenceStore per
// user id. Concurrent first calls for an id share a single adapter load.
type PreferenceRegistry struct {
	cfg     EngineConfig
	adapter ProfileAdapter
	logger  *slog.Logger

	mu     sync.RWMutex
	stores map[string]*registryEntry
	group  singleflight.Group
}

// registryEntry is immutable once published; a reload publishes a new one.
type registryEntry struct {
	store  *PreferenceStore
	loaded bool
	// loadFailed is set when the adapter errored. The entry is reloaded on
	// the next Get and never flushed until a load succeeds.
	loadFailed bool
}

// NewPreferenceRegistry creates a registry. A nil adapter keeps profiles in
// memory only.
func NewPreferenceRegistry(cfg EngineConfig, adapter ProfileAdapter, logger *slog.Logger) *PreferenceRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferenceRegistry{
		cfg:     cfg.Normalize(),
		adapter: adapter,
		logger:  logger,
		stores:  make(map[string]*registryEntry),
	}
}

// Get returns the store for userID, creating it on first use. loaded reports
// whether a persisted profile was found and imported; a failed or missing
// load yields a default profile with loaded=false. After a backend error the
// load is retried on every Get, and a successful retry replaces the interim
// profile with the persisted one in the same store.
func (r *PreferenceRegistry) Get(ctx context.Context, userID string) (store *PreferenceStore, loaded bool) {
	r.mu.RLock()
	e, ok := r.stores[userID]
	r.mu.RUnlock()
	if ok && !e.loadFailed {
		return e.store, e.loaded
	}

	v, _, _ := r.group.Do(userID, func() (interface{}, error) {
		r.mu.RLock()
		e, ok := r.stores[userID]
		r.mu.RUnlock()
		if ok && !e.loadFailed {
			return e, nil
		}

		store := NewPreferenceStore(userID, r.cfg, r.logger)
		if ok {
			store = e.store
		}
		loaded, err := r.load(ctx, userID, store)
		e = &registryEntry{store: store, loaded: loaded, loadFailed: err != nil}

		r.mu.Lock()
		r.stores[userID] = e
		r.mu.Unlock()
		return e, nil
	})
	e = v.(*registryEntry)
	return e.store, e.loaded
}

// load imports the persisted profile into store. The error is non-nil only
// when the adapter itself failed; a missing or corrupt profile is not an
// error and leaves the defaults in place.
func (r *PreferenceRegistry) load(ctx context.Context, userID string, store *PreferenceStore) (bool, error) {
	if r.adapter == nil {
		return false, nil
	}
	data, err := r.adapter.Load(ctx, userID)
	if err != nil {
		r.logger.Warn("profile load failed, using defaults", "component", "preferences", "user", userID, "error", err)
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := store.Import(data); err != nil {
		return false, nil
	}
	return true, nil
}

// Flush persists one user's profile. It reports false when there is no
// adapter, no such store, the last load failed, or the save failed.
func (r *PreferenceRegistry) Flush(ctx context.Context, userID string) bool {
	if r.adapter == nil {
		return false
	}
	r.mu.RLock()
	e, ok := r.stores[userID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.loadFailed {
		r.logger.Warn("profile not loaded, refusing to overwrite", "component", "preferences", "user", userID)
		return false
	}
	data, err := e.store.Export()
	if err == nil {
		err = r.adapter.Save(ctx, userID, data)
	}
	if err != nil {
		r.logger.Warn("profile save failed", "component", "preferences", "user", userID, "error", err)
		return false
	}
	return true
}

// FlushAll persists every memoized profile and returns how many succeeded.
func (r *PreferenceRegistry) FlushAll(ctx context.Context) int {
	n := 0
	for _, id := range r.Users() {
		if ctx.Err() != nil {
			break
		}
		if r.Flush(ctx, id) {
			n++
		}
	}
	return n
}

// Users returns the ids with a memoized store, sorted.
func (r *PreferenceRegistry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Evict drops the memoized store for userID without persisting it.
func (r *PreferenceRegistry) Evict(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}
