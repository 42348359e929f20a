// Package store provides persistence backends for user profiles: JSON
// files, Redis and SQLite. The in-memory backend lives in the root package.
package store

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"

	convpolicy "github.com/cyberFlowTech/zapry-convpolicy-go"
)

const profileExt = ".json"

// FileProfileStore implements convpolicy.ProfileAdapter with one JSON file
// per user under a directory. Writes go through a temp file and rename.
type FileProfileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileProfileStore creates the directory if needed.
func NewFileProfileStore(dir string) (*FileProfileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, oops.In("store.file").With("dir", dir).Wrapf(err, "create profile directory")
	}
	return &FileProfileStore{dir: dir}, nil
}

// path maps a user id to a file name; ids are hex-encoded so any string is safe.
func (f *FileProfileStore) path(userID string) string {
	return filepath.Join(f.dir, hex.EncodeToString([]byte(userID))+profileExt)
}

func (f *FileProfileStore) Save(ctx context.Context, userID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, "profile-*.tmp")
	if err != nil {
		return oops.In("store.file").With("user", userID).Wrapf(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return oops.In("store.file").With("user", userID).Wrapf(err, "write profile")
	}
	if err := tmp.Close(); err != nil {
		return oops.In("store.file").With("user", userID).Wrapf(err, "close profile")
	}
	if err := os.Rename(tmp.Name(), f.path(userID)); err != nil {
		return oops.In("store.file").With("user", userID).Wrapf(err, "replace profile")
	}
	return nil
}

func (f *FileProfileStore) Load(ctx context.Context, userID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("store.file").With("user", userID).Wrapf(err, "read profile")
	}
	return data, nil
}

// Delete removes a stored profile. Deleting a missing profile is not an error.
func (f *FileProfileStore) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(userID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.In("store.file").With("user", userID).Wrapf(err, "delete profile")
	}
	return nil
}

// Users lists the user ids with a stored profile, sorted.
func (f *FileProfileStore) Users(_ context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, oops.In("store.file").With("dir", f.dir).Wrapf(err, "list profiles")
	}
	var users []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, profileExt) {
			continue
		}
		id, err := hex.DecodeString(strings.TrimSuffix(name, profileExt))
		if err != nil {
			continue
		}
		users = append(users, string(id))
	}
	sort.Strings(users)
	return users, nil
}

// Compile-time interface check.
var _ convpolicy.ProfileAdapter = (*FileProfileStore)(nil)
