package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samber/oops"
	_ "modernc.org/sqlite" // SQLite driver

	convpolicy "github.com/cyberFlowTech/zapry-convpolicy-go"
)

// SQLiteProfileStore implements convpolicy.ProfileAdapter using SQLite.
//
// It uses one table (auto-created if AutoMigrate is true):
//   - {prefix}_profiles: (user_id, data, updated_at)
type SQLiteProfileStore struct {
	db     *sql.DB
	prefix string
	owned  bool
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	Prefix      string // table prefix, default "convpolicy"
	AutoMigrate bool   // create tables if not exist, default true
}

// OpenSQLiteProfileStore opens (or creates) the database at path and
// migrates it. Use ":memory:" for a throwaway database.
func OpenSQLiteProfileStore(path string, config ...SQLiteStoreConfig) (*SQLiteProfileStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.In("store.sqlite").With("path", path).Wrapf(err, "open database")
	}
	// single writer; database/sql serializes callers on the one connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, oops.In("store.sqlite").Wrapf(err, "set pragma")
	}

	s, err := NewSQLiteProfileStore(db, config...)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLiteProfileStore creates a ProfileAdapter on an already opened
// database using the "sqlite" driver.
func NewSQLiteProfileStore(db *sql.DB, config ...SQLiteStoreConfig) (*SQLiteProfileStore, error) {
	cfg := SQLiteStoreConfig{Prefix: "convpolicy", AutoMigrate: true}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "convpolicy"
	}

	s := &SQLiteProfileStore{db: db, prefix: cfg.Prefix}
	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			return nil, oops.In("store.sqlite").Wrapf(err, "auto-migrate failed")
		}
	}
	return s, nil
}

func (s *SQLiteProfileStore) table() string { return s.prefix + "_profiles" }

func (s *SQLiteProfileStore) migrate() error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		user_id    TEXT    NOT NULL PRIMARY KEY,
		data       BLOB    NOT NULL,
		updated_at INTEGER NOT NULL
	)`, s.table())
	_, err := s.db.Exec(ddl)
	return err
}

func (s *SQLiteProfileStore) Save(ctx context.Context, userID string, data []byte) error {
	q := fmt.Sprintf(
		`INSERT INTO %s (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		s.table(),
	)
	if _, err := s.db.ExecContext(ctx, q, userID, data, time.Now().Unix()); err != nil {
		return oops.In("store.sqlite").With("user", userID).Wrapf(err, "save profile")
	}
	return nil
}

func (s *SQLiteProfileStore) Load(ctx context.Context, userID string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT data FROM %s WHERE user_id=?", s.table()),
		userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("store.sqlite").With("user", userID).Wrapf(err, "load profile")
	}
	return data, nil
}

// Delete removes a stored profile. Deleting a missing profile is not an error.
func (s *SQLiteProfileStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id=?", s.table()), userID)
	if err != nil {
		return oops.In("store.sqlite").With("user", userID).Wrapf(err, "delete profile")
	}
	return nil
}

// Users lists the user ids with a stored profile, sorted.
func (s *SQLiteProfileStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT user_id FROM %s ORDER BY user_id", s.table()))
	if err != nil {
		return nil, oops.In("store.sqlite").Wrapf(err, "list profiles")
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, oops.In("store.sqlite").Wrapf(err, "scan profile row")
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Close closes the database if the store opened it.
func (s *SQLiteProfileStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Compile-time interface check.
var _ convpolicy.ProfileAdapter = (*SQLiteProfileStore)(nil)
