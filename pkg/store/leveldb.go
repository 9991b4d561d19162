package store

import (
	"context"
	"fmt"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"cxxindex/pkg/logger"
)

// LevelDBSnapshots is a Snapshots backed by a single goleveldb database
// directory, adapted from the corpus's per-project LevelDB store to a
// single-store shape: this package addresses one index, not a fleet of
// projects, so there is no per-project sharding or lock map to carry.
type LevelDBSnapshots struct {
	db  *leveldb.DB
	log logger.Logger
}

// NewLevelDBSnapshots opens (creating if absent) a LevelDB database at
// dbPath.
func NewLevelDBSnapshots(dbPath string, log logger.Logger) (*LevelDBSnapshots, error) {
	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, fmt.Errorf("store: failed to create database directory %s: %w", dbPath, err)
	}

	db, err := openLevelDB(dbPath)
	if err != nil {
		log.Warn("store: database open failed, attempting to recreate at %s: %v", dbPath, err)
		if removeErr := os.RemoveAll(dbPath); removeErr != nil {
			return nil, fmt.Errorf("store: failed to open database %s: %w (and failed to remove corrupted dir: %v)", dbPath, err, removeErr)
		}
		db, err = openLevelDB(dbPath)
		if err != nil {
			return nil, fmt.Errorf("store: failed to recreate database %s: %w", dbPath, err)
		}
	}

	log.Info("store: opened leveldb snapshot store at %s", dbPath)
	return &LevelDBSnapshots{db: db, log: log}, nil
}

func openLevelDB(dbPath string) (*leveldb.DB, error) {
	options := &opt.Options{
		WriteBuffer:        4 * 1024 * 1024,
		BlockCacheCapacity: 8 * 1024 * 1024,
	}
	return leveldb.OpenFile(dbPath, options)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Put stores value under key, overwriting any prior value.
func (s *LevelDBSnapshots) Put(ctx context.Context, key string, value []byte) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := s.db.Put([]byte(key), value, nil); err != nil {
		return fmt.Errorf("store: put %q: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *LevelDBSnapshots) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	data, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("store: get %q: %w", key, err)
	}
	return data, nil
}

// Has reports whether key currently has a value.
func (s *LevelDBSnapshots) Has(ctx context.Context, key string) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}
	ok, err := s.db.Has([]byte(key), nil)
	if err != nil {
		return false, fmt.Errorf("store: has %q: %w", key, err)
	}
	return ok, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *LevelDBSnapshots) Delete(ctx context.Context, key string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("store: delete %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *LevelDBSnapshots) Close() error {
	s.log.Info("store: closing leveldb snapshot store")
	return s.db.Close()
}
