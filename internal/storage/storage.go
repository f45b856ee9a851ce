package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

var (
	bktState   = []byte("app_state")
	bktContent = []byte("content")
)

const defaultOpenTimeout = time.Second

// Storage is a wrapper around bolt.DB
type Storage struct {
	db        *bolt.DB
	closeFunc func() error
}

type Config struct {
	Path string
	// OpenTimeout bounds the wait for the file lock held by another process.
	OpenTimeout time.Duration
}

// NewStorage creates a new storage
func NewStorage(cfg Config) (*Storage, error) {
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	db, err := bolt.Open(cfg.Path, 0600, &bolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bolt db %s", cfg.Path)
	}
	return &Storage{
		db:        db,
		closeFunc: db.Close,
	}, nil
}

func NewTempStorage() (*Storage, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("readstreak-%s.db", uuid.New().String()))
	storage, err := NewStorage(Config{Path: path})
	if err != nil {
		return nil, err
	}
	originalCloseFunc := storage.closeFunc
	storage.closeFunc = func() error {
		if err := originalCloseFunc(); err != nil {
			return err
		}
		return os.Remove(path)
	}
	return storage, nil
}

// Close closes the storage
func (s *Storage) Close() error {
	return s.closeFunc()
}

// Get returns the value stored under key or ErrNotFound.
func (s *Storage) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktState)
		if b == nil {
			return ErrNotFound
		}
		var err error
		value, err = get(b, []byte(key))
		return err
	})
	return value, err
}

func (s *Storage) Set(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bktState)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

// UpdateFunc receives the current value (nil when absent) and returns the value to store.
type UpdateFunc func(current []byte) ([]byte, error)

// Update runs a read-modify-write of key inside a single bolt transaction.
// If updFunc returns an error nothing is written.
func (s *Storage) Update(key string, updFunc UpdateFunc) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bktState)
		if err != nil {
			return err
		}
		current, err := get(b, []byte(key))
		if err != nil && err != ErrNotFound {
			return err
		}
		next, err := updFunc(current)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), next)
	})
}

func (s *Storage) PutContent(id string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bktContent)
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) != nil {
			return ErrAlreadyExists
		}
		return b.Put([]byte(id), data)
	})
}

func (s *Storage) GetContent(id string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktContent)
		if b == nil {
			return ErrNotFound
		}
		var err error
		data, err = get(b, []byte(id))
		return err
	})
	return data, err
}

func (s *Storage) DeleteContent(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktContent)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(id))
	})
}

// helper functions

// get copies the value out, bolt memory is only valid inside the transaction
func get(b *bolt.Bucket, key []byte) ([]byte, error) {
	v := b.Get(key)
	if v == nil {
		return nil, ErrNotFound
	}
	result := make([]byte, len(v))
	copy(result, v)
	return result, nil
}
