package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/lunabook/sessionkit/internal/client/storage"
)

var (
	// BoltDB bucket and slot names
	bucketCredentials = []byte("credentials")
	bucketDevice      = []byte("device")

	slotAccessToken  = []byte("access_token")
	slotRefreshToken = []byte("refresh_token")
	slotDeviceID     = []byte("device_id")
)

// Compile-time check that Storage implements CredentialStorage
var _ storage.CredentialStorage = (*Storage)(nil)

// Storage represents BoltDB credential storage for the client
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance.
// dbPath is the path to the BoltDB database file.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketCredentials); err != nil {
			return fmt.Errorf("failed to create credentials bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists(bucketDevice); err != nil {
			return fmt.Errorf("failed to create device bucket: %w", err)
		}
		return nil
	})
}
