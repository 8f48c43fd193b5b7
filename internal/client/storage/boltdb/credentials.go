package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/lunabook/sessionkit/internal/client/storage"
)

// SaveCredentials stores both token slots in a single transaction
func (s *Storage) SaveCredentials(ctx context.Context, rec *storage.CredentialRecord) error {
	if rec == nil || len(rec.AccessToken) == 0 || len(rec.RefreshToken) == 0 {
		return fmt.Errorf("both token slots are required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		// Оба слота пишутся в одной транзакции - пара атомарна
		if err := bucket.Put(slotAccessToken, rec.AccessToken); err != nil {
			return fmt.Errorf("failed to save access token slot: %w", err)
		}
		if err := bucket.Put(slotRefreshToken, rec.RefreshToken); err != nil {
			return fmt.Errorf("failed to save refresh token slot: %w", err)
		}

		return nil
	})
}

// GetCredentials retrieves both token slots as a unit
func (s *Storage) GetCredentials(ctx context.Context) (*storage.CredentialRecord, error) {
	var rec *storage.CredentialRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		access := bucket.Get(slotAccessToken)
		refresh := bucket.Get(slotRefreshToken)

		// Неполная пара равнозначна отсутствию
		if access == nil || refresh == nil {
			return storage.ErrCredentialsNotFound
		}

		// Копируем: значения из bbolt валидны только внутри транзакции
		rec = &storage.CredentialRecord{
			AccessToken:  append([]byte(nil), access...),
			RefreshToken: append([]byte(nil), refresh...),
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return rec, nil
}

// DeleteCredentials removes both token slots in a single transaction (logout)
func (s *Storage) DeleteCredentials(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		if err := bucket.Delete(slotAccessToken); err != nil {
			return fmt.Errorf("failed to delete access token slot: %w", err)
		}
		if err := bucket.Delete(slotRefreshToken); err != nil {
			return fmt.Errorf("failed to delete refresh token slot: %w", err)
		}

		return nil
	})
}

// GetDeviceID returns the persisted install identity
func (s *Storage) GetDeviceID(ctx context.Context) (string, error) {
	var id string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDevice)
		if bucket == nil {
			return fmt.Errorf("device bucket not found")
		}

		data := bucket.Get(slotDeviceID)
		if data == nil {
			return storage.ErrDeviceIDNotFound
		}

		id = string(data)
		return nil
	})

	if err != nil {
		return "", err
	}

	return id, nil
}

// SaveDeviceID persists the install identity
func (s *Storage) SaveDeviceID(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("device id cannot be empty")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDevice)
		if bucket == nil {
			return fmt.Errorf("device bucket not found")
		}

		if err := bucket.Put(slotDeviceID, []byte(id)); err != nil {
			return fmt.Errorf("failed to save device id: %w", err)
		}

		return nil
	})
}
