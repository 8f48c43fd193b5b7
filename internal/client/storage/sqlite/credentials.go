package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lunabook/sessionkit/internal/client/storage"
)

// Именованные слоты хранилища
const (
	slotAccessToken  = "access_token"
	slotRefreshToken = "refresh_token"
	slotDeviceID     = "device_id"
)

// SaveCredentials stores both token slots in a single transaction
func (s *Storage) SaveCredentials(ctx context.Context, rec *storage.CredentialRecord) error {
	if rec == nil || len(rec.AccessToken) == 0 || len(rec.RefreshToken) == 0 {
		return fmt.Errorf("both token slots are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT OR REPLACE INTO slots (name, value, updated_at)
		VALUES (?, ?, ?)
	`

	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx, query, slotAccessToken, rec.AccessToken, now); err != nil {
		return fmt.Errorf("failed to save access token slot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, slotRefreshToken, rec.RefreshToken, now); err != nil {
		return fmt.Errorf("failed to save refresh token slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCredentials retrieves both token slots as a unit
func (s *Storage) GetCredentials(ctx context.Context) (*storage.CredentialRecord, error) {
	query := `
		SELECT name, value
		FROM slots
		WHERE name IN (?, ?)
	`

	rows, err := s.db.QueryContext(ctx, query, slotAccessToken, slotRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	rec := &storage.CredentialRecord{}
	for rows.Next() {
		var name string
		var value []byte
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		switch name {
		case slotAccessToken:
			rec.AccessToken = value
		case slotRefreshToken:
			rec.RefreshToken = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slots: %w", err)
	}

	// Неполная пара равнозначна отсутствию
	if len(rec.AccessToken) == 0 || len(rec.RefreshToken) == 0 {
		return nil, storage.ErrCredentialsNotFound
	}

	return rec, nil
}

// DeleteCredentials removes both token slots in a single transaction (logout)
func (s *Storage) DeleteCredentials(ctx context.Context) error {
	query := `
		DELETE FROM slots
		WHERE name IN (?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query, slotAccessToken, slotRefreshToken); err != nil {
		return fmt.Errorf("failed to delete token slots: %w", err)
	}

	return nil
}

// GetDeviceID returns the persisted install identity
func (s *Storage) GetDeviceID(ctx context.Context) (string, error) {
	query := `
		SELECT value
		FROM slots
		WHERE name = ?
	`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, slotDeviceID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrDeviceIDNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query device id: %w", err)
	}

	return string(value), nil
}

// SaveDeviceID persists the install identity
func (s *Storage) SaveDeviceID(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("device id cannot be empty")
	}

	query := `
		INSERT OR REPLACE INTO slots (name, value, updated_at)
		VALUES (?, ?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query, slotDeviceID, []byte(id), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save device id: %w", err)
	}

	return nil
}
