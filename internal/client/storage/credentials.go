package storage

import (
	"context"
)

// CredentialRecord представляет содержимое хранилища учетных данных.
// Это нижний слой: значения слотов уже зашифрованы, хранилище их
// не интерпретирует. Инвариант - оба слота записываются и читаются
// как единое целое, наблюдатель никогда не видит половину пары.
type CredentialRecord struct {
	AccessToken  []byte // зашифрованный access token
	RefreshToken []byte // зашифрованный refresh token
}

// CredentialStorage defines the lowest storage layer for the token pair.
// Implementations must update both slots in a single transaction.
type CredentialStorage interface {
	// SaveCredentials stores both slots atomically
	SaveCredentials(ctx context.Context, rec *CredentialRecord) error

	// GetCredentials retrieves both slots as a unit.
	// Returns ErrCredentialsNotFound if either slot is missing.
	GetCredentials(ctx context.Context) (*CredentialRecord, error)

	// DeleteCredentials removes both slots atomically (logout)
	DeleteCredentials(ctx context.Context) error

	// GetDeviceID returns the persisted install identity.
	// Returns ErrDeviceIDNotFound on first run.
	GetDeviceID(ctx context.Context) (string, error)

	// SaveDeviceID persists the install identity. It survives logout.
	SaveDeviceID(ctx context.Context, id string) error

	// Close releases the underlying database
	Close() error
}
