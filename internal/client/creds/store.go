package creds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lunabook/sessionkit/internal/client/storage"
	"github.com/lunabook/sessionkit/internal/crypto"
	"github.com/lunabook/sessionkit/pkg/api"
)

// ErrCredentialsNotFound возвращается, когда в хранилище нет пары токенов.
// Любой сбой чтения или расшифровки приводит к этой же ошибке: для вызывающего
// кода поврежденное хранилище неотличимо от пустого.
var ErrCredentialsNotFound = storage.ErrCredentialsNotFound

// Store provides the encryption layer between business logic and storage.
// It encrypts tokens before saving and decrypts them when retrieving.
// Both tokens are persisted or cleared together, never one without the other.
type Store struct {
	storage storage.CredentialStorage
	key     []byte
}

// New creates a new credential store.
// key must be exactly 32 bytes (derived from the install secret).
func New(credStorage storage.CredentialStorage, key []byte) (*Store, error) {
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("storage key must be %d bytes, got %d", crypto.KeySize, len(key))
	}
	return &Store{
		storage: credStorage,
		key:     key,
	}, nil
}

// Get возвращает расшифрованную пару токенов.
// Возвращает ErrCredentialsNotFound, если пары нет или она не читается.
func (s *Store) Get(ctx context.Context) (*api.TokenPair, error) {
	rec, err := s.storage.GetCredentials(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrCredentialsNotFound) {
			// Сбой чтения деградирует до "нет данных", не до фатальной ошибки
			slog.Warn("credential storage read failed, treating as absent", "error", err)
		}
		return nil, ErrCredentialsNotFound
	}

	access, err := crypto.Decrypt(rec.AccessToken, s.key)
	if err != nil {
		slog.Warn("failed to decrypt access token, treating as absent", "error", err)
		return nil, ErrCredentialsNotFound
	}

	refresh, err := crypto.Decrypt(rec.RefreshToken, s.key)
	if err != nil {
		slog.Warn("failed to decrypt refresh token, treating as absent", "error", err)
		return nil, ErrCredentialsNotFound
	}

	return &api.TokenPair{
		AccessToken:  string(access),
		RefreshToken: string(refresh),
	}, nil
}

// Set шифрует и сохраняет пару токенов.
// Пара сохраняется целиком: оба токена обязательны.
func (s *Store) Set(ctx context.Context, pair api.TokenPair) error {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("both access and refresh tokens are required")
	}

	encryptedAccess, err := crypto.Encrypt([]byte(pair.AccessToken), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	encryptedRefresh, err := crypto.Encrypt([]byte(pair.RefreshToken), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	rec := &storage.CredentialRecord{
		AccessToken:  encryptedAccess,
		RefreshToken: encryptedRefresh,
	}

	if err := s.storage.SaveCredentials(ctx, rec); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	return nil
}

// Clear удаляет пару токенов. Повторный вызов не является ошибкой.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.DeleteCredentials(ctx); err != nil &&
		!errors.Is(err, storage.ErrCredentialsNotFound) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// DeviceID возвращает идентификатор установки, создавая его при первом
// обращении. Идентификатор переживает logout.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	id, err := s.storage.GetDeviceID(ctx)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, storage.ErrDeviceIDNotFound) {
		return "", fmt.Errorf("failed to get device id: %w", err)
	}

	// Первый запуск - генерируем и сохраняем
	id = uuid.New().String()
	if err := s.storage.SaveDeviceID(ctx, id); err != nil {
		return "", fmt.Errorf("failed to save device id: %w", err)
	}

	return id, nil
}
