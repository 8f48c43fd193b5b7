package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"
)

const (
	// SecretSize - размер install secret в байтах
	SecretSize = 32

	// storageKeyInfo - context string для деривации ключа хранилища.
	// Разные context strings дают независимые ключи из одного секрета.
	storageKeyInfo = "lunabook/credential-store/v1"
)

// LoadOrCreateSecret возвращает install secret из файла keyPath.
// При первом запуске генерирует новый случайный секрет и сохраняет его
// с правами 0600. Секрет уникален для установки приложения и играет роль
// keychain-а: всё локальное шифрование деривируется из него.
func LoadOrCreateSecret(keyPath string) ([]byte, error) {
	secret, err := os.ReadFile(keyPath)
	if err == nil {
		if len(secret) != SecretSize {
			return nil, fmt.Errorf("install secret has wrong size: %d bytes", len(secret))
		}
		return secret, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read install secret: %w", err)
	}

	// Первый запуск - генерируем новый секрет
	secret = make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate install secret: %w", err)
	}

	if err := os.WriteFile(keyPath, secret, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write install secret: %w", err)
	}

	return secret, nil
}

// DeriveStorageKey деривирует 32-байтный ключ шифрования хранилища
// из install secret через HKDF-SHA256 с фиксированным context string
func DeriveStorageKey(secret []byte) ([]byte, error) {
	if len(secret) != SecretSize {
		return nil, fmt.Errorf("install secret must be %d bytes, got %d", SecretSize, len(secret))
	}

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(storageKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}

	return key, nil
}
