package crypto

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateSecret_FirstRun(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "client.key")

	secret, err := LoadOrCreateSecret(keyPath)
	require.NoError(t, err)
	assert.Len(t, secret, SecretSize)

	// Файл создан с правами 0600
	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestLoadOrCreateSecret_Stable(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "client.key")

	first, err := LoadOrCreateSecret(keyPath)
	require.NoError(t, err)

	// Повторный запуск возвращает тот же секрет
	second, err := LoadOrCreateSecret(keyPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrCreateSecret_WrongSize(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "client.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("truncated"), 0o600))

	_, err := LoadOrCreateSecret(keyPath)
	assert.Error(t, err)
}

func TestDeriveStorageKey(t *testing.T) {
	secret := make([]byte, SecretSize)
	for i := range secret {
		secret[i] = byte(i)
	}

	key, err := DeriveStorageKey(secret)
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	// Деривация детерминирована
	again, err := DeriveStorageKey(secret)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	// Другой секрет дает другой ключ
	other := make([]byte, SecretSize)
	otherKey, err := DeriveStorageKey(other)
	require.NoError(t, err)
	assert.NotEqual(t, key, otherKey)

	// Ключ не равен самому секрету
	assert.NotEqual(t, secret, key)
}

func TestDeriveStorageKey_WrongSize(t *testing.T) {
	_, err := DeriveStorageKey([]byte("short"))
	assert.Error(t, err)
}
