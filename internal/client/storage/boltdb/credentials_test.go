package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunabook/sessionkit/internal/client/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func TestCredentials_SaveGetDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rec := &storage.CredentialRecord{
		AccessToken:  []byte("encrypted-access"),
		RefreshToken: []byte("encrypted-refresh"),
	}

	require.NoError(t, s.SaveCredentials(ctx, rec))

	got, err := s.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.AccessToken, got.AccessToken)
	assert.Equal(t, rec.RefreshToken, got.RefreshToken)

	require.NoError(t, s.DeleteCredentials(ctx))

	_, err = s.GetCredentials(ctx)
	assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)
}

func TestCredentials_GetEmpty(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetCredentials(context.Background())
	assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)
}

func TestCredentials_DeleteEmpty(t *testing.T) {
	s := newTestStorage(t)

	// Повторное удаление не ошибка
	assert.NoError(t, s.DeleteCredentials(context.Background()))
}

func TestCredentials_SaveRejectsPartialPair(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		rec  *storage.CredentialRecord
		name string
	}{
		{name: "nil record", rec: nil},
		{name: "missing refresh", rec: &storage.CredentialRecord{AccessToken: []byte("a")}},
		{name: "missing access", rec: &storage.CredentialRecord{RefreshToken: []byte("r")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.SaveCredentials(ctx, tt.rec))
		})
	}
}

func TestCredentials_Overwrite(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCredentials(ctx, &storage.CredentialRecord{
		AccessToken:  []byte("old-access"),
		RefreshToken: []byte("old-refresh"),
	}))
	require.NoError(t, s.SaveCredentials(ctx, &storage.CredentialRecord{
		AccessToken:  []byte("new-access"),
		RefreshToken: []byte("new-refresh"),
	}))

	got, err := s.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-access"), got.AccessToken)
	assert.Equal(t, []byte("new-refresh"), got.RefreshToken)
}

func TestDeviceID(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetDeviceID(ctx)
	assert.ErrorIs(t, err, storage.ErrDeviceIDNotFound)

	require.NoError(t, s.SaveDeviceID(ctx, "device-123"))

	id, err := s.GetDeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "device-123", id)

	// Device ID переживает удаление учетных данных
	require.NoError(t, s.SaveCredentials(ctx, &storage.CredentialRecord{
		AccessToken:  []byte("a"),
		RefreshToken: []byte("r"),
	}))
	require.NoError(t, s.DeleteCredentials(ctx))

	id, err = s.GetDeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "device-123", id)
}

func TestSaveDeviceID_Empty(t *testing.T) {
	s := newTestStorage(t)

	assert.Error(t, s.SaveDeviceID(context.Background(), ""))
}
