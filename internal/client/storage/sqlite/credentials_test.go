package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunabook/sessionkit/internal/client/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
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

func TestCredentials_SaveRejectsPartialPair(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.Error(t, s.SaveCredentials(ctx, nil))
	assert.Error(t, s.SaveCredentials(ctx, &storage.CredentialRecord{AccessToken: []byte("a")}))
	assert.Error(t, s.SaveCredentials(ctx, &storage.CredentialRecord{RefreshToken: []byte("r")}))
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
