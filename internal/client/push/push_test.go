package push

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

// mockAPI implements APIClient for testing
type mockAPI struct {
	registerErr     error
	unregisterErr   error
	lastReq         pkgapi.PushTokenRequest
	registerCalls   int
	unregisterCalls int
}

func (m *mockAPI) RegisterPushToken(ctx context.Context, req pkgapi.PushTokenRequest) error {
	m.registerCalls++
	m.lastReq = req
	return m.registerErr
}

func (m *mockAPI) UnregisterPushToken(ctx context.Context) error {
	m.unregisterCalls++
	return m.unregisterErr
}

// mockDevice implements DeviceIDSource for testing
type mockDevice struct {
	id  string
	err error
}

func (m *mockDevice) DeviceID(ctx context.Context) (string, error) {
	return m.id, m.err
}

func staticToken(token string) TokenProvider {
	return func(ctx context.Context) (string, error) {
		return token, nil
	}
}

func TestRegistrar_Register(t *testing.T) {
	client := &mockAPI{}
	device := &mockDevice{id: "device-123"}
	reg := NewRegistrar(client, staticToken("fcm-token"), device, "android")

	require.NoError(t, reg.Register(context.Background()))

	assert.Equal(t, 1, client.registerCalls)
	assert.Equal(t, "fcm-token", client.lastReq.PushToken)
	assert.Equal(t, "android", client.lastReq.Platform)
	assert.Equal(t, "device-123", client.lastReq.DeviceID)
}

func TestRegistrar_Register_NoProvider(t *testing.T) {
	client := &mockAPI{}
	reg := NewRegistrar(client, nil, nil, "ios")

	// Без провайдера токена регистрация молча пропускается
	require.NoError(t, reg.Register(context.Background()))
	assert.Zero(t, client.registerCalls)
}

func TestRegistrar_Register_EmptyToken(t *testing.T) {
	client := &mockAPI{}
	reg := NewRegistrar(client, staticToken(""), nil, "ios")

	// Токен еще не выдан (нет разрешения на уведомления) - не ошибка
	require.NoError(t, reg.Register(context.Background()))
	assert.Zero(t, client.registerCalls)
}

func TestRegistrar_Register_ProviderFailure(t *testing.T) {
	client := &mockAPI{}
	provider := func(ctx context.Context) (string, error) {
		return "", fmt.Errorf("messaging service unavailable")
	}
	reg := NewRegistrar(client, provider, nil, "android")

	assert.Error(t, reg.Register(context.Background()))
	assert.Zero(t, client.registerCalls)
}

func TestRegistrar_Register_DeviceIDBestEffort(t *testing.T) {
	client := &mockAPI{}
	device := &mockDevice{err: fmt.Errorf("storage unavailable")}
	reg := NewRegistrar(client, staticToken("fcm-token"), device, "android")

	// Недоступный device id не мешает регистрации
	require.NoError(t, reg.Register(context.Background()))
	assert.Equal(t, 1, client.registerCalls)
	assert.Empty(t, client.lastReq.DeviceID)
}

func TestRegistrar_Register_ServerFailure(t *testing.T) {
	client := &mockAPI{registerErr: fmt.Errorf("500")}
	reg := NewRegistrar(client, staticToken("fcm-token"), nil, "android")

	assert.Error(t, reg.Register(context.Background()))
}

func TestRegistrar_Unregister(t *testing.T) {
	client := &mockAPI{}
	reg := NewRegistrar(client, staticToken("fcm-token"), nil, "android")

	require.NoError(t, reg.Unregister(context.Background()))
	assert.Equal(t, 1, client.unregisterCalls)

	client.unregisterErr = fmt.Errorf("timeout")
	assert.Error(t, reg.Unregister(context.Background()))
}
