package push

import (
	"context"
	"fmt"
	"log/slog"

	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

//go:generate moq -out api_mock.go . APIClient

// APIClient defines the push-token endpoints the registrar needs
type APIClient interface {
	RegisterPushToken(ctx context.Context, req pkgapi.PushTokenRequest) error
	UnregisterPushToken(ctx context.Context) error
}

// TokenProvider возвращает платформенный push-токен устройства (FCM/APNS).
// Токен может быть недоступен, например до выдачи разрешения на уведомления.
type TokenProvider func(ctx context.Context) (string, error)

// DeviceIDSource выдает идентификатор установки
type DeviceIDSource interface {
	DeviceID(ctx context.Context) (string, error)
}

// Registrar регистрирует push-токен устройства на сервере.
// Все операции best-effort: их провал никогда не влияет на сессию,
// вызывающий код только логирует ошибку.
type Registrar struct {
	client   APIClient
	provider TokenProvider
	device   DeviceIDSource
	platform string
}

// NewRegistrar создает регистратор push-токенов
func NewRegistrar(client APIClient, provider TokenProvider, device DeviceIDSource, platform string) *Registrar {
	return &Registrar{
		client:   client,
		provider: provider,
		device:   device,
		platform: platform,
	}
}

// Register отправляет push-токен на сервер.
// Требует живой access token, поэтому вызывается на входе в Authenticated.
func (r *Registrar) Register(ctx context.Context) error {
	if r.provider == nil {
		slog.Debug("push token provider not configured, skipping registration")
		return nil
	}

	token, err := r.provider(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain push token: %w", err)
	}
	if token == "" {
		slog.Debug("no push token available, skipping registration")
		return nil
	}

	req := pkgapi.PushTokenRequest{
		PushToken: token,
		Platform:  r.platform,
	}

	// device id best-effort: без него регистрация тоже валидна
	if r.device != nil {
		if id, err := r.device.DeviceID(ctx); err == nil {
			req.DeviceID = id
		} else {
			slog.Debug("failed to get device id for push registration", "error", err)
		}
	}

	if err := r.client.RegisterPushToken(ctx, req); err != nil {
		return fmt.Errorf("failed to register push token: %w", err)
	}

	return nil
}

// Unregister снимает регистрацию push-токена.
// Вызывается до серверного logout и до очистки учетных данных,
// пока access token еще действителен.
func (r *Registrar) Unregister(ctx context.Context) error {
	if err := r.client.UnregisterPushToken(ctx); err != nil {
		return fmt.Errorf("failed to unregister push token: %w", err)
	}
	return nil
}
