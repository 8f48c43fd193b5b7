package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

var (
	// ErrNoRefreshToken возвращается, когда в хранилище нет refresh токена
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRenewalRejected возвращается, когда сервер отверг refresh токен
	// (истек, отозван, уже использован)
	ErrRenewalRejected = errors.New("refresh token rejected by server")
)

// Renewer координирует обновление пары токенов.
//
// Несколько параллельных запросов могут одновременно получить 401 на границе
// истечения access токена. Запускать обмен refresh токена для каждого из них
// нельзя: сервер инвалидирует refresh токен после первого использования, и
// гонка обменов навсегда выбьет сессию. Поэтому обмен выполняется через
// singleflight: летит ровно один, остальные ждут его исход. После завершения
// слот освобождается, и будущий 401 запустит новый обмен.
type Renewer struct {
	store   CredentialStore
	refresh func(ctx context.Context, refreshToken string) (*pkgapi.TokenPair, error)

	// onSessionExpired вызывается после очистки хранилища при терминальном
	// провале обновления, чтобы состояние сессии не разошлось с хранилищем
	onSessionExpired func(ctx context.Context)

	group singleflight.Group
}

// Renew обменивает refresh токен на новую пару и записывает её в хранилище.
// Параллельные вызовы разделяют один обмен и получают общий результат.
//
// ErrNoRefreshToken и ErrRenewalRejected терминальны: хранилище очищено,
// сессия переведена в unauthenticated. Сетевые ошибки хранилище не трогают.
func (r *Renewer) Renew(ctx context.Context) (*pkgapi.TokenPair, error) {
	v, err, shared := r.group.Do("renew", func() (any, error) {
		return r.renewOnce(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("token renewal shared between concurrent requests")
	}
	return v.(*pkgapi.TokenPair), nil
}

// renewOnce выполняет единственный реальный обмен
func (r *Renewer) renewOnce(ctx context.Context) (*pkgapi.TokenPair, error) {
	pair, err := r.store.Get(ctx)
	if err != nil || pair.RefreshToken == "" {
		r.expire(ctx)
		return nil, ErrNoRefreshToken
	}

	newPair, err := r.refresh(ctx, pair.RefreshToken)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && isRejection(httpErr.StatusCode) {
			r.expire(ctx)
			return nil, fmt.Errorf("%w: %s", ErrRenewalRejected, httpErr.Error())
		}
		// Сетевая ошибка: токены могут быть еще годны, хранилище не трогаем
		return nil, fmt.Errorf("failed to renew tokens: %w", err)
	}

	// Новая пара записывается до того, как уйдет хоть один повторный запрос
	if err := r.store.Set(ctx, *newPair); err != nil {
		return nil, fmt.Errorf("failed to save renewed tokens: %w", err)
	}

	return newPair, nil
}

// expire очищает хранилище и уведомляет о терминальном конце сессии
func (r *Renewer) expire(ctx context.Context) {
	if err := r.store.Clear(ctx); err != nil {
		slog.Warn("failed to clear credentials after renewal failure", "error", err)
	}
	if r.onSessionExpired != nil {
		r.onSessionExpired(ctx)
	}
}

// isRejection сообщает, означает ли статус отказ серверу принять refresh токен
func isRejection(statusCode int) bool {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	default:
		return false
	}
}
