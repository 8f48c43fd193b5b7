package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lunabook/sessionkit/internal/client/storage"
	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

//go:generate moq -out store_mock.go . CredentialStore

// CredentialStore defines what the HTTP client needs from credential storage:
// a token pair to attach, to rewrite after renewal, and to clear when the
// session is beyond recovery.
type CredentialStore interface {
	// Get returns the current token pair or creds.ErrCredentialsNotFound
	Get(ctx context.Context) (*pkgapi.TokenPair, error)

	// Set atomically replaces the token pair
	Set(ctx context.Context, pair pkgapi.TokenPair) error

	// Clear removes the token pair
	Clear(ctx context.Context) error
}

const (
	// defaultTimeout - потолок ожидания каждого сетевого вызова
	defaultTimeout = 15 * time.Second

	// retryBudget - сколько повторов разрешено одному запросу после 401.
	// Ровно один: исходная попытка плюс одна после обновления токенов.
	retryBudget = 1

	// authPrefix - общий префикс эндпоинтов аутентификации
	authPrefix = "/auth"

	refreshPath = authPrefix + "/refresh-token"
)

// requestDecorator дорабатывает исходящий запрос перед отправкой
type requestDecorator func(ctx context.Context, req *http.Request) error

// Client представляет HTTP клиент для взаимодействия с сервером.
// Каждый запрос проходит конвейер: декораторы запроса (Content-Type,
// bearer-токен из хранилища), затем обработка ответа с бюджетом
// на один прозрачный повтор после обновления токенов.
type Client struct {
	httpClient *http.Client
	store      CredentialStore
	renewer    *Renewer
	baseURL    string
	decorators []requestDecorator
}

// Option настраивает клиента при создании
type Option func(*Client)

// WithTimeout задает потолок ожидания сетевого вызова
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient подменяет http.Client целиком (для тестов)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionExpiredHook задает обработчик, вызываемый когда обновление
// токенов окончательно провалилось и хранилище очищено
func WithSessionExpiredHook(hook func(ctx context.Context)) Option {
	return func(c *Client) {
		if c.renewer != nil {
			c.renewer.onSessionExpired = hook
		}
	}
}

// NewClient создает новый API клиент.
// store может быть nil - тогда запросы уходят без авторизации
// и путь обновления токенов отключен.
func NewClient(baseURL string, store CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		store:   store,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	c.decorators = []requestDecorator{c.attachBearer}

	if store != nil {
		c.renewer = &Renewer{
			store:   store,
			refresh: c.refreshTokens,
		}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Renewer возвращает координатор обновления токенов (nil без хранилища)
func (c *Client) Renewer() *Renewer {
	return c.renewer
}

// do выполняет запрос через конвейер.
// 401 на любом пути, кроме refresh, один раз запускает обновление токенов
// и повтор запроса; второй 401 возвращается как есть.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		statusCode, respBody, err := c.send(ctx, method, path, payload)
		if err != nil {
			// Сетевая ошибка или таймаут: хранилище не трогаем
			return fmt.Errorf("request failed: %w", err)
		}

		if statusCode == http.StatusUnauthorized && path != refreshPath &&
			attempt < retryBudget && c.renewer != nil {
			if _, renewErr := c.renewer.Renew(ctx); renewErr != nil {
				// Обновление не удалось - возвращаем исходный 401.
				// Очистку хранилища уже выполнил координатор, если это было уместно.
				slog.Debug("token renewal failed, returning original 401",
					"path", path, "error", renewErr)
				return newHTTPError(statusCode, respBody)
			}
			// Токены обновлены и записаны - повторяем исходный запрос
			continue
		}

		if statusCode < 200 || statusCode >= 300 {
			return newHTTPError(statusCode, respBody)
		}

		if result != nil {
			if err := unwrapEnvelope(respBody, result); err != nil {
				return err
			}
		}

		return nil
	}
}

// send отправляет один запрос и читает ответ целиком
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, decorate := range c.decorators {
		if err := decorate(ctx, req); err != nil {
			return 0, nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// attachBearer добавляет Authorization заголовок, если в хранилище есть токен.
// Отсутствие токена не ошибка: часть эндпоинтов не требует авторизации.
func (c *Client) attachBearer(ctx context.Context, req *http.Request) error {
	if c.store == nil {
		return nil
	}

	pair, err := c.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrCredentialsNotFound) {
			slog.Debug("failed to read credentials, sending unauthenticated", "error", err)
		}
		return nil
	}

	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	return nil
}

// unwrapEnvelope разбирает конверт {"data": ...} успешного ответа
func unwrapEnvelope(body []byte, result any) error {
	var env pkgapi.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("response envelope has no data")
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to decode response payload: %w", err)
	}
	return nil
}

// refreshTokens вызывает эндпоинт обновления токенов.
// 401 отсюда терминален - конвейер не запускает обновление для этого пути.
func (c *Client) refreshTokens(ctx context.Context, refreshToken string) (*pkgapi.TokenPair, error) {
	var payload pkgapi.RefreshPayload
	err := c.do(ctx, http.MethodPost, refreshPath,
		pkgapi.RefreshRequest{RefreshToken: refreshToken}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Tokens == nil || payload.Tokens.AccessToken == "" || payload.Tokens.RefreshToken == "" {
		return nil, fmt.Errorf("refresh response is missing tokens")
	}
	return payload.Tokens, nil
}
