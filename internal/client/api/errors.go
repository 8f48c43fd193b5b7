package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

// HTTPError представляет не-2xx ответ сервера.
// Message заполняется из тела ответа, если сервер его прислал.
type HTTPError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// newHTTPError разбирает тело ошибки сервера.
// Нечитаемое тело не является ошибкой - статус кода достаточно.
func newHTTPError(statusCode int, body []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: statusCode}

	var errResp pkgapi.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		httpErr.Code = errResp.Error
		httpErr.Message = errResp.Message
	}

	return httpErr
}

// IsAuthFailure сообщает, является ли ошибка ответом 401
func IsAuthFailure(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}

// ErrorMessage возвращает серверное сообщение из ошибки, если оно есть,
// иначе fallback. Используется для текстов, видимых пользователю.
func ErrorMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}
