package api

import "encoding/json"

// Envelope представляет стандартный конверт успешного ответа сервера: {"data": <payload>}
type Envelope struct {
	Data json.RawMessage `json:"data"`
}

// ErrorResponse представляет тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`   // машиночитаемый код
	Message string `json:"message,omitempty"` // текст для пользователя
}
