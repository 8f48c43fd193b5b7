package api

import (
	"encoding/json"
	"time"
)

// User представляет профиль пользователя, как его отдает сервер.
// Клиент не интерпретирует профиль, кроме признака подтверждения email,
// по которому выбирается состояние сессии.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName,omitempty"`
	LastName        string    `json:"lastName,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`

	// Extra сохраняет поля профиля, неизвестные этой версии клиента
	Extra map[string]json.RawMessage `json:"-"`
}

type userAlias User

// UnmarshalJSON разбирает известные поля и складывает остальные в Extra,
// чтобы профиль проходил через клиент без потерь
func (u *User) UnmarshalJSON(data []byte) error {
	var known userAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, field := range []string{
		"id", "username", "email", "firstName", "lastName",
		"phone", "isEmailVerified", "createdAt",
	} {
		delete(raw, field)
	}

	*u = User(known)
	if len(raw) > 0 {
		u.Extra = raw
	}
	return nil
}
