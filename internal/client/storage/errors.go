package storage

import "errors"

var (
	// ErrCredentialsNotFound возвращается, когда в хранилище нет полной пары токенов
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrDeviceIDNotFound возвращается, когда device ID еще не создан
	ErrDeviceIDNotFound = errors.New("device id not found")
)
