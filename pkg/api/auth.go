package api

// LoginRequest представляет запрос на вход по логину и паролю
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"firstName,omitempty" validate:"omitempty,max=64"`
	LastName  string `json:"lastName,omitempty" validate:"omitempty,max=64"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// TokenPair представляет пару токенов, выданную сервером
type TokenPair struct {
	AccessToken  string `json:"accessToken"`  // короткоживущий JWT
	RefreshToken string `json:"refreshToken"` // долгоживущий токен для обновления
}

// AuthPayload представляет полезную нагрузку ответа login/register
type AuthPayload struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
	// RequiresVerification выставляется сервером при регистрации,
	// если аккаунт требует подтверждения email
	RequiresVerification bool `json:"requiresVerification,omitempty"`
}

// MePayload представляет полезную нагрузку ответа GET /auth/me
type MePayload struct {
	User *User `json:"user"`
}

// VerifyOTPRequest представляет запрос подтверждения email по одноразовому коду
type VerifyOTPRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

// RefreshRequest представляет запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshPayload представляет полезную нагрузку ответа POST /auth/refresh-token
type RefreshPayload struct {
	Tokens *TokenPair `json:"tokens"`
}

// ForgotPasswordRequest представляет запрос на сброс пароля
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyResetOTPRequest представляет запрос проверки кода сброса пароля
type VerifyResetOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResetTokenPayload представляет полезную нагрузку ответа POST /auth/verify-reset-otp
type ResetTokenPayload struct {
	ResetToken string `json:"resetToken"`
}

// ResetPasswordRequest представляет запрос установки нового пароля
type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

// PushTokenRequest представляет регистрацию push-токена устройства
type PushTokenRequest struct {
	PushToken string `json:"pushToken" validate:"required"`
	Platform  string `json:"platform" validate:"required,oneof=ios android"`
	DeviceID  string `json:"deviceId,omitempty"`
}
