package api

import (
	"context"
	"net/http"

	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

// Login выполняет вход по логину и паролю
func (c *Client) Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthPayload, error) {
	var payload pkgapi.AuthPayload
	if err := c.do(ctx, http.MethodPost, authPrefix+"/login", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthPayload, error) {
	var payload pkgapi.AuthPayload
	if err := c.do(ctx, http.MethodPost, authPrefix+"/register", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Logout уведомляет сервер о выходе
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, authPrefix+"/logout", nil, nil)
}

// Me возвращает профиль текущего пользователя
func (c *Client) Me(ctx context.Context) (*pkgapi.MePayload, error) {
	var payload pkgapi.MePayload
	if err := c.do(ctx, http.MethodGet, authPrefix+"/me", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// VerifyOTP подтверждает email одноразовым кодом
func (c *Client) VerifyOTP(ctx context.Context, otp string) error {
	return c.do(ctx, http.MethodPost, authPrefix+"/verify-otp",
		pkgapi.VerifyOTPRequest{OTP: otp}, nil)
}

// ResendOTP запрашивает повторную отправку кода подтверждения
func (c *Client) ResendOTP(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, authPrefix+"/resend-otp", nil, nil)
}

// ForgotPassword запрашивает сброс пароля на email
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, authPrefix+"/forgot-password",
		pkgapi.ForgotPasswordRequest{Email: email}, nil)
}

// VerifyResetOTP проверяет код сброса и возвращает reset token
func (c *Client) VerifyResetOTP(ctx context.Context, email, otp string) (*pkgapi.ResetTokenPayload, error) {
	var payload pkgapi.ResetTokenPayload
	err := c.do(ctx, http.MethodPost, authPrefix+"/verify-reset-otp",
		pkgapi.VerifyResetOTPRequest{Email: email, OTP: otp}, &payload)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// ResetPassword устанавливает новый пароль по reset token
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	return c.do(ctx, http.MethodPost, authPrefix+"/reset-password",
		pkgapi.ResetPasswordRequest{ResetToken: resetToken, NewPassword: newPassword}, nil)
}

// RegisterPushToken регистрирует push-токен устройства
func (c *Client) RegisterPushToken(ctx context.Context, req pkgapi.PushTokenRequest) error {
	return c.do(ctx, http.MethodPost, authPrefix+"/push-token", req, nil)
}

// UnregisterPushToken снимает регистрацию push-токена устройства
func (c *Client) UnregisterPushToken(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, authPrefix+"/push-token", nil, nil)
}
