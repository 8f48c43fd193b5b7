package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/lunabook/sessionkit/internal/client/api"
	"github.com/lunabook/sessionkit/internal/client/session"
	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

//go:generate moq -out api_mock.go . APIClient

// APIClient defines the auth endpoints the service orchestrates
type APIClient interface {
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthPayload, error)
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthPayload, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*pkgapi.MePayload, error)
	VerifyOTP(ctx context.Context, otp string) error
	ResendOTP(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, email, otp string) (*pkgapi.ResetTokenPayload, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// CredentialStore defines what the service needs from credential storage
type CredentialStore interface {
	Get(ctx context.Context) (*pkgapi.TokenPair, error)
	Set(ctx context.Context, pair pkgapi.TokenPair) error
	Clear(ctx context.Context) error
}

// Pusher registers and unregisters the device push token (best effort)
type Pusher interface {
	Register(ctx context.Context) error
	Unregister(ctx context.Context) error
}

// ErrOperationInFlight возвращается при попытке запустить вторую
// пользовательскую auth-операцию, пока первая не завершилась.
// Переходы состояния не реентерабельны, поэтому операции сериализуются.
var ErrOperationInFlight = errors.New("another auth operation is in progress")

// Service оркестрирует операции аутентификации: вызывает API,
// обновляет хранилище учетных данных и машину состояний сессии
type Service struct {
	client   APIClient
	store    CredentialStore
	sessions *session.Manager
	push     Pusher
	validate *validator.Validate
	busy     atomic.Bool
}

// NewService создает сервис аутентификации.
// push может быть nil - тогда side effect регистрации push-токена отключен.
func NewService(client APIClient, store CredentialStore, sessions *session.Manager, push Pusher) *Service {
	return &Service{
		client:   client,
		store:    store,
		sessions: sessions,
		push:     push,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// begin занимает слот единственной операции; освобождение через возвращенную функцию
func (s *Service) begin() (func(), error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrOperationInFlight
	}
	return func() { s.busy.Store(false) }, nil
}

// Bootstrap восстанавливает сессию при старте приложения.
// Если в хранилище есть правдоподобная пара токенов, запрашивает профиль;
// иначе, как и при любом сбое, приложение остается незалогиненным.
func (s *Service) Bootstrap(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	pair, err := s.store.Get(ctx)
	if err != nil {
		s.sessions.SetUnauthenticated()
		return nil
	}

	if !looksRenewable(pair) {
		slog.Debug("stored tokens are not usable, starting unauthenticated")
		s.clearToUnauthenticated(ctx)
		return nil
	}

	me, err := s.client.Me(ctx)
	if err != nil {
		// Профиль недоступен (включая провал обновления токенов) -
		// стартуем незалогиненными, хранилище чистим
		slog.Debug("failed to fetch current user on bootstrap", "error", err)
		s.clearToUnauthenticated(ctx)
		return nil
	}

	return s.applyUser(ctx, me.User)
}

// Login выполняет вход по логину и паролю
func (s *Service) Login(ctx context.Context, username, password string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	req := pkgapi.LoginRequest{Username: username, Password: password}
	if err := s.validate.Struct(req); err != nil {
		s.sessions.SetError("invalid username or password format")
		return fmt.Errorf("invalid login request: %w", err)
	}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		s.sessions.SetError(api.ErrorMessage(err, "login failed"))
		return fmt.Errorf("login failed: %w", err)
	}

	return s.establish(ctx, resp, "login")
}

// Register регистрирует нового пользователя.
// Если сервер требует подтверждения email, сессия переходит
// в PendingVerification, иначе сразу в Authenticated.
func (s *Service) Register(ctx context.Context, req pkgapi.RegisterRequest) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := s.validate.Struct(req); err != nil {
		s.sessions.SetError("invalid registration data")
		return fmt.Errorf("invalid register request: %w", err)
	}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		s.sessions.SetError(api.ErrorMessage(err, "registration failed"))
		return fmt.Errorf("registration failed: %w", err)
	}

	return s.establish(ctx, resp, "registration")
}

// Logout завершает сессию. Учетные данные очищаются всегда,
// даже если сервер недоступен.
func (s *Service) Logout(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	// 1. Снимаем push-регистрацию, пока access token еще действителен
	if s.push != nil {
		if err := s.push.Unregister(ctx); err != nil {
			slog.Warn("failed to unregister push token", "error", err)
		}
	}

	// 2. Уведомляем сервер (best effort)
	if err := s.client.Logout(ctx); err != nil {
		slog.Warn("failed to logout on server", "error", err)
	}

	// 3. Всегда чистим локальные данные и состояние
	clearErr := s.store.Clear(ctx)
	s.sessions.SetUnauthenticated()

	if clearErr != nil {
		return fmt.Errorf("failed to clear credentials: %w", clearErr)
	}
	return nil
}

// CurrentUser запрашивает свежий профиль и пересчитывает состояние сессии
func (s *Service) CurrentUser(ctx context.Context) (*pkgapi.User, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	me, err := s.client.Me(ctx)
	if err != nil {
		if api.IsAuthFailure(err) {
			// 401 после исчерпанного повтора: сессия не восстановима
			s.clearToUnauthenticated(ctx)
		} else {
			s.sessions.SetError(api.ErrorMessage(err, "failed to load profile"))
		}
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}

	if err := s.applyUser(ctx, me.User); err != nil {
		return nil, err
	}
	return me.User, nil
}

// VerifyEmail подтверждает email одноразовым кодом и переводит сессию
// из PendingVerification в Authenticated
func (s *Service) VerifyEmail(ctx context.Context, otp string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := s.validate.Var(otp, "required,len=6,numeric"); err != nil {
		s.sessions.SetError("verification code must be 6 digits")
		return fmt.Errorf("invalid otp: %w", err)
	}

	if err := s.client.VerifyOTP(ctx, otp); err != nil {
		s.sessions.SetError(api.ErrorMessage(err, "email verification failed"))
		return fmt.Errorf("email verification failed: %w", err)
	}

	// Забираем обновленный профиль, чтобы состояние отражало сервер
	me, err := s.client.Me(ctx)
	if err != nil {
		s.sessions.SetError(api.ErrorMessage(err, "failed to load profile"))
		return fmt.Errorf("failed to fetch current user after verification: %w", err)
	}

	return s.applyUser(ctx, me.User)
}

// ResendCode запрашивает повторную отправку кода подтверждения
func (s *Service) ResendCode(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := s.client.ResendOTP(ctx); err != nil {
		s.sessions.SetError(api.ErrorMessage(err, "failed to resend verification code"))
		return fmt.Errorf("failed to resend verification code: %w", err)
	}
	return nil
}

// ForgotPassword запрашивает отправку кода сброса пароля на email
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := s.validate.Var(email, "required,email"); err != nil {
		s.sessions.SetError("invalid email address")
		return fmt.Errorf("invalid email: %w", err)
	}

	if err := s.client.ForgotPassword(ctx, email); err != nil {
		s.sessions.SetError(api.ErrorMessage(err, "failed to request password reset"))
		return fmt.Errorf("failed to request password reset: %w", err)
	}
	return nil
}

// VerifyResetCode проверяет код сброса и возвращает reset token
// для последующего вызова ResetPassword
func (s *Service) VerifyResetCode(ctx context.Context, email, otp string) (string, error) {
	done, err := s.begin()
	if err != nil {
		return "", err
	}
	defer done()

	if err := s.validate.Var(otp, "required,len=6,numeric"); err != nil {
		s.sessions.SetError("reset code must be 6 digits")
		return "", fmt.Errorf("invalid reset code: %w", err)
	}

	resp, err := s.client.VerifyResetOTP(ctx, email, otp)
	if err != nil {
		s.sessions.SetError(api.ErrorMessage(err, "failed to verify reset code"))
		return "", fmt.Errorf("failed to verify reset code: %w", err)
	}
	return resp.ResetToken, nil
}

// ResetPassword устанавливает новый пароль по reset token
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := s.validate.Var(newPassword, "required,min=8,max=128"); err != nil {
		s.sessions.SetError("password must be at least 8 characters")
		return fmt.Errorf("invalid new password: %w", err)
	}

	if err := s.client.ResetPassword(ctx, resetToken, newPassword); err != nil {
		s.sessions.SetError(api.ErrorMessage(err, "failed to reset password"))
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// establish сохраняет пару токенов и выводит состояние из профиля.
// Токены пишутся до перехода состояния: Authenticated никогда не
// наблюдается при пустом хранилище.
func (s *Service) establish(ctx context.Context, resp *pkgapi.AuthPayload, op string) error {
	if resp.User == nil || resp.Tokens == nil ||
		resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		s.sessions.SetError(op + " failed")
		return fmt.Errorf("%s response is missing user or tokens", op)
	}

	if err := s.store.Set(ctx, *resp.Tokens); err != nil {
		s.sessions.SetError(op + " failed")
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	if resp.RequiresVerification {
		s.sessions.SetPendingVerification(resp.User)
		return nil
	}

	return s.applyUser(ctx, resp.User)
}

// applyUser выводит состояние сессии из профиля пользователя.
// Вход в Authenticated тянет best-effort регистрацию push-токена.
func (s *Service) applyUser(ctx context.Context, user *pkgapi.User) error {
	if user == nil {
		s.sessions.SetError("server returned no user")
		return fmt.Errorf("response is missing user")
	}

	if !user.IsEmailVerified {
		s.sessions.SetPendingVerification(user)
		return nil
	}

	s.sessions.SetAuthenticated(user)

	if s.push != nil {
		if err := s.push.Register(ctx); err != nil {
			// Провал регистрации push-токена не влияет на сессию
			slog.Warn("failed to register push token", "error", err)
		}
	}

	return nil
}

// clearToUnauthenticated чистит хранилище и переводит сессию в Unauthenticated
func (s *Service) clearToUnauthenticated(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		slog.Warn("failed to clear credentials", "error", err)
	}
	s.sessions.SetUnauthenticated()
}
