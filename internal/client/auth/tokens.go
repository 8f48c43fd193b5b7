package auth

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

// looksRenewable проверяет, имеет ли смысл восстанавливать сессию из пары:
// refresh токен есть, а access токен хотя бы разбирается как JWT.
// Подпись не проверяется - ключа у клиента нет, решает сервер.
// Истекший access токен пригоден: конвейер обновит его прозрачно.
func looksRenewable(pair *pkgapi.TokenPair) bool {
	if pair == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(pair.AccessToken, claims); err != nil {
		slog.Debug("stored access token is not a parseable JWT", "error", err)
		return false
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		slog.Debug("stored access token is expired, renewal expected on first request")
	}

	return true
}
