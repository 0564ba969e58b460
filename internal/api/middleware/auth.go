package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/core/credentials"
	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// UserKey is the echo context key holding the authenticated *domain.User.
const UserKey = "user"

// TokenParser validates an access token and returns its claims.
type TokenParser interface {
	Parse(token string) (*credentials.Claims, error)
}

// UserLoader resolves the user a token was minted for.
type UserLoader interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// Authenticate resolves an optional bearer token into the current user.
// Requests without an Authorization header proceed anonymously; a malformed
// header, an invalid token or a token for a deleted user is rejected with 401.
func Authenticate(tokens TokenParser, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if errors.Is(err, domain.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
			}
			if err != nil {
				return err
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil when anonymous.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(UserKey).(*domain.User)
	return user
}
