package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/metrics"
	"github.com/yamdb/yamdb-api/internal/core/permission"
)

// Guard runs the collection-level check of policy against the current user
// and request method. Object-level checks happen once the target is loaded.
func Guard(policy permission.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := permission.Check(policy, CurrentUser(c), c.Request().Method); err != nil {
				metrics.PermissionDeniedTotal.WithLabelValues(policy.Name(), "collection").Inc()
				return err
			}
			return next(c)
		}
	}
}
