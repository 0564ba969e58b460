package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/api/middleware"
	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// ctxUser returns the identity resolved by the Authenticate middleware, or
// nil for anonymous requests.
func ctxUser(c echo.Context) *domain.User {
	return middleware.CurrentUser(c)
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// pathID parses an integer path parameter. Malformed ids cannot match any
// record, so they report notFound.
func pathID(c echo.Context, name string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}
