package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// errorResponse is the envelope for errors that are not tied to a field.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders validation and conflict errors as {"field": ["message", ...]}.
//   - Maps the remaining domain errors to {"error": "<message>"} with their status.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, any) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Fields
	}
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return http.StatusBadRequest, ce.Fields
	}

	// Echo's own errors (bind failures, 404/405 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, errorResponse{Error: notFoundMessage(err)}
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidCode.Error()}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrUnauthenticated.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "you do not have permission to perform this action"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func notFoundMessage(err error) string {
	for _, target := range []error{
		domain.ErrUserNotFound, domain.ErrTitleNotFound, domain.ErrReviewNotFound,
		domain.ErrCommentNotFound, domain.ErrCategoryNotFound, domain.ErrGenreNotFound,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "not found"
}
