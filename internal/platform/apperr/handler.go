package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Body is the uniform error response shape.
type Body struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HTTPErrorHandler returns the centralized echo error handler. Domain errors
// map to their taxonomy status; echo.HTTPError passes through; anything else
// is logged with full detail and surfaced as a generic 500.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status()
			message = appErr.Message
			if appErr.Kind == KindInternal {
				logger.Error().Err(appErr.Err).
					Str("path", c.Request().URL.Path).
					Msg("internal error")
				message = "internal server error"
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		default:
			logger.Error().Err(err).
				Str("path", c.Request().URL.Path).
				Msg("unexpected error")
		}

		resp := Body{Status: "error", Message: message}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}
