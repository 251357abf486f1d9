package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/strava-bridge/internal/domain"
)

const msgUnhandled = "Unhandled error"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenResponse is the body of a successful token exchange.
type TokenResponse struct {
	FirebaseCustomToken string `json:"firebaseCustomToken"`
}

// unhandledError marks a failure whose detail must not reach the caller.
type unhandledError struct {
	err error
}

func (e *unhandledError) Error() string { return e.err.Error() }
func (e *unhandledError) Unwrap() error { return e.err }

// HTTPErrorHandler is the global error handler for echo.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("unhandled error",
			"error", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
	}

	if jsonErr := c.JSON(status, ErrorResponse{Error: msg}); jsonErr != nil {
		slog.Error("failed to send error response", "error", jsonErr)
	}
}

func mapError(err error) (int, string) {
	var unhandled *unhandledError
	if errors.As(err, &unhandled) {
		return http.StatusInternalServerError, msgUnhandled
	}

	switch {
	case errors.Is(err, domain.ErrInvalidMethod):
		return http.StatusBadRequest, "Invalid HTTP method"
	case errors.Is(err, domain.ErrInvalidStravaToken):
		return http.StatusBadRequest, "Invalid Strava token"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	}

	// Handle echo's own HTTP errors (404, 405, etc.)
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code < http.StatusInternalServerError {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, msg
	}

	return http.StatusInternalServerError, msgUnhandled
}
