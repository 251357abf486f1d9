package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/strava-bridge/internal/domain"
	"github.com/sumire/strava-bridge/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type tokenRequest struct {
	StravaRefreshToken string `query:"strava_refresh_token" validate:"required"`
}

// FirebaseToken exchanges a Strava refresh token for a custom token.
// Only malformed requests get a specific error; every later failure is
// answered with the same generic 500.
func (h *AuthHandler) FirebaseToken(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return domain.ErrInvalidMethod
	}

	var req tokenRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidStravaToken, err)
	}
	if err := c.Validate(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidStravaToken, err)
	}

	token, err := h.auth.ExchangeStravaToken(c.Request().Context(), req.StravaRefreshToken)
	if err != nil {
		return &unhandledError{err: err}
	}

	return c.JSON(http.StatusOK, TokenResponse{FirebaseCustomToken: token})
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	user, err := h.auth.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
