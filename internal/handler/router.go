package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sumire/strava-bridge/internal/service"
)

const firebaseTokenPath = "/firebaseToken"

// skipCORS leaves requests without an Origin header, and every non-POST call
// to the token endpoint, to the route handlers.
func skipCORS(c echo.Context) bool {
	req := c.Request()
	if req.Header.Get(echo.HeaderOrigin) == "" {
		return true
	}
	return req.URL.Path == firebaseTokenPath && req.Method != http.MethodPost
}

// NewRouter builds the echo instance serving all HTTP routes.
func NewRouter(auth *service.AuthService, allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewAppValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	if len(allowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			Skipper:       skipCORS,
			AllowOrigins:  allowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
			ExposeHeaders: []string{echo.HeaderXRequestID},
			MaxAge:        300,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := NewAuthHandler(auth)

	// Every method is routed so that non-POST calls get the endpoint's own error.
	e.Any(firebaseTokenPath, authHandler.FirebaseToken)

	api := e.Group("/api/v1")
	api.GET("/auth/me", authHandler.Me, JWTAuth(auth))

	return e
}
