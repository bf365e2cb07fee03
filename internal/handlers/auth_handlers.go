package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authClient *auth.Client
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authClient *auth.Client) *AuthHandler {
	return &AuthHandler{authClient: authClient}
}

// Config exposes the Firebase client configuration the login page needs.
func (h *AuthHandler) Config(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"api_key":     os.Getenv("FIREBASE_API_KEY"),
		"auth_domain": os.Getenv("FIREBASE_AUTH_DOMAIN"),
		"project_id":  os.Getenv("FIREBASE_PROJECT_ID"),
	})
}

// HandleLogin verifies the Firebase ID token and creates a session cookie
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	if h.authClient == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "auth not configured")
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}

	if _, err := h.authClient.VerifyIDToken(c.Request().Context(), tokenString); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	// Session cookie valid for 5 days
	expiresIn := time.Hour * 24 * 5
	cookieValue, err := h.authClient.SessionCookie(c.Request().Context(), tokenString, expiresIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create session")
	}

	cookie := &http.Cookie{
		Name:     "session",
		Value:    cookieValue,
		MaxAge:   int(expiresIn.Seconds()),
		HttpOnly: true,
		Secure:   os.Getenv("ENV") == "production",
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]string{
		"status": "success",
	})
}

// HandleLogout clears the session cookie
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	cookie := &http.Cookie{
		Name:     "session",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]string{
		"status": "logged out",
	})
}

// Me returns the caller's resolved portal account.
func (h *AuthHandler) Me(c echo.Context) error {
	account, ok := currentAccount(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no portal account for this login")
	}
	return c.JSON(http.StatusOK, account)
}
