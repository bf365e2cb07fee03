package middleware

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"rentpay_portal/internal/models"
)

// RequireAuth returns a middleware that verifies Firebase session cookies
// and resolves the portal account for downstream handlers.
func RequireAuth(authClient *auth.Client, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "auth not configured")
			}

			cookie, err := c.Cookie("session")
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}

			decodedToken, err := authClient.VerifySessionCookie(c.Request().Context(), cookie.Value)
			if err != nil {
				// Invalid session, clear cookie
				clearCookie := &http.Cookie{
					Name:     "session",
					Value:    "",
					MaxAge:   -1,
					HttpOnly: true,
					Path:     "/",
				}
				c.SetCookie(clearCookie)
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}

			c.Set("userUID", decodedToken.UID)
			email, _ := decodedToken.Claims["email"].(string)
			c.Set("userEmail", email)

			// Resolve the portal account; unknown emails get no role and
			// only reach their own login/logout endpoints.
			if db != nil && email != "" {
				var account models.User
				if err := db.Where("email = ?", email).First(&account).Error; err == nil {
					c.Set("account", account)
					c.Set("userRole", string(account.Role))
				}
			}

			return next(c)
		}
	}
}

// RequireAdmin gates admin-only routes. Must run after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("userRole").(string)
			if role != string(models.UserRoleAdmin) {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}
