package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CustomErrorHandler converts every error into a consistent JSON envelope.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again later."

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	c.Logger().Error(err)

	if jsonErr := c.JSON(code, map[string]interface{}{
		"error":  message,
		"status": code,
	}); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
