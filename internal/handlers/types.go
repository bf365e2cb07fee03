package handlers

import (
	"github.com/labstack/echo/v4"

	"rentpay_portal/internal/models"
)

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

// currentAccount returns the portal account resolved by the auth middleware.
func currentAccount(c echo.Context) (models.User, bool) {
	account, ok := c.Get("account").(models.User)
	return account, ok
}

func isAdmin(c echo.Context) bool {
	account, ok := currentAccount(c)
	return ok && account.Role == models.UserRoleAdmin
}
