package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"rentpay_portal/internal/models"
	"rentpay_portal/internal/services"
)

const dashboardCacheKey = "dashboard:summary"

// DashboardHandler serves the admin overview numbers.
type DashboardHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewDashboardHandler(db *gorm.DB, cache *services.RedisCache) *DashboardHandler {
	return &DashboardHandler{db: db, cache: cache}
}

// DashboardSummary aggregates the portal-wide payment picture.
type DashboardSummary struct {
	TenantCount       int64   `json:"tenant_count"`
	PropertyCount     int64   `json:"property_count"`
	PendingCount      int64   `json:"pending_count"`
	OverdueCount      int64   `json:"overdue_count"`
	PaidThisMonth     int64   `json:"paid_this_month"`
	OutstandingAmount float64 `json:"outstanding_amount"`
	GeneratedAt       string  `json:"generated_at"`
}

// Summary returns the dashboard numbers, cached for a minute.
func (h *DashboardHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	fetch := func() (DashboardSummary, error) {
		now := time.Now()
		today := models.DateOnly(now)
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

		var summary DashboardSummary
		summary.GeneratedAt = now.Format(time.RFC3339)

		if err := h.db.Model(&models.Tenant{}).Count(&summary.TenantCount).Error; err != nil {
			return summary, err
		}
		if err := h.db.Model(&models.Property{}).Count(&summary.PropertyCount).Error; err != nil {
			return summary, err
		}
		if err := h.db.Model(&models.Payment{}).
			Where("status = ?", models.PaymentStatusPending).
			Count(&summary.PendingCount).Error; err != nil {
			return summary, err
		}
		if err := h.db.Model(&models.Payment{}).
			Where("status IN ? AND due_date < ?",
				[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusFailed}, today).
			Count(&summary.OverdueCount).Error; err != nil {
			return summary, err
		}
		if err := h.db.Model(&models.Payment{}).
			Where("status = ? AND paid_at >= ?", models.PaymentStatusSucceeded, monthStart).
			Count(&summary.PaidThisMonth).Error; err != nil {
			return summary, err
		}
		if err := h.db.Model(&models.Payment{}).
			Where("status IN ?", []models.PaymentStatus{
				models.PaymentStatusPending,
				models.PaymentStatusProcessing,
				models.PaymentStatusFailed,
			}).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&summary.OutstandingAmount).Error; err != nil {
			return summary, err
		}

		return summary, nil
	}

	if h.cache == nil {
		summary, err := fetch()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build dashboard")
		}
		return c.JSON(http.StatusOK, summary)
	}

	summary, err := services.GetOrSet(h.cache, ctx, dashboardCacheKey, time.Minute, fetch)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build dashboard")
	}
	return c.JSON(http.StatusOK, summary)
}
