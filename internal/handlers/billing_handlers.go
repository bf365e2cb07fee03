package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"rentpay_portal/internal/billing"
	"rentpay_portal/internal/models"
	"rentpay_portal/internal/services"
)

// BillingHandler exposes the charge-generation core to admin tooling: the
// missing-payment sweep button and per-tenant generation.
type BillingHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewBillingHandler(db *gorm.DB, cache *services.RedisCache) *BillingHandler {
	return &BillingHandler{db: db, cache: cache}
}

// RunSweep backfills every rent charge that should already exist and
// returns the full per-tenant report. Safe to run repeatedly.
func (h *BillingHandler) RunSweep(c echo.Context) error {
	ctx := c.Request().Context()
	store := billing.NewGormStore(h.db)

	report, err := billing.CheckAndGenerateMissingPayments(ctx, store, store, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Sweep failed: "+err.Error())
	}

	if h.cache != nil && report.Generated > 0 {
		_ = h.cache.Delete(ctx, dashboardCacheKey)
	}

	return c.JSON(http.StatusOK, report)
}

// GenerateForTenant creates the current cycle's charge for one tenant.
func (h *BillingHandler) GenerateForTenant(c echo.Context) error {
	tenantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tenant ID")
	}

	ctx := c.Request().Context()
	store := billing.NewGormStore(h.db)

	var tenant models.Tenant
	if err := h.db.First(&tenant, tenantID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	dueDate := billing.NextDueDate(tenant.PaymentDueDay, time.Now())
	result, err := billing.GeneratePaymentForTenant(ctx, store, store, uint(tenantID), dueDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if h.cache != nil && result.Created {
		_ = h.cache.Delete(ctx, dashboardCacheKey)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"created": result.Created,
		"payment": result.Payment,
	})
}
