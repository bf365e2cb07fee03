package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"rentpay_portal/internal/models"
)

type TenantHandler struct {
	db *gorm.DB
}

func NewTenantHandler(db *gorm.DB) *TenantHandler {
	return &TenantHandler{db: db}
}

type tenantForm struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PaymentDueDay  int    `json:"payment_due_day"`
	PropertyID     *uint  `json:"property_id"`
	AutopayEnabled bool   `json:"autopay_enabled"`
	ReminderOptOut bool   `json:"reminder_opt_out"`
}

func (f tenantForm) validate() error {
	if f.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if f.PaymentDueDay < 1 || f.PaymentDueDay > 31 {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_due_day must be between 1 and 31")
	}
	return nil
}

// ListTenants returns all tenants with their property assignment.
func (h *TenantHandler) ListTenants(c echo.Context) error {
	var tenants []models.Tenant
	if err := h.db.Preload("Property").Order("name").Find(&tenants).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch tenants")
	}
	return c.JSON(http.StatusOK, tenants)
}

// GetTenant returns one tenant with property and recent payments.
func (h *TenantHandler) GetTenant(c echo.Context) error {
	var tenant models.Tenant
	err := h.db.Preload("Property").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date desc").Limit(24)
		}).
		First(&tenant, c.Param("id")).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}
	return c.JSON(http.StatusOK, tenant)
}

// StoreTenant creates a new tenant.
func (h *TenantHandler) StoreTenant(c echo.Context) error {
	var form tenantForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := form.validate(); err != nil {
		return err
	}
	if form.PropertyID != nil {
		if err := h.db.First(&models.Property{}, *form.PropertyID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Property does not exist")
		}
	}

	tenant := models.Tenant{
		Name:           form.Name,
		Email:          form.Email,
		Phone:          form.Phone,
		PaymentDueDay:  form.PaymentDueDay,
		PropertyID:     form.PropertyID,
		AutopayEnabled: form.AutopayEnabled,
		ReminderOptOut: form.ReminderOptOut,
	}
	if err := h.db.Create(&tenant).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create tenant")
	}
	return c.JSON(http.StatusCreated, tenant)
}

// UpdateTenant updates an existing tenant, including its property
// assignment and billing day. Existing charges keep their snapshot amount.
func (h *TenantHandler) UpdateTenant(c echo.Context) error {
	var tenant models.Tenant
	if err := h.db.First(&tenant, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	var form tenantForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := form.validate(); err != nil {
		return err
	}
	if form.PropertyID != nil {
		if err := h.db.First(&models.Property{}, *form.PropertyID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Property does not exist")
		}
	}

	tenant.Name = form.Name
	tenant.Email = form.Email
	tenant.Phone = form.Phone
	tenant.PaymentDueDay = form.PaymentDueDay
	tenant.PropertyID = form.PropertyID
	tenant.AutopayEnabled = form.AutopayEnabled
	tenant.ReminderOptOut = form.ReminderOptOut

	if err := h.db.Save(&tenant).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

// DeleteTenant soft-deletes a tenant. Tenants with payment history keep
// their rows; the ledger is never orphaned by a delete.
func (h *TenantHandler) DeleteTenant(c echo.Context) error {
	var tenant models.Tenant
	if err := h.db.First(&tenant, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	if err := h.db.Delete(&tenant).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete tenant")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
