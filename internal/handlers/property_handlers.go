package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"rentpay_portal/internal/models"
)

type PropertyHandler struct {
	db *gorm.DB
}

func NewPropertyHandler(db *gorm.DB) *PropertyHandler {
	return &PropertyHandler{db: db}
}

type propertyForm struct {
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	RentAmount   float64 `json:"rent_amount"`
}

func (f propertyForm) validate() error {
	if f.AddressLine1 == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "address_line1 is required")
	}
	if f.RentAmount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "rent_amount must be positive")
	}
	return nil
}

// ListProperties returns all properties with their tenants.
func (h *PropertyHandler) ListProperties(c echo.Context) error {
	var properties []models.Property
	if err := h.db.Preload("Tenants").Order("address_line1").Find(&properties).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch properties")
	}
	return c.JSON(http.StatusOK, properties)
}

// GetProperty returns one property.
func (h *PropertyHandler) GetProperty(c echo.Context) error {
	var property models.Property
	if err := h.db.Preload("Tenants").First(&property, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}
	return c.JSON(http.StatusOK, property)
}

// StoreProperty creates a new property.
func (h *PropertyHandler) StoreProperty(c echo.Context) error {
	var form propertyForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := form.validate(); err != nil {
		return err
	}

	property := models.Property{
		AddressLine1: form.AddressLine1,
		AddressLine2: form.AddressLine2,
		City:         form.City,
		State:        form.State,
		PostalCode:   form.PostalCode,
		RentAmount:   form.RentAmount,
	}
	if err := h.db.Create(&property).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create property")
	}
	return c.JSON(http.StatusCreated, property)
}

// UpdateProperty updates a property. Rent changes only affect charges
// generated afterwards; existing payments keep their snapshot amount.
func (h *PropertyHandler) UpdateProperty(c echo.Context) error {
	var property models.Property
	if err := h.db.First(&property, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}

	var form propertyForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := form.validate(); err != nil {
		return err
	}

	property.AddressLine1 = form.AddressLine1
	property.AddressLine2 = form.AddressLine2
	property.City = form.City
	property.State = form.State
	property.PostalCode = form.PostalCode
	property.RentAmount = form.RentAmount

	if err := h.db.Save(&property).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update property")
	}
	return c.JSON(http.StatusOK, property)
}

// DeleteProperty removes a property that has no assigned tenants.
func (h *PropertyHandler) DeleteProperty(c echo.Context) error {
	var property models.Property
	if err := h.db.First(&property, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}

	var assigned int64
	h.db.Model(&models.Tenant{}).Where("property_id = ?", property.ID).Count(&assigned)
	if assigned > 0 {
		return echo.NewHTTPError(http.StatusConflict, "Property still has assigned tenants")
	}

	if err := h.db.Delete(&property).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete property")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
