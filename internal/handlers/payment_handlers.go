package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"rentpay_portal/internal/models"
	"rentpay_portal/internal/services"
)

type PaymentHandler struct {
	db             *gorm.DB
	paymentService *services.PaymentService
}

func NewPaymentHandler(db *gorm.DB, paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{db: db, paymentService: paymentService}
}

// ListPayments returns rent charges with filtering, sorting, and
// pagination. Tenant accounts only ever see their own charges.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	filterTenantStr := c.QueryParam("filter_tenant")
	filterPropertyStr := c.QueryParam("filter_property")
	filterStatus := c.QueryParam("status")
	sortBy := c.QueryParam("sort_by")
	if sortBy == "" {
		sortBy = "due_date"
	}
	sortOrder := c.QueryParam("sort_order")
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	page := 1
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	pageSize := 20

	query := h.db.Model(&models.Payment{}).Preload("Tenant").Preload("Property")

	if !isAdmin(c) {
		tenant, err := h.ownTenant(c)
		if err != nil {
			return err
		}
		query = query.Where("tenant_id = ?", tenant.ID)
	} else {
		if filterTenantStr != "" {
			if val, err := strconv.ParseUint(filterTenantStr, 10, 32); err == nil {
				query = query.Where("tenant_id = ?", uint(val))
			}
		}
		if filterPropertyStr != "" {
			if val, err := strconv.ParseUint(filterPropertyStr, 10, 32); err == nil {
				query = query.Where("property_id = ?", uint(val))
			}
		}
	}
	if filterStatus != "" {
		query = query.Where("status = ?", filterStatus)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count payments")
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	switch sortBy {
	case "amount":
		query = query.Order("amount " + sortOrder)
	case "status":
		query = query.Order("status " + sortOrder)
	case "due_date":
		query = query.Order("due_date " + sortOrder)
	default:
		query = query.Order("id " + sortOrder)
	}

	var payments []models.Payment
	if err := query.Limit(pageSize).Offset((page - 1) * pageSize).Find(&payments).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch payments")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"pagination": Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
			TotalCount: int(totalCount),
		},
	})
}

// GetPayment returns a single charge with its gateway sessions.
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	payment, err := h.loadAuthorized(c)
	if err != nil {
		return err
	}
	if err := h.db.Preload("Sessions").Preload("Refunds").First(payment, payment.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch payment")
	}
	return c.JSON(http.StatusOK, payment)
}

// InitiatePayment opens (or resumes) a Stripe intent for the charge.
// Query params: method=card|ach, force_new=true to abandon a pending intent.
func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	payment, err := h.loadAuthorized(c)
	if err != nil {
		return err
	}

	method := models.PaymentMethodCard
	if c.QueryParam("method") == string(models.PaymentMethodACH) {
		method = models.PaymentMethodACH
	}
	forceNew := c.QueryParam("force_new") == "true"

	result, err := h.paymentService.InitiatePayment(c.Request().Context(), payment, method, forceNew)
	if err != nil {
		if errors.Is(err, services.ErrPaymentAlreadyMade) {
			return echo.NewHTTPError(http.StatusBadRequest, "Payment is already made. Please check the status.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to initiate payment: "+err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// RetryPayment re-opens a failed charge so the tenant can try again.
func (h *PaymentHandler) RetryPayment(c echo.Context) error {
	payment, err := h.loadAuthorized(c)
	if err != nil {
		return err
	}

	retried, err := h.paymentService.RetryPayment(c.Request().Context(), payment.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, retried)
}

// StoreRefund records an admin refund against a succeeded charge.
func (h *PaymentHandler) StoreRefund(c echo.Context) error {
	var payment models.Payment
	if err := h.db.First(&payment, c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Payment not found")
	}
	if payment.Status != models.PaymentStatusSucceeded {
		return echo.NewHTTPError(http.StatusBadRequest, "Only succeeded payments can be refunded")
	}

	var form struct {
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if form.Amount <= 0 || form.Amount > payment.Amount {
		return echo.NewHTTPError(http.StatusBadRequest, "Refund amount must be positive and at most the payment amount")
	}

	refund := models.Refund{
		PaymentID: payment.ID,
		TenantID:  payment.TenantID,
		Amount:    form.Amount,
		Reason:    form.Reason,
	}
	if err := h.db.Create(&refund).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record refund")
	}
	return c.JSON(http.StatusCreated, refund)
}

// loadAuthorized fetches the charge and enforces ownership for tenant
// accounts.
func (h *PaymentHandler) loadAuthorized(c echo.Context) (*models.Payment, error) {
	var payment models.Payment
	if err := h.db.Preload("Tenant").Preload("Property").First(&payment, c.Param("id")).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Payment not found")
	}

	if !isAdmin(c) {
		tenant, err := h.ownTenant(c)
		if err != nil {
			return nil, err
		}
		if payment.TenantID != tenant.ID {
			return nil, echo.NewHTTPError(http.StatusForbidden, "You can only access your own payments")
		}
	}
	return &payment, nil
}

// ownTenant resolves the tenant record behind the logged-in account.
func (h *PaymentHandler) ownTenant(c echo.Context) (*models.Tenant, error) {
	email := getStringFromContext(c, "userEmail")
	if email == "" {
		return nil, echo.NewHTTPError(http.StatusForbidden, "No tenant record for this login")
	}
	var tenant models.Tenant
	if err := h.db.Where("email = ?", email).First(&tenant).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusForbidden, "No tenant record for this login")
	}
	return &tenant, nil
}
