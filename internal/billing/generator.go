package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentpay_portal/internal/models"
)

// Ledger is the persistent store of rent charges. Implementations must
// enforce a uniqueness constraint on (tenantID, dueDate) at the storage
// layer and surface a losing insert as ErrDuplicateDueDate; the generator's
// pre-insert existence check is an optimization, not the guard.
type Ledger interface {
	// FindPayment returns the charge for the tenant and calendar due date,
	// or nil when none exists.
	FindPayment(ctx context.Context, tenantID uint, dueDate time.Time) (*models.Payment, error)
	// InsertPayment persists a new charge, filling in its ID.
	InsertPayment(ctx context.Context, payment *models.Payment) error
}

// TenantDirectory provides read access to tenants and their property
// assignments.
type TenantDirectory interface {
	// ListAssignedTenants returns every tenant with a non-null property.
	ListAssignedTenants(ctx context.Context) ([]models.Tenant, error)
	// GetTenantWithProperty returns the tenant with its property preloaded,
	// or nil when the tenant does not exist.
	GetTenantWithProperty(ctx context.Context, tenantID uint) (*models.Tenant, error)
}

// GenerateResult reports the outcome of a single generation call.
type GenerateResult struct {
	Created bool
	Payment *models.Payment
}

// GeneratePaymentForTenant ensures exactly one rent charge exists for the
// tenant and due date. The amount is snapshotted from the property's
// current rent; later rent changes never touch an existing charge. Calling
// this N times for the same pair creates exactly one row: a found charge is
// returned with Created false, and a racing insert that loses on the unique
// index is re-read and likewise returned with Created false.
func GeneratePaymentForTenant(ctx context.Context, dir TenantDirectory, ledger Ledger, tenantID uint, dueDate time.Time) (GenerateResult, error) {
	tenant, err := dir.GetTenantWithProperty(ctx, tenantID)
	if err != nil {
		return GenerateResult{}, err
	}
	if tenant == nil || tenant.Property == nil || tenant.Property.RentAmount <= 0 {
		return GenerateResult{}, fmt.Errorf("tenant %d: %w", tenantID, ErrTenantNotAssignable)
	}

	dueDate = models.DateOnly(dueDate)

	existing, err := ledger.FindPayment(ctx, tenantID, dueDate)
	if err != nil {
		return GenerateResult{}, err
	}
	if existing != nil {
		return GenerateResult{Created: false, Payment: existing}, nil
	}

	payment := &models.Payment{
		TenantID:   tenant.ID,
		PropertyID: tenant.Property.ID,
		Amount:     tenant.Property.RentAmount,
		DueDate:    dueDate,
		Status:     models.PaymentStatusPending,
	}
	if err := ledger.InsertPayment(ctx, payment); err != nil {
		if errors.Is(err, ErrDuplicateDueDate) {
			// Lost the insert race; the winner's row is the charge.
			winner, findErr := ledger.FindPayment(ctx, tenantID, dueDate)
			if findErr != nil {
				return GenerateResult{}, findErr
			}
			if winner != nil {
				return GenerateResult{Created: false, Payment: winner}, nil
			}
		}
		return GenerateResult{}, err
	}

	return GenerateResult{Created: true, Payment: payment}, nil
}
