package billing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"rentpay_portal/internal/models"
)

// GormStore implements Ledger and TenantDirectory on the portal database.
// The payments table's composite unique index on (tenant_id, due_date) is
// what actually enforces charge idempotence; this type just translates the
// driver's duplicate-key error into ErrDuplicateDueDate. Requires the DB to
// be opened with gorm.Config.TranslateError.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db as a Ledger and TenantDirectory.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindPayment(ctx context.Context, tenantID uint, dueDate time.Time) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND due_date = ?", tenantID, models.DateOnly(dueDate)).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &LedgerError{Op: "find payment", Err: err}
	}
	return &payment, nil
}

func (s *GormStore) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateDueDate
		}
		return &LedgerError{Op: "insert payment", Err: err}
	}
	return nil
}

func (s *GormStore) ListAssignedTenants(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := s.db.WithContext(ctx).
		Where("property_id IS NOT NULL").
		Order("id").
		Find(&tenants).Error
	if err != nil {
		return nil, &LedgerError{Op: "list assigned tenants", Err: err}
	}
	return tenants, nil
}

func (s *GormStore) GetTenantWithProperty(ctx context.Context, tenantID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.WithContext(ctx).Preload("Property").First(&tenant, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &LedgerError{Op: "get tenant", Err: err}
	}
	return &tenant, nil
}
