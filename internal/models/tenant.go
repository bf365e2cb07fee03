package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant represents a renter. PaymentDueDay is the tenant's preferred
// billing day of month (1-31); charges for short months clamp to the last
// day. A tenant without an assigned property cannot be billed.
type Tenant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name           string `gorm:"type:varchar(255)" json:"name"`
	Email          string `gorm:"type:varchar(255);index" json:"email"`
	Phone          string `gorm:"type:varchar(50)" json:"phone"`
	PaymentDueDay  int    `gorm:"default:1" json:"payment_due_day"`
	PropertyID     *uint  `gorm:"index" json:"property_id"`
	AutopayEnabled bool   `gorm:"default:false" json:"autopay_enabled"`
	ReminderOptOut bool   `gorm:"default:false" json:"reminder_opt_out"`

	// Relationships
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Payments []Payment `gorm:"foreignKey:TenantID" json:"payments,omitempty"`
}

// Assigned reports whether the tenant currently has a property.
func (t Tenant) Assigned() bool {
	return t.PropertyID != nil
}
