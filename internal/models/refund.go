package models

import (
	"time"

	"gorm.io/gorm"
)

// Refund is an admin-recorded reversal against a succeeded payment. The
// payment row itself is untouched; refunds are a separate audit trail.
type Refund struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PaymentID uint    `gorm:"index" json:"payment_id"`
	TenantID  uint    `gorm:"index" json:"tenant_id"`
	Amount    float64 `gorm:"type:decimal(12,2)" json:"amount"`
	Reason    string  `gorm:"type:text" json:"reason"`

	// Relationships
	Payment Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	Tenant  Tenant  `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}
