package models

import (
	"time"

	"gorm.io/gorm"
)

// Property represents a rentable unit. A property may house multiple
// tenants; each tenant's charges snapshot the rent amount at creation.
type Property struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	AddressLine1 string  `gorm:"type:varchar(255)" json:"address_line1"`
	AddressLine2 string  `gorm:"type:varchar(255)" json:"address_line2"`
	City         string  `gorm:"type:varchar(100)" json:"city"`
	State        string  `gorm:"type:varchar(50)" json:"state"`
	PostalCode   string  `gorm:"type:varchar(20)" json:"postal_code"`
	RentAmount   float64 `gorm:"type:decimal(12,2)" json:"rent_amount"`

	// Relationships
	Tenants []Tenant `gorm:"foreignKey:PropertyID" json:"tenants,omitempty"`
}
