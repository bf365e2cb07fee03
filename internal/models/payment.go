package models

import (
	"time"
)

// PaymentStatus represents the lifecycle state of a rent charge
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// PaymentMethod represents how a charge was (or will be) collected
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodACH    PaymentMethod = "ach"
	PaymentMethodManual PaymentMethod = "manual"
)

// Payment represents a single rent charge for a tenant and billing cycle.
// Rows are immutable after creation except for Status/Method/PaidAt/
// ProviderRef. The composite unique index on (tenant_id, due_date) is the
// system of record for charge idempotence: a racing insert for the same
// cycle loses with a duplicate-key error, which callers treat the same as
// "already exists". Amount is a snapshot of the property's rent at
// creation time, not a live reference.
type Payment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TenantID    uint          `gorm:"not null;uniqueIndex:idx_payments_tenant_due,priority:1" json:"tenant_id"`
	PropertyID  uint          `gorm:"index" json:"property_id"`
	Amount      float64       `gorm:"type:decimal(12,2)" json:"amount"`
	DueDate     time.Time     `gorm:"type:date;not null;uniqueIndex:idx_payments_tenant_due,priority:2" json:"due_date"`
	Status      PaymentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Method      PaymentMethod `gorm:"type:varchar(20)" json:"method"`
	PaidAt      *time.Time    `json:"paid_at"`
	ProviderRef string        `gorm:"type:varchar(255)" json:"provider_ref"`

	// Relationships
	Tenant   Tenant           `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Property Property         `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Sessions []PaymentSession `gorm:"foreignKey:PaymentID" json:"sessions,omitempty"`
	Refunds  []Refund         `gorm:"foreignKey:PaymentID" json:"refunds,omitempty"`
}

// DateOnly truncates t to a calendar date at midnight UTC. Due dates are
// stored and compared as dates; the time-of-day component never matters.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
