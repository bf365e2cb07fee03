package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type PaymentGateway string

const (
	PaymentGatewayStripe PaymentGateway = "stripe"
	PaymentGatewayManual PaymentGateway = "manual"
)

// PaymentCallbackHistory is an audit row for every webhook notification
// received from a gateway, stored before any processing happens.
type PaymentCallbackHistory struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PaymentGateway PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	EventID        string          `gorm:"type:varchar(255);index" json:"event_id"`
	EventType      string          `gorm:"type:varchar(100)" json:"event_type"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
