package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a cost not tied to inventory (rent, transport, packaging...).
type Expense struct {
	BaseModel
	OwnerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Category string          `gorm:"type:varchar(100);not null" json:"category"`
	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Note     *string         `gorm:"type:text" json:"note,omitempty"`
}
