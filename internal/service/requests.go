package service

import (
	"go-packet-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name              string           `json:"name" validate:"required,max=255"`
	DefaultPacketSize model.PacketSize `json:"default_unit_grams" validate:"packet_size"`
}

// RecordTransactionRequest carries either UnitPrice (per packet) or
// PricePerKg; exactly one must be set.
type RecordTransactionRequest struct {
	ProductID     uuid.UUID             `json:"product_id" validate:"uuid_required"`
	Type          model.TransactionType `json:"txn_type" validate:"required,oneof=purchase sale"`
	PacketSize    model.PacketSize      `json:"packet_size_grams" validate:"packet_size"`
	Count         int                   `json:"count_packets" validate:"gt=0"`
	UnitPrice     *decimal.Decimal      `json:"unit_price"`
	PricePerKg    *decimal.Decimal      `json:"price_per_kg"`
	CustomerName  *string               `json:"customer_name" validate:"omitempty,max=255"`
	PaymentMethod *model.PaymentMethod  `json:"payment_method" validate:"omitempty,oneof=cash gpay lend"`
	Note          *string               `json:"notes"`
}

type ConvertPacketsRequest struct {
	Direction   model.ConvertDirection `json:"direction" validate:"required,oneof=500to250 250to500"`
	Conversions int                    `json:"conversions" validate:"gt=0"`
}

type CreateExpenseRequest struct {
	Category string          `json:"category" validate:"required,max=100"`
	Amount   decimal.Decimal `json:"amount"`
	Note     *string         `json:"note"`
}
