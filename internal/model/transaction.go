package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxPurchase TransactionType = "purchase"
	TxSale     TransactionType = "sale"
)

// Inverse is the type whose stock effect cancels this one.
func (t TransactionType) Inverse() TransactionType {
	if t == TxPurchase {
		return TxSale
	}
	return TxPurchase
}

type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayGPay PaymentMethod = "gpay"
	PayLend PaymentMethod = "lend"
)

type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPending PaymentStatus = "pending"
)

// Transaction is one ledger row. Apart from PaymentStatus (pending -> paid)
// nothing on it changes after insert.
type Transaction struct {
	BaseModel
	OwnerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product        `json:"product,omitempty"`
	Type            TransactionType `gorm:"column:txn_type;type:varchar(10);not null" json:"txn_type"`
	PacketSizeGrams PacketSize      `gorm:"not null" json:"packet_size_grams"`
	CountPackets    int             `gorm:"not null" json:"count_packets"`
	QuantityGrams   int             `gorm:"not null" json:"quantity_grams"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CustomerName    *string         `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	PaymentMethod   *PaymentMethod  `gorm:"type:varchar(10)" json:"payment_method,omitempty"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(10);not null;default:'paid';index" json:"payment_status"`
	Note            *string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

// MoneyPlaces is the scale of every stored money column.
const MoneyPlaces = 2

// NewTransaction derives quantity, total and payment status from the inputs,
// so those three fields can never disagree with count, size and method.
// The unit price is rounded to MoneyPlaces before the total is taken.
func NewTransaction(ownerID, productID uuid.UUID, txType TransactionType, size PacketSize, count int,
	unitPrice decimal.Decimal, customer *string, method *PaymentMethod, note *string) *Transaction {
	unitPrice = unitPrice.Round(MoneyPlaces)
	status := StatusPaid
	if txType == TxSale && method != nil && *method == PayLend {
		status = StatusPending
	}
	return &Transaction{
		OwnerID:         ownerID,
		ProductID:       productID,
		Type:            txType,
		PacketSizeGrams: size,
		CountPackets:    count,
		QuantityGrams:   int(size) * count,
		UnitPrice:       unitPrice,
		TotalPrice:      unitPrice.Mul(decimal.NewFromInt(int64(count))),
		CustomerName:    customer,
		PaymentMethod:   method,
		PaymentStatus:   status,
		Note:            note,
	}
}

// UnitPriceFromKg converts a per-kilogram price into a per-packet price,
// rounded half away from zero to MoneyPlaces.
func UnitPriceFromKg(pricePerKg decimal.Decimal, size PacketSize) decimal.Decimal {
	return pricePerKg.Mul(decimal.NewFromInt(int64(size))).Div(decimal.NewFromInt(1000)).Round(MoneyPlaces)
}

// HasMoneyScale reports whether d fits a money column without rounding.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}
