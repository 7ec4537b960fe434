package model

import "github.com/google/uuid"

// PacketSize is the weight of one packet in grams. Only 250g and 500g exist.
type PacketSize int

const (
	Packet250 PacketSize = 250
	Packet500 PacketSize = 500
)

func (s PacketSize) Valid() bool {
	return s == Packet250 || s == Packet500
}

// StockColumn names the products column counting packets of this size.
func (s PacketSize) StockColumn() string {
	if s == Packet500 {
		return "stock_packets_500"
	}
	return "stock_packets_250"
}

// ConvertDirection selects which way packets are repacked.
type ConvertDirection string

const (
	Convert500To250 ConvertDirection = "500to250"
	Convert250To500 ConvertDirection = "250to500"
)

type Product struct {
	BaseModel
	OwnerID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name              string     `gorm:"type:varchar(255);not null" json:"name"`
	DefaultPacketSize PacketSize `gorm:"column:default_unit_grams;not null;default:250" json:"default_unit_grams"`
	StockPackets250   int        `gorm:"column:stock_packets_250;not null;default:0;check:stock_packets_250 >= 0" json:"stock_packets_250"`
	StockPackets500   int        `gorm:"column:stock_packets_500;not null;default:0;check:stock_packets_500 >= 0" json:"stock_packets_500"`
}

// Stock returns the packet count held for the given size.
func (p *Product) Stock(size PacketSize) int {
	if size == Packet500 {
		return p.StockPackets500
	}
	return p.StockPackets250
}

// TotalGrams is the weight of everything on hand.
func (p *Product) TotalGrams() int {
	return p.StockPackets500*int(Packet500) + p.StockPackets250*int(Packet250)
}

func (p *Product) TotalPackets() int {
	return p.StockPackets250 + p.StockPackets500
}
