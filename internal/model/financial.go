package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialSummary is recomputed from the ledger on every request.
type FinancialSummary struct {
	Revenue            decimal.Decimal     `json:"revenue"`
	PendingReceivables decimal.Decimal     `json:"pending_receivables"`
	Cost               decimal.Decimal     `json:"cost"`
	Expenses           decimal.Decimal     `json:"expenses"`
	Profit             decimal.Decimal     `json:"profit"`
	Products           []ProductFinancials `json:"products"`
}

// ProductFinancials is the per-product slice of a summary. Expenses are not
// attributed to products, so Profit is Revenue - Cost.
type ProductFinancials struct {
	ProductID          uuid.UUID       `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Revenue            decimal.Decimal `json:"revenue"`
	PendingReceivables decimal.Decimal `json:"pending_receivables"`
	Cost               decimal.Decimal `json:"cost"`
	Profit             decimal.Decimal `json:"profit"`
}
