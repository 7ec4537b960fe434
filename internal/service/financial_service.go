package service

import (
	"context"
	"sort"
	"time"

	"go-packet-inventory/internal/model"
	"go-packet-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementData is one day of packets in (purchases) and out (sales).
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardStats struct {
	TotalProducts int64 `json:"total_products"`
	LowStockCount int64 `json:"low_stock_count"`
	TotalGrams    int64 `json:"total_grams"`
}

const maxMovementDays = 366

type FinancialService interface {
	GetSummary(ctx context.Context, ownerID uuid.UUID) (*model.FinancialSummary, error)
	GetDashboardStats(ctx context.Context, ownerID uuid.UUID) (*DashboardStats, error)
	GetStockMovement(ctx context.Context, ownerID uuid.UUID, days int) ([]StockMovementData, error)
}

type financialService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	expenseRepo     repository.ExpenseRepository
	lowStock        int
	now             func() time.Time
}

func NewFinancialService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository,
	eRepo repository.ExpenseRepository, lowStockPackets int) FinancialService {
	return &financialService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		expenseRepo:     eRepo,
		lowStock:        lowStockPackets,
		now:             time.Now,
	}
}

func (s *financialService) GetSummary(ctx context.Context, ownerID uuid.UUID) (*model.FinancialSummary, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	transactions, err := s.transactionRepo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return Summarize(transactions, expenses), nil
}

// Summarize rolls the ledger up into totals. Pending (lend) sales count as
// receivables, not revenue, until they are marked paid.
func Summarize(transactions []model.Transaction, expenses []model.Expense) *model.FinancialSummary {
	sum := &model.FinancialSummary{
		Revenue:            decimal.Zero,
		PendingReceivables: decimal.Zero,
		Cost:               decimal.Zero,
		Expenses:           decimal.Zero,
		Products:           []model.ProductFinancials{},
	}

	perProduct := make(map[uuid.UUID]*model.ProductFinancials)
	for _, t := range transactions {
		row, ok := perProduct[t.ProductID]
		if !ok {
			row = &model.ProductFinancials{
				ProductID:          t.ProductID,
				Revenue:            decimal.Zero,
				PendingReceivables: decimal.Zero,
				Cost:               decimal.Zero,
			}
			if t.Product != nil {
				row.ProductName = t.Product.Name
			}
			perProduct[t.ProductID] = row
		}

		switch {
		case t.Type == model.TxPurchase:
			sum.Cost = sum.Cost.Add(t.TotalPrice)
			row.Cost = row.Cost.Add(t.TotalPrice)
		case t.PaymentStatus == model.StatusPending:
			sum.PendingReceivables = sum.PendingReceivables.Add(t.TotalPrice)
			row.PendingReceivables = row.PendingReceivables.Add(t.TotalPrice)
		default:
			sum.Revenue = sum.Revenue.Add(t.TotalPrice)
			row.Revenue = row.Revenue.Add(t.TotalPrice)
		}
	}

	for _, e := range expenses {
		sum.Expenses = sum.Expenses.Add(e.Amount)
	}
	sum.Profit = sum.Revenue.Sub(sum.Cost).Sub(sum.Expenses)

	for _, row := range perProduct {
		row.Profit = row.Revenue.Sub(row.Cost)
		sum.Products = append(sum.Products, *row)
	}
	sort.Slice(sum.Products, func(i, j int) bool {
		a, b := sum.Products[i], sum.Products[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.ProductID.String() < b.ProductID.String()
	})
	return sum
}

func (s *financialService) GetDashboardStats(ctx context.Context, ownerID uuid.UUID) (*DashboardStats, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	products, err := s.productRepo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalProducts: int64(len(products))}
	for i := range products {
		if products[i].TotalPackets() < s.lowStock {
			stats.LowStockCount++
		}
		stats.TotalGrams += int64(products[i].TotalGrams())
	}
	return stats, nil
}

// GetStockMovement returns one row per UTC calendar day, oldest first,
// covering today and the days-1 days before it.
func (s *financialService) GetStockMovement(ctx context.Context, ownerID uuid.UUID, days int) ([]StockMovementData, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	if days <= 0 {
		return nil, model.InvalidInput("days must be positive")
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	transactions, err := s.transactionRepo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	results := make([]StockMovementData, days)
	index := make(map[string]int, days)
	for i := range results {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		results[i].Date = date
		index[date] = i
	}

	for _, t := range transactions {
		i, ok := index[t.CreatedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		if t.Type == model.TxPurchase {
			results[i].Inbound += t.CountPackets
		} else {
			results[i].Outbound += t.CountPackets
		}
	}
	return results, nil
}
