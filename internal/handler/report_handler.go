package handler

import (
	"fmt"
	"time"

	"go-packet-inventory/internal/middleware"
	"go-packet-inventory/internal/report"
	"go-packet-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	inventory service.InventoryService
	expenses  service.ExpenseService
}

func NewReportHandler(inventory service.InventoryService, expenses service.ExpenseService) *ReportHandler {
	return &ReportHandler{inventory: inventory, expenses: expenses}
}

// GetLedgerWorkbook handles GET /api/v1/reports/ledger.xlsx
func (h *ReportHandler) GetLedgerWorkbook(c *fiber.Ctx) error {
	ctx := c.UserContext()
	owner := middleware.OwnerID(c)

	products, err := h.inventory.GetAllProducts(ctx, owner)
	if err != nil {
		return respondError(c, err)
	}
	transactions, err := h.inventory.GetAllTransactions(ctx, owner)
	if err != nil {
		return respondError(c, err)
	}
	expenses, err := h.expenses.GetAllExpenses(ctx, owner)
	if err != nil {
		return respondError(c, err)
	}

	data, err := report.BuildLedgerWorkbook(report.Ledger{
		Products:     products,
		Transactions: transactions,
		Expenses:     expenses,
		Summary:      service.Summarize(transactions, expenses),
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build report"})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="ledger-%s.xlsx"`, time.Now().Format("20060102")))
	return c.Send(data)
}
