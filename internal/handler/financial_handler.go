package handler

import (
	"strconv"

	"go-packet-inventory/internal/middleware"
	"go-packet-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type FinancialHandler struct {
	service service.FinancialService
}

func NewFinancialHandler(s service.FinancialService) *FinancialHandler {
	return &FinancialHandler{service: s}
}

func (h *FinancialHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.GetSummary(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// GetStockMovement returns packet movement per day for charts
// Query params: days (default 7)
func (h *FinancialHandler) GetStockMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), middleware.OwnerID(c), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

func (h *FinancialHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
