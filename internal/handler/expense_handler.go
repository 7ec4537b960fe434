package handler

import (
	"go-packet-inventory/internal/middleware"
	"go-packet-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ExpenseHandler struct {
	service service.ExpenseService
}

func NewExpenseHandler(s service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: s}
}

func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	var req service.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	expense, err := h.service.CreateExpense(c.UserContext(), middleware.OwnerID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Expense created", "data": expense})
}

func (h *ExpenseHandler) GetExpenses(c *fiber.Ctx) error {
	expenses, err := h.service.GetAllExpenses(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(expenses)
}

func (h *ExpenseHandler) DeleteExpense(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid expense ID"})
	}
	if err := h.service.DeleteExpense(c.UserContext(), middleware.OwnerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Expense deleted"})
}
