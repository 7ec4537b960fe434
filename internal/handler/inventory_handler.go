package handler

import (
	"context"
	"errors"

	"go-packet-inventory/internal/idempotency"
	"go-packet-inventory/internal/middleware"
	"go-packet-inventory/internal/model"
	"go-packet-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdempotencyStore guards POST /transactions against client retries.
type IdempotencyStore interface {
	Reserve(ctx context.Context, ownerID uuid.UUID, key string) (uuid.UUID, bool, error)
	Complete(ctx context.Context, ownerID uuid.UUID, key string, transactionID uuid.UUID) error
	Release(ctx context.Context, ownerID uuid.UUID, key string) error
}

const idempotencyHeader = "Idempotency-Key"

type InventoryHandler struct {
	service service.InventoryService
	idem    IdempotencyStore
	log     *zap.Logger
}

// NewInventoryHandler builds the handler; idem may be nil to disable
// idempotency keys.
func NewInventoryHandler(s service.InventoryService, idem IdempotencyStore, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{service: s, idem: idem, log: log}
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.service.CreateProduct(c.UserContext(), middleware.OwnerID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.GetProduct(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// ConvertPackets handles POST /api/v1/products/:id/convert
func (h *InventoryHandler) ConvertPackets(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var req service.ConvertPacketsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.service.ConvertPackets(c.UserContext(), middleware.OwnerID(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Packets converted", "data": product})
}

// CreateTransaction handles POST /api/v1/transactions. With an
// Idempotency-Key header a repeated request returns the first result.
func (h *InventoryHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.RecordTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	ctx := c.UserContext()
	owner := middleware.OwnerID(c)
	key := c.Get(idempotencyHeader)

	if key != "" && h.idem != nil && owner != uuid.Nil {
		existing, reserved, err := h.idem.Reserve(ctx, owner, key)
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		case err != nil:
			return c.Status(503).JSON(fiber.Map{"error": "Idempotency store unavailable"})
		case !reserved:
			c.Set("Idempotent-Replayed", "true")
			return c.JSON(fiber.Map{"message": "Transaction already recorded", "id": existing})
		}
	} else {
		key = ""
	}

	id, err := h.service.RecordTransaction(ctx, owner, &req)
	if err != nil {
		// A persistence failure may have committed, so its key stays pending
		// until the TTL runs out.
		if key != "" && rejected(err) {
			if relErr := h.idem.Release(ctx, owner, key); relErr != nil {
				h.log.Error("release idempotency key", zap.String("owner_id", owner.String()), zap.String("key", key), zap.Error(relErr))
			}
		}
		return respondError(c, err)
	}
	if key != "" {
		if cErr := h.idem.Complete(ctx, owner, key, id); cErr != nil {
			h.log.Error("complete idempotency key",
				zap.String("owner_id", owner.String()),
				zap.String("key", key),
				zap.String("transaction_id", id.String()),
				zap.Error(cErr),
			)
		}
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "id": id})
}

// rejected reports whether err means nothing was written.
func rejected(err error) bool {
	return errors.Is(err, model.ErrInvalidInput) ||
		errors.Is(err, model.ErrInsufficientStock) ||
		errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrForbidden) ||
		errors.Is(err, model.ErrUnauthorized)
}

func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.GetAllTransactions(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	txn, err := h.service.GetTransactionByID(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txn)
}

// DeleteTransaction reverses the stock effect and removes the row.
func (h *InventoryHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	if err := h.service.ReverseAndDelete(c.UserContext(), middleware.OwnerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}

func (h *InventoryHandler) MarkPaid(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	txn, err := h.service.MarkPaid(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction marked as paid", "data": txn})
}
