package service

import (
	"context"
	"errors"
	"fmt"

	"go-packet-inventory/internal/events"
	"go-packet-inventory/internal/model"
	"go-packet-inventory/internal/repository"
	"go-packet-inventory/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, ownerID uuid.UUID, req *CreateProductRequest) (*model.Product, error)
	GetAllProducts(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error)
	GetProduct(ctx context.Context, ownerID, id uuid.UUID) (*model.Product, error)
	RecordTransaction(ctx context.Context, ownerID uuid.UUID, req *RecordTransactionRequest) (uuid.UUID, error)
	ReverseAndDelete(ctx context.Context, ownerID, transactionID uuid.UUID) error
	ConvertPackets(ctx context.Context, ownerID, productID uuid.UUID, req *ConvertPacketsRequest) (*model.Product, error)
	MarkPaid(ctx context.Context, ownerID, transactionID uuid.UUID) (*model.Transaction, error)
	GetAllTransactions(ctx context.Context, ownerID uuid.UUID) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Transaction, error)
}

type inventoryService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	store           repository.InventoryStore
	publisher       events.Publisher
	log             *zap.Logger
}

func NewInventoryService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository,
	store repository.InventoryStore, publisher events.Publisher, log *zap.Logger) InventoryService {
	return &inventoryService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		store:           store,
		publisher:       publisher,
		log:             log,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, ownerID uuid.UUID, req *CreateProductRequest) (*model.Product, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		OwnerID:           ownerID,
		Name:              req.Name,
		DefaultPacketSize: req.DefaultPacketSize,
	}
	product.CreatedBy = ownerID.String()
	product.UpdatedBy = ownerID.String()

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, s.fail("create product", ownerID, uuid.Nil, err)
	}

	s.log.Info("product created", zap.String("owner_id", ownerID.String()), zap.String("product_id", product.ID.String()))
	s.publisher.Publish(ctx, events.New(ownerID, events.ActionProductCreated, product,
		fmt.Sprintf("Product '%s' created", product.Name)))
	return product, nil
}

func (s *inventoryService) GetAllProducts(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	return s.productRepo.FindAll(ctx, ownerID)
}

func (s *inventoryService) GetProduct(ctx context.Context, ownerID, id uuid.UUID) (*model.Product, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	return s.productRepo.FindByID(ctx, ownerID, id)
}

func (s *inventoryService) RecordTransaction(ctx context.Context, ownerID uuid.UUID, req *RecordTransactionRequest) (uuid.UUID, error) {
	if ownerID == uuid.Nil {
		return uuid.Nil, model.ErrUnauthorized
	}
	if err := validator.Check(req); err != nil {
		return uuid.Nil, err
	}

	unitPrice := req.UnitPrice
	switch {
	case req.UnitPrice != nil && req.PricePerKg != nil:
		return uuid.Nil, model.InvalidInput("give either unit_price or price_per_kg, not both")
	case req.PricePerKg != nil:
		if req.PricePerKg.IsNegative() {
			return uuid.Nil, model.InvalidInput("price_per_kg must not be negative")
		}
		p := model.UnitPriceFromKg(*req.PricePerKg, req.PacketSize)
		unitPrice = &p
	case req.UnitPrice == nil:
		return uuid.Nil, model.InvalidInput("unit_price is required")
	}
	if unitPrice.IsNegative() {
		return uuid.Nil, model.InvalidInput("unit_price must not be negative")
	}
	if !model.HasMoneyScale(*unitPrice) {
		return uuid.Nil, model.InvalidInput("unit_price must have at most %d decimal places", model.MoneyPlaces)
	}

	txn := model.NewTransaction(ownerID, req.ProductID, req.Type, req.PacketSize, req.Count,
		*unitPrice, req.CustomerName, req.PaymentMethod, req.Note)
	if err := s.store.InsertTransactionAndUpdateInventory(ctx, txn); err != nil {
		return uuid.Nil, s.fail("record transaction", ownerID, req.ProductID, err)
	}

	s.log.Info("transaction recorded",
		zap.String("owner_id", ownerID.String()),
		zap.String("transaction_id", txn.ID.String()),
		zap.String("type", string(txn.Type)),
		zap.Int("packet_size", int(txn.PacketSizeGrams)),
		zap.Int("count", txn.CountPackets),
	)
	s.publisher.Publish(ctx, events.New(ownerID, events.ActionTransactionRecorded, txn,
		fmt.Sprintf("%s of %d x %dg recorded", txn.Type, txn.CountPackets, txn.PacketSizeGrams)))
	return txn.ID, nil
}

func (s *inventoryService) ReverseAndDelete(ctx context.Context, ownerID, transactionID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return model.ErrUnauthorized
	}

	txn, err := s.store.DeleteTransactionAndUpdateInventory(ctx, ownerID, transactionID)
	if err != nil {
		return s.fail("delete transaction", ownerID, transactionID, err)
	}

	s.log.Info("transaction deleted",
		zap.String("owner_id", ownerID.String()),
		zap.String("transaction_id", transactionID.String()),
	)
	s.publisher.Publish(ctx, events.New(ownerID, events.ActionTransactionDeleted, txn,
		fmt.Sprintf("%s of %d x %dg reversed", txn.Type, txn.CountPackets, txn.PacketSizeGrams)))
	return nil
}

func (s *inventoryService) ConvertPackets(ctx context.Context, ownerID, productID uuid.UUID, req *ConvertPacketsRequest) (*model.Product, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	product, err := s.store.ConvertPackets(ctx, ownerID, productID, req.Direction, req.Conversions)
	if err != nil {
		return nil, s.fail("convert packets", ownerID, productID, err)
	}

	s.log.Info("packets converted",
		zap.String("owner_id", ownerID.String()),
		zap.String("product_id", productID.String()),
		zap.String("direction", string(req.Direction)),
		zap.Int("conversions", req.Conversions),
	)
	s.publisher.Publish(ctx, events.New(ownerID, events.ActionPacketsConverted, map[string]interface{}{
		"product":     product,
		"direction":   req.Direction,
		"conversions": req.Conversions,
	}, fmt.Sprintf("Converted %d (%s) for '%s'", req.Conversions, req.Direction, product.Name)))
	return product, nil
}

func (s *inventoryService) MarkPaid(ctx context.Context, ownerID, transactionID uuid.UUID) (*model.Transaction, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}

	txn, changed, err := s.store.MarkPaid(ctx, ownerID, transactionID)
	if err != nil {
		return nil, s.fail("mark paid", ownerID, transactionID, err)
	}
	if changed {
		s.log.Info("transaction paid",
			zap.String("owner_id", ownerID.String()),
			zap.String("transaction_id", transactionID.String()),
		)
		s.publisher.Publish(ctx, events.New(ownerID, events.ActionTransactionPaid, txn, "Payment received"))
	}
	return txn, nil
}

func (s *inventoryService) GetAllTransactions(ctx context.Context, ownerID uuid.UUID) ([]model.Transaction, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	return s.transactionRepo.FindAll(ctx, ownerID)
}

func (s *inventoryService) GetTransactionByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Transaction, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	return s.transactionRepo.FindByID(ctx, ownerID, id)
}

// fail logs err at the level its kind deserves and returns it unchanged.
func (s *inventoryService) fail(op string, ownerID, resourceID uuid.UUID, err error) error {
	logFailure(s.log, op, ownerID, resourceID, err)
	return err
}

func logFailure(log *zap.Logger, op string, ownerID, resourceID uuid.UUID, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("owner_id", ownerID.String()),
		zap.String("resource_id", resourceID.String()),
		zap.Error(err),
	}
	switch {
	case errors.Is(err, model.ErrForbidden):
		log.Warn("cross-owner access rejected", fields...)
	case errors.Is(err, model.ErrPersistence):
		log.Error("atomic procedure failed", fields...)
	default:
		log.Debug("operation rejected", fields...)
	}
}
