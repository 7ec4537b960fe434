package repository

import (
	"context"
	"fmt"

	"go-packet-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryStore exposes the atomic procedures that keep the ledger and the
// per-product packet counters in step. Every method runs in one database
// transaction; a failure leaves both untouched.
type InventoryStore interface {
	InsertTransactionAndUpdateInventory(ctx context.Context, txn *model.Transaction) error
	UpdatePacketsOnTransaction(tx *gorm.DB, ownerID, productID uuid.UUID, txType model.TransactionType, size model.PacketSize, count int) error
	DeleteTransactionAndUpdateInventory(ctx context.Context, ownerID, transactionID uuid.UUID) (*model.Transaction, error)
	ConvertPackets(ctx context.Context, ownerID, productID uuid.UUID, dir model.ConvertDirection, conversions int) (*model.Product, error)
	MarkPaid(ctx context.Context, ownerID, transactionID uuid.UUID) (*model.Transaction, bool, error)
}

type inventoryStore struct {
	db           *gorm.DB
	products     ProductRepository
	transactions TransactionRepository
}

func NewInventoryStore(db *gorm.DB, products ProductRepository, transactions TransactionRepository) InventoryStore {
	return &inventoryStore{db: db, products: products, transactions: transactions}
}

func (s *inventoryStore) atomic(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return translateError(op, s.db.WithContext(ctx).Transaction(fn))
}

// stockDelta is the counter change a transaction of this type causes.
func stockDelta(txType model.TransactionType, count int) int {
	if txType == model.TxSale {
		return -count
	}
	return count
}

func (s *inventoryStore) InsertTransactionAndUpdateInventory(ctx context.Context, txn *model.Transaction) error {
	return s.atomic(ctx, "insert transaction", func(tx *gorm.DB) error {
		if err := s.UpdatePacketsOnTransaction(tx, txn.OwnerID, txn.ProductID, txn.Type, txn.PacketSizeGrams, txn.CountPackets); err != nil {
			return err
		}
		return s.transactions.Create(tx, txn)
	})
}

// UpdatePacketsOnTransaction applies the stock effect of a transaction of
// txType. Pass the inverse type to undo one.
func (s *inventoryStore) UpdatePacketsOnTransaction(tx *gorm.DB, ownerID, productID uuid.UUID, txType model.TransactionType, size model.PacketSize, count int) error {
	if !size.Valid() {
		return model.InvalidInput("unsupported packet size %d", size)
	}
	if count <= 0 {
		return model.InvalidInput("packet count must be positive")
	}
	return s.products.UpdatePackets(tx, ownerID, productID, size, stockDelta(txType, count))
}

// DeleteTransactionAndUpdateInventory reverses the stock effect of a ledger
// row and removes it. Reversing a purchase whose packets were already sold
// fails with InsufficientStockError instead of driving stock negative.
func (s *inventoryStore) DeleteTransactionAndUpdateInventory(ctx context.Context, ownerID, transactionID uuid.UUID) (*model.Transaction, error) {
	var deleted *model.Transaction
	err := s.atomic(ctx, "delete transaction", func(tx *gorm.DB) error {
		txn, err := s.transactions.FindForUpdate(tx, transactionID)
		if err != nil {
			return err
		}
		if txn.OwnerID != ownerID {
			return fmt.Errorf("transaction %s: %w", transactionID, model.ErrForbidden)
		}

		n, err := s.transactions.SoftDelete(tx, ownerID, transactionID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("transaction %s: %w", transactionID, model.ErrNotFound)
		}

		if err := s.UpdatePacketsOnTransaction(tx, ownerID, txn.ProductID, txn.Type.Inverse(), txn.PacketSizeGrams, txn.CountPackets); err != nil {
			return err
		}
		deleted = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *inventoryStore) ConvertPackets(ctx context.Context, ownerID, productID uuid.UUID, dir model.ConvertDirection, conversions int) (*model.Product, error) {
	if conversions <= 0 {
		return nil, model.InvalidInput("conversions must be positive")
	}

	var product model.Product
	err := s.atomic(ctx, "convert packets", func(tx *gorm.DB) error {
		if err := s.products.ConvertPackets(tx, ownerID, productID, dir, conversions); err != nil {
			return err
		}
		return tx.First(&product, "id = ?", productID).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// MarkPaid moves a pending transaction to paid. The bool reports whether
// anything changed; an already-paid row is a successful no-op.
func (s *inventoryStore) MarkPaid(ctx context.Context, ownerID, transactionID uuid.UUID) (*model.Transaction, bool, error) {
	var (
		txn     *model.Transaction
		changed bool
	)
	err := s.atomic(ctx, "mark paid", func(tx *gorm.DB) error {
		var err error
		txn, err = s.transactions.FindForUpdate(tx, transactionID)
		if err != nil {
			return err
		}
		if txn.OwnerID != ownerID {
			return fmt.Errorf("transaction %s: %w", transactionID, model.ErrForbidden)
		}
		if txn.PaymentStatus == model.StatusPaid {
			return nil
		}

		n, err := s.transactions.UpdatePaymentStatus(tx, ownerID, transactionID, model.StatusPending, model.StatusPaid)
		if err != nil {
			return err
		}
		changed = n == 1
		txn.PaymentStatus = model.StatusPaid
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return txn, changed, nil
}
